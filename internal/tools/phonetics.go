// Package tools provides the deterministic research helpers the researcher
// stage feeds into its prompts: phonetic heuristics, popularity data, and
// best-effort web lookups.
package tools

import "strings"

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

// RoughIPA produces a pronunciation hint for a name. It is a crude suffix
// heuristic, not real IPA; good enough to seed the researcher prompt.
func RoughIPA(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, "ia"):
		return "/" + name[:len(name)-2] + "-ee-a/"
	case strings.HasSuffix(lower, "ie"), strings.HasSuffix(lower, "ee"):
		return "/" + name[:len(name)-2] + "-ee/"
	case strings.HasSuffix(lower, "y"):
		return "/" + name[:len(name)-1] + "-ee/"
	}
	return "/" + name + "/"
}

// CountSyllables estimates syllables by counting vowel groups, then adjusts
// for silent e/es/ed endings (Kate, James, and friends). Always at least 1.
func CountSyllables(name string) int {
	lower := strings.ToLower(name)
	syllables := 0
	prevVowel := false
	for i := 0; i < len(lower); i++ {
		v := isVowel(lower[i])
		if v && !prevVowel {
			syllables++
		}
		prevVowel = v
	}

	if strings.HasSuffix(lower, "e") && len(lower) > 2 && !strings.HasSuffix(lower, "ie") {
		syllables = max(1, syllables-1)
	}
	if strings.HasSuffix(lower, "es") && len(lower) > 3 {
		syllables = max(1, syllables-1)
	}
	if strings.HasSuffix(lower, "ed") && len(lower) > 3 {
		syllables = max(1, syllables-1)
	}
	return max(1, syllables)
}
