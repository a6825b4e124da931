// Package validators enforces hard naming constraints in code. Models cannot
// be trusted to obey vetoes stated in prompts, so every candidate list is
// re-checked here at the stage boundaries.
package validators

import (
	"regexp"
	"strings"

	"github.com/namazing/namazing/internal/schema"
)

// Normalize lowercases and trims a name for comparison.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Levenshtein computes the edit distance between two strings with the
// standard two-row dynamic program.
func Levenshtein(s1, s2 string) int {
	if len(s1) < len(s2) {
		s1, s2 = s2, s1
	}
	if len(s2) == 0 {
		return len(s1)
	}
	prev := make([]int, len(s2)+1)
	cur := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 0; i < len(s1); i++ {
		cur[0] = i + 1
		for j := 0; j < len(s2); j++ {
			cost := 1
			if s1[i] == s2[j] {
				cost = 0
			}
			cur[j+1] = min3(cur[j]+1, prev[j+1]+1, prev[j]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(s2)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// NamesTooSimilar reports whether two names collide: one contains the other
// after normalization (the Olive/Oliver problem) or their edit distance is
// within threshold.
func NamesTooSimilar(a, b string, threshold int) bool {
	n1, n2 := Normalize(a), Normalize(b)
	if strings.Contains(n1, n2) || strings.Contains(n2, n1) {
		return true
	}
	return Levenshtein(n1, n2) <= threshold
}

// Predicate reports whether a name is allowed.
type Predicate func(name string) bool

// VetoFilter rejects names whose normalized form appears in the hard-veto
// list.
func VetoFilter(profile *schema.SessionProfile) Predicate {
	hard := make(map[string]struct{})
	for _, v := range profile.HardVetoes() {
		hard[Normalize(v)] = struct{}{}
	}
	return func(name string) bool {
		_, vetoed := hard[Normalize(name)]
		return !vetoed
	}
}

// Brief phrasings that imply a forbidden starting letter or prefix, e.g.
// `avoid "Ma-" names` or `anything starting with J`.
var prefixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`avoid\s+["']?(\w+)-`),
	regexp.MustCompile(`avoid.*starting\s+with\s+["']?(\w+)`),
	regexp.MustCompile(`no\s+(\w+)-\s*names`),
	regexp.MustCompile(`anything\s+starting\s+with\s+["']?(\w+)`),
}

// PrefixFilter rejects names starting with a forbidden prefix. Prefixes come
// from hard-veto entries shaped "<prefix>-" and from prefix phrasings in the
// raw brief.
func PrefixFilter(profile *schema.SessionProfile) Predicate {
	forbidden := make(map[string]struct{})
	for _, veto := range profile.HardVetoes() {
		v := strings.TrimSpace(strings.ToLower(veto))
		if !strings.HasSuffix(v, "-") {
			continue
		}
		words := strings.Fields(strings.TrimRight(v, "-"))
		if len(words) > 0 {
			forbidden[words[len(words)-1]] = struct{}{}
		}
	}
	brief := strings.ToLower(profile.RawBrief)
	for _, re := range prefixPatterns {
		for _, m := range re.FindAllStringSubmatch(brief, -1) {
			forbidden[strings.ToLower(m[1])] = struct{}{}
		}
	}
	return func(name string) bool {
		n := Normalize(name)
		for p := range forbidden {
			if strings.HasPrefix(n, p) {
				return false
			}
		}
		return true
	}
}

// SiblingFilter rejects names too similar to any existing sibling.
func SiblingFilter(profile *schema.SessionProfile, threshold int) Predicate {
	siblings := profile.Siblings()
	return func(name string) bool {
		for _, s := range siblings {
			if NamesTooSimilar(name, s, threshold) {
				return false
			}
		}
		return true
	}
}

// FilterNames applies the full validator chain to a list of names and
// returns the survivors. Each rejection invokes logf once with the violated
// rule named. logf may be nil.
func FilterNames(names []string, profile *schema.SessionProfile, logf func(msg string)) []string {
	veto := VetoFilter(profile)
	prefix := PrefixFilter(profile)
	sibling := SiblingFilter(profile, 2)
	deity := DeityFilter(profile)

	reject := func(name, rule string) {
		if logf != nil {
			logf("Filtered '" + name + "': " + rule)
		}
	}

	out := make([]string, 0, len(names))
	for _, name := range names {
		switch {
		case !veto(name):
			reject(name, "matches hard veto")
		case !prefix(name):
			reject(name, "starts with forbidden prefix")
		case !sibling(name):
			reject(name, "too similar to sibling")
		case !deity(name):
			reject(name, "deity/religious name when religious names vetoed")
		default:
			out = append(out, name)
		}
	}
	return out
}

// FilterCandidates applies the validator chain to generator candidates.
func FilterCandidates(cands []schema.Candidate, profile *schema.SessionProfile, logf func(msg string)) []schema.Candidate {
	names := make([]string, len(cands))
	byName := make(map[string][]schema.Candidate, len(cands))
	for i, c := range cands {
		names[i] = c.Name
		byName[c.Name] = append(byName[c.Name], c)
	}
	kept := FilterNames(names, profile, logf)
	out := make([]schema.Candidate, 0, len(kept))
	for _, name := range kept {
		list := byName[name]
		out = append(out, list[0])
		byName[name] = list[1:]
	}
	return out
}
