package validators

import (
	"strings"

	"github.com/namazing/namazing/internal/schema"
)

// deityNames is the closed set of deity/religious names filtered when the
// family rules out religious names.
var deityNames = map[string]struct{}{
	// Hindu
	"krishna": {}, "lakshmi": {}, "shiva": {}, "sivan": {}, "vishnu": {},
	"brahma": {}, "ganesh": {}, "ganesha": {}, "durga": {}, "kali": {},
	"saraswati": {}, "parvati": {}, "hanuman": {}, "rama": {}, "radha": {},
	// Christian
	"jesus": {}, "christ": {}, "mary": {}, "madonna": {},
	// Greek
	"zeus": {}, "athena": {}, "apollo": {}, "artemis": {}, "aphrodite": {},
	"hera": {}, "poseidon": {}, "hades": {}, "hermes": {}, "ares": {},
	"dionysus": {}, "demeter": {}, "persephone": {},
	// Norse
	"odin": {}, "thor": {}, "freya": {}, "loki": {}, "frigg": {},
	// Egyptian and other
	"isis": {}, "osiris": {}, "ra": {}, "anubis": {},
}

// Brief phrasings that activate the deity filter.
var religiousAvoidPhrases = []string{
	"avoid religious", "no religious", "avoid deity", "no deity",
	"avoid god", "no god names", "not religious", "avoid strong religious",
}

// DeityFilter rejects names from the deity set when the profile or brief
// asks to avoid religious names. Otherwise it allows everything.
func DeityFilter(profile *schema.SessionProfile) Predicate {
	avoid := false
	for _, veto := range profile.HardVetoes() {
		v := strings.ToLower(veto)
		if strings.Contains(v, "religious") || strings.Contains(v, "deity") || strings.Contains(v, "god") {
			avoid = true
			break
		}
	}
	if !avoid {
		brief := strings.ToLower(profile.RawBrief)
		for _, phrase := range religiousAvoidPhrases {
			if strings.Contains(brief, phrase) {
				avoid = true
				break
			}
		}
	}
	return func(name string) bool {
		if !avoid {
			return true
		}
		_, hit := deityNames[Normalize(name)]
		return !hit
	}
}
