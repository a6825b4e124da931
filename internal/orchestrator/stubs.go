package orchestrator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/namazing/namazing/internal/schema"
	"github.com/namazing/namazing/internal/tools"
)

// Deterministic fallbacks for every stage. Each produces schema-valid output
// from the inputs alone so an offline run still exercises the full pipeline.

const defaultRegion = "US"

// Lane sets the stub generator draws from. Insertion order matters for
// deterministic candidate ordering, so lanes are slices rather than maps.
var sampleLanesGirl = []struct {
	Lane  string
	Names []string
}{
	{"traditional feminine", []string{"Eleanor", "Margot", "Vivienne", "Helena", "Clara"}},
	{"literary", []string{"Isolde", "Beatrice", "Ophelia", "Rowena", "Celeste"}},
	{"nature", []string{"Iris", "Willow", "Juniper", "Wren", "Marigold"}},
	{"modern-classic", []string{"Avery", "Emery", "Sloane", "Quinn", "Maren"}},
	{"heritage", []string{"Liora", "Mireille", "Annelise", "Sabine", "Selene"}},
}

var sampleLanesBoy = []struct {
	Lane  string
	Names []string
}{
	{"classic masculine", []string{"James", "William", "Thomas", "Henry", "Arthur"}},
	{"literary", []string{"Atticus", "Holden", "Sawyer", "Finn", "Sebastian"}},
	{"nature", []string{"River", "Rowan", "Jasper", "August", "Silas"}},
	{"modern-classic", []string{"Hudson", "Asher", "Milo", "Ezra", "Julian"}},
	{"heritage", []string{"Killian", "Otto", "Maddox", "Merrick", "Malcolm"}},
}

var (
	surnameRE  = regexp.MustCompile(`(?i)surname\s*:?\s*([A-Za-z'-]+)`)
	siblingsRE = regexp.MustCompile(`(?i)siblings?\s*:?\s*([A-Za-z ,]+)`)
	honorRE    = regexp.MustCompile(`(?i)honou?r\s*names?\s*:?\s*([A-Za-z ,]+)`)
	middleRE   = regexp.MustCompile(`middle\s*names?\s*(?:would|should|could|is|to)\s*be\s*([A-Z][a-z]+)`)
	initialsRE = regexp.MustCompile(`(?i)initials?\s*:?\s*([A-Z ,]+)`)
	vetoRE     = regexp.MustCompile(`(?i)vetoed.*?(?:include|are|:)\s*([A-Za-z ,]+)`)
	myVetoRE   = regexp.MustCompile(`(?i)I've\s*vetoed\s*([A-Za-z]+)`)
	boyRE      = regexp.MustCompile(`(?i)\b(boy|son|brother|male)\b`)
	girlRE     = regexp.MustCompile(`(?i)\b(girl|daughter|sister|female)\b`)
	likedRE    = regexp.MustCompile(`(?i)so\s*far\s*we\s*have\s*:?\s*([A-Za-z ,]+)`)
	nameWordRE = regexp.MustCompile(`^[A-Z][a-z]+$`)
)

func splitList(raw string) []string {
	raw = regexp.MustCompile(`\band\b`).ReplaceAllString(raw, ",")
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// stubProfile derives a profile from the brief with regex probes: explicit
// labels (surname:, siblings:, honour names:, initials:), sentence forms for
// middle names and vetoes, and gender keywords. When both genders appear
// ("have a boy, expecting a girl") girl wins.
func stubProfile(brief string) *schema.SessionProfile {
	isBoy := boyRE.MatchString(brief)
	if girlRE.MatchString(brief) {
		isBoy = false
	}

	family := &schema.Family{}
	if m := surnameRE.FindStringSubmatch(brief); m != nil {
		family.Surname = strings.TrimSpace(m[1])
	}
	if m := siblingsRE.FindStringSubmatch(brief); m != nil {
		family.Siblings = splitList(m[1])
	}
	if m := honorRE.FindStringSubmatch(brief); m != nil {
		family.HonorNames = splitList(m[1])
	}
	if m := middleRE.FindStringSubmatch(brief); m != nil {
		family.HonorNames = append(family.HonorNames, m[1])
	}
	if m := initialsRE.FindStringSubmatch(brief); m != nil {
		for _, part := range regexp.MustCompile(`[,\s]+`).Split(m[1], -1) {
			if p := strings.TrimSpace(part); p != "" {
				family.SpecialInitialsInclude = append(family.SpecialInitialsInclude, p)
			}
		}
	}

	var hardVetoes []string
	if m := vetoRE.FindStringSubmatch(brief); m != nil {
		hardVetoes = append(hardVetoes, splitList(m[1])...)
	}
	if m := myVetoRE.FindStringSubmatch(brief); m != nil {
		hardVetoes = append(hardVetoes, m[1])
	}

	lanes := sampleLanesGirl
	if isBoy {
		lanes = sampleLanesBoy
	}
	styleLanes := make([]string, 0, len(lanes))
	for _, l := range lanes {
		styleLanes = append(styleLanes, l.Lane)
	}

	gender := "girl"
	if isBoy {
		gender = "boy"
	}
	profile := &schema.SessionProfile{
		RawBrief: brief,
		Family:   family,
		Preferences: &schema.Preferences{
			StyleLanes:        styleLanes,
			LengthPref:        "short-to-medium",
			NicknameTolerance: "medium",
		},
		Region:   []string{defaultRegion},
		Comments: fmt.Sprintf("Stubbed profile derived heuristically. Detected gender: %s.", gender),
	}
	if len(hardVetoes) > 0 {
		profile.Vetoes = &schema.Vetoes{Hard: hardVetoes}
	}
	return profile
}

// stubCandidates fills the lanes with sample names. Names the family already
// likes ("so far we have Alice, Beatrix and Cora") lead the list in a
// user-favorite lane.
func stubCandidates(profile *schema.SessionProfile) []schema.Candidate {
	isGirl := false
	if profile != nil && profile.Preferences != nil && len(profile.Preferences.StyleLanes) > 0 {
		for _, lane := range profile.Preferences.StyleLanes {
			if lane == "traditional feminine" {
				isGirl = true
			}
		}
	} else if profile != nil && profile.RawBrief != "" {
		if girlRE.MatchString(profile.RawBrief) {
			isGirl = true
		}
	}

	var out []schema.Candidate
	if profile != nil {
		if m := likedRE.FindStringSubmatch(profile.RawBrief); m != nil {
			seen := make(map[string]struct{})
			for _, name := range splitList(m[1]) {
				if !nameWordRE.MatchString(name) {
					continue
				}
				if _, dup := seen[name]; dup {
					continue
				}
				seen[name] = struct{}{}
				out = append(out, schema.Candidate{
					Name:       name,
					Lane:       "user-favorite",
					Rationale:  "Explicitly mentioned as a contender in the brief.",
					ThemeLinks: []string{},
				})
			}
		}
	}

	lanes := sampleLanesBoy
	if isGirl {
		lanes = sampleLanesGirl
	}
	for _, l := range lanes {
		for _, name := range l.Names {
			out = append(out, schema.Candidate{
				Name:       name,
				Lane:       l.Lane,
				Rationale:  fmt.Sprintf("%s carries a %s energy that suits the brief.", name, l.Lane),
				ThemeLinks: []string{},
			})
		}
	}
	return out
}

func honorCombos(name string, honorNames []string) []schema.Combo {
	if len(honorNames) == 0 {
		return []schema.Combo{
			{First: name, Middle: "Elise", Why: "Balances cadence with a nod to classic elegance."},
			{First: name, Middle: "Ren", Why: "Honors Irene-like sounds while keeping things light."},
		}
	}
	if len(honorNames) > 3 {
		honorNames = honorNames[:3]
	}
	out := make([]schema.Combo, 0, len(honorNames))
	for _, source := range honorNames {
		out = append(out, schema.Combo{
			First:  name,
			Middle: source,
			Why:    fmt.Sprintf("Directly honors %s while keeping rhythm gentle.", source),
		})
	}
	return out
}

// stubCard builds a NameCard from the phonetic heuristics and whatever family
// context the profile carries.
func stubCard(name, lane string, profile *schema.SessionProfile) *schema.NameCard {
	syllables := tools.CountSyllables(name)

	var honorNames []string
	if profile.Family != nil {
		honorNames = profile.Family.HonorNames
	}
	surname := profile.Surname()
	if surname == "" {
		surname = "family surname"
	}
	siblings := profile.Siblings()
	sibsetNotes := "No siblings listed; assuming flexible fit."
	if len(siblings) > 0 {
		sibsetNotes = fmt.Sprintf("%s complements %s without repeating initials.", name, strings.Join(siblings, ", "))
	}

	honorMapping := make([]string, 0, len(honorNames))
	for _, h := range honorNames {
		honorMapping = append(honorMapping, fmt.Sprintf("%s -> %s", h, name))
	}

	return &schema.NameCard{
		Name:      name,
		IPA:       tools.RoughIPA(name),
		Syllables: syllables,
		Meaning:   fmt.Sprintf("%s inspired meaning placeholder for %s.", lane, name),
		Origins:   []string{"Stub"},
		Variants:  []string{name + "a", name + "e"},
		Nicknames: &schema.Nicknames{
			Intended: []string{prefix(name, 3)},
			Likely:   []string{prefix(name, 4)},
			Avoid:    []string{},
		},
		Popularity: &schema.Popularity{TrendNotes: "classic and steady (assumed)"},
		NotableBearers: &schema.NotableBearers{
			Positive: []string{
				name + " Example, pioneering artist",
				name + " Fictional, beloved literary heroine",
			},
			Fictional: []string{name + " from a sample novel"},
		},
		CulturalNotes: []string{"Cultural context requires verification; replace with live research output."},
		SurnameFit: &schema.SurnameFit{
			Surname: surname,
			Notes:   fmt.Sprintf("%s shares a %d-syllable cadence with the surname, offering smooth flow.", name, syllables),
		},
		SibsetFit: &schema.SibsetFit{
			Siblings: siblings,
			Notes:    sibsetNotes,
		},
		HonorMapping:     honorMapping,
		ComboSuggestions: honorCombos(name, honorNames),
		Eliminations:     []string{},
		ResearchLog: []string{
			"Stubbed: generated via static data.",
			"Replace with live research once agents are enabled.",
		},
	}
}

func prefix(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}

// stubSelection promotes the first eight cards to finalists and the next
// four to near-misses.
func stubSelection(cards []schema.NameCard) *schema.ExpertSelection {
	sel := &schema.ExpertSelection{
		Finalists:  []schema.Finalist{},
		NearMisses: []schema.NearMiss{},
	}
	for i, card := range cards {
		if i < 8 {
			meaning := card.Meaning
			if meaning == "" {
				meaning = "thoughtful"
			}
			f := schema.Finalist{
				Name: card.Name,
				Why:  fmt.Sprintf("%s balances the brief with its %s tone and easy cadence with the surname.", card.Name, meaning),
			}
			if len(card.ComboSuggestions) > 0 {
				combo := card.ComboSuggestions[0]
				f.Combo = &combo
			}
			sel.Finalists = append(sel.Finalists, f)
		} else if i < 12 {
			sel.NearMisses = append(sel.NearMisses, schema.NearMiss{
				Name:   card.Name,
				Reason: fmt.Sprintf("%s is compelling but overlaps with another finalist in style or initial.", card.Name),
			})
		}
	}
	return sel
}

// stubReport writes a warm, fixed-shape consultation around the selection.
func stubReport(profile *schema.SessionProfile, selection *schema.ExpertSelection) *schema.Report {
	var combos []schema.Combo
	for _, f := range selection.Finalists {
		if f.Combo != nil {
			combos = append(combos, *f.Combo)
		}
	}

	surname := profile.Surname()
	if surname == "" {
		surname = "your family"
	}

	summary := fmt.Sprintf("We loved diving into your naming journey. Based on your style preferences and family traditions, we've curated a collection of names that feel both timeless and distinctly *you*. Each name has been carefully considered for how it sounds with %s, and we think you'll find some real gems here.", surname)

	markdown := fmt.Sprintf(`# Your Personalized Name Consultation

%s

## Your Finalists

Based on your preferences, we've selected names that balance tradition with modern appeal. Each finalist has been evaluated for meaning, sound, and compatibility with your family's existing names.

## Things to Consider

- Nicknames are inferred; validate with the family for preference.
- Popularity trends are qualitative placeholders until SSA integration lands.
- Consider how each name flows with your chosen middle name combinations.

## Tie-Break Tips

- Say each finalist aloud with the sibling set and surname.
- Consider monogram balance with honour initials.
- Sleep on it; the right name often reveals itself over time.
`, summary)

	return &schema.Report{
		Summary:    summary,
		Markdown:   markdown,
		LovedNames: []string{},
		Finalists:  selection.Finalists,
		Combos:     combos,
		Tradeoffs: []string{
			"Nicknames are inferred; validate with the family for preference.",
			"Popularity trends are qualitative placeholders until SSA integration lands.",
		},
		TieBreakTips: []string{
			"Say each finalist aloud with the sibling set and surname.",
			"Consider monogram balance with honour initials.",
		},
	}
}
