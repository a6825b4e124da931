package schema

// Candidate is a proposed name prior to research, produced by the generator
// stage. Lane names the stylistic grouping the generator filed it under.
type Candidate struct {
	Name       string   `json:"name"`
	Lane       string   `json:"lane"`
	Rationale  string   `json:"rationale"`
	ThemeLinks []string `json:"theme_links"`
}

// Nicknames splits nickname analysis by intent.
type Nicknames struct {
	Intended []string `json:"intended,omitempty"`
	Likely   []string `json:"likely,omitempty"`
	Avoid    []string `json:"avoid,omitempty"`
}

// Popularity summarises rank data for a name. Rank pointers distinguish
// "unranked" from "rank unknown".
type Popularity struct {
	LatestRank *int   `json:"latest_rank,omitempty"`
	PeakRank   *int   `json:"peak_rank,omitempty"`
	TrendNotes string `json:"trend_notes,omitempty"`
}

// NotableBearers lists people and characters associated with a name.
type NotableBearers struct {
	Positive  []string `json:"positive,omitempty"`
	Fictional []string `json:"fictional,omitempty"`
	Negative  []string `json:"negative,omitempty"`
}

// SurnameFit describes how a first name flows with the family surname.
type SurnameFit struct {
	Surname string `json:"surname,omitempty"`
	Notes   string `json:"notes"`
}

// SibsetFit describes how a name sits inside the existing sibling set.
type SibsetFit struct {
	Siblings []string `json:"siblings,omitempty"`
	Notes    string   `json:"notes"`
}

// Combo is a first + middle pairing with its justification.
type Combo struct {
	First  string `json:"first"`
	Middle string `json:"middle"`
	Why    string `json:"why"`
}

// NameCard is the fully-researched dossier for a single candidate, produced
// by the researcher stage. Only name, ipa, and syllables are required; the
// rest is best-effort.
type NameCard struct {
	Name             string          `json:"name"`
	IPA              string          `json:"ipa"`
	Syllables        int             `json:"syllables"`
	Meaning          string          `json:"meaning,omitempty"`
	Origins          []string        `json:"origins,omitempty"`
	Variants         []string        `json:"variants,omitempty"`
	Nicknames        *Nicknames      `json:"nicknames,omitempty"`
	Popularity       *Popularity     `json:"popularity,omitempty"`
	NotableBearers   *NotableBearers `json:"notable_bearers,omitempty"`
	CulturalNotes    []string        `json:"cultural_notes,omitempty"`
	SurnameFit       *SurnameFit     `json:"surname_fit,omitempty"`
	SibsetFit        *SibsetFit      `json:"sibset_fit,omitempty"`
	HonorMapping     []string        `json:"honor_mapping,omitempty"`
	ComboSuggestions []Combo         `json:"combo_suggestions,omitempty"`
	Eliminations     []string        `json:"eliminations,omitempty"`
	ResearchLog      []string        `json:"research_log,omitempty"`
}
