// Package schema defines the data model shared by the pipeline stages and
// validates stage outputs against embedded JSON Schemas. The shapes are
// deliberately optional-heavy: model replies omit fields freely and the
// validators only reject structural violations, not missing detail.
package schema

// MiddleNames carries pre-selected middle names per gender.
type MiddleNames struct {
	Boy  string `json:"boy,omitempty"`
	Girl string `json:"girl,omitempty"`
}

// Family groups the family-context portion of a profile: surname, sibling
// set, names to honor, and initial constraints.
type Family struct {
	Surname                string       `json:"surname,omitempty"`
	Siblings               []string     `json:"siblings,omitempty"`
	HonorNames             []string     `json:"honor_names,omitempty"`
	SpecialInitialsInclude []string     `json:"special_initials_include,omitempty"`
	SpecialInitialsAvoid   []string     `json:"special_initials_avoid,omitempty"`
	MiddleNames            *MiddleNames `json:"middle_names,omitempty"`
}

// Preferences captures stylistic constraints extracted from the brief.
type Preferences struct {
	StyleLanes          []string `json:"style_lanes,omitempty"`
	AvoidEndings        []string `json:"avoid_endings,omitempty"`
	NicknameTolerance   string   `json:"nickname_tolerance,omitempty"` // low | medium | high
	LengthPref          string   `json:"length_pref,omitempty"`        // short | short-to-medium | any
	CulturalBounds      []string `json:"cultural_bounds,omitempty"`
	PhoneticConstraints []string `json:"phonetic_constraints,omitempty"`
	FrozenCallback      *bool    `json:"frozen_callback,omitempty"`
}

// Vetoes lists names the family has ruled out. Hard vetoes are enforced by
// deterministic validators; soft vetoes are advisory to the model only.
type Vetoes struct {
	Hard []string `json:"hard,omitempty"`
	Soft []string `json:"soft,omitempty"`
}

// SessionProfile is the structured form of a client brief, produced by the
// brief-parser stage. RawBrief always echoes the original input verbatim.
type SessionProfile struct {
	RawBrief             string       `json:"raw_brief"`
	Family               *Family      `json:"family,omitempty"`
	Preferences          *Preferences `json:"preferences,omitempty"`
	Themes               []string     `json:"themes,omitempty"`
	Vetoes               *Vetoes      `json:"vetoes,omitempty"`
	Region               []string     `json:"region,omitempty"`
	TargetPopularityBand string       `json:"target_popularity_band,omitempty"`
	Comments             string       `json:"comments,omitempty"`
}

// Siblings returns the sibling list or nil when the profile has no family
// section.
func (p *SessionProfile) Siblings() []string {
	if p == nil || p.Family == nil {
		return nil
	}
	return p.Family.Siblings
}

// HardVetoes returns the hard-veto list or nil.
func (p *SessionProfile) HardVetoes() []string {
	if p == nil || p.Vetoes == nil {
		return nil
	}
	return p.Vetoes.Hard
}

// Surname returns the family surname or the empty string.
func (p *SessionProfile) Surname() string {
	if p == nil || p.Family == nil {
		return ""
	}
	return p.Family.Surname
}
