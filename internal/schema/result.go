package schema

import "strings"

// Report is the final consultation output composed by the report-composer.
type Report struct {
	Summary      string     `json:"summary"`
	Markdown     string     `json:"markdown,omitempty"`
	LovedNames   []string   `json:"loved_names,omitempty"`
	Finalists    []Finalist `json:"finalists"`
	Combos       []Combo    `json:"combos,omitempty"`
	Tradeoffs    []string   `json:"tradeoffs,omitempty"`
	TieBreakTips []string   `json:"tie_break_tips,omitempty"`
}

// RunResult bundles every stage output for a completed run.
type RunResult struct {
	Profile    *SessionProfile  `json:"profile"`
	Candidates []NameCard       `json:"candidates"`
	Selection  *ExpertSelection `json:"selection"`
	Report     *Report          `json:"report"`
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
