package schema

import (
	"encoding/json"
	"strings"
)

// Finalist is a selected name with the selector's reasoning and an optional
// first+middle combo.
type Finalist struct {
	Name  string `json:"name"`
	Why   string `json:"why"`
	Combo *Combo `json:"combo,omitempty"`
}

// UnmarshalJSON tolerates the combo arriving as a bare string. Some models
// flatten "First Middle - why" instead of emitting the object form.
func (f *Finalist) UnmarshalJSON(data []byte) error {
	type alias struct {
		Name  string          `json:"name"`
		Why   string          `json:"why"`
		Combo json.RawMessage `json:"combo"`
	}
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	f.Name = a.Name
	f.Why = a.Why
	f.Combo = nil
	if len(a.Combo) == 0 || string(a.Combo) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(a.Combo, &s); err == nil {
		f.Combo = parseComboString(s)
		return nil
	}
	var c Combo
	if err := json.Unmarshal(a.Combo, &c); err != nil {
		return err
	}
	f.Combo = &c
	return nil
}

// parseComboString recovers a Combo from the "First Middle - why" string
// form. Unparseable strings keep the whole text as the first name so the
// content is never silently dropped.
func parseComboString(s string) *Combo {
	parts := strings.SplitN(s, " - ", 2)
	if len(parts) == 2 {
		names := strings.SplitN(strings.TrimSpace(parts[0]), " ", 2)
		if len(names) == 2 {
			return &Combo{First: names[0], Middle: names[1], Why: strings.TrimSpace(parts[1])}
		}
	}
	return &Combo{First: s}
}

// NearMiss is a runner-up with the reason it fell short.
type NearMiss struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ExpertSelection is the selector stage output. Finalists and near-misses
// are disjoint by case-insensitive name; EnforceDisjoint restores the
// invariant when a model returns a name in both lists.
type ExpertSelection struct {
	Finalists  []Finalist `json:"finalists"`
	NearMisses []NearMiss `json:"near_misses"`
}

// DedupeNearMisses removes duplicate near-misses by case-insensitive name,
// keeping the first occurrence.
func (s *ExpertSelection) DedupeNearMisses() {
	seen := make(map[string]struct{}, len(s.NearMisses))
	out := s.NearMisses[:0]
	for _, m := range s.NearMisses {
		key := strings.ToLower(strings.TrimSpace(m.Name))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	s.NearMisses = out
}

// EnforceDisjoint drops near-misses whose name also appears among the
// finalists (case-insensitive). A name in both lists stays a finalist.
// It returns the names that were removed.
func (s *ExpertSelection) EnforceDisjoint() []string {
	finalists := make(map[string]struct{}, len(s.Finalists))
	for _, f := range s.Finalists {
		finalists[strings.ToLower(strings.TrimSpace(f.Name))] = struct{}{}
	}
	var removed []string
	out := s.NearMisses[:0]
	for _, m := range s.NearMisses {
		if _, ok := finalists[strings.ToLower(strings.TrimSpace(m.Name))]; ok {
			removed = append(removed, m.Name)
			continue
		}
		out = append(out, m)
	}
	s.NearMisses = out
	return removed
}
