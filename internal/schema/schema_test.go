package schema

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeProfile(t *testing.T) {
	v := map[string]any{
		"raw_brief": "a girl, surname Quist",
		"family": map[string]any{
			"surname":  "Quist",
			"siblings": []any{"Nora"},
		},
		"preferences": map[string]any{
			"style_lanes":        []any{"nature"},
			"nickname_tolerance": "medium",
		},
		"vetoes": map[string]any{"hard": []any{"Margot"}},
		"region": []any{"US"},
	}
	p, err := DecodeProfile(v)
	if err != nil {
		t.Fatalf("DecodeProfile: %v", err)
	}
	if p.RawBrief != "a girl, surname Quist" || p.Surname() != "Quist" {
		t.Fatalf("profile = %+v", p)
	}
	if got := p.HardVetoes(); len(got) != 1 || got[0] != "Margot" {
		t.Fatalf("hard vetoes = %v", got)
	}
}

func TestDecodeProfileMissingRawBrief(t *testing.T) {
	_, err := DecodeProfile(map[string]any{"comments": "no brief"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestDecodeProfileWrongType(t *testing.T) {
	_, err := DecodeProfile(map[string]any{
		"raw_brief": "ok",
		"family":    "not an object",
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestDecodeNameCard(t *testing.T) {
	v := map[string]any{
		"name":      "Wren",
		"ipa":       "/Wren/",
		"syllables": float64(1),
		"origins":   []any{"English"},
		"popularity": map[string]any{
			"latest_rank": float64(312),
			"trend_notes": "rising",
		},
	}
	card, err := DecodeNameCard(v)
	if err != nil {
		t.Fatalf("DecodeNameCard: %v", err)
	}
	if card.Name != "Wren" || card.Syllables != 1 {
		t.Fatalf("card = %+v", card)
	}
	if card.Popularity == nil || card.Popularity.LatestRank == nil || *card.Popularity.LatestRank != 312 {
		t.Fatalf("popularity = %+v", card.Popularity)
	}
}

func TestDecodeNameCardMissingRequired(t *testing.T) {
	_, err := DecodeNameCard(map[string]any{"name": "Wren"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError for missing ipa/syllables", err)
	}
}

func TestFinalistComboAsString(t *testing.T) {
	var f Finalist
	if err := json.Unmarshal([]byte(`{"name":"Wren","why":"crisp","combo":"Wren Thomas - honors grandpa"}`), &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if f.Combo == nil || f.Combo.First != "Wren" || f.Combo.Middle != "Thomas" || f.Combo.Why != "honors grandpa" {
		t.Fatalf("combo = %+v", f.Combo)
	}
}

func TestFinalistComboObjectAndNull(t *testing.T) {
	var f Finalist
	if err := json.Unmarshal([]byte(`{"name":"A","why":"w","combo":{"first":"A","middle":"B","why":"c"}}`), &f); err != nil {
		t.Fatalf("unmarshal object combo: %v", err)
	}
	if f.Combo == nil || f.Combo.Middle != "B" {
		t.Fatalf("combo = %+v", f.Combo)
	}
	if err := json.Unmarshal([]byte(`{"name":"A","why":"w","combo":null}`), &f); err != nil {
		t.Fatalf("unmarshal null combo: %v", err)
	}
	if f.Combo != nil {
		t.Fatalf("combo = %+v, want nil", f.Combo)
	}
}

func TestDedupeNearMisses(t *testing.T) {
	s := &ExpertSelection{
		NearMisses: []NearMiss{
			{Name: "Clara", Reason: "first"},
			{Name: "clara ", Reason: "dup"},
			{Name: "Iris", Reason: "keep"},
		},
	}
	s.DedupeNearMisses()
	if len(s.NearMisses) != 2 || s.NearMisses[0].Reason != "first" || s.NearMisses[1].Name != "Iris" {
		t.Fatalf("near misses = %+v", s.NearMisses)
	}
}

func TestEnforceDisjoint(t *testing.T) {
	s := &ExpertSelection{
		Finalists: []Finalist{{Name: "Wren"}, {Name: "Beatrice"}},
		NearMisses: []NearMiss{
			{Name: "wren", Reason: "duped"},
			{Name: "Clara", Reason: "keep"},
		},
	}
	removed := s.EnforceDisjoint()
	if len(removed) != 1 || removed[0] != "wren" {
		t.Fatalf("removed = %v", removed)
	}
	if len(s.NearMisses) != 1 || s.NearMisses[0].Name != "Clara" {
		t.Fatalf("near misses = %+v", s.NearMisses)
	}
	if len(s.Finalists) != 2 {
		t.Fatalf("finalists must be untouched, got %+v", s.Finalists)
	}
}

func TestDecodeSelection(t *testing.T) {
	v := map[string]any{
		"finalists": []any{
			map[string]any{"name": "Wren", "why": "crisp", "combo": "Wren Mae - flows"},
		},
		"near_misses": []any{
			map[string]any{"name": "Clara", "reason": "close to sibling"},
		},
	}
	sel, err := DecodeSelection(v)
	if err != nil {
		t.Fatalf("DecodeSelection: %v", err)
	}
	if sel.Finalists[0].Combo == nil || sel.Finalists[0].Combo.Middle != "Mae" {
		t.Fatalf("combo = %+v", sel.Finalists[0].Combo)
	}
}

func TestSanityRemovalSet(t *testing.T) {
	r := &SanityCheckResult{
		FlaggedNames: []FlaggedName{
			{Name: "Margot", Severity: SeverityHigh, Recommendation: RecommendRemove},
			{Name: "Wren", Severity: SeverityHigh, Recommendation: RecommendKeepWithWarning},
			{Name: "Iris", Severity: SeverityLow, Recommendation: RecommendRemove},
		},
	}
	set := r.RemovalSet()
	if len(set) != 1 {
		t.Fatalf("removal set = %v, want only high+remove", set)
	}
	if _, ok := set["margot"]; !ok {
		t.Fatal("margot must be in the removal set, normalized")
	}
}

func TestDecodeSanityCheck(t *testing.T) {
	v := map[string]any{
		"overall_pass": false,
		"flagged_names": []any{
			map[string]any{
				"name":           "Margot",
				"violation":      "explicitly vetoed in brief",
				"severity":       "high",
				"recommendation": "remove",
			},
		},
		"approved_names": []any{"Wren"},
		"notes":          "one veto slipped through",
	}
	r, err := DecodeSanityCheck(v)
	if err != nil {
		t.Fatalf("DecodeSanityCheck: %v", err)
	}
	if r.OverallPass || len(r.FlaggedNames) != 1 || r.FlaggedNames[0].Severity != SeverityHigh {
		t.Fatalf("result = %+v", r)
	}
}
