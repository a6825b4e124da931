package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/namazing/namazing/internal/conc"
	"github.com/namazing/namazing/internal/llm"
	"github.com/namazing/namazing/internal/prompts"
	"github.com/namazing/namazing/internal/schema"
	"github.com/namazing/namazing/internal/tools"
	"github.com/namazing/namazing/internal/validators"
)

// Artificial stub delays keep event ordering observable in offline runs.
const (
	stubStageDelay    = 150 * time.Millisecond
	stubResearchDelay = 120 * time.Millisecond
)

func stubSleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// fatalStageErr reports live-path errors that must fail the run even when
// stub fallback is allowed. A missing prompt file is an operator mistake,
// not a backend outage.
func fatalStageErr(err error) bool {
	return errors.Is(err, prompts.ErrNotFound)
}

// callJSONAgent loads a prompt, invokes the model in JSON mode, and extracts
// the reply's JSON document.
func (s *Service) callJSONAgent(ctx context.Context, slug, userInput string, temperature float32) (any, error) {
	p, err := s.cfg.Prompts.Get(slug)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(p.Instruction + "\n\n" + userInput)
	raw, err := s.cfg.Client.Call(ctx, llm.Request{
		System:      p.System,
		Messages:    []llm.Message{{Role: "user", Content: content}},
		JSONMode:    true,
		Temperature: temperature,
	})
	if err != nil {
		return nil, err
	}
	return llm.ExtractJSON(raw)
}

// --- Stage 1: brief parser ---

func (s *Service) runBriefParser(ctx context.Context, rec *RunRecord) (*schema.SessionProfile, error) {
	rec.emit(schema.Event{T: schema.EventActivity, Agent: "brief-parser", Msg: "parsing brief"})

	if s.stubsActive() {
		if !s.cfg.AllowStubs {
			return nil, ErrStubsDisabled
		}
		stubSleep(ctx, stubStageDelay)
		profile := stubProfile(rec.Brief)
		rec.emit(schema.Event{T: schema.EventResult, Agent: "brief-parser", Payload: profile})
		return profile, nil
	}

	profile, err := s.liveBriefParser(ctx, rec)
	if err != nil {
		if !s.cfg.AllowStubs || fatalStageErr(err) {
			return nil, err
		}
		rec.emit(schema.Event{T: schema.EventLog, Agent: "brief-parser",
			Msg: fmt.Sprintf("Falling back to stubbed profile due to error: %v", err)})
		profile = stubProfile(rec.Brief)
	}
	rec.emit(schema.Event{T: schema.EventResult, Agent: "brief-parser", Payload: profile})
	return profile, nil
}

func (s *Service) liveBriefParser(ctx context.Context, rec *RunRecord) (*schema.SessionProfile, error) {
	userInput := fmt.Sprintf("Client Brief:\n%s\n\nRespond with JSON following SessionProfile schema.", rec.Brief)
	parsed, err := s.callJSONAgent(ctx, "brief-parser", userInput, 0.3)
	if err != nil {
		return nil, err
	}
	// The model never sees an authoritative raw_brief; restore it before
	// validation so the echo invariant holds.
	if m, ok := parsed.(map[string]any); ok {
		m["raw_brief"] = rec.Brief
	}
	return schema.DecodeProfile(parsed)
}

// --- Stage 2: name generator ---

func (s *Service) runNameGenerator(ctx context.Context, rec *RunRecord, profile *schema.SessionProfile) ([]schema.Candidate, error) {
	rec.emit(schema.Event{T: schema.EventActivity, Agent: "generator", Msg: "creating name lanes"})

	limit := MaxSerialNames
	if rec.Mode == ModeParallel {
		limit = MaxParallelNames
	}

	var candidates []schema.Candidate
	if s.stubsActive() {
		if !s.cfg.AllowStubs {
			return nil, ErrStubsDisabled
		}
		stubSleep(ctx, stubStageDelay)
		candidates = stubCandidates(profile)
	} else {
		var err error
		candidates, err = s.liveNameGenerator(ctx, profile)
		if err != nil {
			if !s.cfg.AllowStubs || fatalStageErr(err) {
				return nil, err
			}
			rec.emit(schema.Event{T: schema.EventLog, Agent: "generator",
				Msg: fmt.Sprintf("Falling back to stubbed candidate list due to error: %v", err)})
			candidates = stubCandidates(profile)
		}
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	before := len(candidates)
	candidates = validators.FilterCandidates(candidates, profile, func(msg string) {
		rec.emit(schema.Event{T: schema.EventLog, Agent: "generator", Msg: msg})
	})
	if removed := before - len(candidates); removed > 0 {
		rec.emit(schema.Event{T: schema.EventLog, Agent: "generator",
			Msg: fmt.Sprintf("Validators removed %d candidate(s) that violated the brief's constraints.", removed)})
	}

	rec.emit(schema.Event{T: schema.EventPartial, Agent: "generator", Field: "candidates", Value: candidates})
	rec.emit(schema.Event{T: schema.EventResult, Agent: "generator", Payload: candidates})
	return candidates, nil
}

func (s *Service) liveNameGenerator(ctx context.Context, profile *schema.SessionProfile) ([]schema.Candidate, error) {
	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return nil, err
	}
	parsed, err := s.callJSONAgent(ctx, "name-generator", "SessionProfile JSON:\n"+string(profileJSON), 0.6)
	if err != nil {
		return nil, err
	}
	return parseCandidates(parsed)
}

// parseCandidates maps a generator reply onto candidates. Models return
// either a bare array or {"candidates": [...]}; missing string fields
// default to empty. Entries that are not JSON objects carry no usable
// fields and are dropped instead of mapped to nameless candidates.
func parseCandidates(parsed any) ([]schema.Candidate, error) {
	items, ok := parsed.([]any)
	if !ok {
		if m, isMap := parsed.(map[string]any); isMap {
			items, ok = m["candidates"].([]any)
		}
		if !ok {
			return nil, fmt.Errorf("generator: expected array of candidates, got %T", parsed)
		}
	}

	out := make([]schema.Candidate, 0, len(items))
	for _, item := range items {
		m, isMap := item.(map[string]any)
		if !isMap {
			continue
		}
		c := schema.Candidate{
			Name:       stringField(m, "name"),
			Lane:       stringField(m, "lane"),
			Rationale:  stringField(m, "rationale"),
			ThemeLinks: []string{},
		}
		if links, isList := m["theme_links"].([]any); isList {
			for _, l := range links {
				if ls, isStr := l.(string); isStr {
					c.ThemeLinks = append(c.ThemeLinks, ls)
				}
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// --- Stage 3: researcher ---

func (s *Service) runResearch(ctx context.Context, rec *RunRecord, profile *schema.SessionProfile, candidates []schema.Candidate) ([]schema.NameCard, error) {
	region := defaultRegion
	if len(profile.Region) > 0 {
		region = profile.Region[0]
	}
	concurrency := 1
	if rec.Mode == ModeParallel {
		concurrency = s.cfg.Concurrency
	}

	cards, err := conc.Map(ctx, candidates, concurrency, func(ctx context.Context, candidate schema.Candidate, _ int) (schema.NameCard, error) {
		return s.researchCandidate(ctx, rec, profile, candidate, region)
	})
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (s *Service) researchCandidate(ctx context.Context, rec *RunRecord, profile *schema.SessionProfile, candidate schema.Candidate, region string) (schema.NameCard, error) {
	rec.emit(schema.Event{T: schema.EventStart, Agent: "researcher", Name: candidate.Name})

	emitCard := func(card *schema.NameCard) schema.NameCard {
		rec.emit(schema.Event{T: schema.EventPartial, Agent: "researcher", Name: candidate.Name, Field: "card", Value: card})
		rec.emit(schema.Event{T: schema.EventDone, Agent: "researcher", Name: candidate.Name})
		return *card
	}

	if s.stubsActive() {
		if !s.cfg.AllowStubs {
			return schema.NameCard{}, ErrStubsDisabled
		}
		stubSleep(ctx, stubResearchDelay)
		return emitCard(stubCard(candidate.Name, candidate.Lane, profile)), nil
	}

	card, err := s.liveResearch(ctx, profile, candidate, region)
	if err != nil {
		if !s.cfg.AllowStubs || fatalStageErr(err) {
			return schema.NameCard{}, err
		}
		rec.emit(schema.Event{T: schema.EventLog, Agent: "researcher", Name: candidate.Name,
			Msg: fmt.Sprintf("Researcher fell back to stub data: %T: %v", err, err)})
		return emitCard(stubCard(candidate.Name, candidate.Lane, profile)), nil
	}
	return emitCard(card), nil
}

func (s *Service) liveResearch(ctx context.Context, profile *schema.SessionProfile, candidate schema.Candidate, region string) (*schema.NameCard, error) {
	payload := map[string]any{
		"sessionProfile": profile,
		"candidate":      candidate,
		"tools":          s.gatherResearchTools(ctx, candidate.Name, region, profile.Surname()),
		"guidance": map[string]any{
			"note": "When you need fresh facts, search the web and cite sources conversationally.",
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	parsed, err := s.callJSONAgent(ctx, "researcher", string(raw), 0.4)
	if err != nil {
		return nil, err
	}
	return schema.DecodeNameCard(parsed)
}

// gatherResearchTools collects best-effort tool outputs for a candidate. The
// researcher prompt must tolerate missing fields; failures degrade to stub
// placeholders inside the individual tools.
func (s *Service) gatherResearchTools(ctx context.Context, name, region, surname string) map[string]any {
	out := map[string]any{
		"heuristics": map[string]any{
			"ipaSeed":   tools.RoughIPA(name),
			"syllables": tools.CountSyllables(name),
		},
		"popularity":   tools.GetPopularity(name, region),
		"associations": tools.ScanNegativeAssociations(ctx, name),
	}
	if surname != "" {
		out["celebrity"] = tools.SearchWeb(ctx, fmt.Sprintf("%q", name+" "+surname), 3)
	}
	return out
}

// --- Stage 4: expert selector ---

func (s *Service) runExpertSelector(ctx context.Context, rec *RunRecord, profile *schema.SessionProfile, cards []schema.NameCard) (*schema.ExpertSelection, error) {
	rec.emit(schema.Event{T: schema.EventActivity, Agent: "expert-selector", Msg: "curating finalists"})

	var selection *schema.ExpertSelection
	if s.stubsActive() {
		if !s.cfg.AllowStubs {
			return nil, ErrStubsDisabled
		}
		stubSleep(ctx, stubStageDelay)
		selection = stubSelection(cards)
	} else {
		var err error
		selection, err = s.liveExpertSelector(ctx, profile, cards)
		if err != nil {
			if !s.cfg.AllowStubs || fatalStageErr(err) {
				return nil, err
			}
			rec.emit(schema.Event{T: schema.EventLog, Agent: "expert-selector",
				Msg: fmt.Sprintf("Falling back to stubbed shortlist due to error: %v", err)})
			selection = stubSelection(cards)
		}
	}

	selection.DedupeNearMisses()
	s.filterSelection(rec, profile, selection)
	selection.EnforceDisjoint()

	rec.emit(schema.Event{T: schema.EventResult, Agent: "expert-selector", Payload: selection})
	return selection, nil
}

func (s *Service) liveExpertSelector(ctx context.Context, profile *schema.SessionProfile, cards []schema.NameCard) (*schema.ExpertSelection, error) {
	raw, err := json.Marshal(map[string]any{
		"sessionProfile": profile,
		"cards":          cards,
	})
	if err != nil {
		return nil, err
	}
	parsed, err := s.callJSONAgent(ctx, "expert-selector", string(raw), 0.3)
	if err != nil {
		return nil, err
	}
	return schema.DecodeSelection(parsed)
}

// filterSelection re-runs the deterministic validators over both selection
// lists. Selectors occasionally resurface vetoed names from the research
// corpus; the filters are the last word.
func (s *Service) filterSelection(rec *RunRecord, profile *schema.SessionProfile, selection *schema.ExpertSelection) {
	logf := func(msg string) {
		rec.emit(schema.Event{T: schema.EventLog, Agent: "expert-selector", Msg: msg})
	}

	removed := 0
	finalists := selection.Finalists[:0]
	for _, f := range selection.Finalists {
		if len(validators.FilterNames([]string{f.Name}, profile, logf)) == 0 {
			removed++
			continue
		}
		finalists = append(finalists, f)
	}
	selection.Finalists = finalists

	misses := selection.NearMisses[:0]
	for _, m := range selection.NearMisses {
		if len(validators.FilterNames([]string{m.Name}, profile, logf)) == 0 {
			removed++
			continue
		}
		misses = append(misses, m)
	}
	selection.NearMisses = misses

	if removed > 0 {
		logf(fmt.Sprintf("Validators removed %d selected name(s) that violated the brief's constraints.", removed))
	}
}

// --- Stage 4.5: sanity checker ---

// runSanityChecker reviews the finalists against the original brief. It never
// fails a run: any error is logged and the selection passes through
// unchanged. With the backend unavailable it is a no-op.
func (s *Service) runSanityChecker(ctx context.Context, rec *RunRecord, profile *schema.SessionProfile, selection *schema.ExpertSelection) *schema.ExpertSelection {
	if s.stubsActive() {
		return selection
	}
	rec.emit(schema.Event{T: schema.EventActivity, Agent: "sanity-checker", Msg: "reviewing finalists"})

	names := make([]string, 0, len(selection.Finalists))
	for _, f := range selection.Finalists {
		names = append(names, f.Name)
	}
	raw, err := json.Marshal(map[string]any{
		"brief":     profile.RawBrief,
		"finalists": names,
	})
	if err != nil {
		rec.emit(schema.Event{T: schema.EventLog, Agent: "sanity-checker", Msg: fmt.Sprintf("Sanity check skipped: %v", err)})
		return selection
	}

	result, err := s.liveSanityCheck(ctx, string(raw))
	if err != nil {
		rec.emit(schema.Event{T: schema.EventLog, Agent: "sanity-checker", Msg: fmt.Sprintf("Sanity check skipped: %v", err)})
		return selection
	}

	for _, flag := range result.FlaggedNames {
		rec.emit(schema.Event{T: schema.EventLog, Agent: "sanity-checker",
			Msg: fmt.Sprintf("Flagged %s [%s]: %s (%s)", flag.Name, flag.Severity, flag.Violation, flag.Recommendation)})
	}
	if result.Notes != "" {
		rec.emit(schema.Event{T: schema.EventLog, Agent: "sanity-checker", Msg: result.Notes})
	}

	removal := result.RemovalSet()
	removed := 0
	if len(removal) > 0 {
		finalists := selection.Finalists[:0]
		for _, f := range selection.Finalists {
			if _, drop := removal[validators.Normalize(f.Name)]; drop {
				removed++
				continue
			}
			finalists = append(finalists, f)
		}
		selection.Finalists = finalists

		misses := selection.NearMisses[:0]
		for _, m := range selection.NearMisses {
			if _, drop := removal[validators.Normalize(m.Name)]; drop {
				removed++
				continue
			}
			misses = append(misses, m)
		}
		selection.NearMisses = misses
	}

	rec.emit(schema.Event{T: schema.EventResult, Agent: "sanity-checker", Payload: map[string]any{
		"flagged":  len(result.FlaggedNames),
		"removed":  removed,
		"retained": len(selection.Finalists),
	}})
	return selection
}

func (s *Service) liveSanityCheck(ctx context.Context, userInput string) (*schema.SanityCheckResult, error) {
	parsed, err := s.callJSONAgent(ctx, "sanity-checker", userInput, 0.2)
	if err != nil {
		return nil, err
	}
	return schema.DecodeSanityCheck(parsed)
}

// --- Stage 5: report composer ---

func (s *Service) runReportComposer(ctx context.Context, rec *RunRecord, profile *schema.SessionProfile, cards []schema.NameCard, selection *schema.ExpertSelection) (*schema.Report, error) {
	rec.emit(schema.Event{T: schema.EventActivity, Agent: "report-composer", Msg: "writing consultation"})

	if s.stubsActive() {
		if !s.cfg.AllowStubs {
			return nil, ErrStubsDisabled
		}
		stubSleep(ctx, stubStageDelay)
		return stubReport(profile, selection), nil
	}

	report, err := s.liveReportComposer(ctx, profile, cards, selection)
	if err != nil {
		if !s.cfg.AllowStubs || fatalStageErr(err) {
			return nil, err
		}
		rec.emit(schema.Event{T: schema.EventLog, Agent: "report-composer",
			Msg: fmt.Sprintf("Falling back to stubbed report due to error: %v", err)})
		return stubReport(profile, selection), nil
	}
	return report, nil
}

func (s *Service) liveReportComposer(ctx context.Context, profile *schema.SessionProfile, cards []schema.NameCard, selection *schema.ExpertSelection) (*schema.Report, error) {
	raw, err := json.Marshal(map[string]any{
		"sessionProfile": profile,
		"selection":      selection,
		"candidates":     cards,
	})
	if err != nil {
		return nil, err
	}
	p, err := s.cfg.Prompts.Get("report-composer")
	if err != nil {
		return nil, err
	}
	text, err := s.cfg.Client.Call(ctx, llm.Request{
		System:      p.System,
		Messages:    []llm.Message{{Role: "user", Content: p.Instruction + "\n\n" + string(raw)}},
		JSONMode:    false,
		Temperature: 0.4,
	})
	if err != nil {
		return nil, err
	}

	markdown := cleanReportText(text)
	var combos []schema.Combo
	for _, f := range selection.Finalists {
		if f.Combo != nil {
			combos = append(combos, *f.Combo)
		}
	}
	return &schema.Report{
		Summary:      summarizeReport(markdown),
		Markdown:     markdown,
		LovedNames:   []string{},
		Finalists:    selection.Finalists,
		Combos:       combos,
		Tradeoffs:    []string{"Review the report for tradeoffs."},
		TieBreakTips: []string{"Read the report for tie-break tips."},
	}, nil
}

// cleanReportText normalizes a model's markdown reply: unwrap one layer of
// matching outer quotes, and turn escaped newlines into real ones when the
// text has no literal newlines at all.
func cleanReportText(text string) string {
	t := strings.TrimSpace(text)
	if len(t) >= 2 {
		first, last := t[0], t[len(t)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			t = strings.TrimSpace(t[1 : len(t)-1])
		}
	}
	if strings.Contains(t, `\n`) && !strings.Contains(t, "\n") {
		t = strings.ReplaceAll(t, `\n`, "\n")
	}
	return t
}

var paragraphSplitRE = regexp.MustCompile(`\n\s*\n`)

// summarizeReport builds the hero summary from the report's leading
// non-header paragraphs: collect until 2+ paragraphs or 400+ characters,
// stopping at the first header after at least one collected paragraph.
// Falls back to the first paragraph.
func summarizeReport(markdown string) string {
	paragraphs := paragraphSplitRE.Split(markdown, -1)
	var collected []string
	chars := 0
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.HasPrefix(p, "#") {
			if len(collected) > 0 {
				break
			}
			continue
		}
		collected = append(collected, p)
		chars += len(p)
		if len(collected) >= 2 || chars >= 400 {
			break
		}
	}
	if len(collected) > 0 {
		return strings.Join(collected, "\n\n")
	}
	for _, p := range paragraphs {
		if t := strings.TrimSpace(p); t != "" {
			return t
		}
	}
	return strings.TrimSpace(markdown)
}
