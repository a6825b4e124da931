package app

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/namazing/namazing/internal/schema"
)

func TestJSONStreamRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(Config{Format: FormatJSONStream}, &buf)

	r.OnEvent(schema.Event{T: schema.EventActivity, RunID: "r1", Agent: "brief-parser", Msg: "parsing brief"})
	r.OnEvent(schema.Event{T: schema.EventPartial, RunID: "r1", Agent: "generator", Field: "candidates"})
	if err := r.Complete("r1", &schema.RunResult{Report: &schema.Report{Summary: "done"}}); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q", lines)
	}
	for i, line := range lines {
		if !json.Valid([]byte(line)) {
			t.Fatalf("line %d is not valid JSON: %q", i, line)
		}
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatal(err)
	}
	if first["t"] != "activity" || first["runId"] != "r1" || first["agent"] != "brief-parser" {
		t.Fatalf("first line = %v", first)
	}

	var last map[string]any
	if err := json.Unmarshal([]byte(lines[2]), &last); err != nil {
		t.Fatal(err)
	}
	if last["t"] != "run-complete" || last["runId"] != "r1" {
		t.Fatalf("last line = %v", last)
	}
	result, ok := last["result"].(map[string]any)
	if !ok {
		t.Fatalf("last line carries no result: %v", last)
	}
	if report, ok := result["report"].(map[string]any); !ok || report["summary"] != "done" {
		t.Fatalf("result = %v", result)
	}
}

func TestRichRendererQuiet(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(Config{Format: FormatRich, Quiet: true}, &buf)

	r.OnEvent(schema.Event{T: schema.EventActivity, Agent: "generator", Msg: "creating name lanes"})
	r.OnEvent(schema.Event{T: schema.EventStart, Agent: "researcher", Name: "Wren"})
	r.OnEvent(schema.Event{T: schema.EventLog, Agent: "generator", Msg: "chatter"})
	r.OnEvent(schema.Event{T: schema.EventError, Agent: "orchestrator", Msg: "boom"})

	out := buf.String()
	if !strings.Contains(out, "creating name lanes") {
		t.Fatalf("activity missing: %q", out)
	}
	if !strings.Contains(out, "error: boom") {
		t.Fatalf("errors must always print: %q", out)
	}
	if strings.Contains(out, "Wren") || strings.Contains(out, "chatter") {
		t.Fatalf("quiet mode leaked progress detail: %q", out)
	}
}

func TestRichRendererComplete(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(Config{Format: FormatRich}, &buf)

	res := &schema.RunResult{
		Report: &schema.Report{Summary: "A short summary."},
		Selection: &schema.ExpertSelection{
			Finalists: []schema.Finalist{
				{Name: "Wren", Why: "crisp", Combo: &schema.Combo{First: "Wren", Middle: "Mae"}},
				{Name: "Beatrice", Why: "literary"},
			},
			NearMisses: []schema.NearMiss{{Name: "Clara", Reason: "close to a sibling"}},
		},
	}
	if err := r.Complete("r1", res); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"A short summary.", "Finalists:", "Wren Mae", "Beatrice", "Near misses:", "Clara"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %q", want, out)
		}
	}
}

func TestRichRendererCompleteNilResult(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(Config{Format: FormatRich}, &buf)
	if err := r.Complete("r1", nil); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("nil result must print nothing, got %q", buf.String())
	}
}
