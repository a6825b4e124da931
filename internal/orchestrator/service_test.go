package orchestrator

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/namazing/namazing/internal/llm"
	"github.com/namazing/namazing/internal/prompts"
	"github.com/namazing/namazing/internal/schema"
	"github.com/namazing/namazing/internal/validators"
)

// offlineService has no API key, so every stage runs its deterministic stub.
func offlineService(allowStubs bool) *Service {
	return New(Config{
		Client:     llm.New("", "", "", "", zerolog.Nop()),
		Prompts:    prompts.NewStore("prompts"),
		Logger:     zerolog.Nop(),
		AllowStubs: allowStubs,
	})
}

func waitForRun(t *testing.T, rec *RunRecord) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := rec.Wait(ctx); err != nil {
		t.Fatalf("run did not finish: %v", err)
	}
}

func TestStubRunEndToEnd(t *testing.T) {
	brief := "We're expecting a girl. Surname: Quist. Siblings: Nora. I've vetoed Margot"
	svc := offlineService(true)

	rec := svc.StartRun(context.Background(), brief, ModeSerial)
	waitForRun(t, rec)

	if got := rec.Status(); got != StatusCompleted {
		t.Fatalf("status = %s, err = %q", got, rec.Err())
	}
	res := rec.Result()
	if res == nil {
		t.Fatal("completed run must carry a result")
	}

	if res.Profile.RawBrief != brief {
		t.Fatalf("raw_brief = %q, want the brief echoed verbatim", res.Profile.RawBrief)
	}
	if res.Profile.Surname() != "Quist" {
		t.Fatalf("surname = %q", res.Profile.Surname())
	}
	if got := res.Profile.HardVetoes(); len(got) != 1 || got[0] != "Margot" {
		t.Fatalf("hard vetoes = %v", got)
	}

	if len(res.Candidates) == 0 || len(res.Candidates) > MaxSerialNames {
		t.Fatalf("candidates = %d, want 1..%d in serial mode", len(res.Candidates), MaxSerialNames)
	}
	for _, card := range res.Candidates {
		if validators.Normalize(card.Name) == "margot" {
			t.Fatal("vetoed name survived into the research set")
		}
	}

	if len(res.Selection.Finalists) == 0 {
		t.Fatal("no finalists")
	}
	finalists := map[string]bool{}
	for _, f := range res.Selection.Finalists {
		finalists[validators.Normalize(f.Name)] = true
	}
	for _, m := range res.Selection.NearMisses {
		if finalists[validators.Normalize(m.Name)] {
			t.Fatalf("near miss %q is also a finalist", m.Name)
		}
	}

	if res.Report == nil || res.Report.Summary == "" || res.Report.Markdown == "" {
		t.Fatalf("report = %+v", res.Report)
	}
}

func TestStubRunEventStream(t *testing.T) {
	svc := offlineService(true)
	rec := svc.StartRun(context.Background(), "a short girl name please", ModeParallel)
	waitForRun(t, rec)

	events := rec.Events()
	if len(events) == 0 {
		t.Fatal("no events")
	}
	if events[0].T != "activity" || events[0].Agent != "brief-parser" {
		t.Fatalf("first event = %+v, want brief-parser activity", events[0])
	}
	for _, ev := range events {
		if ev.RunID != rec.ID {
			t.Fatalf("event missing run id: %+v", ev)
		}
	}

	last := events[len(events)-1]
	if last.T != "done" || last.Agent != "report-composer" {
		t.Fatalf("last event = %+v, want report-composer done", last)
	}
	prev := events[len(events)-2]
	if prev.T != "result" || prev.Agent != "report-composer" {
		t.Fatalf("second-to-last event = %+v, want report-composer result", prev)
	}

	// Every researched name gets a start and a done.
	starts, dones := 0, 0
	for _, ev := range events {
		if ev.Agent != "researcher" {
			continue
		}
		switch ev.T {
		case "start":
			starts++
		case "done":
			dones++
		}
	}
	if starts == 0 || starts != dones {
		t.Fatalf("researcher start/done = %d/%d", starts, dones)
	}
}

func TestRunFailsWhenStubsDisabled(t *testing.T) {
	svc := offlineService(false)
	rec := svc.StartRun(context.Background(), "a girl name", ModeSerial)
	waitForRun(t, rec)

	if got := rec.Status(); got != StatusFailed {
		t.Fatalf("status = %s, want failed", got)
	}
	if !strings.Contains(rec.Err(), ErrStubsDisabled.Error()) {
		t.Fatalf("err = %q", rec.Err())
	}
	if rec.Result() != nil {
		t.Fatal("failed run must not carry a result")
	}

	var errEvents int
	for _, ev := range rec.Events() {
		if ev.T == "error" {
			errEvents++
		}
	}
	if errEvents != 1 {
		t.Fatalf("error events = %d, want 1", errEvents)
	}
}

func TestUnknownModeDefaultsToSerial(t *testing.T) {
	svc := offlineService(true)
	rec := svc.StartRun(context.Background(), "a girl name", Mode("turbo"))
	if rec.Mode != ModeSerial {
		t.Fatalf("mode = %s, want serial", rec.Mode)
	}
	waitForRun(t, rec)
}

func TestStartRunListenerSeesLeadingEvents(t *testing.T) {
	// Stubs disabled so each run fails at the first stage and stays fast;
	// the leading activity event is still emitted before the failure.
	svc := offlineService(false)
	for i := 0; i < 200; i++ {
		got := make(chan schema.Event, 8)
		rec := svc.StartRun(context.Background(), "a girl name", ModeSerial,
			func(ev schema.Event) { got <- ev })
		runtime.Gosched()
		waitForRun(t, rec)

		select {
		case first := <-got:
			if first.T != "activity" || first.Agent != "brief-parser" {
				t.Fatalf("iteration %d: first event = %+v", i, first)
			}
		default:
			t.Fatalf("iteration %d: listener saw no events", i)
		}
	}
}

func TestGetRunAndSubscribe(t *testing.T) {
	svc := offlineService(true)

	if _, err := svc.Subscribe("no-such-run", nil); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("err = %v, want ErrRunNotFound", err)
	}
	if svc.GetRun("no-such-run") != nil {
		t.Fatal("GetRun must return nil for unknown ids")
	}

	rec := svc.StartRun(context.Background(), "a girl name", ModeSerial)
	if svc.GetRun(rec.ID) != rec {
		t.Fatal("GetRun must return the registered record")
	}

	received := 0
	unsub, err := svc.Subscribe(rec.ID, func(schema.Event) { received++ })
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	waitForRun(t, rec)
	unsub()
	unsub()

	if received == 0 {
		t.Fatal("listener saw no events")
	}
}
