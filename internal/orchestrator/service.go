// Package orchestrator drives the naming pipeline: brief parsing, candidate
// generation, per-name research, expert selection, a sanity pass, and report
// composition. It owns the run registry and the per-run event bus.
package orchestrator

import (
	"context"
	"os"
	"runtime"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/namazing/namazing/internal/llm"
	"github.com/namazing/namazing/internal/prompts"
	"github.com/namazing/namazing/internal/schema"
)

const (
	// MaxSerialNames caps the candidate list in serial mode.
	MaxSerialNames = 24
	// MaxParallelNames caps the candidate list in parallel mode.
	MaxParallelNames = 80
	// DefaultConcurrency is the research fan-out width when AGENT_CONCURRENCY
	// is unset.
	DefaultConcurrency = 4
)

// Config wires the service's collaborators.
type Config struct {
	Client  *llm.Client
	Prompts *prompts.Store
	Logger  zerolog.Logger

	// AllowStubs permits deterministic fallbacks when the backend is
	// unavailable or a stage fails. When false, such conditions fail the run.
	AllowStubs bool

	// Concurrency is the research fan-out width in parallel mode. Zero means
	// AGENT_CONCURRENCY or DefaultConcurrency.
	Concurrency int
}

// Service manages pipeline runs.
type Service struct {
	cfg Config

	mu   sync.Mutex
	runs map[string]*RunRecord
}

// New builds a Service. Zero-value config fields get env-derived defaults.
func New(cfg Config) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
		if v, err := strconv.Atoi(os.Getenv("AGENT_CONCURRENCY")); err == nil && v > 0 {
			cfg.Concurrency = v
		}
	}
	return &Service{
		cfg:  cfg,
		runs: make(map[string]*RunRecord),
	}
}

// StartRun registers a new run and executes the pipeline in the background.
// Unknown modes default to serial. Listeners given here are attached before
// the first event is emitted, so they see the whole stream; Subscribe after
// StartRun races the pipeline goroutine and may miss leading events.
func (s *Service) StartRun(ctx context.Context, brief string, mode Mode, listeners ...Listener) *RunRecord {
	if mode != ModeParallel {
		mode = ModeSerial
	}
	rec := newRunRecord(uuid.NewString(), brief, mode)
	for _, l := range listeners {
		if l != nil {
			rec.subscribe(l)
		}
	}

	s.mu.Lock()
	s.runs[rec.ID] = rec
	s.mu.Unlock()

	go s.execute(ctx, rec)
	return rec
}

// GetRun returns the record for an id, or nil when unknown.
func (s *Service) GetRun(id string) *RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[id]
}

// Subscribe attaches a listener to a run's event stream and returns an
// idempotent unsubscribe.
func (s *Service) Subscribe(id string, l Listener) (func(), error) {
	rec := s.GetRun(id)
	if rec == nil {
		return nil, ErrRunNotFound
	}
	return rec.subscribe(l), nil
}

// execute runs all stages in order. Any stage error fails the run; the
// sanity checker is the exception and never fails.
func (s *Service) execute(ctx context.Context, rec *RunRecord) {
	rec.setStatus(StatusRunning)
	log := s.cfg.Logger.With().Str("run_id", rec.ID).Str("mode", string(rec.Mode)).Logger()
	log.Info().Msg("run started")

	profile, err := s.runBriefParser(ctx, rec)
	if err != nil {
		s.failRun(rec, log, err)
		return
	}

	candidates, err := s.runNameGenerator(ctx, rec, profile)
	if err != nil {
		s.failRun(rec, log, err)
		return
	}

	cards, err := s.runResearch(ctx, rec, profile, candidates)
	if err != nil {
		s.failRun(rec, log, err)
		return
	}

	selection, err := s.runExpertSelector(ctx, rec, profile, cards)
	if err != nil {
		s.failRun(rec, log, err)
		return
	}

	selection = s.runSanityChecker(ctx, rec, profile, selection)

	report, err := s.runReportComposer(ctx, rec, profile, cards, selection)
	if err != nil {
		s.failRun(rec, log, err)
		return
	}

	rec.setResult(&schema.RunResult{
		Profile:    profile,
		Candidates: cards,
		Selection:  selection,
		Report:     report,
	})

	rec.emit(schema.Event{T: schema.EventResult, Agent: "report-composer", Payload: report})
	rec.emit(schema.Event{T: schema.EventDone, Agent: "report-composer"})
	runtime.Gosched()
	rec.setStatus(StatusCompleted)
	log.Info().Int("candidates", len(cards)).Int("finalists", len(selection.Finalists)).Msg("run completed")
}

func (s *Service) failRun(rec *RunRecord, log zerolog.Logger, err error) {
	rec.fail(err.Error())
	rec.emit(schema.Event{T: schema.EventError, Agent: "orchestrator", Msg: err.Error()})
	log.Error().Err(err).Msg("run failed")
}

// stubsActive reports whether the whole pipeline runs on stubs.
func (s *Service) stubsActive() bool {
	return !s.cfg.Client.Available()
}
