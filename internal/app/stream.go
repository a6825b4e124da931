package app

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/namazing/namazing/internal/schema"
)

// Renderer consumes run events and prints the terminal output.
type Renderer interface {
	OnEvent(schema.Event)
	Complete(runID string, result *schema.RunResult) error
}

// NewRenderer picks a renderer for the configured format.
func NewRenderer(cfg Config, w io.Writer) Renderer {
	if cfg.Format == FormatJSONStream {
		return &jsonStreamRenderer{w: w}
	}
	return &richRenderer{w: w, quiet: cfg.Quiet}
}

// jsonStreamRenderer prints one event JSON per line, then a terminal
// run-complete line carrying the result. This is the machine contract;
// nothing else may be written to w.
type jsonStreamRenderer struct {
	mu sync.Mutex
	w  io.Writer
}

func (r *jsonStreamRenderer) OnEvent(ev schema.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	fmt.Fprintln(r.w, string(b))
}

func (r *jsonStreamRenderer) Complete(runID string, result *schema.RunResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := json.Marshal(map[string]any{
		"t":      "run-complete",
		"runId":  runID,
		"result": result,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(r.w, string(b))
	return err
}

// richRenderer prints a human-friendly progress narrative. Quiet mode keeps
// only stage activity and errors.
type richRenderer struct {
	mu    sync.Mutex
	w     io.Writer
	quiet bool
}

func (r *richRenderer) OnEvent(ev schema.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch ev.T {
	case schema.EventActivity:
		fmt.Fprintf(r.w, "[%s] %s\n", ev.Agent, ev.Msg)
	case schema.EventStart:
		if !r.quiet {
			fmt.Fprintf(r.w, "[%s] researching %s\n", ev.Agent, ev.Name)
		}
	case schema.EventDone:
		if !r.quiet && ev.Name != "" {
			fmt.Fprintf(r.w, "[%s] finished %s\n", ev.Agent, ev.Name)
		}
	case schema.EventLog:
		if !r.quiet {
			if ev.Name != "" {
				fmt.Fprintf(r.w, "[%s] %s: %s\n", ev.Agent, ev.Name, ev.Msg)
			} else {
				fmt.Fprintf(r.w, "[%s] %s\n", ev.Agent, ev.Msg)
			}
		}
	case schema.EventError:
		fmt.Fprintf(r.w, "[%s] error: %s\n", ev.Agent, ev.Msg)
	}
}

func (r *richRenderer) Complete(runID string, result *schema.RunResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result == nil || result.Report == nil {
		return nil
	}
	fmt.Fprintf(r.w, "\n%s\n", result.Report.Summary)
	if sel := result.Selection; sel != nil && len(sel.Finalists) > 0 {
		fmt.Fprintf(r.w, "\nFinalists:\n")
		for _, f := range sel.Finalists {
			if f.Combo != nil {
				fmt.Fprintf(r.w, "  - %s (%s %s) - %s\n", f.Name, f.Combo.First, f.Combo.Middle, f.Why)
			} else {
				fmt.Fprintf(r.w, "  - %s - %s\n", f.Name, f.Why)
			}
		}
		if !r.quiet && len(sel.NearMisses) > 0 {
			fmt.Fprintf(r.w, "\nNear misses:\n")
			for _, m := range sel.NearMisses {
				fmt.Fprintf(r.w, "  - %s - %s\n", m.Name, m.Reason)
			}
		}
	}
	return nil
}
