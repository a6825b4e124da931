package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/namazing/namazing/internal/llm"
	"github.com/namazing/namazing/internal/orchestrator"
	"github.com/namazing/namazing/internal/prompts"
)

// Run executes one naming pipeline run end to end: build the collaborators,
// start the run, stream events through the renderer, then write the report
// artifacts. It blocks until the run finishes or ctx is cancelled.
func Run(ctx context.Context, cfg Config, log zerolog.Logger) error {
	if strings.TrimSpace(cfg.Brief) == "" {
		return fmt.Errorf("brief must not be empty")
	}
	if cfg.PromptsDir == "" {
		cfg.PromptsDir = "prompts"
	}

	svc := orchestrator.New(orchestrator.Config{
		Client:      buildClient(cfg, log),
		Prompts:     prompts.NewStore(cfg.PromptsDir),
		Logger:      log,
		AllowStubs:  cfg.AllowStubs,
		Concurrency: cfg.Concurrency,
	})

	// The renderer rides along from the first event; subscribing after
	// StartRun would race the pipeline goroutine.
	render := NewRenderer(cfg, os.Stdout)
	rec := svc.StartRun(ctx, cfg.Brief, orchestrator.Mode(cfg.Mode), render.OnEvent)

	if err := rec.Wait(ctx); err != nil {
		return err
	}
	if rec.Status() == orchestrator.StatusFailed {
		return fmt.Errorf("run failed: %s", rec.Err())
	}

	result := rec.Result()
	if err := render.Complete(rec.ID, result); err != nil {
		return err
	}

	if cfg.OutputPath != "" && result != nil && result.Report != nil {
		if err := os.WriteFile(cfg.OutputPath, []byte(result.Report.Markdown), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		log.Info().Str("path", cfg.OutputPath).Msg("report written")
	}
	if cfg.OutputPDFPath != "" && result != nil && result.Report != nil {
		if err := WriteReportPDF(result.Report.Markdown, cfg.OutputPDFPath); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		log.Info().Str("path", cfg.OutputPDFPath).Msg("pdf written")
	}
	return nil
}

// buildClient constructs the model client, preferring explicit config over
// environment variables.
func buildClient(cfg Config, log zerolog.Logger) *llm.Client {
	apiKey := cfg.LLMAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENROUTER_API_KEY")
	}
	baseURL := cfg.LLMBaseURL
	if baseURL == "" {
		baseURL = os.Getenv("OPENROUTER_BASE_URL")
	}
	model := cfg.LLMModel
	if model == "" {
		model = os.Getenv("LLM_MODEL")
	}
	provider := cfg.LLMProvider
	if provider == "" {
		provider = os.Getenv("LLM_PROVIDER")
	}
	c := llm.New(apiKey, baseURL, model, provider, log)
	c.SetDebug(debugEnabled())
	return c
}

func debugEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEBUG_LLM"))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
