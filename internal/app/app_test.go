package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRunRejectsEmptyBrief(t *testing.T) {
	err := Run(context.Background(), Config{Brief: "   "}, zerolog.Nop())
	if err == nil || !strings.Contains(err.Error(), "brief") {
		t.Fatalf("err = %v", err)
	}
}

func TestRunOfflineWritesArtifacts(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")

	dir := t.TempDir()
	mdPath := filepath.Join(dir, "report.md")
	pdfPath := filepath.Join(dir, "report.pdf")

	cfg := Config{
		Brief:         "We're expecting a girl. Surname: Quist.",
		Mode:          "parallel",
		OutputPath:    mdPath,
		OutputPDFPath: pdfPath,
		Format:        FormatRich,
		Quiet:         true,
		AllowStubs:    true,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	if err := Run(ctx, cfg, zerolog.Nop()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	md, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(md), "# Your Personalized Name Consultation") {
		t.Fatalf("report markdown = %q", md[:min(80, len(md))])
	}
	pdf, err := os.ReadFile(pdfPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(pdf), "%PDF") {
		t.Fatal("pdf artifact is not a PDF")
	}
}

func TestRunFailsWithoutStubsOrBackend(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")

	cfg := Config{
		Brief:      "a girl name",
		Quiet:      true,
		AllowStubs: false,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err := Run(ctx, cfg, zerolog.Nop())
	if err == nil || !strings.Contains(err.Error(), "run failed") {
		t.Fatalf("err = %v", err)
	}
}
