package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteReportPDF(t *testing.T) {
	md := "# Consultation\n\nA paragraph with a [link](https://example.com) inside.\n\n## Finalists\n\n- Wren\n- [Beatrice](https://example.com/beatrice)\n* Clara\n"
	out := filepath.Join(t.TempDir(), "report.pdf")

	if err := WriteReportPDF(md, out); err != nil {
		t.Fatalf("WriteReportPDF: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(b), "%PDF") {
		t.Fatalf("output is not a PDF, starts %q", b[:min(8, len(b))])
	}
}
