// Package app wires the CLI surface to the orchestrator: configuration,
// event rendering, and report output.
package app

// Output formats for the run command.
const (
	FormatRich       = "rich"
	FormatJSONStream = "json-stream"
)

// Config holds runtime configuration for one run invocation.
type Config struct {
	Brief string
	Mode  string // serial | parallel

	// Output
	OutputPath    string
	OutputPDFPath string
	Format        string
	Quiet         bool

	// Prompts
	PromptsDir string

	// LLM overrides; empty fields fall back to the environment.
	LLMBaseURL  string
	LLMModel    string
	LLMAPIKey   string
	LLMProvider string

	// Behavior
	AllowStubs  bool
	Concurrency int
	Verbose     bool
}
