package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the optional single-file configuration schema. Nested
// sections map naturally to flags and env.
type FileConfig struct {
	Output    string `yaml:"output" json:"output"`
	OutputPDF string `yaml:"outputPDF" json:"outputPDF"`
	Format    string `yaml:"format" json:"format"`
	Quiet     bool   `yaml:"quiet" json:"quiet"`

	Prompts struct {
		Dir string `yaml:"dir" json:"dir"`
	} `yaml:"prompts" json:"prompts"`

	LLM struct {
		BaseURL  string `yaml:"base" json:"base"`
		Model    string `yaml:"model" json:"model"`
		APIKey   string `yaml:"key" json:"key"`
		Provider string `yaml:"provider" json:"provider"`
	} `yaml:"llm" json:"llm"`

	Agents struct {
		Concurrency int   `yaml:"concurrency" json:"concurrency"`
		AllowStubs  *bool `yaml:"allowStubs" json:"allowStubs"`
	} `yaml:"agents" json:"agents"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays file values into cfg for fields still at their
// zero value, so explicit flags always win.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if cfg.OutputPath == "" && fc.Output != "" {
		cfg.OutputPath = fc.Output
	}
	if cfg.OutputPDFPath == "" && fc.OutputPDF != "" {
		cfg.OutputPDFPath = fc.OutputPDF
	}
	if cfg.Format == "" && fc.Format != "" {
		cfg.Format = fc.Format
	}
	if !cfg.Quiet && fc.Quiet {
		cfg.Quiet = true
	}
	if cfg.PromptsDir == "" && fc.Prompts.Dir != "" {
		cfg.PromptsDir = fc.Prompts.Dir
	}
	if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if cfg.LLMModel == "" && fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}
	if cfg.LLMProvider == "" && fc.LLM.Provider != "" {
		cfg.LLMProvider = fc.LLM.Provider
	}
	if cfg.Concurrency == 0 && fc.Agents.Concurrency > 0 {
		cfg.Concurrency = fc.Agents.Concurrency
	}
	if fc.Agents.AllowStubs != nil {
		cfg.AllowStubs = *fc.Agents.AllowStubs
	}
}
