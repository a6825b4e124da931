package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/namazing/namazing/internal/app"
)

// version is overridden at release time via -ldflags "-X main.version=...".
var version = "0.1.0"

func main() {
	os.Exit(run())
}

func run() int {
	// A local .env keeps the OpenRouter key out of shell history.
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		cfg         app.Config
		configPath  string
		noStubs     bool
		showVersion bool
	)
	cfg.AllowStubs = true

	root := &cobra.Command{
		Use:           "namazing",
		Short:         "Multi-agent baby-naming consultant",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Println(version)
				return nil
			}
			return cmd.Help()
		},
	}
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "print version and exit")

	runCmd := &cobra.Command{
		Use:   "run <brief>",
		Short: "Run the naming pipeline against a client brief",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Brief = args[0]
			if configPath != "" {
				fc, err := app.LoadConfigFile(configPath)
				if err != nil {
					return err
				}
				app.ApplyFileConfig(&cfg, fc)
			}
			if noStubs {
				cfg.AllowStubs = false
			}
			if cfg.Mode == "" {
				cfg.Mode = "serial"
			}
			if cfg.Mode != "serial" && cfg.Mode != "parallel" {
				return fmt.Errorf("invalid --mode %q: want serial or parallel", cfg.Mode)
			}
			if cfg.Format == "" {
				cfg.Format = app.FormatRich
			}
			if cfg.Format != app.FormatRich && cfg.Format != app.FormatJSONStream {
				return fmt.Errorf("invalid --format %q: want rich or json-stream", cfg.Format)
			}
			log := logger
			if !cfg.Verbose {
				log = log.Level(zerolog.WarnLevel)
			}
			return app.Run(cmd.Context(), cfg, log)
		},
	}
	runCmd.Flags().StringVar(&cfg.Mode, "mode", "serial", "pipeline mode: serial or parallel")
	runCmd.Flags().StringVar(&cfg.OutputPath, "output", "", "write the report Markdown to this path")
	runCmd.Flags().StringVar(&cfg.OutputPDFPath, "output-pdf", "", "also render the report as a PDF to this path")
	runCmd.Flags().StringVar(&cfg.Format, "format", "", "output format: rich or json-stream (default rich)")
	runCmd.Flags().BoolVar(&cfg.Quiet, "quiet", false, "suppress per-name progress and log lines")
	runCmd.Flags().BoolVar(&noStubs, "no-stubs", false, "fail instead of falling back to deterministic stubs")
	runCmd.Flags().StringVar(&cfg.PromptsDir, "prompts", "", "directory holding agent prompt files (default ./prompts)")
	runCmd.Flags().StringVar(&configPath, "config", "", "optional YAML/JSON config file")
	runCmd.Flags().BoolVar(&cfg.Verbose, "verbose", false, "verbose logging")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	root.AddCommand(runCmd, versionCmd)

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return 130
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}
