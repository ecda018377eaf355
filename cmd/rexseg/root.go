package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/rexseg/internal/config"
	"github.com/jackzampolin/rexseg/version"
)

var (
	cfgFile      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "rexseg",
	Short: "Segment REX compendium documents into ordered project records",
	Long: `Rexseg splits page-ordered REX compendium documents into the ordered
list of project records they contain: one {Titre, PageDebut, PageFin}
record per project, together covering every project page exactly once.

Page roles and project boundaries are judged by an LLM oracle (any
OpenAI-compatible endpoint) or by an offline heuristic oracle; the
state machine around the oracle is deterministic, so the same answers
always produce the same output.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.rexseg/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "json", "output format: json or table",
	)

	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the CLI logger. Logs go to stderr so stdout stays a clean
// JSON surface.
func newLogger(cfg config.LoggingCfg) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
