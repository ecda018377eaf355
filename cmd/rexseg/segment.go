package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/rexseg/internal/config"
	"github.com/jackzampolin/rexseg/internal/document"
	"github.com/jackzampolin/rexseg/internal/oracle"
	"github.com/jackzampolin/rexseg/internal/providers"
	"github.com/jackzampolin/rexseg/internal/rex"
	"github.com/jackzampolin/rexseg/internal/runner"
	"github.com/jackzampolin/rexseg/internal/schema"
	"github.com/jackzampolin/rexseg/internal/segmenter"
	"github.com/jackzampolin/rexseg/internal/title"
)

var (
	segmentOracle    string
	segmentProvider  string
	segmentModel     string
	segmentSchema    string
	segmentOutDir    string
	segmentSlicesDir string
	segmentWorkers   int
)

var segmentCmd = &cobra.Command{
	Use:   "segment [files...]",
	Short: "Segment REX documents into project records",
	Long: `Segment one or more REX compendium documents.

Each input is a JSON object {"pages": [{"content", "page_number"}, ...]}.
The output is one JSON array of {Titre, PageDebut, PageFin} records per
input, printed to stdout or written per input with --out-dir. With no
arguments (or "-") the document is read from stdin.

Examples:
  rexseg segment compendium.json
  cat compendium.json | rexseg segment
  rexseg segment --oracle heuristic --output table compendium.json
  rexseg segment --out-dir out/ --slices-dir slices/ a.json b.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		logger := newLogger(cfg.Logging)

		validator, err := loadValidator(cfg)
		if err != nil {
			return err
		}

		build, err := newEngineFactory(cfg, validator, logger)
		if err != nil {
			return err
		}

		for _, dir := range []string{segmentOutDir, segmentSlicesDir} {
			if dir == "" {
				continue
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}

		if len(args) == 0 {
			args = []string{"-"}
		}

		jobs := make([]runner.Job, 0, len(args))
		docs := make(map[string]*document.Document, len(args))
		for _, path := range args {
			doc, err := decodeInput(path)
			if err != nil {
				return err
			}
			jobs = append(jobs, runner.Job{Name: path, Doc: doc})
			docs[path] = doc
		}

		workers := segmentWorkers
		if workers <= 0 {
			workers = cfg.Defaults.MaxWorkers
		}

		run, err := runner.New(workers, build, logger)
		if err != nil {
			return err
		}
		results := run.Run(ctx, jobs)

		failed := 0
		for _, res := range results {
			if res.Err != nil {
				failed++
				logger.Error("segmentation failed", "input", res.Name, "error", res.Err)
				continue
			}
			if err := writeResult(cmd, res.Name, docs[res.Name], res.Projects); err != nil {
				return err
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d inputs failed", failed, len(jobs))
		}
		return nil
	},
}

func init() {
	segmentCmd.Flags().StringVar(&segmentOracle, "oracle", "", "oracle backend: llm or heuristic (default from config)")
	segmentCmd.Flags().StringVar(&segmentProvider, "provider", "", "LLM provider name (default from config)")
	segmentCmd.Flags().StringVar(&segmentModel, "model", "", "override the provider's model")
	segmentCmd.Flags().StringVar(&segmentSchema, "schema", "", "output schema file (default: embedded)")
	segmentCmd.Flags().StringVar(&segmentOutDir, "out-dir", "", "write one <input>.projects.json per input instead of stdout")
	segmentCmd.Flags().StringVar(&segmentSlicesDir, "slices-dir", "", "also write one page-slice JSON per project")
	segmentCmd.Flags().IntVar(&segmentWorkers, "workers", 0, "documents processed concurrently (default from config)")
	rootCmd.AddCommand(segmentCmd)
}

// loadValidator resolves the active output schema: the --schema flag, then
// the configured path, then the embedded default.
func loadValidator(cfg *config.Config) (*schema.Validator, error) {
	path := segmentSchema
	if path == "" {
		path = cfg.Schema.Path
	}
	if path == "" {
		return schema.Default(), nil
	}
	return schema.Load(path)
}

// newEngineFactory builds the per-worker engine constructor. Each worker
// gets its own segmenter and trace; the chat client is shared.
func newEngineFactory(cfg *config.Config, validator *schema.Validator, logger *slog.Logger) (func() (runner.Engine, error), error) {
	oracleKind := segmentOracle
	if oracleKind == "" {
		oracleKind = cfg.Defaults.Oracle
	}

	opts := segmenter.Options{
		BreakConfidence:      oracle.ParseConfidence(cfg.Segmenter.BreakConfidence),
		BackMatterConfidence: oracle.ParseConfidence(cfg.Segmenter.BackMatterConfidence),
	}
	titleOpts := title.Options{
		MaxLength:             cfg.Title.MaxLength,
		MinDetectorConfidence: oracle.ParseConfidence(cfg.Title.DetectorConfidence),
	}

	switch oracleKind {
	case "heuristic":
		return func() (runner.Engine, error) {
			h := oracle.NewHeuristic()
			return segmenter.New(segmenter.Config{
				Roles:     h,
				Relations: h,
				Titles:    title.NewExtractor(h, titleOpts, logger),
				Validator: validator,
				Options:   opts,
				Logger:    logger,
			})
		}, nil

	case "llm":
		registry := providers.NewRegistryFromConfig(cfg.ToClientConfigs(), logger)
		name := segmentProvider
		if name == "" {
			name = cfg.Defaults.LLMProvider
		}
		client, err := registry.Get(name)
		if err != nil {
			return nil, err
		}

		// In the config file zero (or negative) retries means none.
		retries := cfg.Segmenter.OracleRetries
		if retries <= 0 {
			retries = -1
		}

		return func() (runner.Engine, error) {
			trace := oracle.NewTrace(uuid.New().String())
			llm, err := oracle.NewLLM(oracle.LLMConfig{
				Client:    client,
				Model:     segmentModel,
				Timeout:   time.Duration(cfg.Segmenter.OracleTimeoutSeconds) * time.Second,
				Retries:   retries,
				PromptDir: cfg.Prompts.Dir,
				Trace:     trace,
				Logger:    logger,
			})
			if err != nil {
				return nil, err
			}
			return segmenter.New(segmenter.Config{
				Roles:     llm,
				Relations: llm,
				Titles:    title.NewExtractor(llm, titleOpts, logger),
				Validator: validator,
				Options:   opts,
				Trace:     trace,
				Logger:    logger,
			})
		}, nil

	default:
		return nil, fmt.Errorf("unknown oracle %q (want llm or heuristic)", oracleKind)
	}
}

func decodeInput(path string) (*document.Document, error) {
	if path == "-" {
		doc, err := document.Decode(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		return doc, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := document.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// writeResult emits one input's project list: to a per-input file when
// --out-dir is set, otherwise to stdout as JSON or a table. Page slices are
// written independently when --slices-dir is set.
func writeResult(cmd *cobra.Command, name string, doc *document.Document, projects rex.ProjectList) error {
	data, err := projects.MarshalIndent()
	if err != nil {
		return err
	}

	switch {
	case segmentOutDir != "":
		out := filepath.Join(segmentOutDir, inputBase(name)+".projects.json")
		if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
			return err
		}
	case outputFormat == "table":
		renderProjects(cmd.OutOrStdout(), name, projects)
	default:
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	}

	if segmentSlicesDir != "" {
		if err := writeSlices(doc, projects, name); err != nil {
			return err
		}
	}
	return nil
}

// writeSlices writes one page-slice document per project, the handoff format
// consumed by downstream per-project processing.
func writeSlices(doc *document.Document, projects rex.ProjectList, name string) error {
	base := inputBase(name)
	for _, p := range projects {
		slice, err := doc.Slice(p.PageDebut, p.PageFin)
		if err != nil {
			return err
		}
		data, err := slice.MarshalIndent()
		if err != nil {
			return err
		}
		out := filepath.Join(segmentSlicesDir, fmt.Sprintf("%s_%03d-%03d.json", base, p.PageDebut, p.PageFin))
		if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func inputBase(name string) string {
	if name == "-" {
		return "stdin"
	}
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
