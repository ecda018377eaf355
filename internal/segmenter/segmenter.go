// Package segmenter turns a page-ordered REX document into an ordered,
// non-overlapping list of project records. The pipeline is a deterministic
// single pass: classify each page through the monotonic phase machine, fold
// body pages into segments, title each segment, then assemble and assert the
// output invariants. All free-text judgment lives behind the oracle
// interfaces; given the same oracle answers, the output is byte-identical.
package segmenter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jackzampolin/rexseg/internal/document"
	"github.com/jackzampolin/rexseg/internal/oracle"
	"github.com/jackzampolin/rexseg/internal/rex"
)

// Options tunes the boundary policy.
type Options struct {
	// BreakConfidence is the minimum confidence at which a break verdict is
	// honored; below it the pages stay in one segment. Empty applies medium.
	BreakConfidence oracle.Confidence
	// BackMatterConfidence gates leaving the body phase, which is
	// irreversible. Empty applies low: any back-matter signal switches.
	BackMatterConfidence oracle.Confidence
}

func (o Options) withDefaults() Options {
	if o.BreakConfidence == "" {
		o.BreakConfidence = oracle.ConfidenceMedium
	}
	if o.BackMatterConfidence == "" {
		o.BackMatterConfidence = oracle.ConfidenceLow
	}
	return o
}

// TitleSource resolves one title per segment from its pages.
type TitleSource interface {
	Title(ctx context.Context, pages []document.Page) (string, error)
}

// OutputValidator checks the final project list against the active schema.
type OutputValidator interface {
	Validate(v any) error
}

// Config wires a Segmenter.
type Config struct {
	Roles     oracle.PageRoleOracle
	Relations oracle.PageRelationOracle
	Titles    TitleSource
	// Validator, when set, vets the assembled output before it is returned.
	Validator OutputValidator
	Options   Options
	// Trace, when set, is summarized to the log at the end of each run and
	// its run ID tags all log lines.
	Trace  *oracle.Trace
	Logger *slog.Logger
}

// Segmenter drives one document at a time. A single instance may be reused
// sequentially; give concurrent documents their own instance and trace.
type Segmenter struct {
	roles     oracle.PageRoleOracle
	relations oracle.PageRelationOracle
	titles    TitleSource
	validator OutputValidator
	opts      Options
	trace     *oracle.Trace
	logger    *slog.Logger
}

// New validates the wiring and returns a ready Segmenter.
func New(cfg Config) (*Segmenter, error) {
	if cfg.Roles == nil {
		return nil, errors.New("segmenter: page role oracle is required")
	}
	if cfg.Relations == nil {
		return nil, errors.New("segmenter: page relation oracle is required")
	}
	if cfg.Titles == nil {
		return nil, errors.New("segmenter: title source is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Segmenter{
		roles:     cfg.Roles,
		relations: cfg.Relations,
		titles:    cfg.Titles,
		validator: cfg.Validator,
		opts:      cfg.Options.withDefaults(),
		trace:     cfg.Trace,
		logger:    logger.With("component", "segmenter"),
	}, nil
}

// Segment runs the full pipeline over one document. On any failure it
// returns no output at all: a partial list would silently misattribute
// pages, which is worse than no answer.
func (s *Segmenter) Segment(ctx context.Context, doc *document.Document) (rex.ProjectList, error) {
	if doc == nil || doc.PageCount() == 0 {
		return nil, document.ErrEmptyDocument
	}

	logger := s.logger.With("run_id", s.runID())
	defer s.trace.LogSummary(logger)

	logger.Info("segmentation started",
		"pages", doc.PageCount(),
		"page_range", fmt.Sprintf("%d-%d", doc.FirstPage(), doc.LastPage()),
	)

	cls := newClassifier(s.roles, s.relations, s.opts, logger)
	b := &builder{}
	var bodyPages []int

	for _, page := range doc.Pages {
		c, err := cls.classify(ctx, page)
		if err != nil {
			return nil, err
		}
		if c.HasVerdict {
			logger.Debug("page classified", "page", page.PageNumber, "role", string(c.Role), "verdict", string(c.Verdict))
		} else {
			logger.Debug("page classified", "page", page.PageNumber, "role", string(c.Role))
		}
		if c.Role == oracle.RoleBody {
			bodyPages = append(bodyPages, page.PageNumber)
		}
		b.feed(c)
	}

	segments := b.result()
	logger.Info("boundaries resolved", "segments", len(segments), "body_pages", len(bodyPages))

	for i := range segments {
		title, err := s.titles.Title(ctx, segments[i].Pages)
		if err != nil {
			return nil, fmt.Errorf("titling segment %d-%d: %w", segments[i].PageStart, segments[i].PageEnd, err)
		}
		segments[i].Title = title
	}

	list, err := assemble(segments, bodyPages)
	if err != nil {
		return nil, err
	}

	if s.validator != nil {
		if err := s.validator.Validate(list); err != nil {
			return nil, fmt.Errorf("validating output: %w", err)
		}
	}

	logger.Info("segmentation finished", "projects", len(list))
	return list, nil
}

func (s *Segmenter) runID() string {
	if s.trace != nil && s.trace.RunID() != "" {
		return s.trace.RunID()
	}
	return uuid.New().String()
}
