package title

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackzampolin/rexseg/internal/document"
	"github.com/jackzampolin/rexseg/internal/oracle"
)

// Options tunes title extraction.
type Options struct {
	// MaxLength caps the normalized title; 0 applies DefaultMaxLength.
	MaxLength int
	// MinDetectorConfidence is the bar a structural candidate must reach
	// before the oracle is skipped. Empty applies medium.
	MinDetectorConfidence oracle.Confidence
}

func (o Options) withDefaults() Options {
	if o.MaxLength <= 0 {
		o.MaxLength = DefaultMaxLength
	}
	if o.MinDetectorConfidence == "" {
		o.MinDetectorConfidence = oracle.ConfidenceMedium
	}
	return o
}

// Extractor resolves one title per segment. The oracle may be nil, in which
// case structure decides and the page-range fallback covers the rest.
type Extractor struct {
	titles oracle.TitleOracle
	opts   Options
	logger *slog.Logger
}

// NewExtractor builds an extractor around an optional title oracle.
func NewExtractor(titles oracle.TitleOracle, opts Options, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		titles: titles,
		opts:   opts.withDefaults(),
		logger: logger.With("component", "title"),
	}
}

// Title resolves the segment's title from its pages, in order. It is empty
// only when every page is blank; a segment with any readable content always
// gets a non-empty title, falling back to the page range when neither
// structure nor the oracle produced one.
func (e *Extractor) Title(ctx context.Context, pages []document.Page) (string, error) {
	if len(pages) == 0 {
		return "", errors.New("title: segment has no pages")
	}
	if allBlank(pages) {
		return "", nil
	}

	if cand, ok := e.detect(pages); ok {
		if t := Normalize(cand.Text, e.opts.MaxLength); t != "" {
			e.logger.Debug("structural title accepted",
				"page", cand.PageNumber,
				"detector", cand.Detector,
				"confidence", string(cand.Confidence),
			)
			return t, nil
		}
	}

	first := pages[0].PageNumber
	last := pages[len(pages)-1].PageNumber

	if e.titles != nil {
		j, err := e.titles.SuggestTitle(ctx, pages)
		if err != nil {
			return "", fmt.Errorf("titling pages %d-%d: %w", first, last, err)
		}
		if t := Normalize(j.Title, e.opts.MaxLength); t != "" {
			e.logger.Debug("oracle title accepted", "pages", []int{first, last}, "confidence", string(j.Confidence))
			return t, nil
		}
	}

	e.logger.Debug("falling back to page-range title", "pages", []int{first, last})
	return fmt.Sprintf("Projet pages %d-%d", first, last), nil
}

// detect returns the first passing structural candidate: earliest page wins;
// on one page the most confident detector wins, rank order breaking ties.
func (e *Extractor) detect(pages []document.Page) (Candidate, bool) {
	for _, page := range pages {
		var best *Candidate
		for _, cand := range detectPage(page) {
			if best == nil || moreConfident(cand.Confidence, best.Confidence) {
				best = &cand
			}
		}
		if best != nil && best.Confidence.AtLeast(e.opts.MinDetectorConfidence) {
			return *best, true
		}
	}
	return Candidate{}, false
}

func moreConfident(a, b oracle.Confidence) bool {
	return a.AtLeast(b) && !b.AtLeast(a)
}

func allBlank(pages []document.Page) bool {
	for _, p := range pages {
		if strings.TrimSpace(p.Content) != "" {
			return false
		}
	}
	return true
}
