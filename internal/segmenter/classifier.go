package segmenter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackzampolin/rexseg/internal/document"
	"github.com/jackzampolin/rexseg/internal/oracle"
)

// phase is the document region the classifier is currently in. Transitions
// are monotonic: once body starts, front matter never reappears; once back
// matter starts, nothing else does.
type phase int

const (
	phaseFrontMatter phase = iota
	phaseBody
	phaseBackMatter
)

func (p phase) String() string {
	switch p {
	case phaseFrontMatter:
		return "front_matter"
	case phaseBody:
		return "body"
	case phaseBackMatter:
		return "back_matter"
	default:
		return "unknown"
	}
}

// Classified is one page with its resolved role and, for a body page that
// follows another body page, the continuity verdict against it.
type Classified struct {
	Page       document.Page
	Role       oracle.PageRole
	Verdict    oracle.Verdict
	HasVerdict bool
}

// classifier drives the three-phase machine over one document, single pass,
// no lookahead. One instance per run; not safe for concurrent use.
type classifier struct {
	roles     oracle.PageRoleOracle
	relations oracle.PageRelationOracle
	opts      Options
	logger    *slog.Logger

	phase    phase
	prevBody *document.Page
}

func newClassifier(roles oracle.PageRoleOracle, relations oracle.PageRelationOracle, opts Options, logger *slog.Logger) *classifier {
	return &classifier{
		roles:     roles,
		relations: relations,
		opts:      opts,
		logger:    logger,
		phase:     phaseFrontMatter,
	}
}

// classify resolves one page. Oracle failures abort the run; there is no
// guessed label.
func (c *classifier) classify(ctx context.Context, page document.Page) (Classified, error) {
	switch c.phase {
	case phaseFrontMatter:
		j, err := c.roles.ClassifyPage(ctx, page)
		if err != nil {
			return Classified{}, fmt.Errorf("classifying page %d: %w", page.PageNumber, err)
		}
		if j.Role == oracle.RoleBody {
			c.phase = phaseBody
			c.rememberBody(page)
			return Classified{Page: page, Role: oracle.RoleBody}, nil
		}
		// A back-matter signal before any body counts as front matter:
		// the phase order is monotonic.
		return Classified{Page: page, Role: oracle.RoleFrontMatter}, nil

	case phaseBody:
		j, err := c.roles.ClassifyPage(ctx, page)
		if err != nil {
			return Classified{}, fmt.Errorf("classifying page %d: %w", page.PageNumber, err)
		}
		if j.Role == oracle.RoleBackMatter && j.Confidence.AtLeast(c.opts.BackMatterConfidence) {
			c.phase = phaseBackMatter
			return Classified{Page: page, Role: oracle.RoleBackMatter}, nil
		}

		cls := Classified{Page: page, Role: oracle.RoleBody}
		if c.prevBody != nil {
			rj, err := c.relations.Relate(ctx, *c.prevBody, page)
			if err != nil {
				return Classified{}, fmt.Errorf("relating pages %d and %d: %w", c.prevBody.PageNumber, page.PageNumber, err)
			}
			verdict := rj.Verdict
			if verdict == oracle.VerdictBreak && !rj.Confidence.AtLeast(c.opts.BreakConfidence) {
				c.logger.Debug("break verdict below confidence bar, continuing segment",
					"page", page.PageNumber,
					"confidence", string(rj.Confidence),
					"required", string(c.opts.BreakConfidence),
				)
				verdict = oracle.VerdictContinue
			}
			cls.Verdict = verdict
			cls.HasVerdict = true
		}
		c.rememberBody(page)
		return cls, nil

	default: // phaseBackMatter is absorbing: no oracle calls, no way out.
		return Classified{Page: page, Role: oracle.RoleBackMatter}, nil
	}
}

func (c *classifier) rememberBody(page document.Page) {
	p := page
	c.prevBody = &p
}
