package oracle

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jackzampolin/rexseg/internal/document"
)

// Scripted oracles return pre-programmed judgments keyed by page number.
// They are the deterministic stand-ins used throughout the engine tests and
// available for offline dry runs.

// Compile-time interface checks.
var (
	_ PageRoleOracle     = (*ScriptedRoleOracle)(nil)
	_ PageRelationOracle = (*ScriptedRelationOracle)(nil)
	_ TitleOracle        = (*ScriptedTitleOracle)(nil)
)

// ScriptedRoleOracle answers role queries from a fixed table.
type ScriptedRoleOracle struct {
	// Roles maps page number to the role to report. Pages not in the map
	// get DefaultRole, or body when DefaultRole is unset.
	Roles       map[int]PageRole
	DefaultRole PageRole
	// Confidences maps page number to reported confidence; missing entries
	// report high.
	Confidences map[int]Confidence
	// Latency delays every call, honoring context cancellation.
	Latency time.Duration
	// Err, when set, is returned instead of a judgment. If ErrOnPage is
	// non-zero the error fires only for that page.
	Err       error
	ErrOnPage int

	calls atomic.Int64
}

func (o *ScriptedRoleOracle) ClassifyPage(ctx context.Context, page document.Page) (RoleJudgment, error) {
	o.calls.Add(1)
	if err := scriptedWait(ctx, o.Latency); err != nil {
		return RoleJudgment{}, err
	}
	if o.Err != nil && (o.ErrOnPage == 0 || o.ErrOnPage == page.PageNumber) {
		return RoleJudgment{}, o.Err
	}

	role, ok := o.Roles[page.PageNumber]
	if !ok {
		role = o.DefaultRole
		if role == "" {
			role = RoleBody
		}
	}
	conf, ok := o.Confidences[page.PageNumber]
	if !ok {
		conf = ConfidenceHigh
	}
	return RoleJudgment{Role: role, Confidence: conf}, nil
}

// Calls returns how many times the oracle was consulted.
func (o *ScriptedRoleOracle) Calls() int64 { return o.calls.Load() }

// ScriptedRelationOracle answers continuity queries from a fixed table keyed
// by the second (current) page number of the pair.
type ScriptedRelationOracle struct {
	// Verdicts maps the current page number to the verdict for the pair
	// (prev, current). Missing entries report continue.
	Verdicts map[int]Verdict
	// Confidences maps the current page number to reported confidence;
	// missing entries report high.
	Confidences map[int]Confidence
	Latency     time.Duration
	Err         error
	ErrOnPage   int

	calls atomic.Int64
	pairs []int
}

func (o *ScriptedRelationOracle) Relate(ctx context.Context, prev, cur document.Page) (RelationJudgment, error) {
	o.calls.Add(1)
	o.pairs = append(o.pairs, cur.PageNumber)
	if err := scriptedWait(ctx, o.Latency); err != nil {
		return RelationJudgment{}, err
	}
	if o.Err != nil && (o.ErrOnPage == 0 || o.ErrOnPage == cur.PageNumber) {
		return RelationJudgment{}, o.Err
	}

	verdict, ok := o.Verdicts[cur.PageNumber]
	if !ok {
		verdict = VerdictContinue
	}
	conf, ok := o.Confidences[cur.PageNumber]
	if !ok {
		conf = ConfidenceHigh
	}
	return RelationJudgment{Verdict: verdict, Confidence: conf}, nil
}

// Calls returns how many times the oracle was consulted.
func (o *ScriptedRelationOracle) Calls() int64 { return o.calls.Load() }

// ConsultedPages returns the current-page numbers of every pair queried, in
// order. Not safe for concurrent use; meant for single-run assertions.
func (o *ScriptedRelationOracle) ConsultedPages() []int { return o.pairs }

// ScriptedTitleOracle answers title queries from a fixed table keyed by the
// first page number of the segment.
type ScriptedTitleOracle struct {
	// Titles maps a segment's first page number to the title to report.
	Titles map[int]string
	// Default is reported when the first page is not in Titles.
	Default    string
	Confidence Confidence
	Latency    time.Duration
	Err        error

	calls atomic.Int64
}

func (o *ScriptedTitleOracle) SuggestTitle(ctx context.Context, pages []document.Page) (TitleJudgment, error) {
	o.calls.Add(1)
	if err := scriptedWait(ctx, o.Latency); err != nil {
		return TitleJudgment{}, err
	}
	if o.Err != nil {
		return TitleJudgment{}, o.Err
	}

	title := o.Default
	if len(pages) > 0 {
		if t, ok := o.Titles[pages[0].PageNumber]; ok {
			title = t
		}
	}
	conf := o.Confidence
	if conf == "" {
		conf = ConfidenceHigh
	}
	return TitleJudgment{Title: title, Confidence: conf}, nil
}

// Calls returns how many times the oracle was consulted.
func (o *ScriptedTitleOracle) Calls() int64 { return o.calls.Load() }

func scriptedWait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
