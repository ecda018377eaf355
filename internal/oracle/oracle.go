// Package oracle defines the judgment capabilities the segmentation engine
// depends on: page role classification, page-to-page continuity, and title
// synthesis. Implementations range from LLM-backed to rule-based to scripted
// test doubles; the engine only consumes the enums defined here.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackzampolin/rexseg/internal/document"
)

var (
	// ErrOracleTimeout marks a single oracle call that exceeded its
	// configured timeout.
	ErrOracleTimeout = errors.New("oracle call timed out")

	// ErrOracleUnavailable marks an oracle that kept failing after the
	// configured retries were spent. It wraps the last underlying cause.
	ErrOracleUnavailable = errors.New("oracle unavailable")
)

// PageRole is the structural role of a single page.
type PageRole string

const (
	RoleFrontMatter PageRole = "front_matter"
	RoleBody        PageRole = "body"
	RoleBackMatter  PageRole = "back_matter"
)

// ParsePageRole normalizes a role string coming from an external judgment.
func ParsePageRole(s string) (PageRole, error) {
	switch PageRole(strings.ToLower(strings.TrimSpace(s))) {
	case RoleFrontMatter:
		return RoleFrontMatter, nil
	case RoleBody:
		return RoleBody, nil
	case RoleBackMatter:
		return RoleBackMatter, nil
	default:
		return "", fmt.Errorf("unknown page role %q", s)
	}
}

// Verdict is the continuity judgment between two consecutive body pages.
type Verdict string

const (
	// VerdictContinue: the second page continues the same project.
	VerdictContinue Verdict = "continue"
	// VerdictBreak: the second page starts a new project.
	VerdictBreak Verdict = "break"
)

// ParseVerdict normalizes a verdict string coming from an external judgment.
func ParseVerdict(s string) (Verdict, error) {
	switch Verdict(strings.ToLower(strings.TrimSpace(s))) {
	case VerdictContinue:
		return VerdictContinue, nil
	case VerdictBreak:
		return VerdictBreak, nil
	default:
		return "", fmt.Errorf("unknown verdict %q", s)
	}
}

// Confidence expresses how sure an oracle is about a judgment.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

var confidenceRank = map[Confidence]int{
	ConfidenceLow:    1,
	ConfidenceMedium: 2,
	ConfidenceHigh:   3,
}

// ParseConfidence normalizes a confidence string coming from an external
// judgment. Unknown values are treated as low rather than rejected: a
// malformed confidence must never make a judgment MORE authoritative.
func ParseConfidence(s string) Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(s))) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceMedium:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// AtLeast reports whether c is at least as confident as min. An unknown min
// compares as low.
func (c Confidence) AtLeast(min Confidence) bool {
	cr, ok := confidenceRank[c]
	if !ok {
		cr = confidenceRank[ConfidenceLow]
	}
	mr, ok := confidenceRank[min]
	if !ok {
		mr = confidenceRank[ConfidenceLow]
	}
	return cr >= mr
}

// RoleJudgment is a role oracle's answer for one page.
type RoleJudgment struct {
	Role       PageRole
	Confidence Confidence
	Reason     string
}

// RelationJudgment is a relation oracle's answer for a consecutive page pair.
type RelationJudgment struct {
	Verdict    Verdict
	Confidence Confidence
	Reason     string
}

// TitleJudgment is a title oracle's answer for a finalized segment.
type TitleJudgment struct {
	Title      string
	Confidence Confidence
}

// PageRoleOracle classifies a single page in isolation. It is consulted both
// to find the start of project material and to detect trailing non-project
// material; the phase machine, not the oracle, owns that distinction.
type PageRoleOracle interface {
	ClassifyPage(ctx context.Context, page document.Page) (RoleJudgment, error)
}

// PageRelationOracle judges whether cur continues the project open on prev.
// Both pages are body pages and consecutive in document order.
type PageRelationOracle interface {
	Relate(ctx context.Context, prev, cur document.Page) (RelationJudgment, error)
}

// TitleOracle synthesizes a title from a segment's pages, used when no
// structural title candidate is convincing.
type TitleOracle interface {
	SuggestTitle(ctx context.Context, pages []document.Page) (TitleJudgment, error)
}

// Kind names an oracle capability, used in traces and logs.
type Kind string

const (
	KindPageRole     Kind = "page_role"
	KindPageRelation Kind = "page_relation"
	KindTitle        Kind = "title"
)
