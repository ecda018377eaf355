package segmenter

import (
	"fmt"

	"github.com/jackzampolin/rexseg/internal/rex"
)

// InvariantViolationError reports an internal consistency defect in the
// assembled output. It is never corrected away: a violation means a bug
// upstream, and silently patched output would hide it.
type InvariantViolationError struct {
	Property string
	Detail   string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("output invariant %q violated: %s", e.Property, e.Detail)
}

func violation(property, format string, args ...any) error {
	return &InvariantViolationError{Property: property, Detail: fmt.Sprintf(format, args...)}
}

// assemble converts titled segments into the published project list after
// asserting every structural invariant: page order within each segment,
// strict ordering and non-overlap across segments, and exact coverage of the
// body-labeled pages.
func assemble(segments []Segment, bodyPages []int) (rex.ProjectList, error) {
	for i, s := range segments {
		if s.PageStart > s.PageEnd {
			return nil, violation("page_order", "segment %d has PageStart %d > PageEnd %d", i, s.PageStart, s.PageEnd)
		}
		if len(s.Pages) == 0 {
			return nil, violation("bounds", "segment %d has no pages", i)
		}
		if s.Pages[0].PageNumber != s.PageStart || s.Pages[len(s.Pages)-1].PageNumber != s.PageEnd {
			return nil, violation("bounds", "segment %d bounds %d-%d do not match its pages %d-%d",
				i, s.PageStart, s.PageEnd, s.Pages[0].PageNumber, s.Pages[len(s.Pages)-1].PageNumber)
		}
		if i > 0 && segments[i-1].PageEnd >= s.PageStart {
			return nil, violation("overlap", "segment %d (ends %d) overlaps segment %d (starts %d)",
				i-1, segments[i-1].PageEnd, i, s.PageStart)
		}
	}

	var covered []int
	for _, s := range segments {
		for _, p := range s.Pages {
			covered = append(covered, p.PageNumber)
		}
	}
	if len(covered) != len(bodyPages) {
		return nil, violation("coverage", "segments cover %d pages, document has %d body pages", len(covered), len(bodyPages))
	}
	for i := range covered {
		if covered[i] != bodyPages[i] {
			return nil, violation("coverage", "segment pages diverge from body pages at position %d: %d vs %d",
				i, covered[i], bodyPages[i])
		}
	}

	list := make(rex.ProjectList, 0, len(segments))
	for _, s := range segments {
		list = append(list, rex.Project{
			Titre:     s.Title,
			PageDebut: s.PageStart,
			PageFin:   s.PageEnd,
		})
	}
	return list, nil
}
