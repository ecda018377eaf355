package segmenter

import (
	"github.com/jackzampolin/rexseg/internal/document"
	"github.com/jackzampolin/rexseg/internal/oracle"
)

// Segment is a contiguous run of body pages belonging to one project. Pages
// holds the run's pages in document order; Title is filled after building.
type Segment struct {
	Title     string
	PageStart int
	PageEnd   int
	Pages     []document.Page
}

// builder folds the classified page stream into segments. It is a pure
// accumulator: same stream in, same segments out, and it never consults an
// oracle. Front- and back-matter pages only close whatever is open.
type builder struct {
	done []Segment
	open *Segment
}

func (b *builder) feed(c Classified) {
	if c.Role != oracle.RoleBody {
		b.finish()
		return
	}
	switch {
	case b.open == nil:
		b.start(c.Page)
	case c.HasVerdict && c.Verdict == oracle.VerdictBreak:
		b.finish()
		b.start(c.Page)
	default:
		b.extend(c.Page)
	}
}

func (b *builder) start(page document.Page) {
	b.open = &Segment{
		PageStart: page.PageNumber,
		PageEnd:   page.PageNumber,
		Pages:     []document.Page{page},
	}
}

func (b *builder) extend(page document.Page) {
	b.open.PageEnd = page.PageNumber
	b.open.Pages = append(b.open.Pages, page)
}

func (b *builder) finish() {
	if b.open == nil {
		return
	}
	b.done = append(b.done, *b.open)
	b.open = nil
}

// result closes any open segment and returns everything built.
func (b *builder) result() []Segment {
	b.finish()
	return b.done
}
