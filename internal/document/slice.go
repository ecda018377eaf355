package document

import "fmt"

// Slice returns the sub-document covering page numbers start through end
// inclusive. Ranges that are inverted, start below 1, or select no pages are
// rejected with ErrInvalidRange.
func (d *Document) Slice(start, end int) (*Document, error) {
	if start < 1 || start > end {
		return nil, fmt.Errorf("%w: %d-%d", ErrInvalidRange, start, end)
	}

	var pages []Page
	for _, p := range d.Pages {
		if p.PageNumber > end {
			break
		}
		if p.PageNumber >= start {
			pages = append(pages, p)
		}
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages in %d-%d", ErrInvalidRange, start, end)
	}
	return &Document{Pages: pages}, nil
}
