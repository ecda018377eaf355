// Package document handles ingestion of page-ordered documents: decoding the
// upstream JSON shape, establishing page order, and rejecting malformed
// input. Content is carried verbatim; nothing here inspects page text.
package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
)

var (
	// ErrInvalidInput covers malformed input JSON: wrong types, missing
	// fields, non-positive or duplicate page numbers.
	ErrInvalidInput = errors.New("invalid document input")

	// ErrEmptyDocument is returned when a document has zero pages.
	ErrEmptyDocument = errors.New("document contains no pages")

	// ErrInvalidRange is returned by Slice for an empty or inverted range.
	ErrInvalidRange = errors.New("invalid page range")
)

// DuplicatePageError reports a page number that appears more than once.
type DuplicatePageError struct {
	PageNumber int
}

func (e *DuplicatePageError) Error() string {
	return fmt.Sprintf("duplicate page_number %d", e.PageNumber)
}

func (e *DuplicatePageError) Unwrap() error { return ErrInvalidInput }

// Page is a single page as produced by the upstream OCR step: its 1-based
// position in the original document and its markdown content. Content may be
// empty; that is a valid page.
type Page struct {
	PageNumber int    `json:"page_number"`
	Content    string `json:"content"`
}

// Document is an ordered collection of pages, sorted by ascending page
// number. Treat it as immutable once built.
type Document struct {
	Pages []Page `json:"pages"`
}

// wire shapes use pointers so missing fields are distinguishable from
// zero values.
type wirePage struct {
	PageNumber *int    `json:"page_number"`
	Content    *string `json:"content"`
}

type wireDocument struct {
	Pages []wirePage `json:"pages"`
}

// Decode reads the upstream JSON object {"pages": [...]} and returns the
// ordered document. Page order in the input is irrelevant; pages are sorted
// by page_number here.
func Decode(r io.Reader) (*Document, error) {
	var wire wireDocument
	dec := json.NewDecoder(r)
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if wire.Pages == nil {
		return nil, fmt.Errorf("%w: missing \"pages\" array", ErrInvalidInput)
	}

	pages := make([]Page, 0, len(wire.Pages))
	for i, wp := range wire.Pages {
		if wp.PageNumber == nil {
			return nil, fmt.Errorf("%w: pages[%d] missing page_number", ErrInvalidInput, i)
		}
		if wp.Content == nil {
			return nil, fmt.Errorf("%w: pages[%d] missing content", ErrInvalidInput, i)
		}
		pages = append(pages, Page{PageNumber: *wp.PageNumber, Content: *wp.Content})
	}
	return New(pages)
}

// New builds a Document from in-memory pages, sorting by page number and
// validating uniqueness. The input slice is not retained.
func New(pages []Page) (*Document, error) {
	if len(pages) == 0 {
		return nil, ErrEmptyDocument
	}

	sorted := make([]Page, len(pages))
	copy(sorted, pages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PageNumber < sorted[j].PageNumber
	})

	for i, p := range sorted {
		if p.PageNumber < 1 {
			return nil, fmt.Errorf("%w: page_number %d is not positive", ErrInvalidInput, p.PageNumber)
		}
		if i > 0 && p.PageNumber == sorted[i-1].PageNumber {
			return nil, &DuplicatePageError{PageNumber: p.PageNumber}
		}
	}

	return &Document{Pages: sorted}, nil
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int { return len(d.Pages) }

// FirstPage returns the lowest page number in the document.
func (d *Document) FirstPage() int { return d.Pages[0].PageNumber }

// LastPage returns the highest page number in the document.
func (d *Document) LastPage() int { return d.Pages[len(d.Pages)-1].PageNumber }

// MarshalIndent renders the document back into the upstream JSON shape,
// suitable for handing a page slice to downstream extraction.
func (d *Document) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
