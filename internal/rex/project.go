// Package rex defines the output data model of the segmentation engine:
// ordered project records with the field names fixed by the REXlist JSON
// schema consumed downstream.
package rex

import (
	"encoding/json"
	"fmt"
)

// Project is one detected project: its title and the inclusive page range it
// covers in the source document. The JSON field names are part of the
// external contract and must not be renamed or extended.
type Project struct {
	Titre     string `json:"Titre"`
	PageDebut int    `json:"PageDebut"`
	PageFin   int    `json:"PageFin"`
}

// PageCount returns the number of pages the project spans.
func (p Project) PageCount() int {
	return p.PageFin - p.PageDebut + 1
}

func (p Project) String() string {
	return fmt.Sprintf("%q [%d-%d]", p.Titre, p.PageDebut, p.PageFin)
}

// ProjectList is the ordered result of segmenting one document. It may be
// empty (a document with no project pages) but never contains a zero-page
// project.
type ProjectList []Project

// MarshalIndent renders the list as the external JSON surface: a single
// array of project objects. A nil or empty list marshals as [], not null.
func (l ProjectList) MarshalIndent() ([]byte, error) {
	if l == nil {
		l = ProjectList{}
	}
	return json.MarshalIndent(l, "", "  ")
}

// Pages returns the total page count across all projects.
func (l ProjectList) Pages() int {
	total := 0
	for _, p := range l {
		total += p.PageCount()
	}
	return total
}
