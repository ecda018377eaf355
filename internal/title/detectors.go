package title

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/jackzampolin/rexseg/internal/document"
	"github.com/jackzampolin/rexseg/internal/oracle"
)

// Candidate is a structural title candidate found on one page.
type Candidate struct {
	Text       string
	PageNumber int
	Confidence oracle.Confidence
	Detector   string
}

// Detector names. detectPage returns candidates in this rank order, which
// also breaks same-confidence ties.
const (
	DetectorHeading = "markdown_heading"
	DetectorPrefix  = "project_prefix"
	DetectorCapRun  = "capitalized_run"
)

var markdown = goldmark.New()

var titlePrefixRe = regexp.MustCompile(`(?i)^\s*(?:#{1,6}\s*)?(projet|opération|operation|restauration|réhabilitation|rehabilitation|renaturation|aménagement|amenagement|effacement|arasement|dérasement|derasement|reméandrage|remeandrage|reconnexion|recréation|recreation|suppression|reconstitution)\b`)

const (
	prefixScanLines = 10
	maxTitleLineLen = 120
)

// detectPage runs every structural detector on one page.
func detectPage(page document.Page) []Candidate {
	var out []Candidate
	if c, ok := headingCandidate(page); ok {
		out = append(out, c)
	}
	if c, ok := prefixCandidate(page); ok {
		out = append(out, c)
	}
	if c, ok := capRunCandidate(page); ok {
		out = append(out, c)
	}
	return out
}

// headingCandidate returns the shallowest markdown heading on the page.
// Level 1 and 2 headings are strong title material; deeper ones less so.
func headingCandidate(page document.Page) (Candidate, bool) {
	src := []byte(page.Content)
	root := markdown.Parser().Parse(text.NewReader(src))

	level := 0
	var found string
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		t := strings.TrimSpace(string(h.Text(src)))
		if t == "" {
			continue
		}
		if level == 0 || h.Level < level {
			level = h.Level
			found = t
		}
	}
	if level == 0 {
		return Candidate{}, false
	}

	conf := oracle.ConfidenceMedium
	if level <= 2 {
		conf = oracle.ConfidenceHigh
	}
	return Candidate{
		Text:       found,
		PageNumber: page.PageNumber,
		Confidence: conf,
		Detector:   DetectorHeading,
	}, true
}

// prefixCandidate looks for a project/operation intitulé near the top of the
// page ("Projet ...", "Restauration ...", "Effacement ...").
func prefixCandidate(page document.Page) (Candidate, bool) {
	seen := 0
	for _, line := range strings.Split(page.Content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		seen++
		if seen > prefixScanLines {
			break
		}
		if !titlePrefixRe.MatchString(line) {
			continue
		}
		if utf8.RuneCountInString(line) > maxTitleLineLen {
			continue
		}
		return Candidate{
			Text:       line,
			PageNumber: page.PageNumber,
			Confidence: oracle.ConfidenceHigh,
			Detector:   DetectorPrefix,
		}, true
	}
	return Candidate{}, false
}

// capRunCandidate accepts a first line that reads like a display title:
// mostly uppercase, or title-cased words. Weak evidence on its own.
func capRunCandidate(page document.Page) (Candidate, bool) {
	var first string
	for _, line := range strings.Split(page.Content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			first = line
			break
		}
	}
	if first == "" || utf8.RuneCountInString(first) > maxTitleLineLen {
		return Candidate{}, false
	}
	if !isUpperRun(first) && !isTitleCased(first) {
		return Candidate{}, false
	}
	return Candidate{
		Text:       first,
		PageNumber: page.PageNumber,
		Confidence: oracle.ConfidenceLow,
		Detector:   DetectorCapRun,
	}, true
}

func isUpperRun(s string) bool {
	letters, uppers := 0, 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				uppers++
			}
		}
	}
	return letters >= 8 && len(strings.Fields(s)) >= 2 && uppers*10 >= letters*6
}

func isTitleCased(s string) bool {
	words := strings.Fields(s)
	if len(words) < 2 {
		return false
	}
	long := 0
	for _, w := range words {
		r, _ := utf8.DecodeRuneInString(w)
		if utf8.RuneCountInString(w) <= 3 {
			continue
		}
		long++
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return long >= 2
}
