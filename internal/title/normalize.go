// Package title extracts a human-usable project title from a segment's
// pages: ranked structural detectors first, an oracle when structure is not
// convincing, and a page-range fallback so a segment with any readable
// content never ships untitled.
package title

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxLength caps normalized titles.
const DefaultMaxLength = 150

var (
	linkRe        = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	emphasisRe    = regexp.MustCompile(`(\*{1,3}|_{1,3})([^*_]+)(\*{1,3}|_{1,3})`)
	headingMarkRe = regexp.MustCompile(`^#{1,6}\s*`)
	// Lines that are just a page number or a "Page 12"/"p. 12" artifact.
	pageArtifactRe = regexp.MustCompile(`(?i)^\s*(?:page|p\.?)?\s*\d{1,4}\s*(?:/\s*\d{1,4})?\s*$`)
)

// Normalize turns a raw title candidate into the published form: markdown
// stripped, page artifacts dropped, whitespace collapsed, length capped on a
// word boundary, trailing punctuation removed. maxLength <= 0 applies
// DefaultMaxLength. The result may be empty when the candidate carried no
// usable text.
func Normalize(raw string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		if pageArtifactRe.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	s := strings.Join(kept, " ")

	s = linkRe.ReplaceAllString(s, "$1")
	s = headingMarkRe.ReplaceAllString(strings.TrimSpace(s), "")
	for i := 0; i < 2; i++ { // nested emphasis like **_x_**
		s = emphasisRe.ReplaceAllString(s, "$2")
	}
	s = strings.ReplaceAll(s, "`", "")

	s = strings.Join(strings.Fields(s), " ")
	s = truncateAtWord(s, maxLength)
	s = strings.TrimRight(s, " .,;:!?-–—…·")
	return s
}

// truncateAtWord cuts s to at most max runes, backing up to the previous
// word boundary when the cut lands inside a word.
func truncateAtWord(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	cut := max
	for i := max; i > 0; i-- {
		if runes[i-1] == ' ' {
			cut = i - 1
			break
		}
	}
	if cut == 0 {
		cut = max
	}
	return strings.TrimSpace(string(runes[:cut]))
}
