package oracle

import (
	"context"
	"regexp"
	"strings"

	"github.com/jackzampolin/rexseg/internal/document"
)

// Heuristic implements all three oracle capabilities with deterministic
// rules over the layout conventions of French REX compendiums. It makes no
// network calls and is the reference ranking for boundary cues: operation
// code change, fresh top-level heading, project-prefix line.
type Heuristic struct{}

var (
	_ PageRoleOracle     = (*Heuristic)(nil)
	_ PageRelationOracle = (*Heuristic)(nil)
	_ TitleOracle        = (*Heuristic)(nil)
)

// NewHeuristic returns the rule-based oracle suite.
func NewHeuristic() *Heuristic { return &Heuristic{} }

const headRegionLines = 12

var (
	frontMarkers = []string{
		"sommaire",
		"table des matières",
		"table des matieres",
		"préface",
		"preface",
		"avant-propos",
		"avant propos",
		"éditorial",
		"editorial",
		"édito",
		"remerciements",
		"avertissement",
		"mode d'emploi",
		"comment lire ce recueil",
		"présentation du recueil",
		"presentation du recueil",
	}
	backMarkers = []string{
		"annexe",
		"annexes",
		"bibliographie",
		"glossaire",
		"lexique",
		"index alphabétique",
		"index alphabetique",
		"table des illustrations",
		"table des figures",
		"références bibliographiques",
		"references bibliographiques",
		"liste des sigles",
		"sigles et abréviations",
		"sigles et abreviations",
		"crédits photographiques",
		"credits photographiques",
		"colophon",
	}

	headingLineRe   = regexp.MustCompile(`^(#{1,6})\s+\S`)
	dottedLeaderRe  = regexp.MustCompile(`\.{4,}\s*\d+\s*$`)
	projectPrefixRe = regexp.MustCompile(`(?i)^\s*(?:#{1,6}\s*)?(projet|opération|operation|restauration|réhabilitation|rehabilitation|renaturation|aménagement|amenagement|effacement|arasement|dérasement|derasement|reméandrage|remeandrage|reconnexion|recréation|recreation|suppression|reconstitution)\b`)
	operationCodeRe = regexp.MustCompile(`\b[A-Z]{2,6}[-_/]\d{1,5}\b`)
	continuationRe  = regexp.MustCompile(`^[a-zà-öø-ÿ({\[«,;:]`)
)

// ClassifyPage labels a page by signals in its head region: explicit
// front/back-matter marker lines first, then dotted TOC leaders, then
// body cues (project prefix, heading, prose volume).
func (h *Heuristic) ClassifyPage(ctx context.Context, page document.Page) (RoleJudgment, error) {
	if err := ctx.Err(); err != nil {
		return RoleJudgment{}, err
	}

	if strings.TrimSpace(page.Content) == "" {
		return RoleJudgment{Role: RoleFrontMatter, Confidence: ConfidenceLow, Reason: "page blanche"}, nil
	}

	head := headLines(page.Content, headRegionLines)
	if marker := matchMarkerLine(head, backMarkers); marker != "" {
		return RoleJudgment{Role: RoleBackMatter, Confidence: ConfidenceHigh, Reason: "marqueur " + marker}, nil
	}
	if marker := matchMarkerLine(head, frontMarkers); marker != "" {
		return RoleJudgment{Role: RoleFrontMatter, Confidence: ConfidenceHigh, Reason: "marqueur " + marker}, nil
	}
	if countDottedLeaders(page.Content) >= 3 {
		return RoleJudgment{Role: RoleFrontMatter, Confidence: ConfidenceMedium, Reason: "lignes de sommaire"}, nil
	}
	for _, line := range head {
		if projectPrefixRe.MatchString(line) {
			return RoleJudgment{Role: RoleBody, Confidence: ConfidenceHigh, Reason: "intitulé de projet"}, nil
		}
	}
	if m := headingLineRe.FindStringSubmatch(firstNonBlankLine(page.Content)); m != nil && len(m[1]) <= 2 {
		return RoleJudgment{Role: RoleBody, Confidence: ConfidenceMedium, Reason: "titre de section"}, nil
	}
	if len(strings.Fields(page.Content)) >= 40 {
		return RoleJudgment{Role: RoleBody, Confidence: ConfidenceMedium, Reason: "volume de texte"}, nil
	}
	return RoleJudgment{Role: RoleFrontMatter, Confidence: ConfidenceLow, Reason: "aucun signal"}, nil
}

// Relate decides whether cur opens a new project. Cues are ranked: an
// operation code shared or changed between the pages outranks headings,
// which outrank the default continuation bias.
func (h *Heuristic) Relate(ctx context.Context, prev, cur document.Page) (RelationJudgment, error) {
	if err := ctx.Err(); err != nil {
		return RelationJudgment{}, err
	}

	curFirst := firstNonBlankLine(cur.Content)
	if curFirst == "" {
		return RelationJudgment{Verdict: VerdictContinue, Confidence: ConfidenceMedium, Reason: "page blanche"}, nil
	}

	prevCode := lastOperationCode(prev.Content)
	curCode := firstOperationCode(cur.Content)
	if prevCode != "" && curCode != "" {
		if prevCode == curCode {
			return RelationJudgment{Verdict: VerdictContinue, Confidence: ConfidenceHigh, Reason: "même code opération " + curCode}, nil
		}
		return RelationJudgment{Verdict: VerdictBreak, Confidence: ConfidenceHigh, Reason: "changement de code opération"}, nil
	}

	if continuationRe.MatchString(curFirst) {
		return RelationJudgment{Verdict: VerdictContinue, Confidence: ConfidenceHigh, Reason: "phrase en cours"}, nil
	}
	for _, line := range headLines(cur.Content, 5) {
		if projectPrefixRe.MatchString(line) {
			return RelationJudgment{Verdict: VerdictBreak, Confidence: ConfidenceHigh, Reason: "nouvel intitulé de projet"}, nil
		}
	}
	if m := headingLineRe.FindStringSubmatch(curFirst); m != nil {
		if len(m[1]) == 1 {
			return RelationJudgment{Verdict: VerdictBreak, Confidence: ConfidenceHigh, Reason: "nouveau titre de niveau 1"}, nil
		}
		if len(m[1]) == 2 {
			return RelationJudgment{Verdict: VerdictBreak, Confidence: ConfidenceMedium, Reason: "nouveau titre de niveau 2"}, nil
		}
	}
	return RelationJudgment{Verdict: VerdictContinue, Confidence: ConfidenceLow, Reason: "aucun signal de rupture"}, nil
}

// SuggestTitle picks the most title-like line of the segment: first heading,
// then first project-prefix line, then the first non-blank line.
func (h *Heuristic) SuggestTitle(ctx context.Context, pages []document.Page) (TitleJudgment, error) {
	if err := ctx.Err(); err != nil {
		return TitleJudgment{}, err
	}

	for _, p := range pages {
		for _, line := range strings.Split(p.Content, "\n") {
			line = strings.TrimSpace(line)
			if headingLineRe.MatchString(line) {
				text := strings.TrimSpace(strings.TrimLeft(line, "#"))
				return TitleJudgment{Title: text, Confidence: ConfidenceHigh}, nil
			}
		}
	}
	for _, p := range pages {
		for _, line := range strings.Split(p.Content, "\n") {
			if projectPrefixRe.MatchString(line) {
				return TitleJudgment{Title: strings.TrimSpace(line), Confidence: ConfidenceHigh}, nil
			}
		}
	}
	for _, p := range pages {
		if line := firstNonBlankLine(p.Content); line != "" {
			return TitleJudgment{Title: line, Confidence: ConfidenceLow}, nil
		}
	}
	return TitleJudgment{Title: "", Confidence: ConfidenceLow}, nil
}

func headLines(content string, n int) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == n {
			break
		}
	}
	return out
}

func firstNonBlankLine(content string) string {
	lines := headLines(content, 1)
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

// matchMarkerLine reports the first marker that a head line is about:
// the line, stripped of markdown and trailing punctuation, must start with
// the marker and not run much longer than it.
func matchMarkerLine(head []string, markers []string) string {
	for _, line := range head {
		stripped := strings.ToLower(strings.TrimSpace(strings.TrimLeft(line, "#*- \t")))
		stripped = strings.TrimRight(stripped, " .:")
		for _, marker := range markers {
			if strings.HasPrefix(stripped, marker) && len(stripped) <= len(marker)+20 {
				return marker
			}
		}
	}
	return ""
}

func countDottedLeaders(content string) int {
	count := 0
	for _, line := range strings.Split(content, "\n") {
		if dottedLeaderRe.MatchString(strings.TrimRight(line, " \t")) {
			count++
		}
	}
	return count
}

func firstOperationCode(content string) string {
	return operationCodeRe.FindString(content)
}

func lastOperationCode(content string) string {
	all := operationCodeRe.FindAllString(content, -1)
	if len(all) == 0 {
		return ""
	}
	return all[len(all)-1]
}
