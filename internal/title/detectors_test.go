package title

import (
	"testing"

	"github.com/jackzampolin/rexseg/internal/document"
	"github.com/jackzampolin/rexseg/internal/oracle"
)

func TestHeadingCandidate(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantText string
		wantConf oracle.Confidence
		wantOK   bool
	}{
		{
			"level one",
			"# Effacement du seuil de Margot\n\nLe chantier...",
			"Effacement du seuil de Margot", oracle.ConfidenceHigh, true,
		},
		{
			"shallowest heading wins",
			"### Détail\n\n## Renaturation du Vistre\n\n### Autre détail",
			"Renaturation du Vistre", oracle.ConfidenceHigh, true,
		},
		{
			"deep heading is weaker",
			"### Suivi thermique",
			"Suivi thermique", oracle.ConfidenceMedium, true,
		},
		{"no heading", "du texte sans structure", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := headingCandidate(document.Page{PageNumber: 1, Content: tt.content})
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if c.Text != tt.wantText {
				t.Errorf("text = %q, want %q", c.Text, tt.wantText)
			}
			if c.Confidence != tt.wantConf {
				t.Errorf("confidence = %q, want %q", c.Confidence, tt.wantConf)
			}
		})
	}
}

func TestPrefixCandidate(t *testing.T) {
	page := document.Page{PageNumber: 2, Content: "La Veyle\n\nOpération de reméandrage à Biziat\n\ncorps"}
	c, ok := prefixCandidate(page)
	if !ok {
		t.Fatal("expected a prefix candidate")
	}
	if c.Text != "Opération de reméandrage à Biziat" {
		t.Errorf("text = %q", c.Text)
	}
	if c.Confidence != oracle.ConfidenceHigh {
		t.Errorf("confidence = %q, want high", c.Confidence)
	}

	if _, ok := prefixCandidate(document.Page{Content: "Rien à voir ici"}); ok {
		t.Error("unexpected candidate on plain prose")
	}
}

func TestCapRunCandidate(t *testing.T) {
	c, ok := capRunCandidate(document.Page{PageNumber: 3, Content: "LE SEUIL DE MARGOT\n\ncorps du texte"})
	if !ok {
		t.Fatal("expected a capitalized-run candidate")
	}
	if c.Confidence != oracle.ConfidenceLow {
		t.Errorf("confidence = %q, want low", c.Confidence)
	}

	if _, ok := capRunCandidate(document.Page{Content: "une ligne banale en minuscules"}); ok {
		t.Error("unexpected candidate on lowercase prose")
	}
	if _, ok := capRunCandidate(document.Page{Content: ""}); ok {
		t.Error("unexpected candidate on blank page")
	}
}

func TestDetectPageRankOrder(t *testing.T) {
	// A page carrying a heading, a prefix line and an uppercase first line
	// reports all three, heading first.
	page := document.Page{
		PageNumber: 4,
		Content:    "# RESTAURATION DE LA CONTINUITÉ\n\nProjet porté par le syndicat\n\ncorps",
	}
	cands := detectPage(page)
	if len(cands) < 2 {
		t.Fatalf("got %d candidates, want at least heading and prefix", len(cands))
	}
	if cands[0].Detector != DetectorHeading {
		t.Errorf("first candidate = %s, want %s", cands[0].Detector, DetectorHeading)
	}
	if cands[1].Detector != DetectorPrefix {
		t.Errorf("second candidate = %s, want %s", cands[1].Detector, DetectorPrefix)
	}
}
