package segmenter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/jackzampolin/rexseg/internal/document"
	"github.com/jackzampolin/rexseg/internal/oracle"
	"github.com/jackzampolin/rexseg/internal/rex"
)

type titleFunc func(context.Context, []document.Page) (string, error)

func (f titleFunc) Title(ctx context.Context, pages []document.Page) (string, error) {
	return f(ctx, pages)
}

func rangeTitles() TitleSource {
	return titleFunc(func(_ context.Context, pages []document.Page) (string, error) {
		return fmt.Sprintf("Projet pages %d-%d", pages[0].PageNumber, pages[len(pages)-1].PageNumber), nil
	})
}

type validatorFunc func(any) error

func (f validatorFunc) Validate(v any) error { return f(v) }

func newTestSegmenter(t *testing.T, cfg Config) *Segmenter {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Titles == nil {
		cfg.Titles = rangeTitles()
	}
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func testDoc(t *testing.T, nums ...int) *document.Document {
	t.Helper()
	pages := make([]document.Page, len(nums))
	for i, n := range nums {
		pages[i] = document.Page{PageNumber: n, Content: fmt.Sprintf("Contenu de la page %d", n)}
	}
	d, err := document.New(pages)
	if err != nil {
		t.Fatalf("document.New: %v", err)
	}
	return d
}

func assertProjects(t *testing.T, got rex.ProjectList, want ...[2]int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d projects (%v), want %d", len(got), got, len(want))
	}
	for i, w := range want {
		if got[i].PageDebut != w[0] || got[i].PageFin != w[1] {
			t.Errorf("project %d = %d-%d, want %d-%d", i, got[i].PageDebut, got[i].PageFin, w[0], w[1])
		}
	}
}

func TestSegmentFrontMatterThenOneProject(t *testing.T) {
	roles := &oracle.ScriptedRoleOracle{Roles: map[int]oracle.PageRole{
		1: oracle.RoleFrontMatter,
		2: oracle.RoleFrontMatter,
	}}
	relations := &oracle.ScriptedRelationOracle{}
	s := newTestSegmenter(t, Config{Roles: roles, Relations: relations})

	list, err := s.Segment(context.Background(), testDoc(t, 1, 2, 3, 4, 5))
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	assertProjects(t, list, [2]int{3, 5})

	if got := roles.Calls(); got != 5 {
		t.Errorf("role oracle consulted %d times, want 5", got)
	}
	want := []int{4, 5}
	got := relations.ConsultedPages()
	if len(got) != len(want) {
		t.Fatalf("relation oracle consulted for pages %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("relation consultation %d = page %d, want %d", i, got[i], want[i])
		}
	}
}

func TestSegmentBreakSplitsProjects(t *testing.T) {
	relations := &oracle.ScriptedRelationOracle{
		Verdicts: map[int]oracle.Verdict{2: oracle.VerdictBreak},
	}
	s := newTestSegmenter(t, Config{
		Roles:     &oracle.ScriptedRoleOracle{},
		Relations: relations,
	})

	list, err := s.Segment(context.Background(), testDoc(t, 1, 2, 3))
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	assertProjects(t, list, [2]int{1, 1}, [2]int{2, 3})
}

func TestSegmentNoBodyPages(t *testing.T) {
	roles := &oracle.ScriptedRoleOracle{DefaultRole: oracle.RoleFrontMatter}
	relations := &oracle.ScriptedRelationOracle{}
	titleCalls := 0
	s := newTestSegmenter(t, Config{
		Roles:     roles,
		Relations: relations,
		Titles: titleFunc(func(context.Context, []document.Page) (string, error) {
			titleCalls++
			return "jamais", nil
		}),
	})

	list, err := s.Segment(context.Background(), testDoc(t, 1, 2, 3))
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("got %d projects, want 0: %v", len(list), list)
	}
	if relations.Calls() != 0 {
		t.Errorf("relation oracle consulted %d times, want 0", relations.Calls())
	}
	if titleCalls != 0 {
		t.Errorf("title source consulted %d times, want 0", titleCalls)
	}
}

func TestSegmentSingleSegmentLaw(t *testing.T) {
	s := newTestSegmenter(t, Config{
		Roles:     &oracle.ScriptedRoleOracle{},
		Relations: &oracle.ScriptedRelationOracle{},
	})

	list, err := s.Segment(context.Background(), testDoc(t, 1, 2, 3, 4))
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	assertProjects(t, list, [2]int{1, 4})
}

func TestSegmentSinglePageLaw(t *testing.T) {
	relations := &oracle.ScriptedRelationOracle{}
	s := newTestSegmenter(t, Config{
		Roles:     &oracle.ScriptedRoleOracle{},
		Relations: relations,
	})

	list, err := s.Segment(context.Background(), testDoc(t, 9))
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	assertProjects(t, list, [2]int{9, 9})
	if relations.Calls() != 0 {
		t.Errorf("relation oracle consulted %d times, want 0 for a single page", relations.Calls())
	}
}

func TestSegmentIdempotence(t *testing.T) {
	build := func() *Segmenter {
		return newTestSegmenter(t, Config{
			Roles: &oracle.ScriptedRoleOracle{Roles: map[int]oracle.PageRole{
				1: oracle.RoleFrontMatter,
				6: oracle.RoleBackMatter,
			}},
			Relations: &oracle.ScriptedRelationOracle{
				Verdicts: map[int]oracle.Verdict{4: oracle.VerdictBreak},
			},
		})
	}

	first, err := build().Segment(context.Background(), testDoc(t, 1, 2, 3, 4, 5, 6))
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := build().Segment(context.Background(), testDoc(t, 1, 2, 3, 4, 5, 6))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("runs differ:\n%s\n%s", a, b)
	}
	assertProjects(t, first, [2]int{2, 3}, [2]int{4, 5})
}

func TestSegmentLowConfidenceBreakContinues(t *testing.T) {
	build := func(opts Options) (*Segmenter, *oracle.ScriptedRelationOracle) {
		relations := &oracle.ScriptedRelationOracle{
			Verdicts:    map[int]oracle.Verdict{3: oracle.VerdictBreak},
			Confidences: map[int]oracle.Confidence{3: oracle.ConfidenceLow},
		}
		s := newTestSegmenter(t, Config{
			Roles:     &oracle.ScriptedRoleOracle{},
			Relations: relations,
			Options:   opts,
		})
		return s, relations
	}

	t.Run("default bar downgrades the break", func(t *testing.T) {
		s, _ := build(Options{})
		list, err := s.Segment(context.Background(), testDoc(t, 1, 2, 3))
		if err != nil {
			t.Fatalf("Segment: %v", err)
		}
		assertProjects(t, list, [2]int{1, 3})
	})

	t.Run("lowered bar honors the break", func(t *testing.T) {
		s, _ := build(Options{BreakConfidence: oracle.ConfidenceLow})
		list, err := s.Segment(context.Background(), testDoc(t, 1, 2, 3))
		if err != nil {
			t.Fatalf("Segment: %v", err)
		}
		assertProjects(t, list, [2]int{1, 2}, [2]int{3, 3})
	})
}

func TestSegmentBackMatterIsAbsorbing(t *testing.T) {
	roles := &oracle.ScriptedRoleOracle{Roles: map[int]oracle.PageRole{
		2: oracle.RoleBackMatter,
		// Pages 3 and 4 would be body again, but the oracle must never
		// even be asked once back matter started.
	}}
	relations := &oracle.ScriptedRelationOracle{}
	s := newTestSegmenter(t, Config{Roles: roles, Relations: relations})

	list, err := s.Segment(context.Background(), testDoc(t, 1, 2, 3, 4))
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	assertProjects(t, list, [2]int{1, 1})
	if got := roles.Calls(); got != 2 {
		t.Errorf("role oracle consulted %d times, want 2", got)
	}
	if relations.Calls() != 0 {
		t.Errorf("relation oracle consulted %d times, want 0", relations.Calls())
	}
}

func TestSegmentBackMatterBeforeBodyCountsAsFrontMatter(t *testing.T) {
	roles := &oracle.ScriptedRoleOracle{Roles: map[int]oracle.PageRole{
		1: oracle.RoleFrontMatter,
		2: oracle.RoleBackMatter,
	}}
	s := newTestSegmenter(t, Config{Roles: roles, Relations: &oracle.ScriptedRelationOracle{}})

	list, err := s.Segment(context.Background(), testDoc(t, 1, 2, 3))
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	assertProjects(t, list, [2]int{3, 3})
	if got := roles.Calls(); got != 3 {
		t.Errorf("role oracle consulted %d times, want 3 (no absorbing before body)", got)
	}
}

func TestSegmentBackMatterConfidenceGate(t *testing.T) {
	roles := &oracle.ScriptedRoleOracle{
		Roles:       map[int]oracle.PageRole{2: oracle.RoleBackMatter},
		Confidences: map[int]oracle.Confidence{2: oracle.ConfidenceLow},
	}
	s := newTestSegmenter(t, Config{
		Roles:     roles,
		Relations: &oracle.ScriptedRelationOracle{},
		Options:   Options{BackMatterConfidence: oracle.ConfidenceMedium},
	})

	list, err := s.Segment(context.Background(), testDoc(t, 1, 2))
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	assertProjects(t, list, [2]int{1, 2})
}

func TestSegmentPageNumberGapsArePreserved(t *testing.T) {
	s := newTestSegmenter(t, Config{
		Roles:     &oracle.ScriptedRoleOracle{},
		Relations: &oracle.ScriptedRelationOracle{},
	})

	list, err := s.Segment(context.Background(), testDoc(t, 2, 4, 7))
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	assertProjects(t, list, [2]int{2, 7})
}

func TestSegmentOracleFailureYieldsNoPartialResult(t *testing.T) {
	boom := errors.New("boom")

	t.Run("role oracle", func(t *testing.T) {
		s := newTestSegmenter(t, Config{
			Roles:     &oracle.ScriptedRoleOracle{Err: boom, ErrOnPage: 3},
			Relations: &oracle.ScriptedRelationOracle{},
		})
		list, err := s.Segment(context.Background(), testDoc(t, 1, 2, 3, 4))
		if !errors.Is(err, boom) {
			t.Fatalf("error = %v, want boom", err)
		}
		if list != nil {
			t.Errorf("list = %v, want nil on failure", list)
		}
	})

	t.Run("relation oracle", func(t *testing.T) {
		s := newTestSegmenter(t, Config{
			Roles:     &oracle.ScriptedRoleOracle{},
			Relations: &oracle.ScriptedRelationOracle{Err: boom, ErrOnPage: 2},
		})
		list, err := s.Segment(context.Background(), testDoc(t, 1, 2))
		if !errors.Is(err, boom) {
			t.Fatalf("error = %v, want boom", err)
		}
		if list != nil {
			t.Errorf("list = %v, want nil on failure", list)
		}
	})

	t.Run("title source", func(t *testing.T) {
		s := newTestSegmenter(t, Config{
			Roles:     &oracle.ScriptedRoleOracle{},
			Relations: &oracle.ScriptedRelationOracle{},
			Titles: titleFunc(func(context.Context, []document.Page) (string, error) {
				return "", boom
			}),
		})
		list, err := s.Segment(context.Background(), testDoc(t, 1, 2))
		if !errors.Is(err, boom) {
			t.Fatalf("error = %v, want boom", err)
		}
		if list != nil {
			t.Errorf("list = %v, want nil on failure", list)
		}
	})
}

func TestSegmentTitlesFlowIntoProjects(t *testing.T) {
	titles := map[int]string{1: "Premier projet", 3: "Second projet"}
	s := newTestSegmenter(t, Config{
		Roles: &oracle.ScriptedRoleOracle{},
		Relations: &oracle.ScriptedRelationOracle{
			Verdicts: map[int]oracle.Verdict{3: oracle.VerdictBreak},
		},
		Titles: titleFunc(func(_ context.Context, pages []document.Page) (string, error) {
			return titles[pages[0].PageNumber], nil
		}),
	})

	list, err := s.Segment(context.Background(), testDoc(t, 1, 2, 3))
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if list[0].Titre != "Premier projet" || list[1].Titre != "Second projet" {
		t.Errorf("titles = %q, %q", list[0].Titre, list[1].Titre)
	}
}

func TestSegmentValidatorRejectionIsFatal(t *testing.T) {
	s := newTestSegmenter(t, Config{
		Roles:     &oracle.ScriptedRoleOracle{},
		Relations: &oracle.ScriptedRelationOracle{},
		Validator: validatorFunc(func(any) error { return errors.New("schema says no") }),
	})

	list, err := s.Segment(context.Background(), testDoc(t, 1))
	if err == nil {
		t.Fatalf("expected validation error, got %v", list)
	}
}

func TestSegmentEmptyDocument(t *testing.T) {
	s := newTestSegmenter(t, Config{
		Roles:     &oracle.ScriptedRoleOracle{},
		Relations: &oracle.ScriptedRelationOracle{},
	})
	if _, err := s.Segment(context.Background(), nil); !errors.Is(err, document.ErrEmptyDocument) {
		t.Fatalf("error = %v, want ErrEmptyDocument", err)
	}
}

func TestSegmentOutputShape(t *testing.T) {
	s := newTestSegmenter(t, Config{
		Roles: &oracle.ScriptedRoleOracle{Roles: map[int]oracle.PageRole{
			1: oracle.RoleFrontMatter,
		}},
		Relations: &oracle.ScriptedRelationOracle{},
		Titles: titleFunc(func(context.Context, []document.Page) (string, error) {
			return "Restauration de la Veyle", nil
		}),
	})

	list, err := s.Segment(context.Background(), testDoc(t, 1, 2, 3))
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	raw, err := json.Marshal(list)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[{"Titre":"Restauration de la Veyle","PageDebut":2,"PageFin":3}]`
	if string(raw) != want {
		t.Errorf("output JSON = %s, want %s", raw, want)
	}
}

func TestNewRequiresOracles(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for missing role oracle")
	}
	if _, err := New(Config{Roles: &oracle.ScriptedRoleOracle{}}); err == nil {
		t.Error("expected error for missing relation oracle")
	}
	if _, err := New(Config{
		Roles:     &oracle.ScriptedRoleOracle{},
		Relations: &oracle.ScriptedRelationOracle{},
	}); err == nil {
		t.Error("expected error for missing title source")
	}
}
