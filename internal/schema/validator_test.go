package schema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackzampolin/rexseg/internal/rex"
)

func TestDefaultAcceptsProjectList(t *testing.T) {
	v := Default()

	list := rex.ProjectList{
		{Titre: "Restauration de la Veyle", PageDebut: 3, PageFin: 8},
		{Titre: "", PageDebut: 9, PageFin: 9},
	}
	if err := v.Validate(list); err != nil {
		t.Errorf("Validate(list) = %v, want nil", err)
	}
	if err := v.Validate(rex.ProjectList{}); err != nil {
		t.Errorf("Validate(empty list) = %v, want nil", err)
	}
}

func TestDefaultRejections(t *testing.T) {
	v := Default()

	tests := []struct {
		name string
		raw  string
	}{
		{"not an array", `{"Titre":"x","PageDebut":1,"PageFin":2}`},
		{"missing field", `[{"Titre":"x","PageDebut":1}]`},
		{"extra field", `[{"Titre":"x","PageDebut":1,"PageFin":2,"Notes":"y"}]`},
		{"wrong type", `[{"Titre":"x","PageDebut":"1","PageFin":2}]`},
		{"fractional page", `[{"Titre":"x","PageDebut":1.5,"PageFin":2}]`},
		{"page below one", `[{"Titre":"x","PageDebut":0,"PageFin":2}]`},
		{"invalid json", `[{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateJSON([]byte(tt.raw))
			if !errors.Is(err, ErrSchemaValidation) {
				t.Errorf("ValidateJSON(%s) = %v, want ErrSchemaValidation", tt.raw, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strict.schema.json")
	strict := `{
		"type": "array",
		"items": {
			"type": "object",
			"properties": {
				"Titre": {"type": "string", "minLength": 1},
				"PageDebut": {"type": "integer"},
				"PageFin": {"type": "integer"}
			},
			"required": ["Titre", "PageDebut", "PageFin"]
		}
	}`
	if err := os.WriteFile(path, []byte(strict), 0o644); err != nil {
		t.Fatal(err)
	}

	v, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v.Name() != "strict.schema.json" {
		t.Errorf("Name() = %q", v.Name())
	}

	// The loaded schema replaces the default: empty titles now fail.
	err = v.ValidateJSON([]byte(`[{"Titre":"","PageDebut":1,"PageFin":2}]`))
	if !errors.Is(err, ErrSchemaValidation) {
		t.Errorf("empty title under strict schema = %v, want ErrSchemaValidation", err)
	}
	if err := v.ValidateJSON([]byte(`[{"Titre":"x","PageDebut":1,"PageFin":2}]`)); err != nil {
		t.Errorf("valid record under strict schema = %v, want nil", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing schema file")
	}
}

func TestCompileInvalidSchema(t *testing.T) {
	if _, err := Compile("bad.json", []byte(`{"type": 12}`)); err == nil {
		t.Error("expected compile error for malformed schema")
	}
}

func TestRawRoundTrip(t *testing.T) {
	v := Default()
	if len(v.Raw()) == 0 {
		t.Fatal("Raw() returned empty schema")
	}
	again, err := Compile("copy.json", v.Raw())
	if err != nil {
		t.Fatalf("recompiling Raw(): %v", err)
	}
	if err := again.ValidateJSON([]byte(`[]`)); err != nil {
		t.Errorf("recompiled schema rejects empty list: %v", err)
	}
}
