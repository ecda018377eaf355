// Package schema owns the JSON Schema the published project list must
// satisfy. A compiled default ships embedded; callers may load their own
// schema file, which then fully replaces the default.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/rexlist.schema.json
var rexListSchema []byte

// DefaultName identifies the embedded schema in logs and errors.
const DefaultName = "rexlist.schema.json"

// ErrSchemaValidation marks output that failed the active schema.
var ErrSchemaValidation = errors.New("schema validation failed")

// Validator validates values against one compiled JSON Schema.
type Validator struct {
	name     string
	raw      []byte
	compiled *jsonschema.Schema
}

// Compile builds a validator from a raw schema document.
func Compile(name string, raw []byte) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("loading schema %s: %w", name, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", name, err)
	}
	return &Validator{name: name, raw: raw, compiled: compiled}, nil
}

// Default returns the embedded REX list schema. The embedded document is
// known good; a compile failure here is a build defect.
func Default() *Validator {
	v, err := Compile(DefaultName, rexListSchema)
	if err != nil {
		panic(fmt.Sprintf("schema: embedded default does not compile: %v", err))
	}
	return v
}

// Load reads and compiles a caller-supplied schema file.
func Load(path string) (*Validator, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	return Compile(filepath.Base(path), raw)
}

// Name returns the schema's identifier.
func (v *Validator) Name() string { return v.name }

// Raw returns the schema document as loaded.
func (v *Validator) Raw() []byte { return v.raw }

// Validate checks any Go value by round-tripping it through JSON, exactly
// the form in which it will be published.
func (v *Validator) Validate(val any) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("%w: value does not marshal: %v", ErrSchemaValidation, err)
	}
	return v.ValidateJSON(raw)
}

// ValidateJSON checks a raw JSON document.
func (v *Validator) ValidateJSON(raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", ErrSchemaValidation, err)
	}
	if err := v.compiled.Validate(doc); err != nil {
		return fmt.Errorf("%w (%s): %v", ErrSchemaValidation, v.name, err)
	}
	return nil
}
