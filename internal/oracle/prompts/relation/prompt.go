// Package relation is the prompt pack for the page relation oracle: does a
// body page continue the previous page's project or start a new one.
package relation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"text/template"

	"github.com/jackzampolin/rexseg/internal/oracle/prompts"
	"github.com/jackzampolin/rexseg/internal/providers"
)

//go:embed system.tmpl
var systemPromptTmpl string

//go:embed user.tmpl
var userPromptTmpl string

var (
	systemTemplate = template.Must(template.New("system").Parse(systemPromptTmpl))
	userTemplate   = template.Must(template.New("user").Parse(userPromptTmpl))
)

// The decision hinges on the boundary: the tail of the previous page and the
// head of the current one.
const (
	maxPrevExcerpt = 2500
	maxCurExcerpt  = 4000
)

// Input is the data for one continuity judgment.
type Input struct {
	PrevNumber  int
	PrevContent string
	CurNumber   int
	CurContent  string

	// SystemPromptOverride replaces the embedded system prompt when
	// non-empty.
	SystemPromptOverride string
}

// SystemPrompt returns the system prompt with the response schema rendered
// in.
func SystemPrompt() string {
	schemaJSON, err := json.MarshalIndent(ResponseSchema, "", "  ")
	if err != nil {
		return systemPromptTmpl
	}
	var buf bytes.Buffer
	data := struct{ SchemaJSON string }{SchemaJSON: string(schemaJSON)}
	if err := systemTemplate.Execute(&buf, data); err != nil {
		return systemPromptTmpl
	}
	return buf.String()
}

// UserPrompt builds the user prompt for one page pair.
func UserPrompt(in Input) string {
	var buf bytes.Buffer
	data := struct {
		PrevNumber  int
		PrevContent string
		CurNumber   int
		CurContent  string
	}{
		PrevNumber:  in.PrevNumber,
		PrevContent: prompts.ExcerptTail(in.PrevContent, maxPrevExcerpt),
		CurNumber:   in.CurNumber,
		CurContent:  prompts.ExcerptHead(in.CurContent, maxCurExcerpt),
	}
	if err := userTemplate.Execute(&buf, data); err != nil {
		return userPromptTmpl
	}
	return buf.String()
}

// BuildRequest assembles the chat request for one continuity judgment. The
// caller sets Model, Timeout, and RequestID.
func BuildRequest(in Input) *providers.ChatRequest {
	systemPrompt := in.SystemPromptOverride
	if systemPrompt == "" {
		systemPrompt = SystemPrompt()
	}
	return &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: UserPrompt(in)},
		},
		ResponseFormat: &providers.ResponseFormat{Type: "json_object"},
		Temperature:    0,
		MaxTokens:      300,
	}
}

// Prompt keys
const (
	SystemPromptKey = "oracle.relation.system"
	UserPromptKey   = "oracle.relation.user"
)

// RegisterPrompts registers the pack's prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPromptTmpl,
		Description: "Page continuity system prompt - continue vs break between body pages",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPromptTmpl,
		Description: "Page continuity user prompt template",
	})
}
