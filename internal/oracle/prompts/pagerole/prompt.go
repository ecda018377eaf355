// Package pagerole is the prompt pack for the page role oracle: is a page
// front matter, project body, or back matter.
package pagerole

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

// maxPageExcerpt bounds how much page content is sent per judgment.
const maxPageExcerpt = 6000

// Input is the data for one role judgment.
type Input struct {
	PageNumber int
	Content    string

	// SystemPromptOverride replaces the embedded system prompt when
	// non-empty. Callers resolve overrides through prompts.Resolver.
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

// UserPrompt builds the user prompt for one page.
func UserPrompt(in Input) string {
	var buf bytes.Buffer
	data := struct {
		PageNumber int
		Content    string
	}{
		PageNumber: in.PageNumber,
		Content:    prompts.ExcerptHead(in.Content, maxPageExcerpt),
	}
	if err := userTemplate.Execute(&buf, data); err != nil {
		return userPromptTmpl
	}
	return buf.String()
}

// BuildRequest assembles the chat request for one role judgment. The caller
// sets Model, Timeout, and RequestID.
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
	SystemPromptKey = "oracle.pagerole.system"
	UserPromptKey   = "oracle.pagerole.user"
)

// RegisterPrompts registers the pack's prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPromptTmpl,
		Description: "Page role classification system prompt - front matter, body, or back matter",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPromptTmpl,
		Description: "Page role classification user prompt template",
	})
}
