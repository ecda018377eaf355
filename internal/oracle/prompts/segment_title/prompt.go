// Package segment_title is the prompt pack for the title oracle: synthesize
// a project title from a finalized segment's pages.
package segment_title

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

const (
	// The first page almost always carries the title; later pages only
	// disambiguate.
	maxFirstPageExcerpt = 5000
	maxOtherPageExcerpt = 1200
	maxPages            = 6
)

// PageExcerpt is one page of the segment as sent to the model.
type PageExcerpt struct {
	Number  int
	Content string
}

// Input is the data for one title judgment.
type Input struct {
	FirstPage int
	LastPage  int
	Pages     []PageExcerpt

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

// UserPrompt builds the user prompt for one segment.
func UserPrompt(in Input) string {
	pages := in.Pages
	if len(pages) > maxPages {
		pages = pages[:maxPages]
	}

	capped := make([]PageExcerpt, len(pages))
	for i, p := range pages {
		limit := maxOtherPageExcerpt
		if i == 0 {
			limit = maxFirstPageExcerpt
		}
		capped[i] = PageExcerpt{Number: p.Number, Content: prompts.ExcerptHead(p.Content, limit)}
	}

	var buf bytes.Buffer
	data := struct {
		FirstPage int
		LastPage  int
		Pages     []PageExcerpt
	}{FirstPage: in.FirstPage, LastPage: in.LastPage, Pages: capped}
	if err := userTemplate.Execute(&buf, data); err != nil {
		return userPromptTmpl
	}
	return buf.String()
}

// BuildRequest assembles the chat request for one title judgment. The caller
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
		MaxTokens:      200,
	}
}

// Prompt keys
const (
	SystemPromptKey = "oracle.segment_title.system"
	UserPromptKey   = "oracle.segment_title.user"
)

// RegisterPrompts registers the pack's prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPromptTmpl,
		Description: "Segment title system prompt - synthesize a project title from its pages",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPromptTmpl,
		Description: "Segment title user prompt template",
	})
}
