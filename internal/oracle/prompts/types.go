// Package prompts manages the oracle prompt texts: embedded .tmpl defaults
// with optional file-based overrides.
//
// Resolution order for a key:
//  1. Override file <dir>/<key>.md when an override directory is configured
//  2. Embedded default (from .tmpl files in code)
//
// Keys are hierarchical, e.g. "oracle.pagerole.system".
package prompts

// EmbeddedPrompt is a prompt loaded from an embedded .tmpl file.
type EmbeddedPrompt struct {
	Key         string   // hierarchical key: oracle.pagerole.system
	Text        string   // the prompt text (Go template)
	Description string   // human-readable description
	Variables   []string // extracted template variables
	Hash        string   // SHA-256 of the text for change detection
}

// ResolvedPrompt is the outcome of resolving a key.
type ResolvedPrompt struct {
	Key        string
	Text       string
	Variables  []string
	IsOverride bool // true when loaded from an override file
}
