package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jackzampolin/rexseg/internal/document"
	"github.com/jackzampolin/rexseg/internal/oracle/prompts"
	"github.com/jackzampolin/rexseg/internal/oracle/prompts/pagerole"
	"github.com/jackzampolin/rexseg/internal/oracle/prompts/relation"
	"github.com/jackzampolin/rexseg/internal/oracle/prompts/segment_title"
	"github.com/jackzampolin/rexseg/internal/providers"
)

// Retry and timeout defaults for LLM-backed oracles.
const (
	DefaultTimeout    = 60 * time.Second
	DefaultRetries    = 2
	DefaultRetryDelay = 500 * time.Millisecond
)

// LLMConfig configures the LLM-backed oracle suite.
type LLMConfig struct {
	// Client is the chat transport. Required.
	Client providers.LLMClient
	// Model overrides the client's default model when set.
	Model string
	// Timeout bounds each individual oracle call.
	Timeout time.Duration
	// Retries is how many times a failed call is retried before the
	// oracle reports unavailable. 0 applies DefaultRetries; negative
	// disables retries entirely.
	Retries int
	// RetryDelay seeds the exponential backoff between attempts.
	RetryDelay time.Duration
	// PromptDir points at prompt override files; empty uses embedded
	// prompts.
	PromptDir string
	// Trace, when set, records every call.
	Trace *Trace
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// LLM implements all three oracle capabilities on top of one chat client.
// Every judgment is a single structured chat call: per-call timeout, bounded
// retries with backoff, and local schema validation of the model output.
// Invalid output is retried like a transport failure, never guessed around.
type LLM struct {
	client     providers.LLMClient
	model      string
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
	resolver   *prompts.Resolver
	trace      *Trace
	logger     *slog.Logger

	roleSchema     *jsonschema.Schema
	relationSchema *jsonschema.Schema
	titleSchema    *jsonschema.Schema
}

var (
	_ PageRoleOracle     = (*LLM)(nil)
	_ PageRelationOracle = (*LLM)(nil)
	_ TitleOracle        = (*LLM)(nil)
)

// NewLLM wires the oracle suite. The prompt packs are registered on an
// internal resolver so PromptDir overrides apply uniformly.
func NewLLM(cfg LLMConfig) (*LLM, error) {
	if cfg.Client == nil {
		return nil, errors.New("oracle: LLM client is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries == 0 {
		cfg.Retries = DefaultRetries
	} else if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	resolver := prompts.NewResolver(cfg.PromptDir, logger)
	pagerole.RegisterPrompts(resolver)
	relation.RegisterPrompts(resolver)
	segment_title.RegisterPrompts(resolver)

	roleSchema, err := compileJudgmentSchema("pagerole.json", pagerole.ResponseSchema)
	if err != nil {
		return nil, fmt.Errorf("oracle: compiling role schema: %w", err)
	}
	relationSchema, err := compileJudgmentSchema("relation.json", relation.ResponseSchema)
	if err != nil {
		return nil, fmt.Errorf("oracle: compiling relation schema: %w", err)
	}
	titleSchema, err := compileJudgmentSchema("segment_title.json", segment_title.ResponseSchema)
	if err != nil {
		return nil, fmt.Errorf("oracle: compiling title schema: %w", err)
	}

	return &LLM{
		client:         cfg.Client,
		model:          cfg.Model,
		timeout:        cfg.Timeout,
		retries:        cfg.Retries,
		retryDelay:     cfg.RetryDelay,
		resolver:       resolver,
		trace:          cfg.Trace,
		logger:         logger.With("component", "oracle"),
		roleSchema:     roleSchema,
		relationSchema: relationSchema,
		titleSchema:    titleSchema,
	}, nil
}

// SetTrace attaches a per-run trace. Pass nil to detach.
func (o *LLM) SetTrace(t *Trace) { o.trace = t }

// Prompts exposes the resolver, mainly for listing embedded prompts.
func (o *LLM) Prompts() *prompts.Resolver { return o.resolver }

// ClassifyPage asks the model for the structural role of one page.
func (o *LLM) ClassifyPage(ctx context.Context, page document.Page) (RoleJudgment, error) {
	in := pagerole.Input{
		PageNumber:           page.PageNumber,
		Content:              page.Content,
		SystemPromptOverride: o.systemOverride(pagerole.SystemPromptKey),
	}

	var judgment RoleJudgment
	parse := func(raw json.RawMessage) (string, error) {
		res, err := pagerole.ParseResult(raw)
		if err != nil {
			return "", err
		}
		role, err := ParsePageRole(res.Role)
		if err != nil {
			return "", err
		}
		judgment = RoleJudgment{Role: role, Confidence: ParseConfidence(res.Confidence)}
		if res.Reason != nil {
			judgment.Reason = *res.Reason
		}
		return string(role), nil
	}

	err := o.call(ctx, KindPageRole, []int{page.PageNumber}, pagerole.BuildRequest(in), o.roleSchema, parse)
	if err != nil {
		return RoleJudgment{}, err
	}
	return judgment, nil
}

// Relate asks the model whether cur continues prev's project.
func (o *LLM) Relate(ctx context.Context, prev, cur document.Page) (RelationJudgment, error) {
	in := relation.Input{
		PrevNumber:           prev.PageNumber,
		PrevContent:          prev.Content,
		CurNumber:            cur.PageNumber,
		CurContent:           cur.Content,
		SystemPromptOverride: o.systemOverride(relation.SystemPromptKey),
	}

	var judgment RelationJudgment
	parse := func(raw json.RawMessage) (string, error) {
		res, err := relation.ParseResult(raw)
		if err != nil {
			return "", err
		}
		verdict, err := ParseVerdict(res.Relation)
		if err != nil {
			return "", err
		}
		judgment = RelationJudgment{Verdict: verdict, Confidence: ParseConfidence(res.Confidence)}
		if res.Reason != nil {
			judgment.Reason = *res.Reason
		}
		return string(verdict), nil
	}

	pair := []int{prev.PageNumber, cur.PageNumber}
	err := o.call(ctx, KindPageRelation, pair, relation.BuildRequest(in), o.relationSchema, parse)
	if err != nil {
		return RelationJudgment{}, err
	}
	return judgment, nil
}

// SuggestTitle asks the model to title a segment from its pages.
func (o *LLM) SuggestTitle(ctx context.Context, pages []document.Page) (TitleJudgment, error) {
	if len(pages) == 0 {
		return TitleJudgment{}, errors.New("oracle: no pages to title")
	}

	in := segment_title.Input{
		FirstPage:            pages[0].PageNumber,
		LastPage:             pages[len(pages)-1].PageNumber,
		Pages:                make([]segment_title.PageExcerpt, len(pages)),
		SystemPromptOverride: o.systemOverride(segment_title.SystemPromptKey),
	}
	pageNumbers := make([]int, len(pages))
	for i, p := range pages {
		in.Pages[i] = segment_title.PageExcerpt{Number: p.PageNumber, Content: p.Content}
		pageNumbers[i] = p.PageNumber
	}

	var judgment TitleJudgment
	parse := func(raw json.RawMessage) (string, error) {
		res, err := segment_title.ParseResult(raw)
		if err != nil {
			return "", err
		}
		judgment = TitleJudgment{Title: res.Title, Confidence: ParseConfidence(res.Confidence)}
		return res.Title, nil
	}

	err := o.call(ctx, KindTitle, pageNumbers, segment_title.BuildRequest(in), o.titleSchema, parse)
	if err != nil {
		return TitleJudgment{}, err
	}
	return judgment, nil
}

// call runs one logical oracle judgment: retried chat attempts, each with
// its own timeout, followed by schema validation and parsing of the output.
func (o *LLM) call(ctx context.Context, kind Kind, pages []int, req *providers.ChatRequest, schema *jsonschema.Schema, parse func(json.RawMessage) (string, error)) error {
	if o.model != "" {
		req.Model = o.model
	}
	req.Timeout = o.timeout
	req.RequestID = uuid.New().String()

	start := time.Now()
	attempts := 0
	var summary string

	err := retry.Do(
		func() error {
			attempts++
			attemptCtx, cancel := context.WithTimeout(ctx, o.timeout)
			defer cancel()

			res, err := o.client.Chat(attemptCtx, req)
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
					return fmt.Errorf("%s judgment exceeded %s: %w", kind, o.timeout, ErrOracleTimeout)
				}
				return err
			}

			raw := res.ParsedJSON
			if len(raw) == 0 {
				raw, err = providers.ParseStructured(res.Content)
				if err != nil {
					return fmt.Errorf("unparseable %s judgment: %w", kind, err)
				}
			}
			if err := validateJudgment(schema, raw); err != nil {
				return fmt.Errorf("invalid %s judgment: %w", kind, err)
			}

			s, err := parse(raw)
			if err != nil {
				return fmt.Errorf("invalid %s judgment: %w", kind, err)
			}
			summary = s
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(o.retries)+1),
		retry.Delay(o.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			o.logger.Warn("oracle call failed, retrying",
				"oracle", string(kind),
				"pages", pages,
				"attempt", n+1,
				"error", err,
			)
		}),
	)

	call := Call{
		RequestID: req.RequestID,
		Kind:      kind,
		Pages:     pages,
		Attempts:  attempts,
		Duration:  time.Since(start),
		StartedAt: start,
		Success:   err == nil,
		Judgment:  summary,
	}
	if err != nil {
		call.Error = err.Error()
	}
	o.trace.Record(call)

	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s oracle aborted: %w", kind, ctxErr)
	}
	return fmt.Errorf("%s oracle failed after %d attempts: %w: %w", kind, attempts, ErrOracleUnavailable, err)
}

// systemOverride returns the override text for a prompt key, or "" when the
// embedded default applies.
func (o *LLM) systemOverride(key string) string {
	resolved, err := o.resolver.Resolve(key)
	if err != nil || !resolved.IsOverride {
		return ""
	}
	return resolved.Text
}

func compileJudgmentSchema(name string, schema map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return compiler.Compile(name)
}

func validateJudgment(schema *jsonschema.Schema, raw json.RawMessage) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	return schema.Validate(doc)
}
