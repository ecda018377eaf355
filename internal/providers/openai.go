package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	// Mistral La Plateforme is the default endpoint; any OpenAI-compatible
	// chat API works by overriding BaseURL.
	openAIDefaultBaseURL = "https://api.mistral.ai/v1"
	openAIDefaultModel   = "mistral-medium-latest"
	openAIDefaultTimeout = 60 * time.Second
)

// OpenAIConfig configures an OpenAI-compatible chat client.
type OpenAIConfig struct {
	// Name identifies the client in logs and results (e.g. "mistral").
	Name    string
	APIKey  string
	BaseURL string
	Model   string
	// RateLimit is requests per minute; 0 uses the limiter default.
	RateLimit int
	// Timeout applies per request when ChatRequest.Timeout is zero.
	Timeout time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint.
type OpenAIClient struct {
	name    string
	model   string
	timeout time.Duration
	client  openai.Client
	limiter *RateLimiter
	logger  *slog.Logger
}

var _ LLMClient = (*OpenAIClient)(nil)

// NewOpenAIClient creates a chat client for the configured endpoint.
func NewOpenAIClient(cfg OpenAIConfig, logger *slog.Logger) *OpenAIClient {
	if cfg.Name == "" {
		cfg.Name = "openai"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = openAIDefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = openAIDefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = openAIDefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	// Retries are owned by the oracle layer; the SDK must not add its own.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
		option.WithBaseURL(cfg.BaseURL),
	}

	return &OpenAIClient{
		name:    cfg.Name,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		client:  openai.NewClient(opts...),
		limiter: NewRateLimiter(cfg.RateLimit),
		logger:  logger.With("provider", cfg.Name),
	}
}

// Name returns the client identifier.
func (c *OpenAIClient) Name() string { return c.name }

// Model returns the configured default model.
func (c *OpenAIClient) Model() string { return c.model }

// Chat sends one chat completion request.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	result := &ChatResult{
		RequestID: requestID,
		Provider:  c.name,
		ModelUsed: model,
		Attempts:  1,
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return c.fail(result, start, ErrTypeCancelled, err)
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.ResponseFormat != nil {
		rf, err := buildResponseFormat(req.ResponseFormat)
		if err != nil {
			return c.fail(result, start, ErrTypeBadResponse, err)
		}
		params.ResponseFormat = rf
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	completion, err := c.client.Chat.Completions.New(callCtx, params)
	if err != nil {
		errType := classifyError(err)
		if errType == ErrTypeRateLimited {
			c.limiter.Record429(0)
		}
		c.logger.Warn("chat request failed",
			"request_id", requestID,
			"model", model,
			"error_type", errType,
			"error", err,
		)
		return c.fail(result, start, errType, err)
	}
	if len(completion.Choices) == 0 {
		return c.fail(result, start, ErrTypeBadResponse, fmt.Errorf("empty response from %s", c.name))
	}

	result.Success = true
	result.Content = completion.Choices[0].Message.Content
	result.PromptTokens = int(completion.Usage.PromptTokens)
	result.CompletionTokens = int(completion.Usage.CompletionTokens)
	result.TotalTokens = int(completion.Usage.TotalTokens)
	result.ExecutionTime = time.Since(start)

	if req.ResponseFormat != nil {
		parsed, err := ParseStructured(result.Content)
		if err != nil {
			result.Success = false
			result.ErrorType = ErrTypeBadResponse
			result.ErrorMessage = err.Error()
			return result, fmt.Errorf("%s returned non-JSON content: %w", c.name, err)
		}
		result.ParsedJSON = parsed
	}

	c.logger.Debug("chat request complete",
		"request_id", requestID,
		"model", model,
		"tokens", result.TotalTokens,
		"duration", result.ExecutionTime.String(),
	)
	return result, nil
}

func (c *OpenAIClient) fail(result *ChatResult, start time.Time, errType string, err error) (*ChatResult, error) {
	result.Success = false
	result.ErrorType = errType
	result.ErrorMessage = err.Error()
	result.ExecutionTime = time.Since(start)
	return result, err
}

func buildResponseFormat(rf *ResponseFormat) (openai.ChatCompletionNewParamsResponseFormatUnion, error) {
	switch rf.Type {
	case "json_schema":
		var schema any
		if len(rf.JSONSchema) > 0 {
			if err := json.Unmarshal(rf.JSONSchema, &schema); err != nil {
				return openai.ChatCompletionNewParamsResponseFormatUnion{},
					fmt.Errorf("invalid response schema: %w", err)
			}
		}
		return openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "response",
					Schema: schema,
					Strict: openai.Bool(true),
				},
			},
		}, nil
	default:
		return openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}, nil
	}
}

func classifyError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTypeTimeout
	case errors.Is(err, context.Canceled):
		return ErrTypeCancelled
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return ErrTypeRateLimited
		case apiErr.StatusCode >= 500:
			return ErrTypeServerError
		default:
			return ErrTypeAPIError
		}
	}
	return ErrTypeNetwork
}
