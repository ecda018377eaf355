package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockClient is an LLMClient for tests: canned responses, injectable
// latency and failures, and a request counter.
type MockClient struct {
	// Latency delays every request, honoring context cancellation.
	Latency time.Duration
	// ShouldFail makes every request fail.
	ShouldFail bool
	// FailAfter fails requests once more than N have been made (0 = never).
	FailAfter int
	// Responses are returned in order, cycling on the last entry. When a
	// ResponseFormat is set on the request the response is also exposed as
	// ParsedJSON.
	Responses []string

	requestCount atomic.Int64
}

var _ LLMClient = (*MockClient)(nil)

// NewMockClient returns a mock with a single empty-object response.
func NewMockClient(responses ...string) *MockClient {
	if len(responses) == 0 {
		responses = []string{"{}"}
	}
	return &MockClient{
		Latency:   time.Millisecond,
		Responses: responses,
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string { return MockClientName }

// RequestCount returns the number of requests made so far.
func (c *MockClient) RequestCount() int64 { return c.requestCount.Load() }

// Reset clears the request counter.
func (c *MockClient) Reset() { c.requestCount.Store(0) }

// Chat returns the next canned response.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()
	count := c.requestCount.Add(1)

	result := &ChatResult{
		RequestID: fmt.Sprintf("mock-%d", count),
		Provider:  MockClientName,
		ModelUsed: req.Model,
		Attempts:  1,
	}

	fail := func(errType string, err error) (*ChatResult, error) {
		result.Success = false
		result.ErrorType = errType
		result.ErrorMessage = err.Error()
		result.ExecutionTime = time.Since(start)
		return result, err
	}

	if c.ShouldFail {
		return fail("mock_failure", fmt.Errorf("mock client configured to fail"))
	}
	if c.FailAfter > 0 && int(count) > c.FailAfter {
		return fail("mock_failure", fmt.Errorf("mock client failed after %d requests", c.FailAfter))
	}

	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			return fail(ErrTypeCancelled, ctx.Err())
		}
	}

	idx := int(count) - 1
	if idx >= len(c.Responses) {
		idx = len(c.Responses) - 1
	}
	content := c.Responses[idx]

	result.Success = true
	result.Content = content
	result.ExecutionTime = time.Since(start)

	// Rough token accounting so callers exercising usage fields see movement.
	prompt := 0
	for _, m := range req.Messages {
		prompt += len(m.Content) / 4
	}
	result.PromptTokens = prompt
	result.CompletionTokens = len(content) / 4
	result.TotalTokens = result.PromptTokens + result.CompletionTokens

	if req.ResponseFormat != nil {
		parsed, err := ParseStructured(content)
		if err != nil {
			return fail(ErrTypeBadResponse, err)
		}
		result.ParsedJSON = parsed
	}

	return result, nil
}

// JSONResponse is a convenience for building canned structured responses.
func JSONResponse(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
