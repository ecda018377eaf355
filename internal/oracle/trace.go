package oracle

import (
	"log/slog"
	"sync"
	"time"
)

// Call is one completed oracle invocation, successful or not. Attempts
// counts every try including the first.
type Call struct {
	RequestID string
	Kind      Kind
	Pages     []int
	Judgment  string
	Attempts  int
	Duration  time.Duration
	StartedAt time.Time
	Success   bool
	Error     string
}

// Trace accumulates oracle calls for one document run. Safe for concurrent
// use; oracles sharing a trace may be called from multiple runs only if each
// run owns its own Trace.
type Trace struct {
	mu    sync.Mutex
	runID string
	calls []Call
}

// NewTrace returns an empty trace tagged with the run ID.
func NewTrace(runID string) *Trace {
	return &Trace{runID: runID}
}

// RunID returns the run this trace belongs to.
func (t *Trace) RunID() string { return t.runID }

// Record appends one completed call. Nil traces swallow records so callers
// never have to guard.
func (t *Trace) Record(c Call) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, c)
}

// Calls returns a copy of the recorded calls in arrival order.
func (t *Trace) Calls() []Call {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Call, len(t.calls))
	copy(out, t.calls)
	return out
}

// Summary aggregates the trace per oracle kind.
type Summary struct {
	Calls    int
	Failures int
	Retries  int
	Duration time.Duration
}

// Summarize rolls the trace up per kind.
func (t *Trace) Summarize() map[Kind]Summary {
	out := make(map[Kind]Summary)
	if t == nil {
		return out
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.calls {
		s := out[c.Kind]
		s.Calls++
		if !c.Success {
			s.Failures++
		}
		if c.Attempts > 1 {
			s.Retries += c.Attempts - 1
		}
		s.Duration += c.Duration
		out[c.Kind] = s
	}
	return out
}

// LogSummary emits one log line per oracle kind seen in the trace.
func (t *Trace) LogSummary(logger *slog.Logger) {
	if t == nil || logger == nil {
		return
	}
	for kind, s := range t.Summarize() {
		logger.Info("oracle usage",
			"run_id", t.runID,
			"oracle", string(kind),
			"calls", s.Calls,
			"failures", s.Failures,
			"retries", s.Retries,
			"total_duration", s.Duration.String(),
		)
	}
}
