// Package runner processes independent documents in parallel. Each document
// stays strictly sequential inside its own engine; the runner only bounds
// how many documents are in flight and collects per-document outcomes
// without letting one failure abort the batch.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jackzampolin/rexseg/internal/document"
	"github.com/jackzampolin/rexseg/internal/rex"
)

// DefaultWorkers bounds in-flight documents when no limit is configured.
const DefaultWorkers = 4

// Engine segments one document. Each job gets a fresh engine from the
// factory, so engines never need to be safe for concurrent use.
type Engine interface {
	Segment(ctx context.Context, doc *document.Document) (rex.ProjectList, error)
}

// Job is one document to segment, named for reporting.
type Job struct {
	Name string
	Doc  *document.Document
}

// Result is one job's outcome. Err is nil on success.
type Result struct {
	Name     string
	Projects rex.ProjectList
	Err      error
	Duration time.Duration
}

// Runner fans jobs out over a bounded worker pool.
type Runner struct {
	workers int
	build   func() (Engine, error)
	logger  *slog.Logger
}

// New returns a runner that builds one engine per job. workers <= 0 applies
// DefaultWorkers.
func New(workers int, build func() (Engine, error), logger *slog.Logger) (*Runner, error) {
	if build == nil {
		return nil, errors.New("runner: engine factory is required")
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		workers: workers,
		build:   build,
		logger:  logger.With("component", "runner"),
	}, nil
}

// Run processes every job and returns results in job order. A cancelled
// context fails the jobs that have not finished, but already-completed
// results are kept.
func (r *Runner) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup

	r.logger.Info("batch started", "jobs", len(jobs), "workers", r.workers)

	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i] = Result{Name: job.Name, Err: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			results[i] = r.runOne(ctx, job)
		}(i, job)
	}
	wg.Wait()

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	r.logger.Info("batch finished", "jobs", len(jobs), "failed", failed)
	return results
}

func (r *Runner) runOne(ctx context.Context, job Job) Result {
	start := time.Now()

	engine, err := r.build()
	if err != nil {
		r.logger.Error("engine construction failed", "job", job.Name, "error", err)
		return Result{Name: job.Name, Err: err, Duration: time.Since(start)}
	}

	projects, err := engine.Segment(ctx, job.Doc)
	res := Result{
		Name:     job.Name,
		Projects: projects,
		Err:      err,
		Duration: time.Since(start),
	}
	if err != nil {
		r.logger.Warn("job failed", "job", job.Name, "error", err, "duration", res.Duration.String())
		return res
	}
	r.logger.Info("job finished", "job", job.Name, "projects", len(projects), "duration", res.Duration.String())
	return res
}
