package pipeline

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/agungatd/daily-data-fetcher/internal/metrics"
	"github.com/agungatd/daily-data-fetcher/internal/report"
	"github.com/agungatd/daily-data-fetcher/internal/sink"
	"github.com/agungatd/daily-data-fetcher/internal/source"
)

// Result describes a finished run. Stage is DONE on success and FAILED
// otherwise.
type Result struct {
	RunID      string
	Stage      Stage
	Fetched    int
	Filtered   int
	ReportPath string
	Duration   time.Duration
	SinkErrors map[string]error
}

type Runner struct {
	src            source.Source
	category       string
	outputPath     string
	includeMetrics bool
	namespace      string
	sinks          []sink.Sink
	verbose        bool
	now            func() time.Time
	newID          func() string
}

// Functional Options Pattern
type Option func(*Runner)

func WithSource(s source.Source) Option {
	return func(r *Runner) { r.src = s }
}

func WithCategory(c string) Option {
	return func(r *Runner) { r.category = c }
}

func WithOutput(path string, includeMetrics bool) Option {
	return func(r *Runner) {
		r.outputPath = path
		r.includeMetrics = includeMetrics
	}
}

func WithMetricsNamespace(ns string) Option {
	return func(r *Runner) { r.namespace = ns }
}

func WithSinks(s ...sink.Sink) Option {
	return func(r *Runner) { r.sinks = append(r.sinks, s...) }
}

func WithVerbose(v bool) Option {
	return func(r *Runner) { r.verbose = v }
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		includeMetrics: true,
		namespace:      "data_fetcher",
		now:            time.Now,
		newID:          func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes fetch, filter, validate and report in order, then hands the
// run to the sinks. The returned error is a *StageError from FETCHING,
// VALIDATING or REPORTING; sink failures only show up in Result.SinkErrors.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	res := Result{RunID: r.newID(), Stage: StageStart}
	if r.src == nil {
		return r.fail(res, StageStart, errors.New("no source configured"))
	}
	start := r.now()
	shape := r.src.Shape()
	batch := metrics.NewBatch(r.namespace, r.category)
	log.Printf("run %s: source=%s category=%q output=%s", res.RunID, r.src.Name(), r.category, r.outputPath)

	r.enter(&res, StageFetching)
	payload, err := r.src.Fetch(ctx)
	if err != nil {
		return r.fail(res, StageFetching, err)
	}
	if raw, ok := payload.Collection(shape.Collection); ok {
		res.Fetched = len(raw)
	}
	if total, ok := payload.TotalCount(); ok && r.verbose {
		log.Printf("run %s: source advertises %d total entries", res.RunID, total)
	}
	batch.AddFetched(res.Fetched)

	r.enter(&res, StageFiltering)
	matcher := Matcher{CategoryPath: shape.CategoryPath, CaseSensitive: shape.CaseSensitive}
	records := Filter(payload, shape.Collection, matcher, r.category)
	res.Filtered = len(records)
	batch.AddFiltered(res.Filtered)

	r.enter(&res, StageValidating)
	rules := Rules{RequiredFields: shape.RequiredFields, Matcher: matcher}
	if err := Validate(records, rules, r.category); err != nil {
		return r.fail(res, StageValidating, err)
	}

	r.enter(&res, StageReporting)
	doc := report.Build(r.category, shape.Collection, records, res.Fetched, r.includeMetrics)
	written, err := report.Write(r.outputPath, doc)
	if err != nil {
		return r.fail(res, StageReporting, err)
	}
	res.ReportPath = r.outputPath

	finished := r.now()
	res.Duration = finished.Sub(start)
	batch.ObserveDuration(res.Duration)
	batch.MarkSuccess(finished)

	if len(r.sinks) > 0 {
		r.enter(&res, StageMetricsPush)
		if r.verbose {
			log.Printf("run %s: metrics snapshot:\n%s", res.RunID, batch.Dump())
		}
		res.SinkErrors = r.push(ctx, sink.Run{
			ID:         res.RunID,
			Category:   r.category,
			Source:     r.src.Name(),
			ReportPath: r.outputPath,
			Report:     written,
			Fetched:    res.Fetched,
			Filtered:   res.Filtered,
			Duration:   res.Duration,
			Finished:   finished,
			Metrics:    batch,
		})
	}

	r.enter(&res, StageDone)
	log.Printf("run %s: completed in %s, %d of %d entries reported", res.RunID, res.Duration.Truncate(time.Millisecond), res.Filtered, res.Fetched)
	return res, nil
}

// push tries every sink once; failures are logged and returned, never fatal.
func (r *Runner) push(ctx context.Context, run sink.Run) map[string]error {
	errs := map[string]error{}
	for _, s := range r.sinks {
		if err := s.Push(ctx, run); err != nil {
			log.Printf("%s: push failed: %v", s.Name(), err)
			errs[s.Name()] = err
			continue
		}
		log.Printf("%s: pushed run %s", s.Name(), run.ID)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (r *Runner) enter(res *Result, s Stage) {
	res.Stage = s
	if r.verbose {
		log.Printf("run %s: stage %s", res.RunID, s)
	}
}

func (r *Runner) fail(res Result, at Stage, err error) (Result, error) {
	res.Stage = StageFailed
	log.Printf("run %s: failed during %s: %v", res.RunID, at, err)
	return res, &StageError{Stage: at, Err: err}
}
