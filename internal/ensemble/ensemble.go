// Package ensemble runs independent landscape simulations in parallel. Each
// run owns its field and random stream; run i is seeded with base seed + i so
// any single run can be replayed on its own.
package ensemble

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strconv"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"firescar/internal/metrics"
	"firescar/internal/sims/landscape"
	"firescar/pkg/sims/fire"
)

// ErrNoRuns is returned when an ensemble asks for fewer than one run.
var ErrNoRuns = errors.New("ensemble: at least one run is required")

// Config describes an ensemble.
type Config struct {
	Landscape landscape.Config
	Runs      int
	Steps     int
	Workers   int
	// SampleEvery records field metrics every N steps; zero samples only at
	// the end of each run.
	SampleEvery int
}

// Result holds the outcome of one run.
type Result struct {
	Run     int
	Seed    int64
	Summary landscape.Summary
	Events  []fire.Event
}

// Report holds every run of an ensemble ordered by run index.
type Report struct {
	ID      uuid.UUID
	Results []Result
}

// Totals sums fires and burned area over all runs.
func (r Report) Totals() (fires int, area float64) {
	for _, res := range r.Results {
		fires += res.Summary.Fires
		area += res.Summary.BurnedArea
	}
	return fires, area
}

// Runner executes ensembles.
type Runner struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger; per-run loggers carry the ensemble id, run and seed.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records fires and field samples on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) {
		if t != nil {
			r.tracer = t
		}
	}
}

// New returns a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer: otel.Tracer("firescar/ensemble"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every run of cfg, at most cfg.Workers at a time. The first
// failure cancels the remaining runs.
func (r *Runner) Run(ctx context.Context, cfg Config) (Report, error) {
	if cfg.Runs < 1 {
		return Report{}, ErrNoRuns
	}
	if cfg.Steps < 0 {
		return Report{}, fmt.Errorf("ensemble: steps must be >= 0, got %d", cfg.Steps)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	report := Report{ID: uuid.New(), Results: make([]Result, cfg.Runs)}

	ctx, span := r.tracer.Start(ctx, "ensemble.Run", trace.WithAttributes(
		attribute.String("ensemble.id", report.ID.String()),
		attribute.Int("ensemble.runs", cfg.Runs),
		attribute.Int("ensemble.steps", cfg.Steps),
	))
	defer span.End()

	r.logger.Info("ensemble started", "ensemble", report.ID, "runs", cfg.Runs, "steps", cfg.Steps, "workers", workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < cfg.Runs; i++ {
		g.Go(func() error {
			res, err := r.runOne(gctx, report.ID, i, cfg)
			if err != nil {
				return err
			}
			report.Results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Report{}, err
	}

	fires, area := report.Totals()
	span.SetAttributes(attribute.Int("ensemble.fires", fires), attribute.Float64("ensemble.burned_area", area))
	r.logger.Info("ensemble finished", "ensemble", report.ID, "fires", fires, "burned_area", area)
	return report, nil
}

func (r *Runner) runOne(ctx context.Context, id uuid.UUID, run int, cfg Config) (Result, error) {
	lc := cfg.Landscape
	lc.Seed += int64(run)
	label := strconv.Itoa(run)

	ctx, span := r.tracer.Start(ctx, "ensemble.run", trace.WithAttributes(
		attribute.Int("run", run),
		attribute.Int64("seed", lc.Seed),
	))
	defer span.End()

	logger := r.logger.With("ensemble", id, "run", run, "seed", lc.Seed)
	world, err := landscape.NewWithConfig(lc,
		landscape.WithLogger(logger),
		landscape.WithSink(r.metrics.Sink(label)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, fmt.Errorf("run %d: %w", run, err)
	}

	for step := 1; step <= cfg.Steps; step++ {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return Result{}, fmt.Errorf("run %d: %w", run, err)
		}
		world.Step()
		if cfg.SampleEvery > 0 && step%cfg.SampleEvery == 0 {
			mean, maxVal := world.Field().Stats()
			r.metrics.ObserveField(label, mean, maxVal)
		}
	}

	summary := world.Summary()
	r.metrics.ObserveField(label, summary.Mean, summary.Max)
	span.SetAttributes(
		attribute.Int("fires", summary.Fires),
		attribute.Float64("burned_area", summary.BurnedArea),
	)
	logger.Debug("run finished", "fires", summary.Fires, "burned_area", summary.BurnedArea, "mean", summary.Mean, "max", summary.Max)

	return Result{Run: run, Seed: lc.Seed, Summary: summary, Events: world.Events()}, nil
}
