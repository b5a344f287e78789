package loader

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dbsmedya/snbloader/internal/logger"
	"github.com/dbsmedya/snbloader/internal/partition"
	"github.com/dbsmedya/snbloader/internal/sink"
	"github.com/dbsmedya/snbloader/internal/stats"
)

// Options configures a Coordinator. Zero values fall back to defaults.
type Options struct {
	GraphName      string
	OutputDir      string
	ReportInterval time.Duration
	ReportFormat   stats.Format
	ReportOut      io.Writer

	// Registerer, when set, receives a stats.Collector for the run's workers.
	Registerer prometheus.Registerer
	Clock      clock.Clock
	Logger     *logger.Logger
}

// WorkerResult is the outcome of one worker.
type WorkerResult struct {
	Rank   int
	Part   int
	Files  int
	State  WorkerState
	Counts sink.Counts
	Err    error
}

// Result summarizes a run.
type Result struct {
	RunID       string
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Workers     []WorkerResult
	Counts      sink.Counts
	Success     bool
}

// Coordinator runs one loader instance: a worker per assignment plus the
// progress reporter.
type Coordinator struct {
	assignments []partition.Assignment
	factory     sink.Factory
	opts        Options
	log         *logger.Logger
}

// NewCoordinator validates its inputs and applies option defaults.
func NewCoordinator(assignments []partition.Assignment, factory sink.Factory, opts Options) (*Coordinator, error) {
	if len(assignments) == 0 {
		return nil, fmt.Errorf("no worker assignments")
	}
	if factory == nil {
		return nil, fmt.Errorf("sink factory is nil")
	}
	if opts.ReportInterval <= 0 {
		opts.ReportInterval = 10 * time.Second
	}
	if opts.ReportOut == nil {
		opts.ReportOut = io.Discard
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	return &Coordinator{
		assignments: assignments,
		factory:     factory,
		opts:        opts,
		log:         opts.Logger,
	}, nil
}

// Run opens one sink per worker, runs every worker to a terminal state,
// then closes every sink. Worker failures do not stop siblings; all errors
// are returned together, each prefixed with the worker rank.
func (c *Coordinator) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	log := c.log.WithRun(runID)
	result := &Result{RunID: runID, StartedAt: c.opts.Clock.Now()}

	sinks, err := c.openSinks(ctx)
	if err != nil {
		return nil, err
	}

	counters := make([]*stats.Worker, len(c.assignments))
	workers := make([]*Worker, len(c.assignments))
	for i, a := range c.assignments {
		counters[i] = stats.NewWorker(a.Rank)
		workers[i] = NewWorker(a, sinks[i], counters[i], log)
	}

	if c.opts.Registerer != nil {
		collector := stats.NewCollector(counters)
		if err := c.opts.Registerer.Register(collector); err != nil {
			log.Warnw("Failed to register metrics collector", "error", err)
		} else {
			defer c.opts.Registerer.Unregister(collector)
		}
	}

	log.Infow("Load started", "workers", len(workers), "graph", c.opts.GraphName)

	reporter := stats.NewReporter(counters, c.opts.ReportInterval, c.opts.ReportFormat, c.opts.ReportOut,
		stats.WithClock(c.opts.Clock), stats.WithLogger(log))
	reportCtx, stopReport := context.WithCancel(ctx)
	defer stopReport()
	reportErr := make(chan error, 1)
	go func() { reportErr <- reporter.Run(reportCtx) }()

	errs := make([]error, len(workers))
	var wg sync.WaitGroup
	for i, w := range workers {
		wg.Add(1)
		go func(i int, w *Worker) {
			defer wg.Done()
			errs[i] = w.Run(ctx)
		}(i, w)
	}
	wg.Wait()

	var merr *multierror.Error
	for i, err := range errs {
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("worker %d: %w", workers[i].Rank(), err))
		}
	}

	// With a failed worker the processed count never reaches the assigned
	// count, so the reporter has to be stopped.
	if merr != nil {
		stopReport()
	}
	if err := <-reportErr; err != nil {
		merr = multierror.Append(merr, err)
	}

	for i, s := range sinks {
		if err := s.Close(); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("worker %d: close sink %s: %w",
				workers[i].Rank(), c.partition(c.assignments[i]).Label(), err))
		}
	}

	for i, w := range workers {
		wr := WorkerResult{
			Rank:   w.Rank(),
			Part:   c.assignments[i].PartNumber(),
			Files:  len(c.assignments[i].Entries),
			State:  w.State(),
			Counts: w.Counts(),
			Err:    errs[i],
		}
		result.Workers = append(result.Workers, wr)
		result.Counts.Add(wr.Counts)
	}
	result.CompletedAt = c.opts.Clock.Now()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)
	result.Success = merr == nil

	log.Infow("Load finished",
		"success", result.Success,
		"vertices", result.Counts.Vertices,
		"edges", result.Counts.Edges,
		"duration", result.Duration,
		"progress_complete", reporter.Done(),
	)

	return result, merr.ErrorOrNil()
}

func (c *Coordinator) partition(a partition.Assignment) sink.Partition {
	return sink.Partition{GraphName: c.opts.GraphName, Part: a.PartNumber(), OutputDir: c.opts.OutputDir}
}

// openSinks opens every worker's sink before any worker starts. On failure
// the sinks already opened are closed again.
func (c *Coordinator) openSinks(ctx context.Context) ([]sink.GraphSink, error) {
	sinks := make([]sink.GraphSink, 0, len(c.assignments))
	for _, a := range c.assignments {
		p := c.partition(a)
		s, err := c.factory(ctx, p)
		if err != nil {
			merr := multierror.Append(nil, fmt.Errorf("failed to open sink %s: %w", p.Label(), err))
			for _, opened := range sinks {
				if cerr := opened.Close(); cerr != nil {
					merr = multierror.Append(merr, cerr)
				}
			}
			return nil, merr.ErrorOrNil()
		}
		sinks = append(sinks, s)
	}
	return sinks, nil
}
