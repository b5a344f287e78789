package stats

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/facebookgo/clock"
	"github.com/mattn/go-runewidth"

	"github.com/dbsmedya/snbloader/internal/logger"
)

// ColumnWidth is the right-aligned width of every table column.
const ColumnWidth = 10

// ReporterState is the lifecycle of a Reporter.
type ReporterState int32

const (
	NotStarted ReporterState = iota
	Reporting
	Stopped
)

func (s ReporterState) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Reporting:
		return "reporting"
	default:
		return "stopped"
	}
}

// Reporter periodically prints the progress of a set of workers and stops
// once every assigned file has been processed.
type Reporter struct {
	workers  []*Worker
	interval time.Duration
	format   Format
	out      io.Writer
	clock    clock.Clock
	log      *logger.Logger

	state atomic.Int32
	start time.Time
	last  []Snapshot
	done  atomic.Bool
}

// ReporterOption configures a Reporter.
type ReporterOption func(*Reporter)

// WithClock replaces the wall clock, typically with clock.NewMock().
func WithClock(c clock.Clock) ReporterOption {
	return func(r *Reporter) { r.clock = c }
}

// WithLogger sets the logger used for write failures and completion.
func WithLogger(l *logger.Logger) ReporterOption {
	return func(r *Reporter) { r.log = l }
}

// NewReporter creates a reporter over workers. interval is rounded down to
// whole seconds for rate computation and must be at least one second.
func NewReporter(workers []*Worker, interval time.Duration, format Format, out io.Writer, opts ...ReporterOption) *Reporter {
	r := &Reporter{
		workers:  workers,
		interval: interval,
		format:   format,
		out:      out,
		clock:    clock.New(),
		log:      logger.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current lifecycle state.
func (r *Reporter) State() ReporterState {
	return ReporterState(r.state.Load())
}

// Done reports whether completion has been detected.
func (r *Reporter) Done() bool { return r.done.Load() }

// Header renders the column header row.
func (r *Reporter) Header() string {
	var sb strings.Builder
	for i := range r.workers {
		if r.format.Has(WorkerLines) {
			sb.WriteString(cell(fmt.Sprintf("%d.l", i)))
		}
		if r.format.Has(WorkerFiles) {
			sb.WriteString(cell(fmt.Sprintf("%d.f", i)))
		}
		if r.format.Has(WorkerDisk) {
			sb.WriteString(cell(fmt.Sprintf("%d.d", i)))
		}
	}
	if r.format.Has(TotalLines) {
		sb.WriteString(cell("L"))
	}
	if r.format.Has(TotalFiles) {
		sb.WriteString(cell("F"))
	}
	if r.format.Has(TotalDisk) {
		sb.WriteString(cell("D"))
	}
	if r.format.Has(Elapsed) {
		sb.WriteString(cell("T"))
	}
	return sb.String()
}

// Begin takes the baseline snapshot that the first row's rates are measured against.
func (r *Reporter) Begin(now time.Time) {
	r.start = now
	r.last = r.snapshot()
	r.done.Store(false)
}

// Step snapshots every worker, renders one row of rates since the previous
// step and reports whether all assigned files are processed.
func (r *Reporter) Step(now time.Time) (string, bool) {
	secs := int64(r.interval / time.Second)
	if secs < 1 {
		secs = 1
	}

	cur := r.snapshot()
	var sb strings.Builder
	var lineRate, byteRate, processed, assigned int64
	for i, s := range cur {
		d := s.Sub(r.last[i])
		wLines := d.Lines / secs
		wBytes := d.Bytes / secs

		if r.format.Has(WorkerLines) {
			sb.WriteString(cell(fmt.Sprintf("%d", wLines)))
		}
		if r.format.Has(WorkerFiles) {
			sb.WriteString(cell(fmt.Sprintf("(%d/%d)", s.FilesProcessed, s.FilesAssigned)))
		}
		if r.format.Has(WorkerDisk) {
			sb.WriteString(cell(fmt.Sprintf("%dKB/s", wBytes/1000)))
		}

		lineRate += wLines
		byteRate += wBytes
		processed += s.FilesProcessed
		assigned += s.FilesAssigned
	}

	if r.format.Has(TotalLines) {
		sb.WriteString(cell(fmt.Sprintf("%d", lineRate)))
	}
	if r.format.Has(TotalFiles) {
		sb.WriteString(cell(fmt.Sprintf("(%d/%d)", processed, assigned)))
	}
	if r.format.Has(TotalDisk) {
		sb.WriteString(cell(fmt.Sprintf("%dMB/s", byteRate/1000000)))
	}
	if r.format.Has(Elapsed) {
		minutes := int64(now.Sub(r.start) / time.Minute)
		sb.WriteString(cell(fmt.Sprintf("%dm", minutes)))
	}

	r.last = cur
	done := processed == assigned
	r.done.Store(done)
	return sb.String(), done
}

// Run prints the header, then one row per interval until completion or
// until ctx is cancelled. Cancellation is not an error.
func (r *Reporter) Run(ctx context.Context) error {
	r.state.Store(int32(Reporting))
	defer r.state.Store(int32(Stopped))

	if _, err := fmt.Fprintln(r.out, r.Header()); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	r.Begin(r.clock.Now())

	for {
		timer := r.clock.Timer(r.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		row, done := r.Step(r.clock.Now())
		if _, err := fmt.Fprintln(r.out, row); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
		if done {
			r.log.Debug("All assigned files processed")
			return nil
		}
	}
}

func (r *Reporter) snapshot() []Snapshot {
	out := make([]Snapshot, len(r.workers))
	for i, w := range r.workers {
		out[i] = w.Snapshot()
	}
	return out
}

func cell(s string) string {
	return runewidth.FillLeft(s, ColumnWidth)
}
