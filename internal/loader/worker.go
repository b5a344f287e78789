// Package loader runs load workers over their partition assignments and
// coordinates them with the progress reporter.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/dbsmedya/snbloader/internal/batch"
	"github.com/dbsmedya/snbloader/internal/catalog"
	"github.com/dbsmedya/snbloader/internal/logger"
	"github.com/dbsmedya/snbloader/internal/partition"
	"github.com/dbsmedya/snbloader/internal/sink"
	"github.com/dbsmedya/snbloader/internal/stats"
	"github.com/dbsmedya/snbloader/internal/transform"
	"github.com/dbsmedya/snbloader/internal/types"
)

// cancelCheckLines is how often, in lines, a worker polls its context.
const cancelCheckLines = 1024

// WorkerState is the lifecycle of a Worker.
type WorkerState int32

const (
	Idle WorkerState = iota
	Running
	Completed
	Failed
)

func (s WorkerState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("WorkerState(%d)", int32(s))
	}
}

// FileError is an I/O failure on an input file.
type FileError struct {
	Path string
	Op   string // open, read or close
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Worker loads the files of one assignment, in order, into its own sink.
type Worker struct {
	assignment partition.Assignment
	sink       sink.GraphSink
	stats      *stats.Worker
	log        *logger.Logger

	state  atomic.Int32
	counts sink.Counts
}

// NewWorker creates a worker. The stats counters learn the assigned file
// count immediately so the reporter sees the full total from its first row.
func NewWorker(a partition.Assignment, s sink.GraphSink, st *stats.Worker, log *logger.Logger) *Worker {
	st.SetAssigned(len(a.Entries))
	return &Worker{
		assignment: a,
		sink:       s,
		stats:      st,
		log:        log.WithWorker(a.Rank),
	}
}

// State returns the current lifecycle state.
func (w *Worker) State() WorkerState {
	return WorkerState(w.state.Load())
}

// Counts returns what the worker handed to its sink. Read it after Run returns.
func (w *Worker) Counts() sink.Counts { return w.counts }

// Rank returns the global worker rank.
func (w *Worker) Rank() int { return w.assignment.Rank }

// Run processes every assigned file. It stops on the first error and does
// not resume.
func (w *Worker) Run(ctx context.Context) error {
	w.state.Store(int32(Running))
	w.log.Infow("Worker started", "files", len(w.assignment.Entries))

	for _, entry := range w.assignment.Entries {
		if err := ctx.Err(); err != nil {
			return w.fail(err)
		}
		if err := w.loadFile(ctx, entry); err != nil {
			return w.fail(err)
		}
		w.stats.FileDone()
	}

	w.state.Store(int32(Completed))
	w.log.Infow("Worker completed",
		"vertices", w.counts.Vertices,
		"edge_batches", w.counts.Batches,
		"edges", w.counts.Edges,
	)
	return nil
}

func (w *Worker) fail(err error) error {
	w.state.Store(int32(Failed))
	if !errors.Is(err, context.Canceled) {
		w.log.Errorw("Worker failed", "error", err)
	}
	return err
}

func (w *Worker) loadFile(ctx context.Context, entry catalog.Entry) (err error) {
	log := w.log.WithFile(entry.Path)

	f, err := os.Open(entry.Path)
	if err != nil {
		return &FileError{Path: entry.Path, Op: "open", Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &FileError{Path: entry.Path, Op: "close", Err: cerr}
		}
	}()

	p, err := transform.NewFileParser(f, entry)
	if err != nil {
		var pe *transform.ParseError
		if errors.As(err, &pe) {
			return err
		}
		return &FileError{Path: entry.Path, Op: "read", Err: err}
	}
	w.stats.AddBytes(p.HeaderBytes())

	log.Infow("Loading file", "kind", entry.Kind, "subject", entry.Subject())

	if entry.Kind == catalog.VertexFile {
		err = w.loadVertices(ctx, p)
	} else {
		err = w.loadEdges(ctx, p, log)
	}
	if err != nil {
		return err
	}
	if err := p.Err(); err != nil {
		return &FileError{Path: entry.Path, Op: "read", Err: err}
	}
	return nil
}

func (w *Worker) loadVertices(ctx context.Context, p *transform.FileParser) error {
	for p.Next() {
		if p.Line()%cancelCheckLines == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		v, err := p.Vertex()
		if err != nil {
			return err
		}
		if err := w.sink.LoadVertex(ctx, v); err != nil {
			return fmt.Errorf("sink rejected vertex %s at line %d: %w", v.ID, p.Line(), err)
		}
		w.counts.Vertices++
		w.stats.AddLine(p.LineBytes())
	}
	return nil
}

func (w *Worker) loadEdges(ctx context.Context, p *transform.FileParser, log *logger.Logger) error {
	batcher := batch.NewEdgeBatcher(p.Shape(), p.Shape().Relation.HasProperties(), func(ctx context.Context, b *types.EdgeBatch) error {
		if err := w.sink.LoadEdges(ctx, b); err != nil {
			return fmt.Errorf("sink rejected %d %s edges of %s: %w", b.Len(), b.Relation, b.Source, err)
		}
		w.counts.Batches++
		w.counts.Edges += int64(b.Len())
		return nil
	})

	for p.Next() {
		if p.Line()%cancelCheckLines == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		row, err := p.Edge()
		if err != nil {
			return err
		}
		if err := batcher.Add(ctx, row); err != nil {
			return err
		}
		w.stats.AddLine(p.LineBytes())
	}
	if err := batcher.Flush(ctx); err != nil {
		return err
	}

	log.Debugw("Edge file loaded", "batches", batcher.Batches(), "edges", batcher.Edges())
	return nil
}
