// Package stats tracks per-worker load progress and renders it as a
// periodic table. Counters are written by one worker and read by the
// reporter and the metrics collector, so every field is atomic.
package stats

import "sync/atomic"

// Worker holds the counters of one load worker.
type Worker struct {
	rank int

	lines          atomic.Int64
	bytes          atomic.Int64
	filesProcessed atomic.Int64
	filesAssigned  atomic.Int64
}

// Snapshot is a point-in-time copy of a Worker's counters.
type Snapshot struct {
	Lines          int64
	Bytes          int64
	FilesProcessed int64
	FilesAssigned  int64
}

// NewWorker creates counters for the worker of the given global rank.
func NewWorker(rank int) *Worker {
	return &Worker{rank: rank}
}

// Rank returns the global worker rank.
func (w *Worker) Rank() int { return w.rank }

// SetAssigned records how many files the worker was given.
func (w *Worker) SetAssigned(n int) {
	w.filesAssigned.Store(int64(n))
}

// AddLine counts one processed line of the given size.
func (w *Worker) AddLine(bytes int) {
	w.lines.Add(1)
	w.AddBytes(bytes)
}

// AddBytes counts bytes read that are not a data line, such as a header.
func (w *Worker) AddBytes(n int) {
	if n <= 0 {
		return
	}
	w.bytes.Add(int64(n))
}

// FileDone marks one assigned file as fully processed.
func (w *Worker) FileDone() {
	w.filesProcessed.Add(1)
}

// Snapshot reads every counter.
func (w *Worker) Snapshot() Snapshot {
	return Snapshot{
		Lines:          w.lines.Load(),
		Bytes:          w.bytes.Load(),
		FilesProcessed: w.filesProcessed.Load(),
		FilesAssigned:  w.filesAssigned.Load(),
	}
}

// Sub returns the counter deltas s - prev. File counts are not deltas.
func (s Snapshot) Sub(prev Snapshot) Snapshot {
	return Snapshot{
		Lines:          s.Lines - prev.Lines,
		Bytes:          s.Bytes - prev.Bytes,
		FilesProcessed: s.FilesProcessed,
		FilesAssigned:  s.FilesAssigned,
	}
}
