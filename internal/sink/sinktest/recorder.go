// Package sinktest provides an in-memory graph sink for tests.
package sinktest

import (
	"context"
	"sync"

	"github.com/dbsmedya/snbloader/internal/sink"
	"github.com/dbsmedya/snbloader/internal/types"
)

// Recorder keeps every record it receives. Failure hooks inject sink errors.
type Recorder struct {
	Partition sink.Partition

	mu       sync.Mutex
	vertices []types.VertexRecord
	batches  []types.EdgeBatch
	closed   bool

	FailVertex func(v *types.VertexRecord) error
	FailEdges  func(b *types.EdgeBatch) error
	FailClose  error
}

func (r *Recorder) LoadVertex(_ context.Context, v *types.VertexRecord) error {
	if r.FailVertex != nil {
		if err := r.FailVertex(v); err != nil {
			return err
		}
	}
	r.mu.Lock()
	r.vertices = append(r.vertices, *v)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) LoadEdges(_ context.Context, b *types.EdgeBatch) error {
	if r.FailEdges != nil {
		if err := r.FailEdges(b); err != nil {
			return err
		}
	}
	r.mu.Lock()
	r.batches = append(r.batches, *b)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return r.FailClose
}

// Vertices returns a copy of the recorded vertices.
func (r *Recorder) Vertices() []types.VertexRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.VertexRecord(nil), r.vertices...)
}

// Batches returns a copy of the recorded edge batches.
func (r *Recorder) Batches() []types.EdgeBatch {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.EdgeBatch(nil), r.batches...)
}

// Closed reports whether Close was called.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

var _ sink.GraphSink = (*Recorder)(nil)

// RecorderFactory opens one Recorder per partition, keyed by part number.
type RecorderFactory struct {
	mu    sync.Mutex
	sinks map[int]*Recorder

	// Prepare, when set, configures each recorder before it is returned.
	Prepare func(r *Recorder)
	// OpenErr fails Open for the given part numbers.
	OpenErr map[int]error
}

// Open is a sink.Factory.
func (f *RecorderFactory) Open(_ context.Context, p sink.Partition) (sink.GraphSink, error) {
	if err := f.OpenErr[p.Part]; err != nil {
		return nil, err
	}
	r := &Recorder{Partition: p}
	if f.Prepare != nil {
		f.Prepare(r)
	}
	f.mu.Lock()
	if f.sinks == nil {
		f.sinks = make(map[int]*Recorder)
	}
	f.sinks[p.Part] = r
	f.mu.Unlock()
	return r, nil
}

// Sink returns the recorder opened for part, or nil.
func (f *RecorderFactory) Sink(part int) *Recorder {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sinks[part]
}
