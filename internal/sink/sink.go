// Package sink defines the contract between load workers and the graph store.
package sink

import (
	"context"
	"fmt"
	"sync"

	"github.com/dbsmedya/snbloader/internal/types"
)

// GraphSink persists vertices and edge lists. Each worker owns one sink, so
// implementations need not be safe for concurrent use.
type GraphSink interface {
	LoadVertex(ctx context.Context, v *types.VertexRecord) error
	LoadEdges(ctx context.Context, b *types.EdgeBatch) error
	Close() error
}

// Partition identifies the slice of the graph a sink writes.
type Partition struct {
	GraphName string
	Part      int // worker rank + 1
	OutputDir string
}

// Label returns "part<N>.<graph>".
func (p Partition) Label() string {
	return fmt.Sprintf("part%d.%s", p.Part, p.GraphName)
}

// Factory opens the sink for one partition.
type Factory func(ctx context.Context, p Partition) (GraphSink, error)

// Counts totals what a sink received.
type Counts struct {
	Vertices int64
	Batches  int64
	Edges    int64
}

// Add accumulates other into c.
func (c *Counts) Add(other Counts) {
	c.Vertices += other.Vertices
	c.Batches += other.Batches
	c.Edges += other.Edges
}

// Discard counts records and drops them.
type Discard struct {
	Partition Partition
	Counts    Counts
	closed    bool
}

func (d *Discard) LoadVertex(_ context.Context, _ *types.VertexRecord) error {
	d.Counts.Vertices++
	return nil
}

func (d *Discard) LoadEdges(_ context.Context, b *types.EdgeBatch) error {
	d.Counts.Batches++
	d.Counts.Edges += int64(b.Len())
	return nil
}

func (d *Discard) Close() error {
	if d.closed {
		return fmt.Errorf("sink %s closed twice", d.Partition.Label())
	}
	d.closed = true
	return nil
}

// DiscardFactory hands out Discard sinks and keeps them for totals.
type DiscardFactory struct {
	mu    sync.Mutex
	sinks []*Discard
}

// Open is a Factory.
func (f *DiscardFactory) Open(_ context.Context, p Partition) (GraphSink, error) {
	d := &Discard{Partition: p}
	f.mu.Lock()
	f.sinks = append(f.sinks, d)
	f.mu.Unlock()
	return d, nil
}

// Totals sums the counts of every opened sink. Call after the run finishes.
func (f *DiscardFactory) Totals() Counts {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total Counts
	for _, d := range f.sinks {
		total.Add(d.Counts)
	}
	return total
}
