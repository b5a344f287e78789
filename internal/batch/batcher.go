// Package batch groups consecutive edge rows that share a source vertex
// into a single edge list.
package batch

import (
	"context"

	"github.com/dbsmedya/snbloader/internal/transform"
	"github.com/dbsmedya/snbloader/internal/types"
)

// FlushFunc receives each completed batch. The batch is not reused after the call.
type FlushFunc func(ctx context.Context, b *types.EdgeBatch) error

// EdgeBatcher accumulates a run of rows with the same source id and emits it
// when the source changes or the file ends. Input is expected to be sorted by
// source; an unsorted file yields several batches for the same source.
type EdgeBatcher struct {
	shape     transform.EdgeShape
	withProps bool
	flush     FlushFunc

	cur     *types.EdgeBatch
	batches int
	edges   int
}

// NewEdgeBatcher creates a batcher for one edge file. When withProps is set
// every row contributes a property map, keeping Properties aligned with Targets.
func NewEdgeBatcher(shape transform.EdgeShape, withProps bool, flush FlushFunc) *EdgeBatcher {
	return &EdgeBatcher{shape: shape, withProps: withProps, flush: flush}
}

// Add appends a row, flushing the previous run first if the source changed.
func (b *EdgeBatcher) Add(ctx context.Context, row transform.EdgeRow) error {
	if b.cur != nil && b.cur.Source != row.Source {
		if err := b.Flush(ctx); err != nil {
			return err
		}
	}
	if b.cur == nil {
		b.cur = &types.EdgeBatch{
			Source:      row.Source,
			Relation:    b.shape.Relation.Name(),
			Direction:   b.shape.Direction,
			TargetLabel: b.shape.TargetLabel(),
		}
	}

	b.cur.Targets = append(b.cur.Targets, row.Target)
	if b.withProps {
		props := row.Properties
		if props == nil {
			props = types.Properties{}
		}
		b.cur.Properties = append(b.cur.Properties, props)
	}
	return nil
}

// Flush emits the pending run, if any.
func (b *EdgeBatcher) Flush(ctx context.Context) error {
	if b.cur == nil {
		return nil
	}
	pending := b.cur
	b.cur = nil
	b.batches++
	b.edges += pending.Len()
	return b.flush(ctx, pending)
}

// Batches returns the number of batches flushed so far.
func (b *EdgeBatcher) Batches() int { return b.batches }

// Edges returns the number of edges flushed so far.
func (b *EdgeBatcher) Edges() int { return b.edges }
