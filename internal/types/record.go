// Package types contains the record types exchanged between the transformer,
// the edge batcher and graph sinks. It sits below all of them to avoid import cycles.
package types

import (
	"fmt"

	"github.com/dbsmedya/snbloader/internal/schema"
)

// ID is a composite vertex id: a local id within an id space.
type ID struct {
	Space schema.IDSpace
	Local int64
}

func (id ID) String() string {
	return fmt.Sprintf("%d:%d", id.Space, id.Local)
}

// Direction of an edge list relative to its source vertex.
type Direction uint8

const (
	Out Direction = iota
	In
)

func (d Direction) String() string {
	if d == In {
		return "IN"
	}
	return "OUT"
}

// VertexRecord is one parsed vertex row.
type VertexRecord struct {
	ID         ID
	Label      string
	Properties Properties
}

// EdgeBatch holds every edge of one relation leaving (or entering) a single
// source vertex. Properties is either empty or aligned index by index with Targets.
type EdgeBatch struct {
	Source      ID
	Relation    string
	Direction   Direction
	TargetLabel string
	Targets     []ID
	Properties  []Properties
}

// Len returns the number of edges in the batch.
func (b *EdgeBatch) Len() int { return len(b.Targets) }

// Aligned reports whether the property list matches the target list.
func (b *EdgeBatch) Aligned() bool {
	return len(b.Properties) == 0 || len(b.Properties) == len(b.Targets)
}
