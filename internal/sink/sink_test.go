package sink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/snbloader/internal/types"
)

func TestPartition_Label(t *testing.T) {
	assert.Equal(t, "part1.ldbc", Partition{GraphName: "ldbc", Part: 1}.Label())
	assert.Equal(t, "part12.graph", Partition{GraphName: "graph", Part: 12}.Label())
}

func TestDiscardFactory_Totals(t *testing.T) {
	f := &DiscardFactory{}
	ctx := context.Background()

	a, err := f.Open(ctx, Partition{GraphName: "g", Part: 1})
	require.NoError(t, err)
	b, err := f.Open(ctx, Partition{GraphName: "g", Part: 2})
	require.NoError(t, err)

	require.NoError(t, a.LoadVertex(ctx, &types.VertexRecord{}))
	require.NoError(t, a.LoadVertex(ctx, &types.VertexRecord{}))
	require.NoError(t, b.LoadEdges(ctx, &types.EdgeBatch{Targets: []types.ID{{Local: 1}, {Local: 2}}}))
	require.NoError(t, a.Close())
	require.NoError(t, b.Close())

	assert.Equal(t, Counts{Vertices: 2, Batches: 1, Edges: 2}, f.Totals())
	assert.Error(t, a.Close(), "double close is reported")
}
