package sinktest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/snbloader/internal/sink"
	"github.com/dbsmedya/snbloader/internal/types"
)

func TestRecorder(t *testing.T) {
	f := &RecorderFactory{
		Prepare: func(r *Recorder) {
			r.FailEdges = func(b *types.EdgeBatch) error {
				if b.Source.Local == 13 {
					return errors.New("unlucky")
				}
				return nil
			}
		},
		OpenErr: map[int]error{3: errors.New("disk full")},
	}
	ctx := context.Background()

	s, err := f.Open(ctx, sink.Partition{GraphName: "g", Part: 1})
	require.NoError(t, err)
	_, err = f.Open(ctx, sink.Partition{GraphName: "g", Part: 3})
	assert.EqualError(t, err, "disk full")

	require.NoError(t, s.LoadVertex(ctx, &types.VertexRecord{Label: "Tag"}))
	require.NoError(t, s.LoadEdges(ctx, &types.EdgeBatch{Source: types.ID{Local: 1}}))
	assert.EqualError(t, s.LoadEdges(ctx, &types.EdgeBatch{Source: types.ID{Local: 13}}), "unlucky")
	require.NoError(t, s.Close())

	rec := f.Sink(1)
	require.NotNil(t, rec)
	assert.Len(t, rec.Vertices(), 1)
	assert.Len(t, rec.Batches(), 1)
	assert.True(t, rec.Closed())
	assert.Nil(t, f.Sink(3))
}
