package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/snbloader/internal/schema"
	"github.com/dbsmedya/snbloader/internal/sink"
	"github.com/dbsmedya/snbloader/internal/sink/imagesink"
	"github.com/dbsmedya/snbloader/internal/types"
)

func TestLoadCommandStructure(t *testing.T) {
	assert.NotNil(t, loadCmd)
	assert.Equal(t, "load", loadCmd.Name())
	assert.NotEmpty(t, loadCmd.Short)
	assert.Contains(t, loadCmd.Long, "Example:")
	assert.Contains(t, loadCmd.Long, "snbloader load")
	assert.NotNil(t, loadCmd.RunE)

	force := loadCmd.Flags().Lookup("force")
	require.NotNil(t, force)
	assert.Equal(t, "false", force.DefValue)
}

func TestLoadCommandArgs(t *testing.T) {
	assert.NoError(t, loadCmd.Args(loadCmd, nil))
	assert.NoError(t, loadCmd.Args(loadCmd, []string{"a", "b"}))
	assert.Error(t, loadCmd.Args(loadCmd, []string{"a", "b", "c"}))
}

func TestRunLoad_ImageSink(t *testing.T) {
	out := withTestFlags(t)
	base, supp := writeDataset(t)
	dest := t.TempDir()
	setFlag(t, "num-threads", "2")
	setFlag(t, "report-int", "1")
	sinkKind = "image"
	graphName = "ldbc"
	outputDir = dest

	require.NoError(t, runLoad(loadCmd, []string{base, supp}))
	assert.Contains(t, out.String(), "=== Load Complete ===")
	assert.Contains(t, out.String(), "Edges: 4")

	var vertices, edgeLists int
	for part := 1; part <= 2; part++ {
		p := sink.Partition{GraphName: "ldbc", Part: part, OutputDir: dest}
		r, err := imagesink.OpenReader(filepath.Join(dest, imagesink.FileName(p)))
		require.NoError(t, err)
		v, e, err := r.Counts()
		require.NoError(t, err)
		vertices += v
		edgeLists += e

		if part == 1 {
			person, ok, err := r.Vertex(types.ID{Space: schema.SpacePerson, Local: 933})
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "Person", person.Label)
		}
		require.NoError(t, r.Close())
	}
	assert.Equal(t, 3, vertices)
	assert.Equal(t, 4, edgeLists)
}

func TestRunLoad_UnknownSink(t *testing.T) {
	withTestFlags(t)
	base, supp := writeDataset(t)
	sinkKind = "neo4j"

	err := runLoad(loadCmd, []string{base, supp})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink.kind")
}
