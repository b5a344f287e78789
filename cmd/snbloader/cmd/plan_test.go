package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanCommandStructure(t *testing.T) {
	assert.NotNil(t, planCmd)
	assert.Equal(t, "plan", planCmd.Name())
	assert.NotEmpty(t, planCmd.Short)
	assert.Contains(t, planCmd.Long, "Example:")
	assert.Contains(t, planCmd.Long, "snbloader plan")
	assert.NotNil(t, planCmd.RunE)
	assert.NotNil(t, planCmd.Flags().Lookup("files"))
}

func TestRunPlan(t *testing.T) {
	out := withTestFlags(t)
	base, supp := writeDataset(t)
	setFlag(t, "num-loaders", "2")
	setFlag(t, "loader-idx", "1")
	setFlag(t, "num-threads", "2")
	graphName = "ldbc"
	planShowFiles = true

	require.NoError(t, runPlan(planCmd, []string{base, supp}))

	text := out.String()
	assert.Contains(t, text, "Load Plan: ldbc")
	assert.Contains(t, text, "Vertex files: 2")
	assert.Contains(t, text, "Edge files:   3")
	assert.Contains(t, text, "Workers:      4 (2 loaders x 2 threads)")
	assert.Contains(t, text, "post_hasCreator_person_ridx")
	assert.Contains(t, text, "Loader 1 (this instance)")
	assert.Contains(t, text, "[0] thread 0 -> part1.ldbc: 2 files")
	assert.Contains(t, text, "[3] thread 1 -> part4.ldbc: 1 files")
	assert.Contains(t, text, "person_knows_person_0_0.csv")
}

func TestRunPlan_NodesOnly(t *testing.T) {
	out := withTestFlags(t)
	base, supp := writeDataset(t)
	mode = "nodes"

	require.NoError(t, runPlan(planCmd, []string{base, supp}))
	assert.Contains(t, out.String(), "Edge files:   0")
	assert.Contains(t, out.String(), "[0] thread 0 -> part1.graph: 2 files")
}

func TestRunPlan_BadMode(t *testing.T) {
	withTestFlags(t)
	base, supp := writeDataset(t)
	mode = "everything"

	assert.Error(t, runPlan(planCmd, []string{base, supp}))
}
