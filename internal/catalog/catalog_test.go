package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/snbloader/internal/logger"
	"github.com/dbsmedya/snbloader/internal/schema"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("id\n"), 0o644))
	}
}

func TestDiscover_AllModes(t *testing.T) {
	base := t.TempDir()
	supp := t.TempDir()

	touch(t, base,
		"comment_0_0.csv",
		"person_0_0.csv", // superseded by the merged supplementary file
		"post_1_0.csv",
		"post_0_0.csv",
		"comment_hasCreator_person_0_0.csv",
		"person_knows_person_0_0.csv", // undirected edges come from supp
		"notes.txt",
	)
	touch(t, supp,
		"person_0_0.csv",
		"comment_hasCreator_person_ridx_0_0.csv",
		"person_knows_person_0_0.csv",
	)

	cat, err := Discover(base, supp, ModeAll, logger.NewNop())
	require.NoError(t, err)

	var got []string
	for _, e := range cat.Entries() {
		got = append(got, filepath.Base(filepath.Dir(e.Path))+"/"+filepath.Base(e.Path))
	}

	want := []string{
		filepath.Base(base) + "/comment_0_0.csv",
		filepath.Base(supp) + "/person_0_0.csv",
		filepath.Base(base) + "/post_0_0.csv",
		filepath.Base(base) + "/post_1_0.csv",
		filepath.Base(base) + "/comment_hasCreator_person_0_0.csv",
		filepath.Base(supp) + "/comment_hasCreator_person_ridx_0_0.csv",
		filepath.Base(supp) + "/person_knows_person_0_0.csv",
	}
	assert.Equal(t, want, got)

	entries := cat.Entries()
	assert.Equal(t, VertexFile, entries[0].Kind)
	assert.Equal(t, schema.Comment, entries[0].Entity)
	assert.Equal(t, schema.Person, entries[1].Entity)

	fwd, ridx, knows := entries[4], entries[5], entries[6]
	assert.Equal(t, EdgeFile, fwd.Kind)
	assert.Equal(t, schema.CommentHasCreatorPerson, fwd.Relation)
	assert.False(t, fwd.Reverse)
	assert.Equal(t, schema.CommentHasCreatorPerson, ridx.Relation)
	assert.True(t, ridx.Reverse)
	assert.Equal(t, "comment_hasCreator_person_ridx", ridx.Subject())
	assert.Equal(t, schema.PersonKnowsPerson, knows.Relation)
	assert.False(t, knows.Reverse)

	v, e := cat.Counts()
	assert.Equal(t, 4, v)
	assert.Equal(t, 3, e)
}

func TestDiscover_ModeFilters(t *testing.T) {
	base := t.TempDir()
	supp := t.TempDir()
	touch(t, base, "tag_0_0.csv", "tag_hasType_tagclass_0_0.csv")

	nodes, err := Discover(base, supp, ModeNodes, logger.NewNop())
	require.NoError(t, err)
	require.Equal(t, 1, nodes.Len())
	assert.Equal(t, schema.Tag, nodes.At(0).Entity)

	edges, err := Discover(base, supp, ModeEdges, logger.NewNop())
	require.NoError(t, err)
	require.Equal(t, 1, edges.Len())
	assert.Equal(t, schema.TagHasTypeTagClass, edges.At(0).Relation)
}

func TestDiscover_VertexPatternDoesNotMatchEdges(t *testing.T) {
	base := t.TempDir()
	touch(t, base, "tag_hasType_tagclass_0_0.csv", "tagclass_0_0.csv")

	cat, err := Discover(base, t.TempDir(), ModeNodes, logger.NewNop())
	require.NoError(t, err)
	require.Equal(t, 1, cat.Len())
	assert.Equal(t, schema.TagClass, cat.At(0).Entity)
}

func TestDiscover_MissingDirectory(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"), t.TempDir(), ModeAll, logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list input directory")
}

func TestDiscover_Deterministic(t *testing.T) {
	base := t.TempDir()
	supp := t.TempDir()
	touch(t, base, "forum_0_0.csv", "forum_2_0.csv", "forum_1_0.csv", "place_0_0.csv")

	a, err := Discover(base, supp, ModeAll, logger.NewNop())
	require.NoError(t, err)
	b, err := Discover(base, supp, ModeAll, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, a.Entries(), b.Entries())
}

func TestCatalog_EntriesReturnsCopy(t *testing.T) {
	cat := New([]Entry{{Kind: VertexFile, Entity: schema.Tag, Path: "a"}})
	entries := cat.Entries()
	entries[0].Path = "changed"
	assert.Equal(t, "a", cat.At(0).Path)
}

func TestCatalog_Summary(t *testing.T) {
	cat := New([]Entry{
		{Kind: VertexFile, Entity: schema.Post, Path: "post_0_0.csv"},
		{Kind: VertexFile, Entity: schema.Post, Path: "post_1_0.csv"},
		{Kind: EdgeFile, Relation: schema.PostHasTagTag, Path: "post_hasTag_tag_0_0.csv"},
		{Kind: EdgeFile, Relation: schema.PostHasTagTag, Path: "post_hasTag_tag_ridx_0_0.csv", Reverse: true},
	})

	summary := cat.Summary()
	var keys []string
	var counts []int
	for el := summary.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Key)
		counts = append(counts, el.Value)
	}
	assert.Equal(t, []string{"post", "post_hasTag_tag", "post_hasTag_tag_ridx"}, keys)
	assert.Equal(t, []int{2, 1, 1}, counts)
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"nodes", "edges", "all"} {
		m, err := ParseMode(s)
		require.NoError(t, err)
		assert.Equal(t, Mode(s), m)
	}
	_, err := ParseMode("vertices")
	assert.Error(t, err)

	assert.True(t, ModeAll.Vertices())
	assert.True(t, ModeAll.Edges())
	assert.False(t, ModeNodes.Edges())
	assert.False(t, ModeEdges.Vertices())
}
