package catalog

import (
	"github.com/elliotchance/orderedmap/v2"
)

// Catalog is an immutable, ordered list of entries. Every loader instance must
// derive the same order for partitioning to be consistent across processes.
type Catalog struct {
	entries []Entry
}

// New builds a catalog from entries, copying the slice.
func New(entries []Entry) *Catalog {
	c := &Catalog{entries: make([]Entry, len(entries))}
	copy(c.entries, entries)
	return c
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// At returns the entry at position i.
func (c *Catalog) At(i int) Entry { return c.entries[i] }

// Entries returns a copy of all entries in catalog order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Counts returns the number of vertex and edge files.
func (c *Catalog) Counts() (vertexFiles, edgeFiles int) {
	for _, e := range c.entries {
		if e.Kind == VertexFile {
			vertexFiles++
		} else {
			edgeFiles++
		}
	}
	return vertexFiles, edgeFiles
}

// Summary maps each subject to its file count, in order of first appearance.
func (c *Catalog) Summary() *orderedmap.OrderedMap[string, int] {
	summary := orderedmap.NewOrderedMap[string, int]()
	for _, e := range c.entries {
		n, _ := summary.Get(e.Subject())
		summary.Set(e.Subject(), n+1)
	}
	return summary
}
