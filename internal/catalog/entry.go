// Package catalog builds the ordered list of input files a load run consumes.
package catalog

import (
	"fmt"

	"github.com/dbsmedya/snbloader/internal/schema"
)

// Kind distinguishes vertex files from edge files.
type Kind uint8

const (
	VertexFile Kind = iota
	EdgeFile
)

func (k Kind) String() string {
	if k == EdgeFile {
		return "edge"
	}
	return "vertex"
}

// Entry is one input file. Entity is set for vertex files, Relation for edge
// files. Reverse marks an edge file indexed by the relation's head (_ridx).
type Entry struct {
	Kind     Kind
	Entity   schema.Entity
	Relation schema.Relation
	Path     string
	Reverse  bool
}

// Subject returns the entity or relation tag the entry was discovered under.
func (e Entry) Subject() string {
	if e.Kind == VertexFile {
		return e.Entity.Name()
	}
	if e.Reverse {
		return e.Relation.FileTag() + "_ridx"
	}
	return e.Relation.FileTag()
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %s (%s)", e.Kind, e.Subject(), e.Path)
}

// Mode selects which kinds of file a run loads.
type Mode string

const (
	ModeNodes Mode = "nodes"
	ModeEdges Mode = "edges"
	ModeAll   Mode = "all"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeNodes, ModeEdges, ModeAll:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q: must be nodes, edges or all", s)
	}
}

// Vertices reports whether vertex files are loaded in this mode.
func (m Mode) Vertices() bool { return m == ModeNodes || m == ModeAll }

// Edges reports whether edge files are loaded in this mode.
func (m Mode) Edges() bool { return m == ModeEdges || m == ModeAll }
