// Package imagesink writes each worker's share of the graph to its own bbolt
// image file, part<N>.<graph>.db, for bulk import into the graph store.
package imagesink

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"

	"github.com/dbsmedya/snbloader/internal/schema"
	"github.com/dbsmedya/snbloader/internal/sink"
	"github.com/dbsmedya/snbloader/internal/types"
)

const openTimeout = time.Second

var (
	vertexBucket = []byte("vertices")
	edgeBucket   = []byte("edges")
)

// VertexValue is the stored form of a vertex.
type VertexValue struct {
	Label string                 `msgpack:"label"`
	Props map[string]interface{} `msgpack:"props"`
}

// EdgeList is the stored form of every edge of one (source, relation,
// direction, target label) key. Props is empty or aligned with Targets.
type EdgeList struct {
	Targets []StoredID               `msgpack:"targets"`
	Props   []map[string]interface{} `msgpack:"props,omitempty"`
}

// StoredID is a composite id as written to the image.
type StoredID struct {
	Space int64 `msgpack:"s"`
	Local int64 `msgpack:"l"`
}

// Sink is a sink.GraphSink backed by one bbolt file.
type Sink struct {
	db   *bolt.DB
	path string
}

// FileName returns the image file name of a partition.
func FileName(p sink.Partition) string {
	return p.Label() + ".db"
}

// Open creates the image file for p. An image left by an earlier run of the
// same partition is emptied first.
func Open(_ context.Context, p sink.Partition) (sink.GraphSink, error) {
	return New(p)
}

// New is Open returning the concrete type.
func New(p sink.Partition) (*Sink, error) {
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %q: %w", p.OutputDir, err)
	}
	path := filepath.Join(p.OutputDir, FileName(p))

	// Sync once on Close instead of on every commit. The file lock fails fast
	// when another process is writing the same partition.
	db, err := bolt.Open(path, 0o600, &bolt.Options{NoSync: true, Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("open image %q: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{vertexBucket, edgeBucket} {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init image %q: %w", path, err)
	}
	return &Sink{db: db, path: path}, nil
}

// Path returns the image file path.
func (s *Sink) Path() string { return s.path }

func (s *Sink) LoadVertex(_ context.Context, v *types.VertexRecord) error {
	val, err := msgpack.Marshal(VertexValue{Label: v.Label, Props: v.Properties.Native()})
	if err != nil {
		return fmt.Errorf("encode vertex %s: %w", v.ID, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(vertexBucket).Put(VertexKey(v.ID), val)
	})
}

// LoadEdges appends the batch to the stored edge list of its key. A source
// that appears in several batches of one run (unsorted input, or several
// files) keeps every edge.
func (s *Sink) LoadEdges(_ context.Context, b *types.EdgeBatch) error {
	if !b.Aligned() {
		return fmt.Errorf("edge batch for %s has %d targets but %d property maps", b.Source, len(b.Targets), len(b.Properties))
	}
	key := EdgeKey(b.Source, b.Relation, b.Direction, b.TargetLabel)

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(edgeBucket)

		var list EdgeList
		if existing := bucket.Get(key); existing != nil {
			if err := msgpack.Unmarshal(existing, &list); err != nil {
				return fmt.Errorf("decode edge list of %s: %w", b.Source, err)
			}
		}
		for _, t := range b.Targets {
			list.Targets = append(list.Targets, StoredID{Space: int64(t.Space), Local: t.Local})
		}
		for _, p := range b.Properties {
			list.Props = append(list.Props, p.Native())
		}

		val, err := msgpack.Marshal(&list)
		if err != nil {
			return fmt.Errorf("encode edge list of %s: %w", b.Source, err)
		}
		return bucket.Put(key, val)
	})
}

// Close flushes the image to disk and closes it.
func (s *Sink) Close() error {
	syncErr := s.db.Sync()
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close image %q: %w", s.path, err)
	}
	if syncErr != nil {
		return fmt.Errorf("sync image %q: %w", s.path, syncErr)
	}
	return nil
}

// VertexKey encodes an id as 16 big-endian bytes so keys sort by space then id.
func VertexKey(id types.ID) []byte {
	key := make([]byte, 16)
	binary.BigEndian.PutUint64(key[:8], uint64(id.Space))
	binary.BigEndian.PutUint64(key[8:], uint64(id.Local))
	return key
}

// EdgeKey is the vertex key followed by direction, relation and target label.
func EdgeKey(src types.ID, relation string, dir types.Direction, targetLabel string) []byte {
	key := VertexKey(src)
	key = append(key, byte(dir))
	key = append(key, relation...)
	key = append(key, 0)
	key = append(key, targetLabel...)
	return key
}

// Reader opens an image file read-only.
type Reader struct {
	db *bolt.DB
}

// OpenReader opens the image at path for inspection.
func OpenReader(path string) (*Reader, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("open image %q: %w", path, err)
	}
	return &Reader{db: db}, nil
}

// Vertex returns the stored vertex, or false if absent.
func (r *Reader) Vertex(id types.ID) (VertexValue, bool, error) {
	var v VertexValue
	found := false
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(vertexBucket).Get(VertexKey(id))
		if raw == nil {
			return nil
		}
		found = true
		if err := msgpack.Unmarshal(raw, &v); err != nil {
			return err
		}
		types.NormalizeProps(v.Props)
		return nil
	})
	return v, found, err
}

// Edges returns the stored edge list, or false if absent.
func (r *Reader) Edges(src types.ID, relation string, dir types.Direction, targetLabel string) (EdgeList, bool, error) {
	var list EdgeList
	found := false
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(edgeBucket).Get(EdgeKey(src, relation, dir, targetLabel))
		if raw == nil {
			return nil
		}
		found = true
		if err := msgpack.Unmarshal(raw, &list); err != nil {
			return err
		}
		for _, p := range list.Props {
			types.NormalizeProps(p)
		}
		return nil
	})
	return list, found, err
}

// Counts returns the number of stored vertices and edge-list keys.
func (r *Reader) Counts() (vertices, edgeLists int, err error) {
	err = r.db.View(func(tx *bolt.Tx) error {
		vertices = tx.Bucket(vertexBucket).Stats().KeyN
		edgeLists = tx.Bucket(edgeBucket).Stats().KeyN
		return nil
	})
	return vertices, edgeLists, err
}

// Close closes the reader.
func (r *Reader) Close() error { return r.db.Close() }

// ToID converts a stored id back to a composite id.
func (s StoredID) ToID() types.ID {
	return types.ID{Space: schema.IDSpace(s.Space), Local: s.Local}
}
