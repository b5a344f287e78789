// Package mysqlsink loads vertices and edge lists into two MySQL tables.
// Inserts use INSERT IGNORE so a re-run of the same slice is idempotent.
package mysqlsink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dbsmedya/snbloader/internal/sink"
	"github.com/dbsmedya/snbloader/internal/sqlutil"
	"github.com/dbsmedya/snbloader/internal/types"
)

// DefaultChunkSize is the number of edges per multi-row INSERT.
const DefaultChunkSize = 500

const edgeColumns = 9

// Factory opens sinks sharing one connection pool.
type Factory struct {
	db          *sql.DB
	vertexTable string
	edgeTable   string
	chunkSize   int
}

// NewFactory validates the table prefix. The pool is owned by the caller.
func NewFactory(db *sql.DB, tablePrefix string, chunkSize int) (*Factory, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	vt, err := sqlutil.PrefixedTable(tablePrefix, "vertices")
	if err != nil {
		return nil, err
	}
	et, err := sqlutil.PrefixedTable(tablePrefix, "edges")
	if err != nil {
		return nil, err
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Factory{db: db, vertexTable: vt, edgeTable: et, chunkSize: chunkSize}, nil
}

// EnsureSchema creates the vertex and edge tables if they do not exist.
func (f *Factory) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  id_space INT NOT NULL,
  id BIGINT NOT NULL,
  label VARCHAR(32) NOT NULL,
  part INT NOT NULL,
  props JSON NOT NULL,
  PRIMARY KEY (id_space, id)
)`, f.vertexTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  src_space INT NOT NULL,
  src_id BIGINT NOT NULL,
  relation VARCHAR(32) NOT NULL,
  direction CHAR(3) NOT NULL,
  dst_label VARCHAR(32) NOT NULL,
  dst_space INT NOT NULL,
  dst_id BIGINT NOT NULL,
  part INT NOT NULL,
  props JSON NULL,
  PRIMARY KEY (src_space, src_id, relation, direction, dst_space, dst_id)
)`, f.edgeTable),
	}
	for _, stmt := range stmts {
		if _, err := f.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create graph tables: %w", err)
		}
	}
	return nil
}

// Open is a sink.Factory.
func (f *Factory) Open(_ context.Context, p sink.Partition) (sink.GraphSink, error) {
	return &Sink{f: f, part: p.Part}, nil
}

// Sink writes one worker's records.
type Sink struct {
	f      *Factory
	part   int
	closed bool
}

func (s *Sink) LoadVertex(ctx context.Context, v *types.VertexRecord) error {
	props, err := json.Marshal(v.Properties.Native())
	if err != nil {
		return fmt.Errorf("encode properties of %s: %w", v.ID, err)
	}
	query := fmt.Sprintf(
		"INSERT IGNORE INTO %s (id_space, id, label, part, props) VALUES (?, ?, ?, ?, ?)",
		s.f.vertexTable,
	)
	if _, err := s.f.db.ExecContext(ctx, query, int(v.ID.Space), v.ID.Local, v.Label, s.part, string(props)); err != nil {
		return fmt.Errorf("failed to insert vertex %s: %w", v.ID, err)
	}
	return nil
}

// LoadEdges inserts the batch in chunks inside one transaction.
func (s *Sink) LoadEdges(ctx context.Context, b *types.EdgeBatch) error {
	if !b.Aligned() {
		return fmt.Errorf("edge batch for %s has %d targets but %d property maps", b.Source, len(b.Targets), len(b.Properties))
	}
	if b.Len() == 0 {
		return nil
	}

	tx, err := s.f.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for start := 0; start < b.Len(); start += s.f.chunkSize {
		end := start + s.f.chunkSize
		if end > b.Len() {
			end = b.Len()
		}
		if err := s.insertChunk(ctx, tx, b, start, end); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit edges of %s: %w", b.Source, err)
	}
	return nil
}

func (s *Sink) insertChunk(ctx context.Context, tx *sql.Tx, b *types.EdgeBatch, start, end int) error {
	n := end - start
	args := make([]interface{}, 0, n*edgeColumns)
	for i := start; i < end; i++ {
		var props interface{}
		if len(b.Properties) > 0 {
			raw, err := json.Marshal(b.Properties[i].Native())
			if err != nil {
				return fmt.Errorf("encode edge properties of %s: %w", b.Source, err)
			}
			props = string(raw)
		}
		t := b.Targets[i]
		args = append(args,
			int(b.Source.Space), b.Source.Local, b.Relation, b.Direction.String(),
			b.TargetLabel, int(t.Space), t.Local, s.part, props,
		)
	}

	query := fmt.Sprintf(
		"INSERT IGNORE INTO %s (src_space, src_id, relation, direction, dst_label, dst_space, dst_id, part, props) VALUES %s",
		s.f.edgeTable,
		sqlutil.ValuesPlaceholders(n, edgeColumns),
	)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert edges of %s: %w", b.Source, err)
	}
	return nil
}

// Close releases the sink. The shared pool stays open.
func (s *Sink) Close() error {
	if s.closed {
		return fmt.Errorf("sink for part %d closed twice", s.part)
	}
	s.closed = true
	return nil
}
