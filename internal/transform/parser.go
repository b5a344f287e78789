package transform

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dbsmedya/snbloader/internal/catalog"
	"github.com/dbsmedya/snbloader/internal/schema"
	"github.com/dbsmedya/snbloader/internal/types"
)

// MaxLineSize bounds a single input line. Post content can be long.
const MaxLineSize = 16 * 1024 * 1024

var (
	errMissingHeader = errors.New("file has no header line")
	errExtraColumn   = errors.New("column not named in header")
	errMissingID     = errors.New("row has no id")
	errShortEdgeRow  = errors.New("edge row needs source and target columns")
	errHeaderColumn  = errors.New("header column not in schema")
)

// EdgeShape fixes which side of a relation is the batch source. Forward
// files list the tail first (OUT); reverse-indexed files list the head first (IN).
type EdgeShape struct {
	Relation  schema.Relation
	Source    schema.Entity
	Target    schema.Entity
	Direction types.Direction
}

// ShapeOf derives the edge shape of a catalog edge entry.
func ShapeOf(entry catalog.Entry) EdgeShape {
	rel := entry.Relation
	if entry.Reverse {
		return EdgeShape{Relation: rel, Source: rel.Head(), Target: rel.Tail(), Direction: types.In}
	}
	return EdgeShape{Relation: rel, Source: rel.Tail(), Target: rel.Head(), Direction: types.Out}
}

// TargetLabel is the vertex label of the edge targets.
func (s EdgeShape) TargetLabel() string { return s.Target.Label() }

// EdgeRow is one parsed edge line. Properties is nil when the file has no
// property columns.
type EdgeRow struct {
	Source     types.ID
	Target     types.ID
	Properties types.Properties
}

// FileParser streams the data lines of one catalog entry.
type FileParser struct {
	entry       catalog.Entry
	shape       EdgeShape
	scanner     *bufio.Scanner
	header      []string
	headerBytes int
	line        int
	raw         string
}

// NewFileParser reads the header line from r.
func NewFileParser(r io.Reader, entry catalog.Entry) (*FileParser, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), MaxLineSize)

	p := &FileParser{entry: entry, scanner: scanner}
	if entry.Kind == catalog.EdgeFile {
		p.shape = ShapeOf(entry)
	}

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read header of %s: %w", entry.Path, err)
		}
		return nil, &ParseError{Path: entry.Path, Line: 1, Err: errMissingHeader}
	}
	raw := trimCR(scanner.Text())
	p.line = 1
	p.headerBytes = len(raw) + 1
	p.header = strings.Split(raw, Delimiter)
	if err := p.checkHeader(); err != nil {
		return nil, err
	}
	return p, nil
}

// checkHeader matches the header against the schema registry. Vertex files
// start with id and may carry any subset of the entity's properties; edge
// files name both endpoints and then exactly the relation's properties.
func (p *FileParser) checkHeader() error {
	mismatch := func(i int, want string) error {
		got := ""
		if i < len(p.header) {
			got = p.header[i]
		}
		return &ParseError{Path: p.entry.Path, Line: 1, Field: want, Value: got, Err: errHeaderColumn}
	}

	if p.entry.Kind == catalog.VertexFile {
		if p.header[0] != schema.IDField {
			return mismatch(0, schema.IDField)
		}
		allowed := p.entry.Entity.Properties()
		seen := make(map[string]bool, len(p.header))
		for i, name := range p.header[1:] {
			if seen[name] || !contains(allowed, name) {
				return mismatch(i+1, name)
			}
			seen[name] = true
		}
		return nil
	}

	want := append([]string{
		p.shape.Source.Label() + "." + schema.IDField,
		p.shape.Target.Label() + "." + schema.IDField,
	}, p.entry.Relation.Properties()...)
	for i, name := range want {
		if i >= len(p.header) || p.header[i] != name {
			return mismatch(i, name)
		}
	}
	if len(p.header) > len(want) {
		return mismatch(len(want), p.header[len(want)])
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Header returns the column names.
func (p *FileParser) Header() []string { return p.header }

// HeaderBytes is the size of the header line including its newline.
func (p *FileParser) HeaderBytes() int { return p.headerBytes }

// Shape returns the edge shape; zero for vertex files.
func (p *FileParser) Shape() EdgeShape { return p.shape }

// Next advances to the next data line.
func (p *FileParser) Next() bool {
	if !p.scanner.Scan() {
		return false
	}
	p.line++
	p.raw = trimCR(p.scanner.Text())
	return true
}

// Err returns the first read error, if any.
func (p *FileParser) Err() error { return p.scanner.Err() }

// Line returns the physical line number of the current row.
func (p *FileParser) Line() int { return p.line }

// LineBytes is the size of the current line including its newline.
func (p *FileParser) LineBytes() int { return len(p.raw) + 1 }

// fields splits the current line. Trailing empty fields are dropped, so the
// generator's empty trailing columns become absent properties.
func (p *FileParser) fields() []string {
	f := strings.Split(p.raw, Delimiter)
	for len(f) > 0 && f[len(f)-1] == "" {
		f = f[:len(f)-1]
	}
	return f
}

func (p *FileParser) parseError(field, value string, err error) *ParseError {
	return &ParseError{Path: p.entry.Path, Line: p.line, Field: field, Value: value, Err: err}
}

func (p *FileParser) column(i int) string {
	if i < len(p.header) {
		return p.header[i]
	}
	return "#" + strconv.Itoa(i)
}

// Vertex converts the current line of a vertex file.
func (p *FileParser) Vertex() (*types.VertexRecord, error) {
	if p.entry.Kind != catalog.VertexFile {
		return nil, fmt.Errorf("%s is not a vertex file", p.entry.Path)
	}
	ent := p.entry.Entity
	rec := &types.VertexRecord{
		Label:      ent.Label(),
		Properties: make(types.Properties),
	}

	hasID := false
	for i, raw := range p.fields() {
		if i >= len(p.header) {
			return nil, p.parseError(p.column(i), raw, errExtraColumn)
		}
		name := p.header[i]
		if name == schema.IDField {
			local, err := ParseID(raw)
			if err != nil {
				return nil, p.parseError(name, raw, err)
			}
			rec.ID = types.ID{Space: ent.IDSpace(), Local: local}
			hasID = true
			continue
		}
		v, err := Coerce(name, raw)
		if err != nil {
			return nil, p.parseError(name, raw, err)
		}
		rec.Properties[name] = v
	}
	if !hasID {
		return nil, p.parseError(schema.IDField, "", errMissingID)
	}
	return rec, nil
}

// Edge converts the current line of an edge file. Column 0 is the batch
// source, column 1 the target, the rest are edge properties.
func (p *FileParser) Edge() (EdgeRow, error) {
	if p.entry.Kind != catalog.EdgeFile {
		return EdgeRow{}, fmt.Errorf("%s is not an edge file", p.entry.Path)
	}
	f := p.fields()
	if len(f) < 2 {
		return EdgeRow{}, p.parseError(p.column(len(f)), "", errShortEdgeRow)
	}

	src, err := ParseID(f[0])
	if err != nil {
		return EdgeRow{}, p.parseError(p.column(0), f[0], err)
	}
	dst, err := ParseID(f[1])
	if err != nil {
		return EdgeRow{}, p.parseError(p.column(1), f[1], err)
	}

	row := EdgeRow{
		Source: types.ID{Space: p.shape.Source.IDSpace(), Local: src},
		Target: types.ID{Space: p.shape.Target.IDSpace(), Local: dst},
	}
	if len(f) > 2 {
		row.Properties = make(types.Properties, len(f)-2)
		for i := 2; i < len(f); i++ {
			if i >= len(p.header) {
				return EdgeRow{}, p.parseError(p.column(i), f[i], errExtraColumn)
			}
			v, err := Coerce(p.header[i], f[i])
			if err != nil {
				return EdgeRow{}, p.parseError(p.header[i], f[i], err)
			}
			row.Properties[p.header[i]] = v
		}
	}
	return row, nil
}

func trimCR(s string) string {
	return strings.TrimSuffix(s, "\r")
}
