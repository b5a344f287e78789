package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/dbsmedya/snbloader/internal/logger"
	"github.com/dbsmedya/snbloader/internal/schema"
)

// Discover scans the generator output directories and returns the catalog
// for mode. Person vertex files, reverse-indexed edge files and undirected
// edge files are read from suppDir (they are produced by the merge step);
// everything else comes from baseDir. Missing files are logged, not fatal.
func Discover(baseDir, suppDir string, mode Mode, log *logger.Logger) (*Catalog, error) {
	d := &discoverer{listings: make(map[string][]string)}
	var entries []Entry

	if mode.Vertices() {
		found := 0
		for _, ent := range schema.Entities() {
			dir := baseDir
			if ent == schema.Person {
				dir = suppDir
			}
			paths, err := d.match(dir, ent.Name())
			if err != nil {
				return nil, err
			}
			if len(paths) == 0 {
				log.Warnf("Missing files for %s nodes", ent.Name())
				continue
			}
			for _, p := range paths {
				log.Debugf("Found file for %s nodes (%s)", ent.Name(), p)
				entries = append(entries, Entry{Kind: VertexFile, Entity: ent, Path: p})
			}
			found += len(paths)
		}
		log.Infof("Found %d total node files", found)
	}

	if mode.Edges() {
		found := 0
		for _, rel := range schema.Relations() {
			var sets []fileSet
			if rel.Directed() {
				sets = []fileSet{
					{dir: baseDir, tag: rel.FileTag(), what: "edge"},
					{dir: suppDir, tag: rel.FileTag() + "_ridx", what: "reverse edge", reverse: true},
				}
			} else {
				sets = []fileSet{{dir: suppDir, tag: rel.FileTag(), what: "undirected edge"}}
			}

			for _, set := range sets {
				paths, err := d.match(set.dir, set.tag)
				if err != nil {
					return nil, err
				}
				if len(paths) == 0 {
					log.Warnf("Missing %s files for %s edges", set.what, rel)
					continue
				}
				for _, p := range paths {
					log.Debugf("Found %s file for %s edges (%s)", set.what, rel, p)
					entries = append(entries, Entry{Kind: EdgeFile, Relation: rel, Path: p, Reverse: set.reverse})
				}
				found += len(paths)
			}
		}
		log.Infof("Found %d total edge files", found)
	}

	return &Catalog{entries: entries}, nil
}

type fileSet struct {
	dir     string
	tag     string
	what    string
	reverse bool
}

type discoverer struct {
	listings map[string][]string
}

// match returns the files in dir named <tag>_<n>_<n>.csv, sorted by name.
func (d *discoverer) match(dir, tag string) ([]string, error) {
	names, err := d.list(dir)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile("^" + regexp.QuoteMeta(tag) + `_[0-9]+_[0-9]+\.csv$`)

	var out []string
	for _, name := range names {
		if re.MatchString(name) {
			out = append(out, filepath.Join(dir, name))
		}
	}
	return out, nil
}

// list reads a directory once per run. os.ReadDir returns names sorted.
func (d *discoverer) list(dir string) ([]string, error) {
	if names, ok := d.listings[dir]; ok {
		return names, nil
	}
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list input directory %s: %w", dir, err)
	}
	names := make([]string, 0, len(dirents))
	for _, de := range dirents {
		if de.Type().IsRegular() || de.Type()&os.ModeSymlink != 0 {
			names = append(names, de.Name())
		}
	}
	d.listings[dir] = names
	return names, nil
}
