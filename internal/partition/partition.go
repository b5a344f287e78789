// Package partition stripes a catalog across every worker of every loader
// instance. Loader processes compute their own slice independently, so the
// result depends only on catalog order and the loader/thread counts.
package partition

import (
	"errors"
	"fmt"

	"github.com/dbsmedya/snbloader/internal/catalog"
)

// ErrInvalidPartition is wrapped by every ConfigError.
var ErrInvalidPartition = errors.New("invalid partition parameters")

// ConfigError reports an invalid loader/thread configuration.
type ConfigError struct {
	Field string
	Value int
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s=%d: %s", ErrInvalidPartition, e.Field, e.Value, e.Msg)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidPartition }

// Assignment is the ordered work of one worker.
type Assignment struct {
	Loader       int
	Thread       int
	Rank         int // Loader*numThreads + Thread
	TotalWorkers int
	Entries      []catalog.Entry
}

// PartNumber is the 1-based sink partition number for this worker.
func (a Assignment) PartNumber() int { return a.Rank + 1 }

// Validate checks the partition parameters.
func Validate(numLoaders, loaderIdx, numThreads int) error {
	switch {
	case numLoaders <= 0:
		return &ConfigError{Field: "numLoaders", Value: numLoaders, Msg: "must be positive"}
	case numThreads <= 0:
		return &ConfigError{Field: "numThreads", Value: numThreads, Msg: "must be positive"}
	case loaderIdx < 0:
		return &ConfigError{Field: "loaderIdx", Value: loaderIdx, Msg: "must not be negative"}
	case loaderIdx >= numLoaders:
		return &ConfigError{Field: "loaderIdx", Value: loaderIdx, Msg: fmt.Sprintf("must be less than numLoaders (%d)", numLoaders)}
	}
	return nil
}

// Assign returns the numThreads assignments of loader loaderIdx. The worker
// of global rank r receives the entries at positions r, r+W, r+2W, ... where
// W = numLoaders*numThreads.
func Assign(cat *catalog.Catalog, numLoaders, loaderIdx, numThreads int) ([]Assignment, error) {
	if err := Validate(numLoaders, loaderIdx, numThreads); err != nil {
		return nil, err
	}

	total := numLoaders * numThreads
	out := make([]Assignment, numThreads)
	for t := 0; t < numThreads; t++ {
		rank := loaderIdx*numThreads + t
		a := Assignment{
			Loader:       loaderIdx,
			Thread:       t,
			Rank:         rank,
			TotalWorkers: total,
		}
		for pos := rank; pos < cat.Len(); pos += total {
			a.Entries = append(a.Entries, cat.At(pos))
		}
		out[t] = a
	}
	return out, nil
}

// Plan returns the assignments of every loader, indexed by loader.
func Plan(cat *catalog.Catalog, numLoaders, numThreads int) ([][]Assignment, error) {
	if err := Validate(numLoaders, 0, numThreads); err != nil {
		return nil, err
	}
	plan := make([][]Assignment, numLoaders)
	for l := 0; l < numLoaders; l++ {
		a, err := Assign(cat, numLoaders, l, numThreads)
		if err != nil {
			return nil, err
		}
		plan[l] = a
	}
	return plan, nil
}
