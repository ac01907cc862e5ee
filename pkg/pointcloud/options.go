package pointcloud

import (
	"io"

	"github.com/beetlebugorg/pointcloud/internal/octree"
	"github.com/beetlebugorg/pointcloud/internal/s2store"
)

// Encoding selects whether a store quantizes positions or stores them as
// plain float64 (spec.md §6's `encoding` option).
type Encoding int

const (
	// Quantized chooses the per-node adaptive fixed-point width described in
	// spec.md §4.B. This is the default for both stores.
	Quantized Encoding = iota
	// Plain stores positions as float64, bypassing quantization entirely.
	Plain
)

// OpenMode selects whether a node writer starts fresh or resumes appending
// (spec.md §6).
type OpenMode int

const (
	Truncate OpenMode = iota
	Append
)

// Options configures a build or query, mirroring spec.md §6's configuration
// table.
type Options struct {
	// ResolutionM bounds the maximum per-coordinate decoded error, in
	// meters. Ignored when Encoding is Plain.
	ResolutionM float64

	// NumThreads sizes the octree build worker pool. Zero defaults to
	// runtime.NumCPU() (internal/octree.Options.numThreads).
	NumThreads int

	// MinPointsForSplit overrides the octree builder's leaf-by-count
	// fallback. Zero defaults to internal/octree.DefaultMinPointsForSplit.
	MinPointsForSplit int

	// BatchSize is a points-per-batch setting (4096 when zero). BuildOctree,
	// NewS2Splitter and Query do not read it: Query takes its batch size as
	// an argument, and the octree builder uses its own internal read size.
	BatchSize int

	// S2Level is the split level for S2 stores. Zero defaults to
	// s2store.DefaultSplitLevel (20).
	S2Level int

	// S2MaxOpenFiles bounds the S2 splitter's concurrently open writers.
	// Zero means unbounded.
	S2MaxOpenFiles int

	// Encoding selects Quantized (default) or Plain position storage.
	Encoding Encoding

	// OpenMode selects Truncate (default) or Append for a new splitter.
	OpenMode OpenMode

	// Progress, if set, is called after each octree leaf node finalizes
	// during a build.
	Progress func(pointsFinalized, totalPoints uint64)

	// ErrorLog, if set, receives one line per node-split failure before a
	// build aborts.
	ErrorLog io.Writer
}

func (o Options) resolution() float64 {
	if o.Encoding == Plain {
		return 0
	}
	return o.ResolutionM
}

func (o Options) batchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return 4096
}

func (o Options) octreeOptions() octree.Options {
	return octree.Options{
		NumThreads:        o.NumThreads,
		MinPointsForSplit: o.MinPointsForSplit,
		Progress:          o.Progress,
		ErrorLog:          o.ErrorLog,
	}
}

func (o Options) s2Options() s2store.Options {
	return s2store.Options{
		Level:          o.S2Level,
		MaxOpenFiles:   o.S2MaxOpenFiles,
		ResumeExisting: o.OpenMode == Append,
	}
}
