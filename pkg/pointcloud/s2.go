package pointcloud

import (
	"errors"
	"fmt"

	"github.com/beetlebugorg/pointcloud/internal/batchio"
	"github.com/beetlebugorg/pointcloud/internal/nodeio"
	"github.com/beetlebugorg/pointcloud/internal/s2store"
)

// S2Splitter is the public streaming S2 partitioner (spec.md §6:
// "S2Splitter::with_split_level(level, output_dir, encoding, mode) +
// write(batch) + finalize()"). It is single-threaded by construction; a
// caller driving concurrent ingestion must shard across separate output
// directories.
type S2Splitter struct {
	dir string
	sp  *s2store.Splitter
}

// NewS2Splitter opens a splitter writing node files under outputDir,
// routing points at opts.S2Level (default 20).
func NewS2Splitter(outputDir string, attributes map[string]batchio.AttrType, opts Options) *S2Splitter {
	return &S2Splitter{
		dir: outputDir,
		sp:  s2store.NewSplitter(outputDir, opts.resolution(), attributes, opts.s2Options()),
	}
}

// Write routes batch's points to their S2 cells.
func (s *S2Splitter) Write(batch *batchio.PointsBatch) error {
	if err := s.sp.Write(batch); err != nil {
		var unknown *nodeio.UnknownAttributeError
		if errors.As(err, &unknown) {
			return &UnknownAttribute{Name: unknown.Name}
		}
		return &IOError{Op: fmt.Sprintf("write S2 batch in %s", s.dir), Err: err}
	}
	return nil
}

// Finalize closes every open cell writer and writes the manifest, returning
// the same summary BuildOctree returns.
func (s *S2Splitter) Finalize() (*BuildResult, error) {
	m, err := s.sp.Finalize()
	if err != nil {
		return nil, &IOError{Op: fmt.Sprintf("finalize S2 store in %s", s.dir), Err: err}
	}
	var total uint64
	for _, n := range m.Nodes {
		total += n.NumPoints
	}
	return &BuildResult{NumPoints: total}, nil
}
