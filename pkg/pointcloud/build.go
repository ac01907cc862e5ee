package pointcloud

import (
	"context"
	"errors"
	"fmt"

	"github.com/beetlebugorg/pointcloud/internal/batchio"
	"github.com/beetlebugorg/pointcloud/internal/geom"
	"github.com/beetlebugorg/pointcloud/internal/nodeio"
	"github.com/beetlebugorg/pointcloud/internal/octree"
)

// BuildResult reports the outcome of a successful BuildOctree.
type BuildResult struct {
	NumPoints     uint64
	DroppedPoints uint64
}

// BuildOctree converts an unordered point stream into a balanced on-disk
// octree under outputDir, blocking until complete (spec.md §6:
// "build_octree(output_dir, resolution, root_bounding_cube, attribute_names,
// point_batches) — blocks until complete, propagates I/O errors").
//
// next must return (batch, true) for each available batch and (nil, false)
// once the stream is exhausted; it is called sequentially from a single
// goroutine (the parallel worker pool operates downstream of ingest, on
// already-buffered node data).
func BuildOctree(ctx context.Context, outputDir string, rootCube geom.Cube, attributes map[string]batchio.AttrType, next func() (*batchio.PointsBatch, bool), opts Options) (*BuildResult, error) {
	buildOpts := opts.octreeOptions()
	if opts.Progress != nil {
		buildOpts.Progress = opts.Progress
	}
	if opts.ErrorLog != nil {
		buildOpts.ErrorLog = opts.ErrorLog
	}

	result, err := octree.Build(ctx, outputDir, rootCube, opts.resolution(), attributes, next, buildOpts)
	if err != nil {
		var unknown *nodeio.UnknownAttributeError
		if errors.As(err, &unknown) {
			return nil, &UnknownAttribute{Name: unknown.Name}
		}
		return nil, &IOError{Op: fmt.Sprintf("build octree in %s", outputDir), Err: err}
	}

	var total uint64
	for _, n := range result.Manifest.Nodes {
		total += n.NumPoints
	}
	return &BuildResult{NumPoints: total, DroppedPoints: result.DroppedPoints}, nil
}
