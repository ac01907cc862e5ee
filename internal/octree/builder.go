package octree

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/beetlebugorg/pointcloud/internal/batchio"
	"github.com/beetlebugorg/pointcloud/internal/codec"
	"github.com/beetlebugorg/pointcloud/internal/geom"
	"github.com/beetlebugorg/pointcloud/internal/meta"
	"github.com/beetlebugorg/pointcloud/internal/nodeio"
)

// DefaultMinPointsForSplit bounds tree depth on sparse regions: a node with
// this many points or fewer becomes a leaf regardless of whether its
// resolution bound is met (spec.md §4.D).
const DefaultMinPointsForSplit = 1000

// readBatchSize is the internal batch size used when re-reading a node's
// own points to classify them into children during a split.
const readBatchSize = 4096

// Options configures a Build run. It plays the same role as the teacher's
// LoadOptions in pkg/v1/parallel.go: tunable concurrency plus a pair of
// progress/error-reporting knobs instead of a logging framework.
type Options struct {
	// NumThreads bounds the fixed-size worker pool that splits nodes in
	// parallel. Zero defaults to runtime.NumCPU().
	NumThreads int

	// MinPointsForSplit overrides DefaultMinPointsForSplit when positive.
	MinPointsForSplit int

	// Progress, if set, is called after each leaf node finalizes with the
	// cumulative point count finalized so far and the total ingested at the
	// root.
	Progress func(pointsFinalized, totalPoints uint64)

	// ErrorLog, if set, receives one line per node-split failure before the
	// build aborts.
	ErrorLog io.Writer
}

func (o Options) numThreads() int {
	if o.NumThreads > 0 {
		return o.NumThreads
	}
	return runtime.NumCPU()
}

func (o Options) minPointsForSplit() int {
	if o.MinPointsForSplit > 0 {
		return o.MinPointsForSplit
	}
	return DefaultMinPointsForSplit
}

// nodeStat describes a node whose layer files already exist on disk,
// produced either by root ingest or by a parent's split classifier.
type nodeStat struct {
	id        NodeId
	cube      geom.Cube
	numPoints uint64
	encoding  codec.PositionEncoding
	bounds    geom.AABB
}

// Result is the outcome of a successful Build: the written manifest plus
// the number of points dropped for lying outside the root cube.
type Result struct {
	Manifest      *meta.Manifest
	DroppedPoints uint64
}

// Build converts an unordered point stream into a balanced on-disk octree
// under dir, blocking until complete (spec.md §6: "build_octree(...) —
// blocks until complete, propagates I/O errors").
func Build(ctx context.Context, dir string, rootCube geom.Cube, resolution float64, attrs map[string]batchio.AttrType, next func() (*batchio.PointsBatch, bool), opts Options) (*Result, error) {
	rootStat, droppedPoints, err := ingestRoot(dir, rootCube, resolution, attrs, next)
	if err != nil {
		cleanupDir(dir)
		return nil, fmt.Errorf("root ingest: %w", err)
	}

	var (
		nodesMu sync.Mutex
		nodes   []meta.NodeMeta
		done    uint64
	)

	minPoints := opts.minPointsForSplit()
	recordLeaf := func(s nodeStat) {
		nodesMu.Lock()
		nodes = append(nodes, meta.NodeMeta{
			ID:           s.id.String(),
			NumPoints:    s.numPoints,
			Encoding:     s.encoding,
			BoundingCube: s.bounds,
		})
		nodesMu.Unlock()
		total := atomic.AddUint64(&done, s.numPoints)
		if opts.Progress != nil {
			opts.Progress(total, rootStat.numPoints)
		}
	}

	// sem bounds the number of node splits actually running at once to
	// opts.numThreads(), the "fixed-size thread pool" of spec.md §5. Unlike
	// errgroup's own SetLimit, goroutines blocked on sem do not hold a pool
	// slot themselves, so a worker can recurse into its children without
	// risking every slot being stuck waiting on each other.
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, opts.numThreads())

	var split func(s nodeStat)
	split = func(s nodeStat) {
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			if gctx.Err() != nil {
				return gctx.Err()
			}
			if isLeaf(s, resolution, minPoints) {
				recordLeaf(s)
				return nil
			}
			children, err := splitNode(dir, s, resolution, attrs)
			if err != nil {
				if opts.ErrorLog != nil {
					fmt.Fprintf(opts.ErrorLog, "split node %s: %v\n", s.id, err)
				}
				return fmt.Errorf("split node %s: %w", s.id, err)
			}
			for _, child := range children {
				split(child)
			}
			return nil
		})
	}
	split(rootStat)

	if err := g.Wait(); err != nil {
		cleanupDir(dir)
		return nil, err
	}

	m := &meta.Manifest{
		Version:    meta.CurrentVersion,
		Variant:    meta.VariantOctree,
		RootCube:   rootCube,
		Resolution: resolution,
		Attributes: attrs,
		Nodes:      nodes,
	}
	if err := meta.Write(dir, m); err != nil {
		cleanupDir(dir)
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	return &Result{Manifest: m, DroppedPoints: droppedPoints}, nil
}

// isLeaf implements spec.md §3's leaf invariant: a node is a leaf iff its
// resolution bound is already met by an integer encoding, or it holds at
// most minPoints points regardless of resolution.
func isLeaf(s nodeStat, resolution float64, minPoints int) bool {
	if codec.PickEncoding(s.cube.Edge, resolution).IsInteger() {
		return true
	}
	return s.numPoints <= uint64(minPoints)
}

func ingestRoot(dir string, rootCube geom.Cube, resolution float64, attrs map[string]batchio.AttrType, next func() (*batchio.PointsBatch, bool)) (nodeStat, uint64, error) {
	w, err := nodeio.NewRawNodeWriter(dir, Root.String(), rootCube, resolution, attrs, nodeio.Truncate)
	if err != nil {
		return nodeStat{}, 0, err
	}
	defer w.Close()

	var dropped uint64
	for {
		batch, ok := next()
		if !ok {
			break
		}
		inside := make([]int, 0, batch.Len())
		for i, p := range batch.Position {
			if rootCube.Contains(p) {
				inside = append(inside, i)
			}
		}
		dropped += uint64(batch.Len() - len(inside))
		if len(inside) == 0 {
			continue
		}
		filtered := batch
		if len(inside) != batch.Len() {
			filtered = batch.Select(inside)
		}
		if err := w.Write(filtered); err != nil {
			return nodeStat{}, 0, err
		}
	}
	if err := w.Finalize(); err != nil {
		return nodeStat{}, 0, err
	}

	bounds, _ := w.Bounds()
	return nodeStat{
		id:        Root,
		cube:      rootCube,
		numPoints: w.NumPoints(),
		encoding:  w.Encoding(),
		bounds:    bounds,
	}, dropped, nil
}

// splitNode streams s's own points through the eight-way classifier,
// removes s's files, and returns the non-empty children's stats.
func splitNode(dir string, s nodeStat, resolution float64, attrs map[string]batchio.AttrType) ([]nodeStat, error) {
	r, err := nodeio.NewRawNodeReader(dir, s.id.String(), s.cube, s.encoding, attrs, int(s.numPoints), readBatchSize)
	if err != nil {
		return nil, err
	}

	childWriters := make([]*nodeio.RawNodeWriter, 8)
	for o := 0; o < 8; o++ {
		w, err := nodeio.NewRawNodeWriter(dir, s.id.Child(o).String(), s.cube.Child(o), resolution, attrs, nodeio.Truncate)
		if err != nil {
			r.Close()
			for _, cw := range childWriters {
				if cw != nil {
					cw.Close()
				}
			}
			return nil, err
		}
		childWriters[o] = w
	}

	for {
		batch, err := r.NextBatch()
		if err != nil {
			r.Close()
			for _, cw := range childWriters {
				cw.Close()
			}
			return nil, err
		}
		if batch == nil {
			break
		}

		byOctant := make(map[int][]int, 8)
		for i, p := range batch.Position {
			o := s.cube.Octant(p)
			byOctant[o] = append(byOctant[o], i)
		}
		for o, indices := range byOctant {
			if err := childWriters[o].Write(batch.Select(indices)); err != nil {
				r.Close()
				for _, cw := range childWriters {
					cw.Close()
				}
				return nil, err
			}
		}
	}
	if err := r.Close(); err != nil {
		return nil, err
	}
	if err := nodeio.Remove(dir, s.id.String(), attrs); err != nil {
		return nil, err
	}

	children := make([]nodeStat, 0, 8)
	for o, w := range childWriters {
		if err := w.Finalize(); err != nil {
			w.Close()
			return nil, err
		}
		numPoints := w.NumPoints()
		encoding := w.Encoding()
		bounds, _ := w.Bounds()
		if err := w.Close(); err != nil {
			return nil, err
		}
		if numPoints == 0 {
			if err := nodeio.Remove(dir, s.id.Child(o).String(), attrs); err != nil {
				return nil, err
			}
			continue
		}
		children = append(children, nodeStat{
			id:        s.id.Child(o),
			cube:      s.cube.Child(o),
			numPoints: numPoints,
			encoding:  encoding,
			bounds:    bounds,
		})
	}
	return children, nil
}

// cleanupDir best-effort removes every regular file directly under dir,
// matching spec.md §4.D's "partial files in the output directory must be
// deleted or the directory rejected".
func cleanupDir(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		os.Remove(filepath.Join(dir, e.Name()))
	}
}
