package s2store

import (
	"container/list"
	"fmt"

	"github.com/golang/geo/s2"

	"github.com/beetlebugorg/pointcloud/internal/batchio"
	"github.com/beetlebugorg/pointcloud/internal/codec"
	"github.com/beetlebugorg/pointcloud/internal/geom"
	"github.com/beetlebugorg/pointcloud/internal/meta"
	"github.com/beetlebugorg/pointcloud/internal/nodeio"
)

// Options configures a Splitter.
type Options struct {
	// Level is the S2 cell level incoming points are routed at. Zero
	// defaults to DefaultSplitLevel.
	Level int

	// MaxOpenFiles bounds the number of cells with a live RawNodeWriter at
	// once. Zero means unbounded. When the bound is hit, the
	// least-recently-written cell's writer is finalized and closed; a later
	// write to that cell reopens it in append mode (spec.md §4.E).
	MaxOpenFiles int

	// ResumeExisting opens a cell's writer in Append mode the first time
	// the splitter sees it, instead of Truncate, for resuming into a
	// directory that already holds a previous run's partial node files.
	ResumeExisting bool
}

func (o Options) level() int {
	if o.Level > 0 {
		return o.Level
	}
	return DefaultSplitLevel
}

// cellState is the splitter's running record for one S2 cell, kept separate
// from the RawNodeWriter's own counters because a writer reopened in append
// mode after an LRU eviction starts those counters over from zero; the
// splitter must accumulate across eviction cycles itself.
type cellState struct {
	cube      geom.Cube
	encoding  codec.PositionEncoding
	numPoints uint64
	bounds    geom.AABB
	boundsSet bool

	writer *nodeio.RawNodeWriter // nil when evicted
	elem   *list.Element         // nil when evicted
}

// Splitter is the single-threaded streaming S2 partitioner of spec.md §4.E:
// it maintains one open RawNodeWriter per S2 cell id, grouping each incoming
// batch into contiguous runs of identical cell ids before writing. It is not
// safe for concurrent use.
type Splitter struct {
	dir        string
	resolution float64
	attrs      map[string]batchio.AttrType
	level      int
	maxOpen    int
	resume     bool

	cells map[s2.CellID]*cellState
	lru   *list.List // front = most recently written; back = eviction candidate
}

// NewSplitter creates a Splitter writing node files under dir.
func NewSplitter(dir string, resolution float64, attrs map[string]batchio.AttrType, opts Options) *Splitter {
	return &Splitter{
		dir:        dir,
		resolution: resolution,
		attrs:      attrs,
		level:      opts.level(),
		maxOpen:    opts.MaxOpenFiles,
		resume:     opts.ResumeExisting,
		cells:      make(map[s2.CellID]*cellState),
		lru:        list.New(),
	}
}

// Write routes batch's points to their S2 cells, writing each contiguous
// run of identical cell ids to its cell's writer in one call.
func (s *Splitter) Write(batch *batchio.PointsBatch) error {
	n := batch.Len()
	for i := 0; i < n; {
		id := geom.CellIDForPoint(batch.Position[i], s.level)
		j := i + 1
		for j < n && geom.CellIDForPoint(batch.Position[j], s.level) == id {
			j++
		}
		indices := make([]int, j-i)
		for k := range indices {
			indices[k] = i + k
		}
		run := batch.Select(indices)
		if err := s.writeRun(id, run); err != nil {
			return err
		}
		i = j
	}
	return nil
}

func (s *Splitter) writeRun(id s2.CellID, run *batchio.PointsBatch) error {
	st, ok := s.cells[id]
	if !ok {
		if err := s.makeRoom(); err != nil {
			return err
		}
		cube := NodeCube(id)
		mode := nodeio.Truncate
		if s.resume {
			mode = nodeio.Append
		}
		w, err := nodeio.NewRawNodeWriter(s.dir, idToken(id), cube, s.resolution, s.attrs, mode)
		if err != nil {
			return fmt.Errorf("open cell %s: %w", idToken(id), err)
		}
		st = &cellState{cube: cube, encoding: w.Encoding(), writer: w}
		s.cells[id] = st
		st.elem = s.lru.PushFront(id)
	} else if st.writer == nil {
		if err := s.makeRoom(); err != nil {
			return err
		}
		w, err := nodeio.NewRawNodeWriter(s.dir, idToken(id), st.cube, s.resolution, s.attrs, nodeio.Append)
		if err != nil {
			return fmt.Errorf("reopen cell %s: %w", idToken(id), err)
		}
		st.writer = w
		st.elem = s.lru.PushFront(id)
	} else {
		s.lru.MoveToFront(st.elem)
	}

	if err := st.writer.Write(run); err != nil {
		return fmt.Errorf("write cell %s: %w", idToken(id), err)
	}
	st.numPoints += uint64(run.Len())
	for _, p := range run.Position {
		if !st.boundsSet {
			st.bounds = geom.NewAABB(p, p)
			st.boundsSet = true
			continue
		}
		st.bounds = geom.NewAABB(minVec(st.bounds.Min, p), maxVec(st.bounds.Max, p))
	}
	return nil
}

// makeRoom evicts the least-recently-written open cell if the splitter is
// at its MaxOpenFiles bound.
func (s *Splitter) makeRoom() error {
	if s.maxOpen <= 0 || s.lru.Len() < s.maxOpen {
		return nil
	}
	back := s.lru.Back()
	if back == nil {
		return nil
	}
	id := back.Value.(s2.CellID)
	st := s.cells[id]
	if err := st.writer.Finalize(); err != nil {
		return err
	}
	if err := st.writer.Close(); err != nil {
		return err
	}
	st.writer = nil
	s.lru.Remove(back)
	st.elem = nil
	return nil
}

// Finalize closes every open writer and writes the manifest, returning it.
func (s *Splitter) Finalize() (*meta.Manifest, error) {
	var nodes []meta.NodeMeta
	var overall geom.AABB
	overallSet := false

	for id, st := range s.cells {
		if st.writer != nil {
			if err := st.writer.Finalize(); err != nil {
				return nil, err
			}
			if err := st.writer.Close(); err != nil {
				return nil, err
			}
			st.writer = nil
		}
		if st.numPoints == 0 {
			continue
		}
		nodes = append(nodes, meta.NodeMeta{
			ID:           idToken(id),
			NumPoints:    st.numPoints,
			Encoding:     st.encoding,
			BoundingCube: st.bounds,
		})
		if !overallSet {
			overall = st.bounds
			overallSet = true
		} else {
			overall = geom.NewAABB(minVec(overall.Min, st.bounds.Min), maxVec(overall.Max, st.bounds.Max))
		}
	}

	m := &meta.Manifest{
		Version:      meta.CurrentVersion,
		Variant:      meta.VariantS2,
		Bounds:       overall,
		Resolution:   s.resolution,
		Attributes:   s.attrs,
		Nodes:        nodes,
		S2SplitLevel: s.level,
	}
	if err := meta.Write(s.dir, m); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	return m, nil
}

func minVec(a, b geom.Vec3) geom.Vec3 {
	return geom.Vec3{X: min(a.X, b.X), Y: min(a.Y, b.Y), Z: min(a.Z, b.Z)}
}

func maxVec(a, b geom.Vec3) geom.Vec3 {
	return geom.Vec3{X: max(a.X, b.X), Y: max(a.Y, b.Y), Z: max(a.Z, b.Z)}
}
