package pointcloud

import (
	"errors"
	"fmt"

	"github.com/beetlebugorg/pointcloud/internal/batchio"
	"github.com/beetlebugorg/pointcloud/internal/geom"
	"github.com/beetlebugorg/pointcloud/internal/meta"
	"github.com/beetlebugorg/pointcloud/internal/nodeio"
	"github.com/beetlebugorg/pointcloud/internal/octree"
	"github.com/beetlebugorg/pointcloud/internal/s2store"
)

// NodeReader streams one node's points back as PointsBatch values of a
// fixed batch size, closing its underlying layer files on Close.
type NodeReader interface {
	NextBatch() (*batchio.PointsBatch, error)
	Close() error
}

// DataProvider is the capability set spec.md §6 names: read access to a
// store's manifest and to one node's decoded point stream. Narrower than
// the literal "open_layer(node_id, layer_name)" contract, since
// internal/nodeio already reads every layer of a node together; splitting
// that back into a per-layer reader would only duplicate its decode logic
// for no caller-visible benefit.
type DataProvider interface {
	Meta() *meta.Manifest
	OpenNode(node meta.NodeMeta, batchSize int) (NodeReader, error)
}

// PointCloud is a read-only handle on a store directory: its manifest, plus
// an optional R-tree prefilter over its nodes (internal/meta.Index).
type PointCloud struct {
	dir   string
	m     *meta.Manifest
	index *meta.Index
}

// Open loads dir's manifest and builds the R-tree prefilter over its nodes.
// A store without a manifest is not a store (spec.md §7): a missing or
// unreadable meta.pb surfaces as *InvalidManifest.
func Open(dir string) (*PointCloud, error) {
	m, err := meta.Read(dir)
	if err != nil {
		return nil, &InvalidManifest{Dir: dir, Reason: err.Error()}
	}
	return &PointCloud{dir: dir, m: m, index: meta.NewIndex(m.Nodes)}, nil
}

// Meta returns the store's manifest.
func (p *PointCloud) Meta() *meta.Manifest { return p.m }

// OpenNode opens a reader over one node's decoded point stream, dispatching
// on the manifest's variant tag to recover the node's cube the same way it
// was derived at build time (spec.md §4.F: "a loader dispatches on this
// tag").
func (p *PointCloud) OpenNode(node meta.NodeMeta, batchSize int) (NodeReader, error) {
	return p.openNode(node, p.m.Attributes, batchSize)
}

func (p *PointCloud) openNode(node meta.NodeMeta, schema map[string]batchio.AttrType, batchSize int) (NodeReader, error) {
	cube, err := p.nodeCube(node)
	if err != nil {
		return nil, err
	}
	r, err := nodeio.NewRawNodeReader(p.dir, node.ID, cube, node.Encoding, schema, int(node.NumPoints), batchSize)
	if err != nil {
		var unsupported *nodeio.UnsupportedEncodingError
		if errors.As(err, &unsupported) {
			return nil, &UnsupportedEncoding{NodeID: unsupported.NodeID, Encoding: node.Encoding.String()}
		}
		return nil, &IOError{Op: fmt.Sprintf("open node %s", node.ID), Err: err}
	}
	return r, nil
}

// querySchema narrows the store's full attribute schema down to the names a
// query requested (spec.md §6: "PointQuery = { attributes: [name], ... }"),
// so OpenNode never opens or decodes a layer file the caller didn't ask
// for. An unrecognized name is dropped silently rather than erroring: the
// schema is the set of columns that exist, and asking for one that isn't
// there is equivalent to not asking for it.
func (p *PointCloud) querySchema(names []string) map[string]batchio.AttrType {
	schema := make(map[string]batchio.AttrType, len(names))
	for _, name := range names {
		if t, ok := p.m.Attributes[name]; ok {
			schema[name] = t
		}
	}
	return schema
}

func (p *PointCloud) nodeCube(node meta.NodeMeta) (geom.Cube, error) {
	switch p.m.Variant {
	case meta.VariantOctree:
		id, err := octree.ParseNodeId(node.ID)
		if err != nil {
			return geom.Cube{}, &InvalidManifest{Dir: p.dir, Reason: fmt.Sprintf("node id %q: %v", node.ID, err)}
		}
		return id.Cube(p.m.RootCube), nil
	case meta.VariantS2:
		id, err := s2store.ParseToken(node.ID)
		if err != nil {
			return geom.Cube{}, &InvalidManifest{Dir: p.dir, Reason: fmt.Sprintf("node id %q: %v", node.ID, err)}
		}
		return s2store.NodeCube(id), nil
	default:
		return geom.Cube{}, &InvalidManifest{Dir: p.dir, Reason: fmt.Sprintf("unknown variant %q", p.m.Variant)}
	}
}

// candidate pairs a manifest node with whether every point in it is already
// known to satisfy a query (skipping the per-point filter).
type candidate struct {
	node    meta.NodeMeta
	fullyIn bool
}

// NodesInLocation returns the candidate node ids for volume against the
// store (spec.md §6: `PointCloud::nodes_in_location`), pruned first by the
// R-tree prefilter (internal/meta.Index) and then by the exact
// variant-specific selection engine (component G).
func (p *PointCloud) NodesInLocation(volume Volume) []string {
	cands := p.candidates(volume)
	ids := make([]string, len(cands))
	for i, c := range cands {
		ids[i] = c.node.ID
	}
	return ids
}

func (p *PointCloud) candidates(volume Volume) []candidate {
	var prefiltered []meta.NodeMeta
	if bounded, ok := boundingAABB(volume); ok {
		prefiltered = p.index.Candidates(bounded)
	} else {
		prefiltered = p.m.Nodes
	}

	switch p.m.Variant {
	case meta.VariantOctree:
		sub := &meta.Manifest{RootCube: p.m.RootCube, Nodes: prefiltered}
		out := octree.Select(sub, volume)
		result := make([]candidate, len(out))
		for i, c := range out {
			result[i] = candidate{node: c.Node, fullyIn: c.FullyIn}
		}
		return result
	case meta.VariantS2:
		sub := &meta.Manifest{Nodes: prefiltered}
		out := s2store.Select(sub, volume)
		result := make([]candidate, len(out))
		for i, c := range out {
			result[i] = candidate{node: c.Node, fullyIn: c.FullyIn}
		}
		return result
	default:
		return nil
	}
}

// boundingAABB returns an AABB prefilter bound for volume. Only an AABB
// volume yields one (itself); every other volume, AllPoints included,
// returns false and skips the R-tree prefilter.
func boundingAABB(volume Volume) (geom.AABB, bool) {
	switch v := volume.(type) {
	case geom.AABB:
		return v, true
	default:
		return geom.AABB{}, false
	}
}
