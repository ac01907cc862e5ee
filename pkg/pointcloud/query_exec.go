package pointcloud

import (
	"errors"
	"fmt"

	"github.com/beetlebugorg/pointcloud/internal/batchio"
	"github.com/beetlebugorg/pointcloud/internal/querylog"
)

// Query drives a full query (spec.md §4.H, "the batch iterator"): selects
// the candidate node set for query.Location, then for each candidate opens
// its reader, decodes batches of batchSize, applies the per-point filter
// when the node isn't fully inside the volume, and invokes callback with
// each surviving non-empty batch.
//
// callback's error return short-circuits iteration. Returning Interrupted
// stops iteration without propagating an error out of Query, matching
// spec.md §4.H/§7 ("an 'Interrupted' kind means 'stop without error'").
// There are no ordering guarantees across nodes; within a node, point order
// matches on-disk order.
//
// When POINT_CLOUD_CLIENT_QUERY_LOGFILE is set, query is recorded in the
// process-wide reservoir sample (spec.md §6) before any node is touched, so
// a query that errors or is interrupted mid-stream is still captured.
func (p *PointCloud) Query(query PointQuery, batchSize int, callback func(*batchio.PointsBatch) error) error {
	querylog.Global().Log(query)

	if batchSize <= 0 {
		batchSize = 4096
	}

	volume := query.Location
	if query.GlobalFromQuery != nil {
		volume = transformedVolume{inner: query.Location, inverse: query.GlobalFromQuery.Inverse()}
	}
	schema := p.querySchema(query.Attributes)

	cands := p.candidates(volume)
	for _, c := range cands {
		if err := p.queryNode(c, volume, schema, batchSize, callback); err != nil {
			if errors.Is(err, Interrupted) {
				return nil
			}
			return err
		}
	}
	return nil
}

func (p *PointCloud) queryNode(c candidate, volume Volume, schema map[string]batchio.AttrType, batchSize int, callback func(*batchio.PointsBatch) error) error {
	r, err := p.openNode(c.node, schema, batchSize)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		batch, err := r.NextBatch()
		if err != nil {
			return &IOError{Op: fmt.Sprintf("decode node %s", c.node.ID), Err: err}
		}
		if batch == nil {
			return nil
		}

		if !c.fullyIn {
			batch = filterBatch(batch, volume)
			if batch.Len() == 0 {
				continue
			}
		}

		if err := callback(batch); err != nil {
			return err
		}
	}
}

// filterBatch returns a new batch containing only the points volume
// contains. volume already folds in GlobalFromQuery's inverse (see
// transformedVolume), so this is the same frame Select's pruning used.
func filterBatch(batch *batchio.PointsBatch, volume Volume) *batchio.PointsBatch {
	indices := make([]int, 0, batch.Len())
	for i, p := range batch.Position {
		if volume.Contains(p) {
			indices = append(indices, i)
		}
	}
	if len(indices) == batch.Len() {
		return batch
	}
	return batch.Select(indices)
}
