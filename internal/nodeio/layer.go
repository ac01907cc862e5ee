// Package nodeio implements the physical per-node binary layout (component
// C): one raw little-endian file per layer (positions plus each named
// attribute), no record separators, record size derived from the layer's
// type and the node's position encoding.
package nodeio

import (
	"path/filepath"

	"github.com/beetlebugorg/pointcloud/internal/batchio"
	"github.com/beetlebugorg/pointcloud/internal/codec"
)

// PositionLayer is the reserved layer name for the position stream.
const PositionLayer = "position"

// OpenMode selects whether a RawNodeWriter starts a fresh layer file or
// resumes appending to an existing one. Append is used by the S2 splitter
// (reopening an evicted cell, or resuming an existing directory); the
// octree builder opens every writer with Truncate.
type OpenMode int

const (
	Truncate OpenMode = iota
	Append
)

// layerFileName returns the on-disk file name for a node's layer, matching
// spec.md §6: "<node_id>.xyz" for positions, "<node_id>.<attr_name>" for
// attributes.
func layerFileName(nodeIDStr, layerName string) string {
	if layerName == PositionLayer {
		return nodeIDStr + ".xyz"
	}
	return nodeIDStr + "." + layerName
}

func layerPath(dir, nodeIDStr, layerName string) string {
	return filepath.Join(dir, layerFileName(nodeIDStr, layerName))
}

// recordSize returns the on-disk width, in bytes, of one record in the
// given layer.
func recordSize(layerName string, posEncoding codec.PositionEncoding, attrs map[string]batchio.AttrType) int {
	if layerName == PositionLayer {
		return posEncoding.BytesPerCoordinate() * 3
	}
	return attrs[layerName].BytesPerRecord()
}
