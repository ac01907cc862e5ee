// Package meta implements the versioned manifest document (component F):
// CBOR-encoded, atomically written, tagged with a store variant (octree or
// S2) that a loader dispatches on, plus an optional R-tree prefilter used
// by the node-selection engine (component G) of both store variants.
package meta

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"

	"github.com/beetlebugorg/pointcloud/internal/batchio"
	"github.com/beetlebugorg/pointcloud/internal/geom"
)

// ManifestFileName is the on-disk name of the manifest document within a
// store directory, matching spec.md §6's layout (the extension is kept from
// the original Protobuf-backed format; only the encoding underneath it
// changed, see DESIGN.md).
const ManifestFileName = "meta.pb"

// Variant names the two store kinds a manifest may describe.
type Variant string

const (
	VariantOctree Variant = "octree"
	VariantS2     Variant = "s2"
)

// CurrentVersion is the manifest version this build produces and reads.
// Readers refuse any manifest whose Version is greater than this.
const CurrentVersion = 1

// Manifest is the logical content of a store's manifest document: version,
// variant tag, bounding volume, resolution, attribute schema, and node list.
type Manifest struct {
	Version    int                        `cbor:"version"`
	Variant    Variant                    `cbor:"variant"`
	RootCube   geom.Cube                  `cbor:"root_cube"`
	Bounds     geom.AABB                  `cbor:"bounds"`
	Resolution float64                    `cbor:"resolution"`
	Attributes map[string]batchio.AttrType `cbor:"attributes"`
	Nodes      []NodeMeta                 `cbor:"nodes"`

	// S2SplitLevel is only meaningful when Variant == VariantS2.
	S2SplitLevel int `cbor:"s2_split_level,omitempty"`
}

// ErrUnsupportedVersion is returned by Read when a manifest's version is
// newer than CurrentVersion.
type ErrUnsupportedVersion struct {
	Found, Supported int
}

func (e *ErrUnsupportedVersion) Error() string {
	return fmt.Sprintf("manifest version %d is newer than the %d this build supports", e.Found, e.Supported)
}

// Write serializes m to dir/meta.pb, writing to a temporary file first and
// renaming into place so a reader never observes a partially-written
// manifest (spec.md §5: "readers that see the manifest see all referenced
// node files").
func Write(dir string, m *Manifest) error {
	raw, err := cbor.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	final := filepath.Join(dir, ManifestFileName)
	tmp, err := os.CreateTemp(dir, ManifestFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temporary manifest: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temporary manifest: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temporary manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temporary manifest: %w", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename manifest into place: %w", err)
	}
	return nil
}

// Read loads and decodes dir/meta.pb, rejecting versions newer than this
// build supports.
func Read(dir string) (*Manifest, error) {
	raw, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := cbor.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if m.Version > CurrentVersion {
		return nil, &ErrUnsupportedVersion{Found: m.Version, Supported: CurrentVersion}
	}
	if m.Version < CurrentVersion {
		upgraded, err := Upgrade(m.Version, raw)
		if err != nil {
			return nil, fmt.Errorf("upgrade manifest from version %d: %w", m.Version, err)
		}
		if err := cbor.Unmarshal(upgraded, &m); err != nil {
			return nil, fmt.Errorf("decode upgraded manifest: %w", err)
		}
	}
	return &m, nil
}
