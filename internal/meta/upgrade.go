package meta

import "fmt"

// MigrateFunc transforms a raw CBOR manifest document from one version to
// the next.
type MigrateFunc func(raw []byte) ([]byte, error)

// migrations maps a version to the function that upgrades a document from
// that version to version+1. Registered via RegisterMigration; empty by
// default since CurrentVersion is the only version this build has ever
// produced.
var migrations = map[int]MigrateFunc{}

// RegisterMigration registers a step that upgrades manifests written at
// fromVersion to fromVersion+1. Intended for a future standalone
// format-upgrade tool (see original_source/src/bin/upgrade_octree.rs); the
// core library only needs the seam, not the tool itself.
func RegisterMigration(fromVersion int, fn MigrateFunc) {
	migrations[fromVersion] = fn
}

// Upgrade walks raw through every registered migration from fromVersion up
// to CurrentVersion, in order. It returns an error naming the first missing
// step rather than silently leaving the document at an intermediate
// version.
func Upgrade(fromVersion int, raw []byte) ([]byte, error) {
	v := fromVersion
	for v < CurrentVersion {
		fn, ok := migrations[v]
		if !ok {
			return nil, fmt.Errorf("no migration registered from manifest version %d to %d", v, v+1)
		}
		next, err := fn(raw)
		if err != nil {
			return nil, fmt.Errorf("migrate manifest version %d to %d: %w", v, v+1, err)
		}
		raw = next
		v++
	}
	return raw, nil
}
