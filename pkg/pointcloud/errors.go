package pointcloud

import "fmt"

// InvalidManifest indicates a store's manifest is missing, unreadable, or of
// an unsupported version.
type InvalidManifest struct {
	Dir    string
	Reason string
}

func (e *InvalidManifest) Error() string {
	return fmt.Sprintf("invalid manifest in %s: %s", e.Dir, e.Reason)
}

// IOError wraps a file read/write failure encountered while building or
// querying a store.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// UnsupportedEncoding indicates a node's position encoding isn't one this
// build knows how to decode.
type UnsupportedEncoding struct {
	NodeID   string
	Encoding string
}

func (e *UnsupportedEncoding) Error() string {
	return fmt.Sprintf("node %s: unsupported position encoding %q", e.NodeID, e.Encoding)
}

// UnknownAttribute indicates a write referenced an attribute name not
// present in the store's schema. Queries do not return it: an unknown name
// in PointQuery.Attributes is dropped (see querySchema).
type UnknownAttribute struct {
	Name string
}

func (e *UnknownAttribute) Error() string {
	return fmt.Sprintf("unknown attribute %q", e.Name)
}

// OutOfBounds describes a query volume that doesn't intersect the store's
// extent at all. Nothing in this package returns it: such a query makes
// Query return nil without invoking the callback.
type OutOfBounds struct{}

func (e *OutOfBounds) Error() string { return "query volume does not intersect the store" }

// Interrupted is the value a Query callback returns to stop iteration at
// the next batch boundary; Query then returns nil rather than propagating
// it (spec.md §4.H/§7: "an 'Interrupted' kind means 'stop without
// error' and is transformed into a successful termination").
var Interrupted = &interruptedError{}

type interruptedError struct{}

func (e *interruptedError) Error() string { return "query interrupted" }
