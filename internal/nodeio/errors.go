package nodeio

import (
	"errors"
	"fmt"
)

// ErrUnknownAttribute is the sentinel errors.Is/errors.As target for a
// write referencing an attribute name outside the node's declared schema.
// Use UnknownAttributeError to recover the offending name.
var ErrUnknownAttribute = errors.New("unknown attribute")

// UnknownAttributeError reports which attribute name and node triggered
// ErrUnknownAttribute.
type UnknownAttributeError struct {
	NodeID string
	Name   string
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("node %s: unknown attribute %q", e.NodeID, e.Name)
}

func (e *UnknownAttributeError) Is(target error) bool { return target == ErrUnknownAttribute }

// ErrUnsupportedEncoding is the sentinel errors.Is/errors.As target for a
// node whose recorded position encoding this build doesn't know how to
// decode. Use UnsupportedEncodingError to recover the offending node and
// encoding value.
var ErrUnsupportedEncoding = errors.New("unsupported position encoding")

// UnsupportedEncodingError reports which node and raw encoding value
// triggered ErrUnsupportedEncoding.
type UnsupportedEncodingError struct {
	NodeID   string
	Encoding int
}

func (e *UnsupportedEncodingError) Error() string {
	return fmt.Sprintf("node %s: unsupported position encoding %d", e.NodeID, e.Encoding)
}

func (e *UnsupportedEncodingError) Is(target error) bool { return target == ErrUnsupportedEncoding }
