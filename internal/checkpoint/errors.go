package checkpoint

import (
	"fmt"
	"strings"

	"github.com/born-ml/fcnet/internal/tensor"
)

// IOError reports that the checkpoint source or destination could not be
// opened, read, written or closed.
type IOError struct {
	Op   string // "create", "read", "write" or "close"
	Path string // Empty for stream variants
	Err  error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("checkpoint %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("checkpoint %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// DeserializationError reports a structurally invalid artifact: bad magic,
// truncated payload, checksum failure, missing descriptor field, a stored
// descriptor the factory rejects, or a non-finite parameter value.
type DeserializationError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *DeserializationError) Error() string {
	if e.Err == nil {
		return "checkpoint: " + e.Reason
	}
	return fmt.Sprintf("checkpoint: %s: %v", e.Reason, e.Err)
}

// Unwrap returns the underlying error.
func (e *DeserializationError) Unwrap() error {
	return e.Err
}

// SerializationError reports a parameter value that cannot be encoded.
// For non-finite values Tensor, Index and Value locate the element.
type SerializationError struct {
	Tensor string
	Index  int
	Value  float32
	Err    error
}

// Error implements the error interface.
func (e *SerializationError) Error() string {
	if e.Tensor == "" {
		return fmt.Sprintf("checkpoint: serialize: %v", e.Err)
	}
	return fmt.Sprintf("checkpoint: serialize: tensor %q element %d is %v", e.Tensor, e.Index, e.Value)
}

// Unwrap returns the underlying error.
func (e *SerializationError) Unwrap() error {
	return e.Err
}

// MismatchKind classifies one entry of a ShapeMismatchError.
type MismatchKind int

const (
	// MismatchShape: both sides have the parameter with different shapes.
	MismatchShape MismatchKind = iota
	// MismatchMissing: the model has the parameter, the checkpoint does not.
	MismatchMissing
	// MismatchUnexpected: the checkpoint has the parameter, the model does not.
	MismatchUnexpected
)

// String returns the kind name.
func (k MismatchKind) String() string {
	switch k {
	case MismatchShape:
		return "shape"
	case MismatchMissing:
		return "missing"
	case MismatchUnexpected:
		return "unexpected"
	default:
		return fmt.Sprintf("MismatchKind(%d)", int(k))
	}
}

// Mismatch describes one parameter whose checkpoint entry cannot be loaded.
type Mismatch struct {
	Name string
	Kind MismatchKind
	// Expected is the shape recorded in the checkpoint, nil when missing.
	Expected tensor.Shape
	// Found is the shape of the freshly built model's parameter, nil when unexpected.
	Found tensor.Shape
}

// String renders the mismatch on one line.
func (m Mismatch) String() string {
	return fmt.Sprintf("%s: %s (checkpoint %s, model %s)", m.Name, m.Kind, m.Expected, m.Found)
}

// ShapeMismatchError lists every parameter that disagrees between a
// checkpoint and the model built for it. Entries follow the model's parameter
// order, then unexpected checkpoint keys in checkpoint order.
type ShapeMismatchError struct {
	Mismatches []Mismatch
}

// Error implements the error interface.
func (e *ShapeMismatchError) Error() string {
	parts := make([]string, len(e.Mismatches))
	for i, m := range e.Mismatches {
		parts[i] = m.String()
	}
	return fmt.Sprintf("checkpoint: %d parameter(s) do not match the model: %s",
		len(e.Mismatches), strings.Join(parts, "; "))
}

// Names returns the offending parameter names in report order.
func (e *ShapeMismatchError) Names() []string {
	names := make([]string, len(e.Mismatches))
	for i, m := range e.Mismatches {
		names[i] = m.Name
	}
	return names
}
