package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrIdentityMismatch   = errors.New("checkpoint id does not match contents")
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrHeaderTooLarge     = errors.New("header exceeds maximum size")
	ErrTruncated          = errors.New("unexpected end of data")
	ErrMalformedHeader    = errors.New("malformed header")
	ErrMissingField       = errors.New("missing required field")
	ErrUnsupportedDType   = errors.New("unsupported dtype")
	ErrNonFinite          = errors.New("non-finite parameter value")
	ErrDuplicateTensor    = errors.New("duplicate tensor name")
	ErrOutOfBounds        = errors.New("tensor extends beyond data section")
)

// ValidationError provides detailed information about validation failures.
type ValidationError struct {
	Type    string // Type of error (e.g., "offset_overlap", "out_of_bounds")
	Tensor  string // Primary tensor name involved
	Tensor2 string // Secondary tensor name (for overlap errors)
	Details string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Tensor2 != "" {
		return fmt.Sprintf("%s: tensors %q and %q: %s", e.Type, e.Tensor, e.Tensor2, e.Details)
	}
	if e.Tensor != "" {
		return fmt.Sprintf("%s: tensor %q: %s", e.Type, e.Tensor, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}

// NonFiniteError reports a NaN or ±Inf element. NaN and Inf are rejected both
// when encoding and when decoding.
type NonFiniteError struct {
	Tensor string
	Index  int // Flat, row-major element index
	Value  float32
}

// Error implements the error interface.
func (e *NonFiniteError) Error() string {
	return fmt.Sprintf("tensor %q element %d is %v", e.Tensor, e.Index, e.Value)
}

// Unwrap returns ErrNonFinite.
func (e *NonFiniteError) Unwrap() error {
	return ErrNonFinite
}

// IsFormatError reports whether err describes a structurally invalid artifact,
// as opposed to a failure of the underlying reader.
func IsFormatError(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	for _, target := range []error{
		ErrChecksumMismatch, ErrIdentityMismatch, ErrInvalidMagic, ErrUnsupportedVersion,
		ErrHeaderTooLarge, ErrTruncated, ErrMalformedHeader, ErrMissingField,
		ErrUnsupportedDType, ErrNonFinite, ErrDuplicateTensor, ErrOutOfBounds,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func missingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, name)
}
