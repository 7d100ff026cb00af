package serialization

import (
	"fmt"
	"sort"
	"strings"

	"github.com/born-ml/fcnet/internal/tensor"
)

// Validation limits for security and resource protection.
const (
	MaxHeaderSize    = 100 * 1024 * 1024 // 100MB - maximum JSON header size
	MaxTensorCount   = 100_000           // Maximum number of tensors in a file
	MaxTensorNameLen = 4096              // Maximum tensor name length
)

// ValidationLevel controls the strictness of validation.
type ValidationLevel int

const (
	// ValidationStrict performs all validation checks (default, recommended for production).
	ValidationStrict ValidationLevel = iota
	// ValidationNormal performs basic validation checks only.
	ValidationNormal
	// ValidationNone skips the optional checks. Structural checks that keep
	// decoding memory-safe (dtype, size, bounds) always run.
	ValidationNone
)

// String returns the level name.
func (l ValidationLevel) String() string {
	switch l {
	case ValidationStrict:
		return "strict"
	case ValidationNormal:
		return "normal"
	case ValidationNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParseValidationLevel converts a level name to a ValidationLevel.
func ParseValidationLevel(s string) (ValidationLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return ValidationStrict, nil
	case "normal":
		return ValidationNormal, nil
	case "none":
		return ValidationNone, nil
	default:
		return 0, fmt.Errorf("unknown validation level %q", s)
	}
}

// ValidateTensorOffsets checks for overlapping tensor offsets and out-of-bounds access.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	if len(tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(tensors), MaxTensorCount),
		}
	}

	sorted := make([]TensorMeta, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, t := range sorted {
		if t.Offset < 0 || t.Size < 0 {
			return &ValidationError{
				Type:    "negative_offset",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d (negative values not allowed)", t.Offset, t.Size),
			}
		}

		if t.Offset+t.Size > dataSize {
			return &ValidationError{
				Type:    "out_of_bounds",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", t.Offset, t.Size, dataSize),
			}
		}

		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return &ValidationError{
					Type:    "offset_overlap",
					Tensor:  t.Name,
					Tensor2: next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}

	return nil
}

// ValidateTensorName rejects names that are empty, oversized or contain
// path separators, ".." or NUL bytes.
func ValidateTensorName(name string) error {
	if name == "" {
		return &ValidationError{Type: "invalid_name", Details: "empty tensor name"}
	}
	if len(name) > MaxTensorNameLen {
		return &ValidationError{
			Type:    "name_too_long",
			Tensor:  name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
		}
	}
	if strings.Contains(name, "..") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains '..' (path traversal attempt)",
		}
	}
	if strings.ContainsAny(name, "/\\") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains path separator (/ or \\)",
		}
	}
	if strings.Contains(name, "\x00") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains null byte",
		}
	}
	return nil
}

// ValidateHeader performs header validation at the requested level.
func ValidateHeader(h *Header, dataSize int64, level ValidationLevel) error {
	if level == ValidationNone {
		return nil
	}

	if len(h.Tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(h.Tensors), MaxTensorCount),
		}
	}

	for _, t := range h.Tensors {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
	}

	if level == ValidationStrict {
		if h.ModelType != ModelType {
			return &ValidationError{
				Type:    "model_type",
				Details: fmt.Sprintf("got %q, expected %q", h.ModelType, ModelType),
			}
		}
		if err := ValidateTensorOffsets(h.Tensors, dataSize); err != nil {
			return err
		}
	}

	return nil
}

// validateFlags checks the fixed-header flag and reserved words against the
// JSON header.
func validateFlags(flags, reserved uint32, h *Header) error {
	if unknown := flags &^ knownFlags; unknown != 0 {
		return &ValidationError{Type: "flags", Details: fmt.Sprintf("unknown flag bits 0x%08x", unknown)}
	}
	if reserved != 0 {
		return &ValidationError{Type: "reserved", Details: fmt.Sprintf("reserved word is 0x%08x, expected 0", reserved)}
	}
	if hasMeta := flags&FlagHasMetadata != 0; hasMeta != (len(h.Metadata) > 0) {
		return &ValidationError{
			Type:    "flags",
			Details: fmt.Sprintf("has_metadata flag is %t but header carries %d metadata entries", hasMeta, len(h.Metadata)),
		}
	}
	return nil
}

// validateStructure runs the checks every decode needs regardless of level:
// known dtype, valid shape, size consistent with shape, bounds, unique names.
func validateStructure(tensors []TensorMeta, dataSize int64) error {
	seen := make(map[string]struct{}, len(tensors))
	for _, t := range tensors {
		if _, dup := seen[t.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateTensor, t.Name)
		}
		seen[t.Name] = struct{}{}

		if dt, err := tensor.ParseDataType(t.DType); err != nil || dt != tensor.Float32 {
			return fmt.Errorf("%w: tensor %q has dtype %q", ErrUnsupportedDType, t.Name, t.DType)
		}

		elements := int64(1)
		for _, dim := range t.Shape {
			if dim <= 0 {
				return &ValidationError{
					Type:    "invalid_shape",
					Tensor:  t.Name,
					Details: fmt.Sprintf("shape %v has non-positive dimension", t.Shape),
				}
			}
			if elements > dataSize/int64(dim) {
				return fmt.Errorf("%w: tensor %q shape %v", ErrOutOfBounds, t.Name, t.Shape)
			}
			elements *= int64(dim)
		}
		if t.Size != elements*4 {
			return &ValidationError{
				Type:    "size_mismatch",
				Tensor:  t.Name,
				Details: fmt.Sprintf("size %d bytes, shape %v needs %d", t.Size, t.Shape, elements*4),
			}
		}
		if t.Offset < 0 || t.Offset > dataSize-t.Size {
			return fmt.Errorf("%w: tensor %q [%d, %d) > %d", ErrOutOfBounds, t.Name, t.Offset, t.Offset+t.Size, dataSize)
		}
	}
	return nil
}
