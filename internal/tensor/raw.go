package tensor

import (
	"fmt"
	"math"
)

// RawTensor is a dense, row-major float32 tensor.
//
// Parameter tensors of a network are RawTensors. They own their storage:
// Clone produces an independent copy, and CopyFrom overwrites values in place
// without changing the shape.
type RawTensor struct {
	data  []float32
	shape Shape
}

// NewRaw creates a new zero-filled RawTensor with the given shape.
func NewRaw(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	return &RawTensor{
		data:  make([]float32, shape.NumElements()),
		shape: shape.Clone(),
	}, nil
}

// FromFloat32 creates a RawTensor holding a copy of data.
//
// Returns an error if len(data) does not match the number of elements implied by shape.
func FromFloat32(data []float32, shape Shape) (*RawTensor, error) {
	raw, err := NewRaw(shape)
	if err != nil {
		return nil, err
	}
	if len(data) != len(raw.data) {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, len(raw.data))
	}
	copy(raw.data, data)
	return raw, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return Float32
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return len(r.data)
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.DType().Size()
}

// AsFloat32 returns the underlying storage. Writes through the slice modify the tensor.
func (r *RawTensor) AsFloat32() []float32 {
	return r.data
}

// Clone returns a deep copy of the tensor.
func (r *RawTensor) Clone() *RawTensor {
	data := make([]float32, len(r.data))
	copy(data, r.data)
	return &RawTensor{
		data:  data,
		shape: r.shape.Clone(),
	}
}

// CopyFrom overwrites the tensor's values with those of src.
// Shapes must be identical.
func (r *RawTensor) CopyFrom(src *RawTensor) error {
	if !r.shape.Equal(src.shape) {
		return fmt.Errorf("shape mismatch: destination %v, source %v", r.shape, src.shape)
	}
	copy(r.data, src.data)
	return nil
}

// BitEqual reports whether both tensors have the same shape and bit-identical values.
// Unlike ==, two NaNs with the same payload compare equal and +0 differs from -0.
func (r *RawTensor) BitEqual(other *RawTensor) bool {
	if !r.shape.Equal(other.shape) {
		return false
	}
	for i, v := range r.data {
		if math.Float32bits(v) != math.Float32bits(other.data[i]) {
			return false
		}
	}
	return true
}

// FirstNonFinite returns the flat index of the first NaN or ±Inf element, or -1.
func (r *RawTensor) FirstNonFinite() int {
	for i, v := range r.data {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return i
		}
	}
	return -1
}
