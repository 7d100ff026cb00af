// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/fcnet/internal/tensor"
)

// Shape is the dimensions of a tensor.
type Shape = tensor.Shape

// DataType identifies an element type.
type DataType = tensor.DataType

// Supported data types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
)

// RawTensor is a dense row-major float32 buffer.
type RawTensor = tensor.RawTensor

// NewRaw returns a zero-filled tensor of the given shape.
func NewRaw(shape Shape) (*RawTensor, error) {
	return tensor.NewRaw(shape)
}

// FromFloat32 copies data into a new tensor of the given shape.
func FromFloat32(data []float32, shape Shape) (*RawTensor, error) {
	return tensor.FromFloat32(data, shape)
}

// ParseDataType converts a dtype name to a DataType.
func ParseDataType(s string) (DataType, error) {
	return tensor.ParseDataType(s)
}
