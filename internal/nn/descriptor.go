package nn

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/born-ml/fcnet/internal/tensor"
)

// DropoutTolerance is the absolute tolerance used when comparing dropout rates.
const DropoutTolerance = 1e-9

// ErrInvalidDescriptor is wrapped by every Descriptor validation failure.
var ErrInvalidDescriptor = errors.New("invalid descriptor")

// Descriptor captures the architecture-defining hyperparameters of a
// fully-connected network.
//
// A Descriptor determines the shape of every parameter of a network built from
// it: two networks built from equal descriptors are shape-identical layer for
// layer. Descriptors are values; treat them as immutable and use Clone before
// modifying HiddenSizes.
type Descriptor struct {
	InputSize   uint32   `json:"input_size"`   // Width of the flattened input vector
	OutputSize  uint32   `json:"output_size"`  // Number of output classes
	HiddenSizes []uint32 `json:"hidden_sizes"` // Hidden layer widths in forward-pass order
	DropoutRate float64  `json:"dropout_rate"` // Dropout after each hidden activation, in [0, 1)
}

// ShapeLayout is an ordered mapping from parameter name to tensor shape.
type ShapeLayout = orderedmap.OrderedMap[string, tensor.Shape]

// Validate checks that the descriptor describes a buildable network.
//
// The network always has at least one hidden layer; the first hidden layer
// consumes the input.
func (d Descriptor) Validate() error {
	if d.InputSize == 0 {
		return fmt.Errorf("%w: input_size must be positive", ErrInvalidDescriptor)
	}
	if d.OutputSize == 0 {
		return fmt.Errorf("%w: output_size must be positive", ErrInvalidDescriptor)
	}
	if len(d.HiddenSizes) == 0 {
		return fmt.Errorf("%w: at least one hidden layer is required", ErrInvalidDescriptor)
	}
	for i, h := range d.HiddenSizes {
		if h == 0 {
			return fmt.Errorf("%w: hidden_sizes[%d] must be positive", ErrInvalidDescriptor, i)
		}
	}
	if math.IsNaN(d.DropoutRate) || d.DropoutRate < 0 || d.DropoutRate >= 1 {
		return fmt.Errorf("%w: dropout_rate %v outside [0, 1)", ErrInvalidDescriptor, d.DropoutRate)
	}
	return nil
}

// Equal reports structural equality: same input and output sizes, same hidden
// sizes in the same order, and dropout rates within DropoutTolerance.
func (d Descriptor) Equal(other Descriptor) bool {
	return d.InputSize == other.InputSize &&
		d.OutputSize == other.OutputSize &&
		slices.Equal(d.HiddenSizes, other.HiddenSizes) &&
		math.Abs(d.DropoutRate-other.DropoutRate) <= DropoutTolerance
}

// Clone returns a deep copy of the descriptor.
func (d Descriptor) Clone() Descriptor {
	d.HiddenSizes = slices.Clone(d.HiddenSizes)
	return d
}

// String returns a compact form such as {784, 10, [512 256 128], 0.5}.
func (d Descriptor) String() string {
	return fmt.Sprintf("{%d, %d, %v, %s}", d.InputSize, d.OutputSize, d.HiddenSizes,
		strconv.FormatFloat(d.DropoutRate, 'g', -1, 64))
}

// HiddenName returns the layer prefix of the i-th hidden layer.
func HiddenName(i int) string {
	return "hidden." + strconv.Itoa(i)
}

// OutputName is the layer prefix of the output layer.
const OutputName = "output"

// ParameterShapes returns the name and shape of every parameter a network
// built from d exposes, in forward-pass order:
//
//	hidden.0.weight (h0, in)   hidden.0.bias (h0,)
//	hidden.i.weight (hi, hi-1) hidden.i.bias (hi,)
//	output.weight   (out, hN)  output.bias   (out,)
func (d Descriptor) ParameterShapes() *ShapeLayout {
	layout := orderedmap.New[string, tensor.Shape]()

	prev := int(d.InputSize)
	for i, h := range d.HiddenSizes {
		name := HiddenName(i)
		layout.Set(name+".weight", tensor.Shape{int(h), prev})
		layout.Set(name+".bias", tensor.Shape{int(h)})
		prev = int(h)
	}
	layout.Set(OutputName+".weight", tensor.Shape{int(d.OutputSize), prev})
	layout.Set(OutputName+".bias", tensor.Shape{int(d.OutputSize)})

	return layout
}
