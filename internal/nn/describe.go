package nn

import (
	"fmt"
	"math"
)

// IntrospectionError reports that a network's layer sequence does not match
// the layout Describe understands.
type IntrospectionError struct {
	Index  int    // Position of the offending layer, or the sequence length when a layer is missing
	Layer  string // Go type of the offending layer, empty when a layer is missing
	Reason string
}

// Error implements the error interface.
func (e *IntrospectionError) Error() string {
	if e.Layer == "" {
		return fmt.Sprintf("introspection: layer %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("introspection: layer %d (%s): %s", e.Index, e.Layer, e.Reason)
}

// Describe recovers the Descriptor of a network built in the Factory layout:
//
//	(Linear ReLU Dropout)+ Linear LogSoftmax
//
// Hidden Linear layers must be named hidden.0, hidden.1, ... and the final one
// output; widths must chain and all Dropout layers must share one rate in [0, 1).
// Anything else fails with *IntrospectionError.
func Describe(n *Network) (Descriptor, error) {
	if n == nil || n.Len() == 0 {
		return Descriptor{}, &IntrospectionError{Reason: "network has no layers"}
	}

	var d Descriptor
	var dropout float64
	prev := -1
	i := 0

	for {
		linear, err := linearAt(n, i)
		if err != nil {
			return Descriptor{}, err
		}
		if prev >= 0 && linear.InFeatures() != prev {
			return Descriptor{}, &IntrospectionError{
				Index:  i,
				Layer:  layerType(linear),
				Reason: fmt.Sprintf("expects %d input features, previous layer produces %d", linear.InFeatures(), prev),
			}
		}
		if prev < 0 {
			d.InputSize = uint32(linear.InFeatures()) //nolint:gosec // G115: widths are positive layer sizes
		}

		if i+1 >= n.Len() {
			return Descriptor{}, &IntrospectionError{Index: i + 1, Reason: "missing activation after linear layer"}
		}

		switch next := n.Module(i + 1).(type) {
		case *ReLU:
			if want := HiddenName(len(d.HiddenSizes)); linear.Name() != want {
				return Descriptor{}, &IntrospectionError{
					Index: i, Layer: layerType(linear),
					Reason: fmt.Sprintf("hidden layer named %q, expected %q", linear.Name(), want),
				}
			}
			if i+2 >= n.Len() {
				return Descriptor{}, &IntrospectionError{Index: i + 2, Reason: "missing dropout after hidden activation"}
			}
			drop, ok := n.Module(i + 2).(*Dropout)
			if !ok {
				return Descriptor{}, &IntrospectionError{
					Index: i + 2, Layer: layerType(n.Module(i + 2)),
					Reason: "expected dropout after hidden activation",
				}
			}
			if rate := drop.Rate(); math.IsNaN(rate) || rate < 0 || rate >= 1 {
				return Descriptor{}, &IntrospectionError{
					Index: i + 2, Layer: layerType(drop),
					Reason: fmt.Sprintf("dropout rate %v outside [0, 1)", rate),
				}
			}
			if len(d.HiddenSizes) > 0 && drop.Rate() != dropout {
				return Descriptor{}, &IntrospectionError{
					Index: i + 2, Layer: layerType(drop),
					Reason: fmt.Sprintf("dropout rate %v differs from %v", drop.Rate(), dropout),
				}
			}
			dropout = drop.Rate()
			d.HiddenSizes = append(d.HiddenSizes, uint32(linear.OutFeatures())) //nolint:gosec // G115: positive width
			prev = linear.OutFeatures()
			i += 3

		case *LogSoftmax:
			if len(d.HiddenSizes) == 0 {
				return Descriptor{}, &IntrospectionError{Index: i, Layer: layerType(linear), Reason: "no hidden layers"}
			}
			if linear.Name() != OutputName {
				return Descriptor{}, &IntrospectionError{
					Index: i, Layer: layerType(linear),
					Reason: fmt.Sprintf("output layer named %q, expected %q", linear.Name(), OutputName),
				}
			}
			if i+2 != n.Len() {
				return Descriptor{}, &IntrospectionError{
					Index: i + 2, Layer: layerType(n.Module(i + 2)),
					Reason: "unexpected layer after output",
				}
			}
			d.OutputSize = uint32(linear.OutFeatures()) //nolint:gosec // G115: positive width
			d.DropoutRate = dropout
			if err := d.Validate(); err != nil {
				return Descriptor{}, &IntrospectionError{Index: i, Reason: err.Error()}
			}
			return d, nil

		default:
			return Descriptor{}, &IntrospectionError{
				Index: i + 1, Layer: layerType(next),
				Reason: "unrecognized layer after linear",
			}
		}
	}
}

func linearAt(n *Network, i int) (*Linear, error) {
	if i >= n.Len() {
		return nil, &IntrospectionError{Index: i, Reason: "missing output layer"}
	}
	linear, ok := n.Module(i).(*Linear)
	if !ok {
		return nil, &IntrospectionError{Index: i, Layer: layerType(n.Module(i)), Reason: "expected linear layer"}
	}
	return linear, nil
}

func layerType(m Module) string {
	return fmt.Sprintf("%T", m)
}
