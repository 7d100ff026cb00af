package nn

import (
	"github.com/born-ml/fcnet/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Parameters carry their fully qualified name (e.g. "hidden.0.weight"), which
// is the key used by snapshots and checkpoints.
//
// Example:
//
//	weight := nn.NewParameter("output.weight", weightTensor)
//	w := weight.Tensor()
type Parameter struct {
	name   string            // Qualified parameter name (e.g., "hidden.0.bias")
	tensor *tensor.RawTensor // The parameter tensor
}

// NewParameter creates a new trainable parameter.
//
// The parameter tensor should be initialized before creating the Parameter.
func NewParameter(name string, t *tensor.RawTensor) *Parameter {
	return &Parameter{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.RawTensor {
	return p.tensor
}
