package nn

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Network is a sequential container of layers.
//
// Layers are applied in order. Networks produced by a Factory follow the
// layout (Linear ReLU Dropout)+ Linear LogSoftmax, which Describe recognizes.
// Networks assembled by hand with NewNetwork may contain any Module; they can
// still run forward passes, but Describe rejects layouts it does not know.
//
// Example:
//
//	rng := rand.New(rand.NewSource(1))
//	model := nn.NewNetwork(
//	    nn.NewLinear("hidden.0", 784, 128, rng),
//	    nn.NewReLU(),
//	    nn.NewDropout(0.2, rng),
//	    nn.NewLinear("output", 128, 10, rng),
//	    nn.NewLogSoftmax(),
//	)
type Network struct {
	modules []Module
}

// NewNetwork creates a network from a list of layers.
func NewNetwork(modules ...Module) *Network {
	return &Network{
		modules: modules,
	}
}

// Forward runs a batch of row vectors through every layer.
//
// The input must have at least one row and as many columns as the first
// Linear layer expects.
func (n *Network) Forward(input *mat.Dense, mode Mode) (output *mat.Dense, err error) {
	if input == nil || input.IsEmpty() {
		return nil, fmt.Errorf("forward: empty input")
	}
	if first, ok := n.firstLinear(); ok {
		if _, cols := input.Dims(); cols != first.InFeatures() {
			return nil, fmt.Errorf("forward: expected input with %d features, got %d", first.InFeatures(), cols)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			output, err = nil, fmt.Errorf("forward: %v", r)
		}
	}()

	output = input
	for _, module := range n.modules {
		output = module.Forward(output, mode)
	}
	return output, nil
}

// Predict returns the arg-max class of every row, evaluated in Eval mode.
func (n *Network) Predict(input *mat.Dense) ([]int, error) {
	output, err := n.Forward(input, Eval)
	if err != nil {
		return nil, err
	}

	rows, _ := output.Dims()
	classes := make([]int, rows)
	for i := range classes {
		classes[i] = floats.MaxIdx(output.RawRowView(i))
	}
	return classes, nil
}

// Parameters returns all trainable parameters from all layers, in layer order.
func (n *Network) Parameters() []*Parameter {
	var params []*Parameter
	for _, module := range n.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// Add appends a layer to the sequence.
func (n *Network) Add(module Module) {
	n.modules = append(n.modules, module)
}

// Len returns the number of layers in the sequence.
func (n *Network) Len() int {
	return len(n.modules)
}

// Module returns the layer at the given index.
//
// Panics if index is out of bounds.
func (n *Network) Module(index int) Module {
	if index < 0 || index >= len(n.modules) {
		panic("Network.Module: index out of bounds")
	}
	return n.modules[index]
}

func (n *Network) firstLinear() (*Linear, bool) {
	for _, module := range n.modules {
		if l, ok := module.(*Linear); ok {
			return l, true
		}
	}
	return nil, false
}
