// Package nn implements the fully-connected classifier used by fcnet.
//
// This package provides:
//   - Descriptor: architecture metadata sufficient to rebuild a network
//   - Factory: deterministic construction of a Network from a Descriptor
//   - Network: the layer sequence (Linear, ReLU, Dropout, LogSoftmax)
//   - ParameterStore: named read/write access to a network's parameters
//   - Describe: recovery of a Descriptor from a live Network
//   - Evaluate: loss and accuracy over a stream of labeled batches
//
// Design inspired by PyTorch's nn.Module, restricted to inference: gradients
// and optimizer state live outside this package.
package nn

import (
	"gonum.org/v1/gonum/mat"
)

// Mode selects the behaviour of mode-dependent layers such as Dropout.
//
// Mode is passed explicitly to every forward call; there is no global
// training flag.
type Mode int

const (
	// Eval disables dropout. Use it for inference and evaluation.
	Eval Mode = iota
	// Train enables dropout masks.
	Train
)

// String returns the mode name.
func (m Mode) String() string {
	if m == Train {
		return "train"
	}
	return "eval"
}

// Module is the base interface for all layers of a Network.
//
// Every layer must implement:
//   - Forward: Compute output from a [batch, features] input
//   - Parameters: Return all trainable parameters
//
// Forward panics when the input width does not match the layer; Network.Forward
// checks the input before dispatching to its layers.
type Module interface {
	// Forward computes the output of the module for a batch of row vectors.
	Forward(input *mat.Dense, mode Mode) *mat.Dense

	// Parameters returns all trainable parameters of this module.
	//
	// Returns an empty slice for modules without trainable parameters
	// (e.g., activation functions).
	Parameters() []*Parameter
}
