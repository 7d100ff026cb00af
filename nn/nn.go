// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/fcnet/internal/nn"
)

// Descriptor is the architecture of a fully-connected network.
type Descriptor = nn.Descriptor

// ShapeLayout maps parameter names to shapes in forward-pass order.
type ShapeLayout = nn.ShapeLayout

// ErrInvalidDescriptor is returned for descriptors no network can be built from.
var ErrInvalidDescriptor = nn.ErrInvalidDescriptor

// DropoutTolerance is the tolerance Descriptor.Equal applies to dropout rates.
const DropoutTolerance = nn.DropoutTolerance

// Mode selects training or inference behavior of a forward pass.
type Mode = nn.Mode

// Forward modes.
const (
	Eval  = nn.Eval
	Train = nn.Train
)

// Module is a layer of a Network.
type Module = nn.Module

// Parameter is a named learned tensor.
type Parameter = nn.Parameter

// Network is a sequence of layers.
type Network = nn.Network

// Layers

// Linear is a fully connected layer.
type Linear = nn.Linear

// ReLU is the rectified linear activation.
type ReLU = nn.ReLU

// Dropout zeroes activations with a fixed probability in Train mode.
type Dropout = nn.Dropout

// LogSoftmax normalizes each row into log-probabilities.
type LogSoftmax = nn.LogSoftmax

// Construction

// Factory builds freshly initialized networks.
type Factory = nn.Factory

// FactoryOption configures NewFactory.
type FactoryOption = nn.FactoryOption

// NewFactory returns the default Factory.
func NewFactory(opts ...FactoryOption) Factory {
	return nn.NewFactory(opts...)
}

// WithSeed makes weight initialization reproducible.
func WithSeed(seed int64) FactoryOption {
	return nn.WithSeed(seed)
}

// Build validates d and builds a network for it.
//
// Example:
//
//	model, err := nn.Build(nn.Descriptor{InputSize: 784, OutputSize: 10, HiddenSizes: []uint32{128}})
func Build(d Descriptor, opts ...FactoryOption) (*Network, error) {
	return nn.Build(d, opts...)
}

// Introspection

// IntrospectionError reports a network Describe cannot interpret.
type IntrospectionError = nn.IntrospectionError

// Describe recovers the Descriptor of a network in the Factory layout.
func Describe(n *Network) (Descriptor, error) {
	return nn.Describe(n)
}

// Parameter access

// Snapshot is an ordered set of named parameter tensors.
type Snapshot = nn.Snapshot

// ParameterStore reads and writes a model's named parameters.
type ParameterStore = nn.ParameterStore

// Evaluation

// BatchIterator yields labeled batches.
type BatchIterator = nn.BatchIterator

// Metrics summarizes an evaluation pass.
type Metrics = nn.Metrics

// Evaluate reports mean negative log-likelihood and accuracy over batches.
func Evaluate(n *Network, batches BatchIterator) (Metrics, error) {
	return nn.Evaluate(n, batches)
}
