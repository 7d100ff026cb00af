// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides fully-connected classifier networks described by a
// Descriptor.
//
// # Overview
//
// This package contains:
//   - Descriptor: the architecture of a network (input width, hidden widths,
//     output classes, dropout rate)
//   - Factory: builds a freshly initialized Network for a Descriptor
//   - Network: the layer sequence (Linear ReLU Dropout)+ Linear LogSoftmax
//   - Describe: recovers the Descriptor of a live Network
//   - Evaluate: mean negative log-likelihood and accuracy over labeled batches
//
// # Basic Usage
//
//	import "github.com/born-ml/fcnet/nn"
//
//	func main() {
//	    desc := nn.Descriptor{
//	        InputSize:   784,
//	        OutputSize:  10,
//	        HiddenSizes: []uint32{512, 256, 128},
//	        DropoutRate: 0.5,
//	    }
//
//	    model, err := nn.NewFactory(nn.WithSeed(42)).Build(desc)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // Inference runs in Eval mode; Train enables dropout.
//	    logProbs, err := model.Forward(x, nn.Eval)
//	}
//
// # Parameters
//
// Parameters are named after their layer: hidden.0.weight, hidden.0.bias, ...,
// output.weight, output.bias. Weights have shape (out, in); biases (out,).
// NamedParameters returns a deep copy in that order and SetNamedParameter
// copies values back in.
package nn
