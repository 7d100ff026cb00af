// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package checkpoint saves fully-connected networks and restores them into an
// architecturally identical network.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/fcnet/checkpoint"
//	    "github.com/born-ml/fcnet/nn"
//	)
//
//	func main() {
//	    if err := checkpoint.Save(model, "mnist.fcnt"); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    restored, err := checkpoint.Load("mnist.fcnt", nn.NewFactory())
//	    var mismatch *checkpoint.ShapeMismatchError
//	    if errors.As(err, &mismatch) {
//	        for _, m := range mismatch.Mismatches {
//	            fmt.Println(m)
//	        }
//	    }
//	}
package checkpoint

import (
	"io"

	"github.com/born-ml/fcnet/internal/checkpoint"
	"github.com/born-ml/fcnet/internal/serialization"
	"github.com/born-ml/fcnet/nn"
)

// Errors

// IOError reports an unreadable or unwritable checkpoint location.
type IOError = checkpoint.IOError

// DeserializationError reports a structurally invalid artifact.
type DeserializationError = checkpoint.DeserializationError

// SerializationError reports a parameter value that cannot be encoded.
type SerializationError = checkpoint.SerializationError

// ShapeMismatchError lists every parameter that disagrees with the model.
type ShapeMismatchError = checkpoint.ShapeMismatchError

// Mismatch is one entry of a ShapeMismatchError.
type Mismatch = checkpoint.Mismatch

// MismatchKind classifies a Mismatch.
type MismatchKind = checkpoint.MismatchKind

// Mismatch kinds.
const (
	MismatchShape      = checkpoint.MismatchShape
	MismatchMissing    = checkpoint.MismatchMissing
	MismatchUnexpected = checkpoint.MismatchUnexpected
)

// Load states

// State is a step of the load pipeline.
type State = checkpoint.State

// Load states.
const (
	StateStart        = checkpoint.StateStart
	StateDeserialized = checkpoint.StateDeserialized
	StateFactoryBuilt = checkpoint.StateFactoryBuilt
	StateValidated    = checkpoint.StateValidated
	StateAssigned     = checkpoint.StateAssigned
	StateFailed       = checkpoint.StateFailed
)

// Options

// Option configures Save and Load.
type Option = checkpoint.Option

// ValidationLevel controls how strictly artifact headers are validated.
type ValidationLevel = serialization.ValidationLevel

// Validation levels.
const (
	ValidationStrict = serialization.ValidationStrict
	ValidationNormal = serialization.ValidationNormal
	ValidationNone   = serialization.ValidationNone
)

// WithDescriptor builds the model for d instead of the stored descriptor.
func WithDescriptor(d nn.Descriptor) Option { return checkpoint.WithDescriptor(d) }

// WithValidationLevel sets header validation strictness.
func WithValidationLevel(level ValidationLevel) Option {
	return checkpoint.WithValidationLevel(level)
}

// SkipChecksum disables checksum verification on load.
func SkipChecksum() Option { return checkpoint.SkipChecksum() }

// WithMetadata attaches string metadata to a saved checkpoint.
func WithMetadata(metadata map[string]string) Option { return checkpoint.WithMetadata(metadata) }

// WithStateObserver reports every load state transition to fn.
func WithStateObserver(fn func(from, to State)) Option { return checkpoint.WithStateObserver(fn) }

// Codec

// Artifact is a decoded checkpoint that has not been loaded into a model.
type Artifact = checkpoint.Artifact

// Save writes the checkpoint of model to path.
func Save(model *nn.Network, path string, opts ...Option) error {
	return checkpoint.Save(model, path, opts...)
}

// Encode writes the checkpoint of model to w.
func Encode(model *nn.Network, w io.Writer, opts ...Option) error {
	return checkpoint.Encode(model, w, opts...)
}

// Marshal returns the checkpoint of model as bytes.
func Marshal(model *nn.Network, opts ...Option) ([]byte, error) {
	return checkpoint.Marshal(model, opts...)
}

// Load restores the network saved at path.
func Load(path string, factory nn.Factory, opts ...Option) (*nn.Network, error) {
	return checkpoint.Load(path, factory, opts...)
}

// Decode restores a network from r.
func Decode(r io.Reader, factory nn.Factory, opts ...Option) (*nn.Network, error) {
	return checkpoint.Decode(r, factory, opts...)
}

// Unmarshal restores a network from data.
func Unmarshal(data []byte, factory nn.Factory, opts ...Option) (*nn.Network, error) {
	return checkpoint.Unmarshal(data, factory, opts...)
}

// Open reads the artifact at path without building a model.
func Open(path string, opts ...Option) (*Artifact, error) {
	return checkpoint.Open(path, opts...)
}
