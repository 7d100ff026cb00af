// Package checkpoint saves and restores fully-connected networks.
//
// A checkpoint carries the network's Descriptor next to its parameters. Load
// rebuilds a fresh network from the descriptor through an nn.Factory, checks
// every parameter name and shape against it, and only then copies the stored
// values in. A load either returns a fully restored network or an error; a
// partially assigned network is never returned.
package checkpoint

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/born-ml/fcnet/internal/nn"
	"github.com/born-ml/fcnet/internal/serialization"
)

// Artifact is a decoded checkpoint that has not been loaded into a model.
type Artifact = serialization.Checkpoint

// Marshal describes model and encodes it into a complete artifact.
//
// It fails with an error wrapping *nn.IntrospectionError when model is not in
// the Factory layout, and with *SerializationError when a parameter holds a
// NaN or ±Inf value.
func Marshal(model *nn.Network, opts ...Option) ([]byte, error) {
	o := newOptions(opts)

	desc, err := nn.Describe(model)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: describe model: %w", err)
	}

	data, err := serialization.Marshal(desc, model.NamedParameters(), o.metadata)
	if err != nil {
		serr := &SerializationError{Err: err}
		var nf *serialization.NonFiniteError
		if errors.As(err, &nf) {
			serr.Tensor, serr.Index, serr.Value = nf.Tensor, nf.Index, nf.Value
		}
		return nil, serr
	}
	return data, nil
}

// Encode writes the checkpoint of model to w.
func Encode(model *nn.Network, w io.Writer, opts ...Option) error {
	data, err := Marshal(model, opts...)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return &IOError{Op: "write", Err: err}
	}
	return nil
}

// Save writes the checkpoint of model to path, replacing any existing file.
//
// The artifact is fully encoded before path is touched, so a model that cannot
// be encoded leaves an existing file intact. Concurrent saves to one path are
// not coordinated.
func Save(model *nn.Network, path string, opts ...Option) (err error) {
	data, err := Marshal(model, opts...)
	if err != nil {
		return err
	}

	w, err := serialization.NewWriter(path)
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil && err == nil {
			err = &IOError{Op: "close", Path: path, Err: closeErr}
		}
	}()

	if _, err := w.Write(data); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}

	slog.Debug("saved checkpoint", "path", path, "bytes", len(data))
	return nil
}

// Open reads and validates the artifact at path without building a model.
func Open(path string, opts ...Option) (*Artifact, error) {
	ckpt, err := serialization.ReadFile(path, newOptions(opts).readerOptions())
	if err != nil {
		return nil, classify(err, path)
	}
	return ckpt, nil
}

// Load restores the network saved at path.
//
// factory builds the network for the stored descriptor, or for the one given
// with WithDescriptor. Failures are *IOError, *DeserializationError or
// *ShapeMismatchError.
func Load(path string, factory nn.Factory, opts ...Option) (*nn.Network, error) {
	o := newOptions(opts)
	l := newLoad(path, o)

	f, err := os.Open(path) //nolint:gosec // G304: loading a caller-chosen checkpoint
	if err != nil {
		return nil, l.fail(&IOError{Op: "read", Path: path, Err: err})
	}
	defer f.Close()

	return l.run(bufio.NewReader(f), factory, o)
}

// Decode restores a network from the artifact read from r.
func Decode(r io.Reader, factory nn.Factory, opts ...Option) (*nn.Network, error) {
	o := newOptions(opts)
	return newLoad("", o).run(r, factory, o)
}

// Unmarshal restores a network from an in-memory artifact.
func Unmarshal(data []byte, factory nn.Factory, opts ...Option) (*nn.Network, error) {
	return Decode(bytes.NewReader(data), factory, opts...)
}

// classify sorts a serialization failure into the checkpoint error taxonomy.
func classify(err error, path string) error {
	if serialization.IsFormatError(err) {
		return &DeserializationError{Reason: "decode artifact", Err: err}
	}
	return &IOError{Op: "read", Path: path, Err: err}
}

func (l *loadRun) run(r io.Reader, factory nn.Factory, o options) (*nn.Network, error) {
	ckpt, err := serialization.Decode(r, o.readerOptions())
	if err != nil {
		return nil, l.fail(classify(err, l.path))
	}
	if err := l.transition(StateDeserialized); err != nil {
		return nil, err
	}

	desc := ckpt.Descriptor
	if o.descriptor != nil {
		if !o.descriptor.Equal(desc) {
			slog.Debug("loading checkpoint with override descriptor", "path", l.path, "stored", desc, "override", *o.descriptor)
		}
		desc = *o.descriptor
	}

	model, err := factory.Build(desc)
	if err != nil {
		if o.descriptor != nil {
			return nil, l.fail(fmt.Errorf("checkpoint: build model for %s: %w", desc, err))
		}
		return nil, l.fail(&DeserializationError{Reason: "stored descriptor rejected by factory", Err: err})
	}
	if model == nil {
		return nil, l.fail(&DeserializationError{Reason: "factory returned no model"})
	}
	if err := l.transition(StateFactoryBuilt); err != nil {
		return nil, err
	}

	if mismatches := compare(model.ParameterShapes(), ckpt.Snapshot); len(mismatches) > 0 {
		return nil, l.fail(&ShapeMismatchError{Mismatches: mismatches})
	}
	if err := l.transition(StateValidated); err != nil {
		return nil, err
	}

	for pair := ckpt.Snapshot.Oldest(); pair != nil; pair = pair.Next() {
		if err := model.SetNamedParameter(pair.Key, pair.Value); err != nil {
			return nil, l.fail(&DeserializationError{Reason: "assign parameter", Err: err})
		}
	}
	if err := l.transition(StateAssigned); err != nil {
		return nil, err
	}

	slog.Debug("loaded checkpoint", "path", l.path, "id", ckpt.Header.CheckpointID, "descriptor", desc)
	return model, nil
}

// compare lists every parameter whose name or shape disagrees between the
// model layout and the snapshot.
func compare(layout *nn.ShapeLayout, snapshot *nn.Snapshot) []Mismatch {
	var mismatches []Mismatch
	for pair := layout.Oldest(); pair != nil; pair = pair.Next() {
		stored, ok := snapshot.Get(pair.Key)
		switch {
		case !ok:
			mismatches = append(mismatches, Mismatch{Name: pair.Key, Kind: MismatchMissing, Found: pair.Value})
		case !stored.Shape().Equal(pair.Value):
			mismatches = append(mismatches, Mismatch{
				Name:     pair.Key,
				Kind:     MismatchShape,
				Expected: stored.Shape().Clone(),
				Found:    pair.Value,
			})
		}
	}
	for pair := snapshot.Oldest(); pair != nil; pair = pair.Next() {
		if _, ok := layout.Get(pair.Key); !ok {
			mismatches = append(mismatches, Mismatch{Name: pair.Key, Kind: MismatchUnexpected, Expected: pair.Value.Shape().Clone()})
		}
	}
	return mismatches
}

// loadRun tracks the state of one load call.
type loadRun struct {
	path    string
	state   State
	observe func(from, to State)
}

func newLoad(path string, o options) *loadRun {
	return &loadRun{path: path, state: StateStart, observe: o.observe}
}

// transition moves to the next state, rejecting moves the pipeline does not
// allow.
func (l *loadRun) transition(to State) error {
	from := l.state
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("checkpoint: invalid load transition %s -> %s", from, to)
	}
	l.state = to
	slog.Debug("checkpoint load", "path", l.path, "from", from, "to", to)
	if l.observe != nil {
		l.observe(from, to)
	}
	return nil
}

// fail moves to StateFailed and returns err.
func (l *loadRun) fail(err error) error {
	if terr := l.transition(StateFailed); terr != nil {
		return errors.Join(err, terr)
	}
	return err
}
