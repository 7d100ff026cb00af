package checkpoint

import (
	"maps"

	"github.com/born-ml/fcnet/internal/nn"
	"github.com/born-ml/fcnet/internal/serialization"
)

// Option configures Save, Load and their stream variants.
type Option func(*options)

type options struct {
	descriptor   *nn.Descriptor
	level        serialization.ValidationLevel
	skipChecksum bool
	metadata     map[string]string
	observe      func(from, to State)
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) readerOptions() serialization.ReaderOptions {
	return serialization.ReaderOptions{
		SkipChecksumValidation: o.skipChecksum,
		ValidationLevel:        o.level,
	}
}

// WithDescriptor makes Load build the model for d instead of the descriptor
// stored in the checkpoint. Loading a stale checkpoint against a changed
// architecture then reports every disagreeing parameter.
func WithDescriptor(d nn.Descriptor) Option {
	return func(o *options) {
		c := d.Clone()
		o.descriptor = &c
	}
}

// WithValidationLevel sets how strictly the artifact header is validated.
// The default is serialization.ValidationStrict.
func WithValidationLevel(level serialization.ValidationLevel) Option {
	return func(o *options) {
		o.level = level
	}
}

// SkipChecksum disables the data checksum and checkpoint id checks on load.
func SkipChecksum() Option {
	return func(o *options) {
		o.skipChecksum = true
	}
}

// WithMetadata attaches free-form string metadata to a saved checkpoint.
func WithMetadata(metadata map[string]string) Option {
	return func(o *options) {
		o.metadata = maps.Clone(metadata)
	}
}

// WithStateObserver registers fn to be called on every load state transition.
func WithStateObserver(fn func(from, to State)) Option {
	return func(o *options) {
		o.observe = fn
	}
}
