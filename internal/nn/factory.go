package nn

import (
	"fmt"
	"math/rand"
	"time"
)

// Factory builds a freshly initialized Network for a Descriptor.
//
// Implementations must be deterministic with respect to shapes: every Build
// call for equal descriptors yields shape-identical networks.
type Factory interface {
	Build(d Descriptor) (*Network, error)
}

// FactoryOption configures the default factory.
type FactoryOption func(*factory)

// WithSeed makes weight initialization reproducible: every Build call seeds a
// new source with seed, so repeated builds of one descriptor are bit-identical.
func WithSeed(seed int64) FactoryOption {
	return func(f *factory) {
		f.seed = seed
		f.seeded = true
	}
}

type factory struct {
	seed   int64
	seeded bool
}

// NewFactory returns the default Factory.
//
// Without WithSeed each build draws its weights from a time-seeded source.
func NewFactory(opts ...FactoryOption) Factory {
	f := &factory{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Build lays out (Linear ReLU Dropout) per hidden width, then the output
// Linear and LogSoftmax. A Dropout layer is present even when the rate is 0 so
// that the rate can be recovered by Describe.
func (f *factory) Build(d Descriptor) (*Network, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	seed := f.seed
	if !f.seeded {
		seed = time.Now().UnixNano()
	}
	//nolint:gosec // Using math/rand for weight initialization (not security-critical)
	rng := rand.New(rand.NewSource(seed))

	n := NewNetwork()
	prev := int(d.InputSize)
	for i, h := range d.HiddenSizes {
		n.Add(NewLinear(HiddenName(i), prev, int(h), rng))
		n.Add(NewReLU())
		n.Add(NewDropout(d.DropoutRate, rng))
		prev = int(h)
	}
	n.Add(NewLinear(OutputName, prev, int(d.OutputSize), rng))
	n.Add(NewLogSoftmax())

	return n, nil
}

// Build is shorthand for NewFactory(opts...).Build(d).
func Build(d Descriptor, opts ...FactoryOption) (*Network, error) {
	n, err := NewFactory(opts...).Build(d)
	if err != nil {
		return nil, fmt.Errorf("build network: %w", err)
	}
	return n, nil
}
