package nn

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ReLU is a Rectified Linear Unit activation module.
//
// Applies the element-wise function: f(x) = max(0, x)
type ReLU struct{}

// NewReLU creates a new ReLU activation module.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward applies ReLU activation: f(x) = max(0, x).
func (r *ReLU) Forward(input *mat.Dense, _ Mode) *mat.Dense {
	var output mat.Dense
	output.Apply(func(_, _ int, v float64) float64 {
		return math.Max(0, v)
	}, input)
	return &output
}

// Parameters returns an empty slice (ReLU has no trainable parameters).
func (r *ReLU) Parameters() []*Parameter {
	return nil
}

// Dropout zeroes activations with probability p in Train mode and rescales the
// survivors by 1/(1-p) (inverted dropout). In Eval mode it is the identity.
//
// The rate is architectural: it is part of the Descriptor, not a learned value.
type Dropout struct {
	p   float64
	rng *rand.Rand
}

// NewDropout creates a dropout layer with drop probability p in [0, 1).
//
// rng supplies the masks in Train mode. A Dropout is therefore not safe for
// concurrent Train-mode forwards.
func NewDropout(p float64, rng *rand.Rand) *Dropout {
	return &Dropout{p: p, rng: rng}
}

// Rate returns the drop probability.
func (d *Dropout) Rate() float64 {
	return d.p
}

// Forward applies the dropout mask in Train mode.
func (d *Dropout) Forward(input *mat.Dense, mode Mode) *mat.Dense {
	if mode != Train || d.p == 0 {
		return input
	}

	scale := 1 / (1 - d.p)
	var output mat.Dense
	output.Apply(func(_, _ int, v float64) float64 {
		//nolint:gosec // dropout masks are not security-critical
		if d.rng.Float64() < d.p {
			return 0
		}
		return v * scale
	}, input)
	return &output
}

// Parameters returns an empty slice (Dropout has no trainable parameters).
func (d *Dropout) Parameters() []*Parameter {
	return nil
}

// LogSoftmax normalizes each row into log-probabilities:
// log_softmax(x)_j = x_j - log(sum_k exp(x_k)).
type LogSoftmax struct{}

// NewLogSoftmax creates a new LogSoftmax module.
func NewLogSoftmax() *LogSoftmax {
	return &LogSoftmax{}
}

// Forward applies log-softmax along the feature dimension of every row.
func (s *LogSoftmax) Forward(input *mat.Dense, _ Mode) *mat.Dense {
	rows, cols := input.Dims()
	output := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		row := mat.Row(nil, i, input)
		lse := floats.LogSumExp(row)
		floats.AddConst(-lse, row)
		output.SetRow(i, row)
	}
	return output
}

// Parameters returns an empty slice (LogSoftmax has no trainable parameters).
func (s *LogSoftmax) Parameters() []*Parameter {
	return nil
}
