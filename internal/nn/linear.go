package nn

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/fcnet/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output with shape [batch_size, out_features]
//
// The layer's parameters are named "<name>.weight" and "<name>.bias".
//
// Example:
//
//	rng := rand.New(rand.NewSource(1))
//	layer := nn.NewLinear("hidden.0", 784, 512, rng)
//	output := layer.Forward(input, nn.Eval) // shape: [batch, 512]
type Linear struct {
	name        string
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [out_features]
}

// NewLinear creates a new Linear layer.
//
// Weights are initialized using Xavier/Glorot uniform distribution drawn from rng.
// Biases are initialized to zeros.
//
// Parameters:
//   - name: Layer prefix used to qualify parameter names (e.g., "hidden.0", "output")
//   - inFeatures: Number of input features
//   - outFeatures: Number of output features
//   - rng: Source of randomness for weight initialization
func NewLinear(name string, inFeatures, outFeatures int, rng *rand.Rand) *Linear {
	weightShape := tensor.Shape{outFeatures, inFeatures}
	weight := NewParameter(name+".weight", Xavier(inFeatures, outFeatures, weightShape, rng))

	bias := NewParameter(name+".bias", Zeros(tensor.Shape{outFeatures}))

	return &Linear{
		name:        name,
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      weight,
		bias:        bias,
	}
}

// Forward computes y = x @ W.T + b.
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features]
func (l *Linear) Forward(input *mat.Dense, _ Mode) *mat.Dense {
	_, cols := input.Dims()
	if cols != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward(%s): expected input with %d features, got %d", l.name, l.inFeatures, cols))
	}

	w := mat.NewDense(l.outFeatures, l.inFeatures, widen(l.weight.Tensor().AsFloat32()))

	var output mat.Dense
	output.Mul(input, w.T())

	b := l.bias.Tensor().AsFloat32()
	output.Apply(func(_, j int, v float64) float64 {
		return v + float64(b[j])
	}, &output)

	return &output
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Name returns the layer prefix of the parameter names.
func (l *Linear) Name() string {
	return l.name
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}

// widen converts parameter storage to the float64 slices gonum operates on.
func widen(data []float32) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}
