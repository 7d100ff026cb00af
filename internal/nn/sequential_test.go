package nn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/fcnet/internal/tensor"
)

func mustRaw(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.FromFloat32(data, shape)
	require.NoError(t, err)
	return raw
}

// tinyNetwork returns a 2-2-2 network with hand-picked weights:
// hidden = relu(x), output = hidden swapped, plus bias [0, 1].
func tinyNetwork(t *testing.T) *Network {
	t.Helper()
	n, err := Build(Descriptor{InputSize: 2, OutputSize: 2, HiddenSizes: []uint32{2}, DropoutRate: 0.5}, WithSeed(1))
	require.NoError(t, err)

	require.NoError(t, n.SetNamedParameter("hidden.0.weight", mustRaw(t, []float32{1, 0, 0, 1}, tensor.Shape{2, 2})))
	require.NoError(t, n.SetNamedParameter("hidden.0.bias", mustRaw(t, []float32{0, 0}, tensor.Shape{2})))
	require.NoError(t, n.SetNamedParameter("output.weight", mustRaw(t, []float32{0, 1, 1, 0}, tensor.Shape{2, 2})))
	require.NoError(t, n.SetNamedParameter("output.bias", mustRaw(t, []float32{0, 1}, tensor.Shape{2})))
	return n
}

func TestNetworkForwardLogProbabilities(t *testing.T) {
	n := tinyNetwork(t)

	x := mat.NewDense(2, 2, []float64{
		3, -1, // relu -> [3, 0] -> logits [0, 4]
		-2, 5, // relu -> [0, 5] -> logits [5, 1]
	})
	out, err := n.Forward(x, Eval)
	require.NoError(t, err)

	rows, cols := out.Dims()
	require.Equal(t, 2, rows)
	require.Equal(t, 2, cols)

	for i := 0; i < rows; i++ {
		sum := 0.0
		for j := 0; j < cols; j++ {
			sum += math.Exp(out.At(i, j))
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
	assert.InDelta(t, -4-math.Log1p(math.Exp(-4)), out.At(0, 0), 1e-9)

	classes, err := n.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, classes)
}

func TestNetworkForwardRejectsBadInput(t *testing.T) {
	n := tinyNetwork(t)

	_, err := n.Forward(mat.NewDense(1, 3, nil), Eval)
	assert.Error(t, err)

	_, err = n.Forward(&mat.Dense{}, Eval)
	assert.Error(t, err)
}

func TestDropoutModes(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	d := NewDropout(0.5, rng)

	ones := make([]float64, 1000)
	for i := range ones {
		ones[i] = 1
	}
	x := mat.NewDense(1, len(ones), ones)

	assert.Same(t, x, d.Forward(x, Eval), "eval mode is the identity")

	out := d.Forward(x, Train)
	zeros, twos := 0, 0
	for _, v := range out.RawRowView(0) {
		switch v {
		case 0:
			zeros++
		case 2:
			twos++
		default:
			t.Fatalf("unexpected value %v after inverted dropout", v)
		}
	}
	assert.Equal(t, len(ones), zeros+twos)
	assert.InDelta(t, 500, zeros, 100)
}

func TestNamedParametersAreCopies(t *testing.T) {
	n := tinyNetwork(t)

	snapshot := n.NamedParameters()
	w, ok := snapshot.Get("hidden.0.weight")
	require.True(t, ok)
	w.AsFloat32()[0] = 100

	again, _ := n.NamedParameters().Get("hidden.0.weight")
	assert.Equal(t, float32(1), again.AsFloat32()[0])
}

func TestSetNamedParameterErrors(t *testing.T) {
	n := tinyNetwork(t)

	err := n.SetNamedParameter("hidden.9.weight", mustRaw(t, []float32{1}, tensor.Shape{1}))
	assert.ErrorContains(t, err, "unknown parameter")

	err = n.SetNamedParameter("output.bias", mustRaw(t, []float32{1, 2, 3}, tensor.Shape{3}))
	assert.ErrorContains(t, err, "shape mismatch")
}
