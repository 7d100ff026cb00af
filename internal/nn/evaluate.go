package nn

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/mat"
)

// BatchIterator yields labeled batches: a [batch, features] input and one
// class label per row. ok is false once the data source is exhausted.
type BatchIterator interface {
	Next() (x *mat.Dense, labels []int, ok bool)
}

// Metrics summarizes a pass over labeled data.
type Metrics struct {
	Loss     float64 // Mean negative log-likelihood per sample
	Accuracy float64 // Fraction of rows whose arg-max equals the label
	Samples  int
}

// Evaluate runs the network in Eval mode over every batch and reports the mean
// negative log-likelihood and accuracy. The network's output rows must be
// log-probabilities, which holds for networks built by a Factory.
func Evaluate(n *Network, batches BatchIterator) (Metrics, error) {
	var (
		m       Metrics
		nll     float64
		correct int
		batch   int
	)

	for {
		x, labels, ok := batches.Next()
		if !ok {
			break
		}

		out, err := n.Forward(x, Eval)
		if err != nil {
			return Metrics{}, fmt.Errorf("batch %d: %w", batch, err)
		}
		batchNLL, batchCorrect, err := scoreBatch(out, labels)
		if err != nil {
			return Metrics{}, fmt.Errorf("batch %d: %w", batch, err)
		}
		nll += batchNLL
		correct += batchCorrect
		m.Samples += len(labels)
		batch++
	}

	if m.Samples == 0 {
		return Metrics{}, fmt.Errorf("evaluate: no samples")
	}
	m.Loss = nll / float64(m.Samples)
	m.Accuracy = float64(correct) / float64(m.Samples)

	slog.Debug("evaluated network", "batches", batch, "samples", m.Samples, "loss", m.Loss, "accuracy", m.Accuracy)
	return m, nil
}
