package nn

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// NLLLoss returns the mean negative log-likelihood of labels.
//
// Loss = -mean(logProbs[i, labels[i]])
//
// logProbs holds one row of log-probabilities per sample, as produced by a
// network ending in LogSoftmax; labels holds one class index per row.
func NLLLoss(logProbs *mat.Dense, labels []int) (float64, error) {
	nll, _, err := scoreBatch(logProbs, labels)
	if err != nil {
		return 0, err
	}
	return nll / float64(len(labels)), nil
}

// Accuracy returns the fraction of rows whose arg-max equals the label.
func Accuracy(logProbs *mat.Dense, labels []int) (float64, error) {
	_, correct, err := scoreBatch(logProbs, labels)
	if err != nil {
		return 0, err
	}
	return float64(correct) / float64(len(labels)), nil
}

// scoreBatch returns the summed negative log-likelihood and the number of
// correctly classified rows.
func scoreBatch(logProbs *mat.Dense, labels []int) (nll float64, correct int, err error) {
	rows, classes := logProbs.Dims()
	if len(labels) != rows {
		return 0, 0, fmt.Errorf("%d labels for %d rows", len(labels), rows)
	}
	if rows == 0 {
		return 0, 0, fmt.Errorf("empty batch")
	}

	for i, label := range labels {
		if label < 0 || label >= classes {
			return 0, 0, fmt.Errorf("label %d outside [0, %d)", label, classes)
		}
		row := logProbs.RawRowView(i)
		nll -= row[label]
		if floats.MaxIdx(row) == label {
			correct++
		}
	}
	return nll, correct, nil
}
