// Package classifier adapts ECG image classification backends to
// model.Classifier.
package classifier

import (
	"context"
	"math"

	"github.com/dtroode/heartcare-server/internal/model"
)

var _ model.Classifier = Unavailable{}

// Unavailable is used when no classifier endpoint is configured.
type Unavailable struct{}

func (Unavailable) Classify(context.Context, []byte) (model.Label, float64, error) {
	return model.LabelUnavailable, 0, model.ErrClassifierUnavailable
}

// softmax returns the normalised exponentials of logits.
func softmax(logits []float64) []float64 {
	peak := math.Inf(-1)
	for _, v := range logits {
		if v > peak {
			peak = v
		}
	}

	out := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		out[i] = math.Exp(v - peak)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}

	return out
}

// argmax returns the index of the largest value, preferring the first on ties.
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
