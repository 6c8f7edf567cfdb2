package ml

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrArtifactMissing means the model file could not be found. It is fatal for
	// the session: no prediction may be attempted afterwards.
	ErrArtifactMissing = errors.New("model artifact missing")
	ErrInvalidModel    = errors.New("invalid model artifact")
)

// Classifier is the contract the service needs from a trained model. The label set
// is whatever the artifact was trained to emit.
type Classifier interface {
	Classes() []string
	Predict(features []float64) (string, error)
	PredictProba(features []float64) ([]float64, error)
}

// Prediction is a service tier with the model's confidence in it.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classify runs one feature vector through the model. Confidence is the largest
// class probability.
func Classify(c Classifier, features []float64) (Prediction, error) {
	if c == nil {
		return Prediction{}, ErrArtifactMissing
	}
	label, err := c.Predict(features)
	if err != nil {
		return Prediction{}, fmt.Errorf("predict: %w", err)
	}
	proba, err := c.PredictProba(features)
	if err != nil {
		return Prediction{}, fmt.Errorf("predict proba: %w", err)
	}
	if len(proba) == 0 {
		return Prediction{}, fmt.Errorf("%w: empty probability vector", ErrInvalidModel)
	}
	confidence := proba[0]
	for _, p := range proba[1:] {
		if p > confidence {
			confidence = p
		}
	}
	return Prediction{Label: label, Confidence: clamp01(confidence)}, nil
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
