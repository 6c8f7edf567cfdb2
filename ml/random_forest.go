package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
)

const (
	ModelTypeRandomForest = "random_forest"
	ModelTypeDecisionTree = "decision_tree"
)

// RandomForest is a JSON export of a trained scikit-learn forest. Class
// probabilities are the mean of the per-tree leaf distributions.
type RandomForest struct {
	ModelType    string         `json:"model_type"`
	Version      string         `json:"version,omitempty"`
	FeatureNames []string       `json:"feature_names,omitempty"`
	ClassLabels  []string       `json:"classes"`
	Trees        []DecisionTree `json:"trees"`
}

func (rf *RandomForest) Classes() []string {
	return slices.Clone(rf.ClassLabels)
}

func (rf *RandomForest) Predict(features []float64) (string, error) {
	proba, err := rf.PredictProba(features)
	if err != nil {
		return "", err
	}
	best := 0
	for i, p := range proba {
		if p > proba[best] {
			best = i
		}
	}
	return rf.ClassLabels[best], nil
}

func (rf *RandomForest) PredictProba(features []float64) ([]float64, error) {
	if len(rf.Trees) == 0 {
		return nil, errors.New("model not loaded")
	}
	if len(rf.FeatureNames) > 0 && len(features) != len(rf.FeatureNames) {
		return nil, fmt.Errorf("expected %d features, got %d", len(rf.FeatureNames), len(features))
	}
	proba := make([]float64, len(rf.ClassLabels))
	for i := range rf.Trees {
		dist, err := rf.Trees[i].leafDistribution(features)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		for c, p := range dist {
			proba[c] += p
		}
	}
	for c := range proba {
		proba[c] /= float64(len(rf.Trees))
	}
	return proba, nil
}

func (rf *RandomForest) Save(path string) error {
	if len(rf.Trees) == 0 {
		return errors.New("model not loaded")
	}
	payload, err := json.Marshal(rf)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (rf *RandomForest) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrArtifactMissing, path)
		}
		return err
	}
	var loaded RandomForest
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if err := loaded.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	*rf = loaded
	return nil
}

func (rf *RandomForest) validate() error {
	if len(rf.ClassLabels) == 0 {
		return errors.New("no classes")
	}
	if len(rf.Trees) == 0 {
		return errors.New("no trees")
	}
	names := FeatureNames()
	if len(rf.FeatureNames) > 0 && !slices.Equal(rf.FeatureNames, names) {
		return fmt.Errorf("feature names %v do not match %v", rf.FeatureNames, names)
	}
	for i := range rf.Trees {
		if err := rf.Trees[i].validate(len(rf.ClassLabels), len(names)); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}
