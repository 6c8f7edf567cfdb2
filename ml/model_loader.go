package ml

import (
	"fmt"
	"sync"
)

// LoadModel reads an artifact of the given type. A missing file is reported as
// ErrArtifactMissing.
func LoadModel(modelType, path string) (Classifier, error) {
	switch modelType {
	case ModelTypeRandomForest, "":
		model := &RandomForest{}
		if err := model.Load(path); err != nil {
			return nil, err
		}
		return model, nil
	case ModelTypeDecisionTree:
		// A single tree is exported with the same layout as a one-tree forest.
		model := &RandomForest{}
		if err := model.Load(path); err != nil {
			return nil, err
		}
		if len(model.Trees) != 1 {
			return nil, fmt.Errorf("%w: decision_tree artifact has %d trees", ErrInvalidModel, len(model.Trees))
		}
		return model, nil
	default:
		return nil, fmt.Errorf("unsupported model type %q", modelType)
	}
}

// ModelHandle loads a classifier on first use and hands out the same instance, or
// the same error, for the rest of the process.
type ModelHandle struct {
	load  func() (Classifier, error)
	once  sync.Once
	model Classifier
	err   error
}

func NewModelHandle(load func() (Classifier, error)) *ModelHandle {
	return &ModelHandle{load: load}
}

// FileModelHandle is a handle backed by LoadModel.
func FileModelHandle(modelType, path string) *ModelHandle {
	return NewModelHandle(func() (Classifier, error) {
		return LoadModel(modelType, path)
	})
}

// StaticModelHandle wraps an already loaded classifier.
func StaticModelHandle(c Classifier) *ModelHandle {
	h := &ModelHandle{model: c}
	h.once.Do(func() {})
	if c == nil {
		h.err = ErrArtifactMissing
	}
	return h
}

func (h *ModelHandle) Get() (Classifier, error) {
	h.once.Do(func() {
		h.model, h.err = h.load()
		if h.err == nil && h.model == nil {
			h.err = ErrArtifactMissing
		}
	})
	return h.model, h.err
}
