package ml

import (
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	classes []string
	label   string
	proba   []float64
	err     error
	calls   atomic.Int64
}

func (f *fakeModel) Classes() []string { return f.classes }

func (f *fakeModel) Predict(features []float64) (string, error) {
	f.calls.Add(1)
	return f.label, f.err
}

func (f *fakeModel) PredictProba(features []float64) ([]float64, error) {
	return f.proba, f.err
}

func TestClassifyUsesMaxProbability(t *testing.T) {
	model := &fakeModel{
		classes: []string{"Hemat / Kargo", "Instant", "Same Day", "Reguler"},
		label:   "Reguler",
		proba:   []float64{0.1, 0.2, 0.05, 0.65},
	}
	prediction, err := Classify(model, make([]float64, 9))
	require.NoError(t, err)
	assert.Equal(t, "Reguler", prediction.Label)
	assert.InDelta(t, 0.65, prediction.Confidence, 1e-12)
}

func TestClassifyConfidenceInUnitInterval(t *testing.T) {
	model := &fakeModel{label: "Instant", proba: []float64{1.0000001, 0}}
	prediction, err := Classify(model, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, prediction.Confidence)

	model.proba = []float64{-0.2}
	prediction, err = Classify(model, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, prediction.Confidence)
}

func TestClassifyErrors(t *testing.T) {
	_, err := Classify(nil, nil)
	assert.ErrorIs(t, err, ErrArtifactMissing)

	boom := errors.New("boom")
	_, err = Classify(&fakeModel{err: boom}, nil)
	assert.ErrorIs(t, err, boom)

	_, err = Classify(&fakeModel{label: "Instant"}, nil)
	assert.ErrorIs(t, err, ErrInvalidModel)
}

func TestLoadModel(t *testing.T) {
	model, err := LoadModel(ModelTypeRandomForest, testModelPath)
	require.NoError(t, err)
	assert.Len(t, model.Classes(), 3)

	_, err = LoadModel(ModelTypeDecisionTree, testModelPath)
	assert.ErrorIs(t, err, ErrInvalidModel)

	_, err = LoadModel("svm", testModelPath)
	assert.Error(t, err)

	_, err = LoadModel(ModelTypeRandomForest, filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, ErrArtifactMissing)
}

func TestModelHandleLoadsOnce(t *testing.T) {
	var loads atomic.Int64
	model := &fakeModel{label: "Instant", proba: []float64{1}}
	handle := NewModelHandle(func() (Classifier, error) {
		loads.Add(1)
		return model, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := handle.Get()
			assert.NoError(t, err)
			assert.Same(t, model, got)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), loads.Load())
}

func TestModelHandleRemembersFailure(t *testing.T) {
	var loads atomic.Int64
	handle := FileModelHandle(ModelTypeRandomForest, filepath.Join(t.TempDir(), "absent.json"))
	wrapped := NewModelHandle(func() (Classifier, error) {
		loads.Add(1)
		return handle.Get()
	})

	for i := 0; i < 3; i++ {
		_, err := wrapped.Get()
		assert.ErrorIs(t, err, ErrArtifactMissing)
	}
	assert.Equal(t, int64(1), loads.Load())
}

func TestStaticModelHandle(t *testing.T) {
	model := &fakeModel{}
	got, err := StaticModelHandle(model).Get()
	require.NoError(t, err)
	assert.Same(t, model, got)

	_, err = StaticModelHandle(nil).Get()
	assert.ErrorIs(t, err, ErrArtifactMissing)
}
