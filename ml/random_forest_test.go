package ml

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModelPath = "testdata/model_rf_bandung.json"

func loadTestForest(t *testing.T) *RandomForest {
	t.Helper()
	model := &RandomForest{}
	require.NoError(t, model.Load(testModelPath))
	return model
}

func TestRandomForestPredict(t *testing.T) {
	model := loadTestForest(t)
	assert.Equal(t, []string{"Hemat / Kargo", "Instant", "Same Day"}, model.Classes())

	cases := []struct {
		name  string
		in    ShipmentInput
		label string
		proba []float64
	}{
		{
			name:  "cimahi noon",
			in:    DefaultShipmentInput(),
			label: "Same Day",
			proba: []float64{0.1, 0.4, 0.5},
		},
		{
			name:  "same city",
			in:    ShipmentInput{WeightKG: 1, ProductPrice: 50000, Quantity: 1, OrderHour: 12, DestinationCity: "kota bandung"},
			label: "Instant",
			proba: []float64{0.05, 0.75, 0.2},
		},
		{
			name:  "heavy out of area",
			in:    ShipmentInput{WeightKG: 10, ProductPrice: 50000, Quantity: 1, OrderHour: 9, DestinationCity: "JAKARTA"},
			label: "Hemat / Kargo",
			proba: []float64{0.9, 0, 0.1},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vector := DeriveFeatures(tc.in).Vector()

			label, err := model.Predict(vector)
			require.NoError(t, err)
			assert.Equal(t, tc.label, label)

			proba, err := model.PredictProba(vector)
			require.NoError(t, err)
			require.Len(t, proba, len(tc.proba))
			total := 0.0
			for i := range proba {
				assert.InDelta(t, tc.proba[i], proba[i], 1e-9)
				total += proba[i]
			}
			assert.InDelta(t, 1.0, total, 1e-9)
		})
	}
}

func TestRandomForestRejectsWrongVectorLength(t *testing.T) {
	model := loadTestForest(t)
	_, err := model.PredictProba([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestRandomForestLoadMissing(t *testing.T) {
	model := &RandomForest{}
	err := model.Load(filepath.Join(t.TempDir(), "model_rf_bandung.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrArtifactMissing))
}

func TestRandomForestLoadInvalid(t *testing.T) {
	cases := map[string]string{
		"not json":       `{`,
		"no classes":     `{"classes": [], "trees": [{"nodes": [{"is_leaf": true, "value": [1]}]}]}`,
		"no trees":       `{"classes": ["Instant"], "trees": []}`,
		"bad leaf width": `{"classes": ["Instant", "Same Day"], "trees": [{"nodes": [{"is_leaf": true, "value": [1]}]}]}`,
		"empty leaf":     `{"classes": ["Instant"], "trees": [{"nodes": [{"is_leaf": true, "value": [0]}]}]}`,
		"child loop": `{"classes": ["Instant"], "trees": [{"nodes": [
			{"feature_idx": 0, "threshold": 1, "left_child": 0, "right_child": 1},
			{"is_leaf": true, "value": [1]}]}]}`,
		"feature out of range": `{"classes": ["Instant"], "trees": [{"nodes": [
			{"feature_idx": 9, "threshold": 1, "left_child": 1, "right_child": 2},
			{"is_leaf": true, "value": [1]},
			{"is_leaf": true, "value": [1]}]}]}`,
		"wrong feature order": `{"feature_names": ["Qty", "Berat_KG"], "classes": ["Instant"], "trees": [{"nodes": [{"is_leaf": true, "value": [1]}]}]}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "model.json")
			require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

			err := (&RandomForest{}).Load(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidModel)
		})
	}
}

func TestRandomForestSaveRoundTrip(t *testing.T) {
	model := loadTestForest(t)
	path := filepath.Join(t.TempDir(), "copy.json")
	require.NoError(t, model.Save(path))

	reloaded := &RandomForest{}
	require.NoError(t, reloaded.Load(path))

	vector := DeriveFeatures(DefaultShipmentInput()).Vector()
	want, err := model.PredictProba(vector)
	require.NoError(t, err)
	got, err := reloaded.PredictProba(vector)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	assert.Error(t, (&RandomForest{}).Save(path))
}

func TestRandomForestTieTakesFirstClass(t *testing.T) {
	model := &RandomForest{
		ClassLabels: []string{"Instant", "Same Day"},
		Trees: []DecisionTree{{Nodes: []TreeNode{
			{IsLeaf: true, Value: []float64{5, 5}},
		}}},
	}
	label, err := model.Predict(make([]float64, 9))
	require.NoError(t, err)
	assert.Equal(t, "Instant", label)
}
