package ml

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"kurirai/monitoring"
)

const DefaultCacheSize = 1024

type featureKey [9]float64

// Result is what the form renders for one submission.
type Result struct {
	Prediction
	Features ShipmentFeatures `json:"-"`
	Vector   []float64        `json:"features"`
}

// Predictor derives features and classifies them with the model behind handle.
// Results for identical feature vectors are cached; the model never changes after
// it is loaded so a cached answer stays valid.
type Predictor struct {
	handle  *ModelHandle
	cache   *lru.Cache[featureKey, Prediction]
	metrics *monitoring.Metrics
}

// NewPredictor builds a predictor. cacheSize <= 0 disables caching; metrics may be nil.
func NewPredictor(handle *ModelHandle, cacheSize int, metrics *monitoring.Metrics) (*Predictor, error) {
	p := &Predictor{handle: handle, metrics: metrics}
	if cacheSize > 0 {
		cache, err := lru.New[featureKey, Prediction](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create prediction cache: %w", err)
		}
		p.cache = cache
	}
	return p, nil
}

// Ready reports whether the model loaded. Its error is the load error.
func (p *Predictor) Ready() error {
	_, err := p.handle.Get()
	return err
}

func (p *Predictor) Classes() []string {
	model, err := p.handle.Get()
	if err != nil {
		return nil
	}
	return model.Classes()
}

func (p *Predictor) Predict(ctx context.Context, in ShipmentInput) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	model, err := p.handle.Get()
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	features := DeriveFeatures(in)
	vector := features.Vector()

	var key featureKey
	copy(key[:], vector)
	if p.cache != nil {
		if cached, ok := p.cache.Get(key); ok {
			p.metrics.CacheHit()
			p.metrics.ObservePrediction(cached.Label, time.Since(start))
			return Result{Prediction: cached, Features: features, Vector: vector}, nil
		}
		p.metrics.CacheMiss()
	}

	prediction, err := Classify(model, vector)
	if err != nil {
		p.metrics.PredictionFailed()
		return Result{}, err
	}
	if p.cache != nil {
		p.cache.Add(key, prediction)
	}
	p.metrics.ObservePrediction(prediction.Label, time.Since(start))
	return Result{Prediction: prediction, Features: features, Vector: vector}, nil
}
