package evaluation

import (
	"context"
	"fmt"
	"io"
	"sort"

	"kurirai/ml"
)

type ClassStats struct {
	Label     string
	Support   int
	Predicted int
	Correct   int
	Precision float64
	Recall    float64
}

type Report struct {
	Total          int
	Correct        int
	Accuracy       float64
	MeanConfidence float64
	Classes        []ClassStats
}

// Evaluate runs every sample through the predictor.
func Evaluate(ctx context.Context, predictor *ml.Predictor, samples []Sample) (Report, error) {
	stats := make(map[string]*ClassStats)
	get := func(label string) *ClassStats {
		s, ok := stats[label]
		if !ok {
			s = &ClassStats{Label: label}
			stats[label] = s
		}
		return s
	}

	var report Report
	confidence := 0.0
	for i, sample := range samples {
		result, err := predictor.Predict(ctx, sample.Input)
		if err != nil {
			return Report{}, fmt.Errorf("sample %d: %w", i, err)
		}
		report.Total++
		confidence += result.Confidence
		get(sample.Label).Support++
		get(result.Label).Predicted++
		if result.Label == sample.Label {
			report.Correct++
			get(sample.Label).Correct++
		}
	}
	if report.Total == 0 {
		return report, nil
	}

	report.Accuracy = float64(report.Correct) / float64(report.Total)
	report.MeanConfidence = confidence / float64(report.Total)
	for _, s := range stats {
		if s.Predicted > 0 {
			s.Precision = float64(s.Correct) / float64(s.Predicted)
		}
		if s.Support > 0 {
			s.Recall = float64(s.Correct) / float64(s.Support)
		}
		report.Classes = append(report.Classes, *s)
	}
	sort.Slice(report.Classes, func(i, j int) bool {
		return report.Classes[i].Label < report.Classes[j].Label
	})
	return report, nil
}

func (r Report) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "samples=%d accuracy=%.3f mean_confidence=%.3f\n",
		r.Total, r.Accuracy, r.MeanConfidence); err != nil {
		return err
	}
	for _, c := range r.Classes {
		if _, err := fmt.Fprintf(w, "  %-16s support=%-5d precision=%.3f recall=%.3f\n",
			c.Label, c.Support, c.Precision, c.Recall); err != nil {
			return err
		}
	}
	return nil
}
