// Package insight holds the small inventory analytics shown next to the
// forecasts: accuracy metrics, anomaly flags, safety stock, ABC classes and
// turnover.
package insight

import "math"

// Metrics summarizes how far a set of predictions fell from the actuals.
type Metrics struct {
	MAPE     float64 `json:"mape"`
	MAE      float64 `json:"mae"`
	MSE      float64 `json:"mse"`
	Accuracy float64 `json:"accuracy"`
}

// AccuracyMetrics compares predicted with actual pointwise. Zero actuals are
// divided by 1 for MAPE. Empty or mismatched input gives zero metrics.
func AccuracyMetrics(predicted, actual []float64) Metrics {
	if len(predicted) == 0 || len(predicted) != len(actual) {
		return Metrics{}
	}

	var ape, ae, se float64
	for i := range actual {
		diff := actual[i] - predicted[i]
		denom := actual[i]
		if denom == 0 {
			denom = 1
		}
		ape += math.Abs(diff / denom)
		ae += math.Abs(diff)
		se += diff * diff
	}
	n := float64(len(actual))

	m := Metrics{
		MAPE: ape / n * 100,
		MAE:  ae / n,
		MSE:  se / n,
	}
	m.Accuracy = math.Max(0, 1-m.MAPE/100)
	return m
}
