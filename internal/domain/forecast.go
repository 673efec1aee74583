package domain

import (
	"fmt"
	"strings"
	"time"
)

// ModelVariant selects the predictor used by the forecaster.
type ModelVariant string

const (
	ModelTrendAverage     ModelVariant = "trend-average"
	ModelLinearRegression ModelVariant = "linear-regression"
	ModelEnsembleTree     ModelVariant = "ensemble-tree"
)

// ParseModelVariant accepts the canonical names plus a few historical labels.
func ParseModelVariant(raw string) (ModelVariant, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trend-average", "trend_average", "arima":
		return ModelTrendAverage, nil
	case "linear-regression", "linear_regression", "linear regression", "linear":
		return ModelLinearRegression, nil
	case "ensemble-tree", "ensemble_tree", "random forest", "random-forest", "forest":
		return ModelEnsembleTree, nil
	}
	return "", fmt.Errorf("unknown model variant %q: %w", raw, ErrInvalidInput)
}

// ForecastResult is the projection of daily consumption for a horizon.
type ForecastResult struct {
	Forecast        []float64    `json:"forecast"`
	ConfidenceUpper []float64    `json:"confidence_upper"`
	ConfidenceLower []float64    `json:"confidence_lower"`
	Accuracy        float64      `json:"accuracy"`
	Model           ModelVariant `json:"model"`
	Dates           []time.Time  `json:"dates"`
}

// Priority orders recommendations and reorder suggestions.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank maps a priority to a sortable weight; higher is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Recommendation is a single piece of human-readable stocking advice.
type Recommendation struct {
	Priority Priority `json:"priority"`
	Message  string   `json:"message"`
}

// ForecastReport bundles a forecast with the advice derived from it.
type ForecastReport struct {
	DrugName        string           `json:"drug_name"`
	CurrentStock    int              `json:"current_stock"`
	Result          *ForecastResult  `json:"result,omitempty"`
	Recommendations []Recommendation `json:"recommendations"`
}
