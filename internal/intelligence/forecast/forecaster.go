// Package forecast projects per-drug daily consumption from history and
// turns projections into stocking advice.
package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/andresuchdata/pharmastock/backend-go/internal/domain"
	"gonum.org/v1/gonum/stat"
)

const (
	// MinHistory is the shortest series the forecaster accepts.
	MinHistory = 14
	// MinFeatureRows is the fewest usable rows left after feature extraction.
	MinFeatureRows = 7

	trainFraction  = 0.8
	trendWindow    = 7
	confidenceZ    = 1.96
	defaultTrees   = 50
	defaultSeed    = 42
	defaultTrendAc = 0.75
)

// Options tunes the forecaster. Zero values fall back to defaults.
type Options struct {
	// TrendAverageAccuracy is reported for the trend-average variant, which
	// has no validation split to measure against.
	TrendAverageAccuracy float64
	Trees                int
	Seed                 int64
	// MinHistory raises the minimum series length; values below 14 are ignored.
	MinHistory int
}

// Forecaster fits a fresh model on every call; it holds no state between
// calls and is safe for concurrent use.
type Forecaster struct {
	opts Options
}

func NewForecaster(opts Options) *Forecaster {
	if opts.TrendAverageAccuracy <= 0 || opts.TrendAverageAccuracy > 1 {
		opts.TrendAverageAccuracy = defaultTrendAc
	}
	if opts.Trees <= 0 {
		opts.Trees = defaultTrees
	}
	if opts.Seed == 0 {
		opts.Seed = defaultSeed
	}
	if opts.MinHistory < MinHistory {
		opts.MinHistory = MinHistory
	}
	return &Forecaster{opts: opts}
}

// MinHistory is the shortest series this forecaster accepts.
func (f *Forecaster) MinHistory() int {
	return f.opts.MinHistory
}

// Forecast projects horizonDays of consumption after the last date in series.
func (f *Forecaster) Forecast(series domain.ConsumptionSeries, horizonDays int, variant domain.ModelVariant) (*domain.ForecastResult, error) {
	if horizonDays <= 0 {
		return nil, fmt.Errorf("forecast horizon must be positive, got %d: %w", horizonDays, domain.ErrInvalidInput)
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if len(series) < f.opts.MinHistory {
		return nil, fmt.Errorf("need at least %d days of history, got %d: %w", f.opts.MinHistory, len(series), domain.ErrInsufficientData)
	}

	rows := BuildFeatures(series)
	if len(rows) < MinFeatureRows {
		return nil, fmt.Errorf("need at least %d usable rows after feature extraction, got %d: %w", MinFeatureRows, len(rows), domain.ErrInsufficientData)
	}

	values := series.Values()
	var (
		forecast []float64
		accuracy float64
	)

	switch variant {
	case domain.ModelTrendAverage:
		forecast = trendAverage(values, horizonDays)
		accuracy = f.opts.TrendAverageAccuracy
	case domain.ModelLinearRegression, domain.ModelEnsembleTree:
		var err error
		forecast, accuracy, err = f.fitAndProject(series, rows, horizonDays, f.newRegressor(variant))
		if err != nil {
			return nil, fmt.Errorf("%s forecast: %w", variant, err)
		}
	default:
		return nil, fmt.Errorf("unknown model variant %q: %w", variant, domain.ErrInvalidInput)
	}

	_, sigma := stat.PopMeanStdDev(values, nil)
	upper := make([]float64, horizonDays)
	lower := make([]float64, horizonDays)
	dates := make([]time.Time, horizonDays)
	last := series.LastDate()
	for i, v := range forecast {
		upper[i] = v + confidenceZ*sigma
		lower[i] = math.Max(0, v-confidenceZ*sigma)
		dates[i] = last.AddDate(0, 0, i+1)
	}

	return &domain.ForecastResult{
		Forecast:        forecast,
		ConfidenceUpper: upper,
		ConfidenceLower: lower,
		Accuracy:        accuracy,
		Model:           variant,
		Dates:           dates,
	}, nil
}

func (f *Forecaster) newRegressor(variant domain.ModelVariant) regressor {
	if variant == domain.ModelEnsembleTree {
		return newRegressionForest(f.opts.Trees, f.opts.Seed)
	}
	return &linearRegression{}
}

// fitAndProject trains on the first 80% of rows, scores the rest and then
// forecasts recursively, feeding each prediction back as history.
func (f *Forecaster) fitAndProject(series domain.ConsumptionSeries, rows []FeatureRow, horizon int, model regressor) ([]float64, float64, error) {
	split := int(float64(len(rows)) * trainFraction)
	train, validation := rows[:split], rows[split:]

	X, y := matrix(train)
	scaler := fitScaler(X)
	if err := model.Fit(scaler.transformAll(X), y); err != nil {
		return nil, 0, err
	}

	predicted := make([]float64, len(validation))
	actual := make([]float64, len(validation))
	for i, row := range validation {
		predicted[i] = model.Predict(scaler.transform(row.Vector()))
		actual[i] = row.Consumption
	}
	accuracy := validationAccuracy(predicted, actual)

	values := series.Values()
	buffer := make([]float64, len(values), len(values)+horizon)
	copy(buffer, values)
	last := series.LastDate()
	for step := 0; step < horizon; step++ {
		row := newFeatureRow(last.AddDate(0, 0, step+1), len(buffer), buffer, 0)
		pred := math.Max(0, model.Predict(scaler.transform(row.Vector())))
		buffer = append(buffer, pred)
	}

	return buffer[len(values):], accuracy, nil
}

// trendAverage extends the recent mean along a coarse first-week to
// last-week slope.
func trendAverage(values []float64, horizon int) []float64 {
	n := len(values)
	window := trendWindow
	if n < window {
		window = n
	}
	baseline := mean(values[n-window:])

	trend := 0.0
	if n > trendWindow {
		trend = (mean(values[n-trendWindow:]) - mean(values[:trendWindow])) / float64(n)
	}

	out := make([]float64, horizon)
	for i := range out {
		out[i] = math.Max(0, baseline+trend*float64(i))
	}
	return out
}

// validationAccuracy is 1 - MAE/mean(actual) clamped to [0, 1]; it is 0 when
// the actual mean is 0.
func validationAccuracy(predicted, actual []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	m := mean(actual)
	if m <= 0 {
		return 0
	}
	mae := 0.0
	for i := range actual {
		mae += math.Abs(predicted[i] - actual[i])
	}
	mae /= float64(len(actual))
	return math.Max(0, math.Min(1, 1-mae/m))
}

func matrix(rows []FeatureRow) ([][]float64, []float64) {
	X := make([][]float64, len(rows))
	y := make([]float64, len(rows))
	for i, row := range rows {
		X[i] = row.Vector()
		y[i] = row.Consumption
	}
	return X, y
}
