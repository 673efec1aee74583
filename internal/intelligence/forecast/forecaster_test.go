package forecast

import (
	"math"
	"testing"

	"github.com/andresuchdata/pharmastock/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allVariants = []domain.ModelVariant{
	domain.ModelTrendAverage,
	domain.ModelLinearRegression,
	domain.ModelEnsembleTree,
}

func newTestForecaster() *Forecaster {
	return NewForecaster(Options{Trees: 10})
}

func TestForecast_Validation(t *testing.T) {
	f := newTestForecaster()
	long := seriesFunc(40, func(i int) int { return 10 })

	t.Run("non-positive horizon", func(t *testing.T) {
		_, err := f.Forecast(long, 0, domain.ModelLinearRegression)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown variant", func(t *testing.T) {
		_, err := f.Forecast(long, 5, domain.ModelVariant("prophet"))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("negative quantity", func(t *testing.T) {
		bad := seriesFunc(40, func(i int) int { return 10 })
		bad[3].Quantity = -1
		_, err := f.Forecast(bad, 5, domain.ModelLinearRegression)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("fewer than fourteen points", func(t *testing.T) {
		_, err := f.Forecast(seriesFunc(13, func(i int) int { return 10 }), 5, domain.ModelLinearRegression)
		assert.ErrorIs(t, err, domain.ErrInsufficientData)
	})

	t.Run("too few usable rows", func(t *testing.T) {
		_, err := f.Forecast(seriesFunc(20, func(i int) int { return 10 }), 5, domain.ModelEnsembleTree)
		assert.ErrorIs(t, err, domain.ErrInsufficientData)
	})

	t.Run("seven usable rows is enough", func(t *testing.T) {
		_, err := f.Forecast(seriesFunc(21, func(i int) int { return 10 }), 5, domain.ModelLinearRegression)
		assert.NoError(t, err)
	})

	t.Run("configured minimum history", func(t *testing.T) {
		strict := NewForecaster(Options{MinHistory: 60})
		_, err := strict.Forecast(long, 5, domain.ModelLinearRegression)
		assert.ErrorIs(t, err, domain.ErrInsufficientData)
	})
}

func TestForecast_Bounds(t *testing.T) {
	f := newTestForecaster()
	series := seriesFunc(45, func(i int) int { return 10 + (i*7)%5 - (i%3)*2 })

	for _, variant := range allVariants {
		for _, horizon := range []int{1, 7, 30} {
			res, err := f.Forecast(series, horizon, variant)
			require.NoError(t, err, "%s/%d", variant, horizon)

			assert.Equal(t, variant, res.Model)
			assert.Len(t, res.Forecast, horizon)
			assert.Len(t, res.ConfidenceUpper, horizon)
			assert.Len(t, res.ConfidenceLower, horizon)
			assert.Len(t, res.Dates, horizon)
			assert.GreaterOrEqual(t, res.Accuracy, 0.0)
			assert.LessOrEqual(t, res.Accuracy, 1.0)
			assert.Equal(t, series.LastDate().AddDate(0, 0, 1), res.Dates[0])

			for i := range res.Forecast {
				assert.GreaterOrEqual(t, res.Forecast[i], 0.0)
				assert.GreaterOrEqual(t, res.ConfidenceLower[i], 0.0)
				assert.LessOrEqual(t, res.ConfidenceLower[i], res.Forecast[i])
				assert.GreaterOrEqual(t, res.ConfidenceUpper[i], res.Forecast[i])
			}
		}
	}
}

func TestForecast_AllZero(t *testing.T) {
	f := newTestForecaster()
	series := seriesFunc(30, func(i int) int { return 0 })

	for _, variant := range allVariants {
		res, err := f.Forecast(series, 10, variant)
		require.NoError(t, err, variant)

		for i := range res.Forecast {
			assert.Equal(t, 0.0, res.Forecast[i], variant)
			assert.Equal(t, 0.0, res.ConfidenceUpper[i], variant)
			assert.Equal(t, 0.0, res.ConfidenceLower[i], variant)
		}
		if variant != domain.ModelTrendAverage {
			assert.Equal(t, 0.0, res.Accuracy, variant)
		}
	}
}

func TestForecast_Constant(t *testing.T) {
	f := newTestForecaster()
	series := seriesFunc(30, func(i int) int { return 10 })

	for _, variant := range []domain.ModelVariant{domain.ModelLinearRegression, domain.ModelEnsembleTree} {
		res, err := f.Forecast(series, 14, variant)
		require.NoError(t, err)

		for i := range res.Forecast {
			assert.InDelta(t, 10.0, res.Forecast[i], 1e-6, variant)
			assert.InDelta(t, res.Forecast[i], res.ConfidenceUpper[i], 1e-9, "zero-width band")
		}
		assert.InDelta(t, 1.0, res.Accuracy, 1e-6, variant)
	}
}

func TestForecast_LinearTrend(t *testing.T) {
	f := newTestForecaster()
	series := seriesFunc(60, func(i int) int { return 10 + i })

	res, err := f.Forecast(series, 10, domain.ModelLinearRegression)
	require.NoError(t, err)

	assert.Greater(t, res.Accuracy, 0.95)
	for i, v := range res.Forecast {
		assert.InDelta(t, float64(70+i), v, 0.5, "step %d", i)
	}
}

func TestForecast_TrendAverage(t *testing.T) {
	f := NewForecaster(Options{TrendAverageAccuracy: 0.6})

	t.Run("flat history", func(t *testing.T) {
		res, err := f.Forecast(seriesFunc(30, func(i int) int { return 10 }), 5, domain.ModelTrendAverage)
		require.NoError(t, err)
		assert.Equal(t, []float64{10, 10, 10, 10, 10}, res.Forecast)
		assert.Equal(t, 0.6, res.Accuracy)
	})

	t.Run("declining history floors at zero", func(t *testing.T) {
		// first week 100, last week 0 over 28 days: trend = -100/28 per step
		series := seriesFunc(28, func(i int) int {
			if i < 7 {
				return 100
			}
			return 0
		})
		res, err := f.Forecast(series, 3, domain.ModelTrendAverage)
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 0, 0}, res.Forecast)
	})

	t.Run("rising history", func(t *testing.T) {
		series := seriesFunc(28, func(i int) int {
			if i >= 21 {
				return 28
			}
			return 0
		})
		res, err := f.Forecast(series, 3, domain.ModelTrendAverage)
		require.NoError(t, err)
		assert.InDelta(t, 28.0, res.Forecast[0], 1e-9)
		assert.InDelta(t, 29.0, res.Forecast[1], 1e-9)
		assert.InDelta(t, 30.0, res.Forecast[2], 1e-9)
	})

	t.Run("default placeholder accuracy", func(t *testing.T) {
		res, err := newTestForecaster().Forecast(seriesFunc(30, func(i int) int { return 4 }), 1, domain.ModelTrendAverage)
		require.NoError(t, err)
		assert.Equal(t, 0.75, res.Accuracy)
	})
}

func TestForecast_ConfidenceBand(t *testing.T) {
	f := newTestForecaster()
	// alternating 8/12: population std is exactly 2
	series := seriesFunc(30, func(i int) int { return 8 + 4*(i%2) })

	res, err := f.Forecast(series, 5, domain.ModelTrendAverage)
	require.NoError(t, err)
	for i, v := range res.Forecast {
		assert.InDelta(t, v+3.92, res.ConfidenceUpper[i], 1e-9)
		assert.InDelta(t, math.Max(0, v-3.92), res.ConfidenceLower[i], 1e-9)
	}
}

func TestForecast_EnsembleIsDeterministic(t *testing.T) {
	series := seriesFunc(50, func(i int) int { return 5 + (i*13)%11 })

	first, err := NewForecaster(Options{Seed: 7, Trees: 15}).Forecast(series, 20, domain.ModelEnsembleTree)
	require.NoError(t, err)
	second, err := NewForecaster(Options{Seed: 7, Trees: 15}).Forecast(series, 20, domain.ModelEnsembleTree)
	require.NoError(t, err)

	assert.Equal(t, first.Forecast, second.Forecast)
	assert.Equal(t, first.Accuracy, second.Accuracy)
}

func TestValidationAccuracy(t *testing.T) {
	assert.Equal(t, 1.0, validationAccuracy([]float64{5, 5}, []float64{5, 5}))
	assert.InDelta(t, 0.9, validationAccuracy([]float64{9, 11}, []float64{10, 10}), 1e-9)
	assert.Equal(t, 0.0, validationAccuracy([]float64{50, 50}, []float64{10, 10}))
	assert.Equal(t, 0.0, validationAccuracy([]float64{1}, []float64{0}))
	assert.Equal(t, 0.0, validationAccuracy(nil, nil))
}
