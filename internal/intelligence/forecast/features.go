package forecast

import (
	"time"

	"github.com/andresuchdata/pharmastock/backend-go/internal/domain"
	"gonum.org/v1/gonum/stat"
)

var (
	lagOffsets     = []int{1, 3, 7}
	rollingWindows = []int{3, 7, 14}
)

// minLookback is the number of preceding points a row needs before every
// lag and rolling value is defined (the widest rolling window).
const minLookback = 14

// FeatureRow is the per-day model input derived from a consumption series.
// Lags and rolling means only look at days strictly before Date, so the
// same construction serves historical rows and recursive future steps.
type FeatureRow struct {
	Date         time.Time
	DayOfWeek    int
	DayOfMonth   int
	Month        int
	Quarter      int
	TrendIndex   int
	Lag1         float64
	Lag3         float64
	Lag7         float64
	RollingAvg3  float64
	RollingAvg7  float64
	RollingAvg14 float64
	Consumption  float64
}

// Vector returns the predictors in a fixed column order.
func (r FeatureRow) Vector() []float64 {
	return []float64{
		float64(r.DayOfWeek),
		float64(r.DayOfMonth),
		float64(r.Month),
		float64(r.Quarter),
		r.Lag1,
		r.Lag3,
		r.Lag7,
		r.RollingAvg3,
		r.RollingAvg7,
		r.RollingAvg14,
		float64(r.TrendIndex),
	}
}

// BuildFeatures derives one FeatureRow per date and drops the rows whose lag
// or rolling values are undefined, which are always the first 14.
func BuildFeatures(series domain.ConsumptionSeries) []FeatureRow {
	if len(series) <= minLookback {
		return nil
	}

	values := series.Values()
	rows := make([]FeatureRow, 0, len(series)-minLookback)
	for i := minLookback; i < len(series); i++ {
		rows = append(rows, newFeatureRow(series[i].Date, i, values[:i], values[i]))
	}
	return rows
}

// newFeatureRow builds the row for date from the values observed (or
// forecast) before it. prior must hold at least minLookback values.
func newFeatureRow(date time.Time, trendIndex int, prior []float64, consumption float64) FeatureRow {
	row := FeatureRow{
		Date:        date,
		DayOfWeek:   (int(date.Weekday()) + 6) % 7, // Monday = 0
		DayOfMonth:  date.Day(),
		Month:       int(date.Month()),
		TrendIndex:  trendIndex,
		Consumption: consumption,
	}
	row.Quarter = (row.Month-1)/3 + 1

	n := len(prior)
	row.Lag1 = prior[n-lagOffsets[0]]
	row.Lag3 = prior[n-lagOffsets[1]]
	row.Lag7 = prior[n-lagOffsets[2]]
	row.RollingAvg3 = mean(prior[n-rollingWindows[0]:])
	row.RollingAvg7 = mean(prior[n-rollingWindows[1]:])
	row.RollingAvg14 = mean(prior[n-rollingWindows[2]:])
	return row
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}
