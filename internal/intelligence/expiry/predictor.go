// Package expiry estimates how likely the stock on hand is to go to waste
// before it is consumed.
package expiry

import (
	"fmt"
	"math"
	"time"

	"github.com/andresuchdata/pharmastock/backend-go/internal/domain"
	"gonum.org/v1/gonum/stat"
)

const (
	// MinHistory is the shortest series the predictor accepts.
	MinHistory = 7

	recentWindow      = 7
	projectionDays    = 30
	urgentDaysToUse   = 30
	defaultHighRisk   = 0.8
	defaultMediumRisk = 0.6
)

// Predictor scores expiry risk. It holds only thresholds and is safe for
// concurrent use.
type Predictor struct {
	HighThreshold   float64
	MediumThreshold float64
}

func NewPredictor(high, medium float64) *Predictor {
	if high <= 0 || high > 1 {
		high = defaultHighRisk
	}
	if medium <= 0 || medium > high {
		medium = defaultMediumRisk
	}
	return &Predictor{HighThreshold: high, MediumThreshold: medium}
}

// Predict assesses the current stock of drugName against its consumption
// history. Zero stock has nothing to expire and yields ErrNoStockOnHand.
func (p *Predictor) Predict(drugName string, series domain.ConsumptionSeries, currentStock int) (*domain.ExpiryRiskAssessment, error) {
	if currentStock < 0 {
		return nil, fmt.Errorf("negative stock %d for %s: %w", currentStock, drugName, domain.ErrInvalidInput)
	}
	if currentStock == 0 {
		return nil, fmt.Errorf("%s: %w", drugName, domain.ErrNoStockOnHand)
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if len(series) < MinHistory {
		return nil, fmt.Errorf("need at least %d days of history, got %d: %w", MinHistory, len(series), domain.ErrInsufficientData)
	}

	values := series.Values()
	avg, std := stat.PopMeanStdDev(values, nil)
	trend := ConsumptionTrend(values)

	daysToUse := math.Inf(1)
	if avg > 0 {
		daysToUse = float64(currentStock) / avg
	}

	score := RiskScore(daysToUse, trend, std, avg)
	level := p.Level(score)
	wastage := PredictedWastage(currentStock, trend, daysToUse)

	return &domain.ExpiryRiskAssessment{
		DrugName:         drugName,
		RiskScore:        score,
		RiskLevel:        level,
		DaysToUse:        domain.DayCount(daysToUse),
		Trend:            trend,
		PredictedWastage: wastage,
		Recommendations:  Recommendations(drugName, level, daysToUse, wastage),
		TrendData:        projectTrend(series, avg, trend),
	}, nil
}

// Level buckets a score with the predictor's thresholds.
func (p *Predictor) Level(score float64) domain.RiskLevel {
	switch {
	case score >= p.HighThreshold:
		return domain.RiskHigh
	case score >= p.MediumThreshold:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// ConsumptionTrend is the relative change of the last week's mean against
// everything before it. Series of 7 points or fewer have no trend.
func ConsumptionTrend(values []float64) float64 {
	n := len(values)
	if n <= recentWindow {
		return 0
	}
	older := stat.Mean(values[:n-recentWindow], nil)
	if older == 0 {
		return 0
	}
	recent := stat.Mean(values[n-recentWindow:], nil)
	return (recent - older) / older
}

// RiskScore adds a days-to-use, a trend and a variability factor, capped
// at 1. Variability contributes nothing when average usage is 0. Factors
// are summed in tenths so threshold comparisons are exact.
func RiskScore(daysToUse, trend, std, avg float64) float64 {
	tenths := 0

	switch {
	case daysToUse < 30:
		tenths += 4
	case daysToUse < 60:
		tenths += 3
	case daysToUse < 90:
		tenths += 2
	default:
		tenths++
	}

	switch {
	case trend < -0.2:
		tenths += 3
	case trend < 0:
		tenths += 2
	default:
		tenths++
	}

	if avg > 0 {
		switch cv := std / avg; {
		case cv > 1:
			tenths += 3
		case cv > 0.5:
			tenths += 2
		default:
			tenths++
		}
	}

	return math.Min(1, float64(tenths)/10)
}

// PredictedWastage applies a wastage rate chosen by how long the stock will
// last, raised for falling demand and lowered for rising demand.
func PredictedWastage(currentStock int, trend, daysToUse float64) float64 {
	var rate float64
	switch {
	case daysToUse > 365:
		rate = 0.15
	case daysToUse > 180:
		rate = 0.10
	case daysToUse > 90:
		rate = 0.05
	default:
		rate = 0.02
	}

	switch {
	case trend < -0.1:
		rate *= 1.5
	case trend > 0.1:
		rate *= 0.7
	}

	return math.Max(0, float64(currentStock)*rate)
}

// Recommendations renders the advice lines for a risk level.
func Recommendations(drugName string, level domain.RiskLevel, daysToUse, wastage float64) []string {
	var recs []string
	switch level {
	case domain.RiskHigh:
		recs = append(recs,
			fmt.Sprintf("High risk of wastage for %s", drugName),
			"Consider discounting to increase consumption",
			"Check for alternative uses or departments",
			"Contact supplier for return policy",
		)
	case domain.RiskMedium:
		recs = append(recs,
			fmt.Sprintf("Monitor %s consumption closely", drugName),
			"Consider transferring to high-usage departments",
			"Review minimum stock levels",
		)
	default:
		recs = append(recs,
			fmt.Sprintf("Low expiry risk for %s", drugName),
			"Continue normal operations",
		)
	}

	if wastage > 0 {
		recs = append(recs, fmt.Sprintf("Predicted wastage: %.0f units", wastage))
	}
	if daysToUse < urgentDaysToUse {
		recs = append(recs, "URGENT: Less than 30 days to use current stock")
	}
	return recs
}

// projectTrend extends the average along the trend for 30 days, floored at 0.
func projectTrend(series domain.ConsumptionSeries, avg, trend float64) domain.TrendData {
	last := series.LastDate()
	future := make([]time.Time, projectionDays)
	predicted := make([]float64, projectionDays)
	for i := range predicted {
		future[i] = last.AddDate(0, 0, i+1)
		predicted[i] = math.Max(0, avg+trend*avg*float64(i)/projectionDays)
	}
	return domain.TrendData{
		Dates:                series.Dates(),
		Consumption:          series.Values(),
		FutureDates:          future,
		PredictedConsumption: predicted,
	}
}
