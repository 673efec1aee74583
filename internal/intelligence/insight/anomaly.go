package insight

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/pharmastock/backend-go/internal/domain"
)

const (
	// AnomalyWindowDays is the length of each compared window.
	AnomalyWindowDays = 30
	// MaxAnomalies caps how many anomalies are reported.
	MaxAnomalies = 5

	increaseRatio = 1.5
	decreaseRatio = 0.5
)

// WindowAverages returns the mean daily consumption recorded in the window
// ending at asOf and in the window before it. Days without a record are not
// counted.
func WindowAverages(series domain.ConsumptionSeries, asOf time.Time, windowDays int) (recent, previous float64) {
	recentStart := asOf.AddDate(0, 0, -windowDays)
	previousStart := asOf.AddDate(0, 0, -2*windowDays)

	var rSum, pSum float64
	var rN, pN int
	for _, p := range series {
		switch {
		case p.Date.After(asOf):
		case p.Date.After(recentStart):
			rSum += float64(p.Quantity)
			rN++
		case p.Date.After(previousStart):
			pSum += float64(p.Quantity)
			pN++
		}
	}
	if rN > 0 {
		recent = rSum / float64(rN)
	}
	if pN > 0 {
		previous = pSum / float64(pN)
	}
	return recent, previous
}

// DetectAnomaly flags a drug whose recent average is more than 1.5 times or
// less than half of the previous average. Both averages must be positive.
func DetectAnomaly(drugName string, recentAvg, previousAvg float64) (*domain.ConsumptionAnomaly, bool) {
	if recentAvg <= 0 || previousAvg <= 0 {
		return nil, false
	}

	ratio := recentAvg / previousAvg
	a := &domain.ConsumptionAnomaly{
		DrugName:    drugName,
		RecentAvg:   recentAvg,
		PreviousAvg: previousAvg,
	}
	switch {
	case ratio > increaseRatio:
		a.Direction = domain.AnomalyIncrease
		a.ChangePct = (ratio - 1) * 100
		a.Description = fmt.Sprintf("increased by %.1f%%", a.ChangePct)
	case ratio < decreaseRatio:
		a.Direction = domain.AnomalyDecrease
		a.ChangePct = (1 - ratio) * 100
		a.Description = fmt.Sprintf("decreased by %.1f%%", a.ChangePct)
	default:
		return nil, false
	}
	return a, true
}

// TopAnomalies keeps the limit largest changes, biggest first.
func TopAnomalies(anomalies []domain.ConsumptionAnomaly, limit int) []domain.ConsumptionAnomaly {
	out := make([]domain.ConsumptionAnomaly, len(anomalies))
	copy(out, anomalies)
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].ChangePct) > math.Abs(out[j].ChangePct)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
