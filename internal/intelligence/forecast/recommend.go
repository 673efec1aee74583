package forecast

import (
	"fmt"
	"math"

	"github.com/andresuchdata/pharmastock/backend-go/internal/domain"
)

const (
	criticalDays     = 7
	warningDays      = 14
	shiftWindow      = 7
	increaseFactor   = 1.2
	decreaseFactor   = 0.8
	safetyCoverDays  = 7
	insufficientData = "Unable to generate forecast due to insufficient data"
)

// Recommend turns a forecast and the stock on hand into prioritized advice.
// A nil result (failed forecast) yields a single high-priority message.
func Recommend(drugName string, result *domain.ForecastResult, currentStock int) []domain.Recommendation {
	if result == nil || len(result.Forecast) == 0 {
		return []domain.Recommendation{{Priority: domain.PriorityHigh, Message: insufficientData}}
	}

	var recs []domain.Recommendation
	stock := float64(currentStock)
	avg := mean(result.Forecast)

	daysOfStock := math.Inf(1)
	if avg > 0 {
		daysOfStock = stock / avg
	}
	switch {
	case daysOfStock < criticalDays:
		recs = append(recs, domain.Recommendation{
			Priority: domain.PriorityHigh,
			Message:  fmt.Sprintf("Critical: Only %.1f days of stock remaining for %s", daysOfStock, drugName),
		})
	case daysOfStock < warningDays:
		recs = append(recs, domain.Recommendation{
			Priority: domain.PriorityMedium,
			Message:  fmt.Sprintf("Warning: %.1f days of stock remaining for %s", daysOfStock, drugName),
		})
	}

	if len(result.Forecast) > shiftWindow {
		firstWeek := mean(result.Forecast[:shiftWindow])
		rest := mean(result.Forecast[shiftWindow:])
		if firstWeek > 0 {
			switch {
			case rest > firstWeek*increaseFactor:
				recs = append(recs, domain.Recommendation{
					Priority: domain.PriorityMedium,
					Message:  fmt.Sprintf("Demand for %s expected to increase by %.1f%%", drugName, (rest/firstWeek-1)*100),
				})
			case rest < firstWeek*decreaseFactor:
				recs = append(recs, domain.Recommendation{
					Priority: domain.PriorityLow,
					Message:  fmt.Sprintf("Demand for %s expected to decrease by %.1f%%", drugName, (1-rest/firstWeek)*100),
				})
			}
		}
	}

	if qty := SuggestedOrderQuantity(result, currentStock); qty > 0 {
		recs = append(recs, domain.Recommendation{
			Priority: domain.PriorityMedium,
			Message:  fmt.Sprintf("Recommend ordering %d units of %s", qty, drugName),
		})
	}

	return recs
}

// SuggestedOrderQuantity is the forecast demand plus a week of cover minus
// stock on hand, never negative.
func SuggestedOrderQuantity(result *domain.ForecastResult, currentStock int) int {
	if result == nil || len(result.Forecast) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range result.Forecast {
		total += v
	}
	qty := total + mean(result.Forecast)*safetyCoverDays - float64(currentStock)
	if qty <= 0 {
		return 0
	}
	return int(math.Round(qty))
}
