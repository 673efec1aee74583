// Package reorder decides which drugs need restocking and which supplier
// should receive the order.
package reorder

import (
	"fmt"
	"math"
	"sort"

	"github.com/andresuchdata/pharmastock/backend-go/internal/domain"
)

const (
	defaultSafetyFactor = 1.5
	defaultLeadTimeDays = 7

	// targetCoverFactor sizes the target stock as twice the lead-time demand.
	targetCoverFactor = 2
	minOrderDays      = 7
	mediumStockFactor = 1.5
)

// Analyzer applies the reorder-point policy to trailing-usage snapshots.
// It never fails: missing usage or lead time falls back to defaults.
type Analyzer struct {
	SafetyFactor        float64
	DefaultLeadTimeDays int
}

func NewAnalyzer(safetyFactor float64, leadTimeDays int) *Analyzer {
	if safetyFactor <= 0 {
		safetyFactor = defaultSafetyFactor
	}
	if leadTimeDays <= 0 {
		leadTimeDays = defaultLeadTimeDays
	}
	return &Analyzer{SafetyFactor: safetyFactor, DefaultLeadTimeDays: leadTimeDays}
}

// SafetyStock is the lead-time demand scaled by the safety factor.
func (a *Analyzer) SafetyStock(avgDailyUsage float64, leadTimeDays int) float64 {
	return avgDailyUsage * float64(leadTimeDays) * a.SafetyFactor
}

// ReorderPoint is the stock level at or below which an order is triggered.
func (a *Analyzer) ReorderPoint(minimumStock int, avgDailyUsage float64, leadTimeDays int) float64 {
	return float64(minimumStock) + a.SafetyStock(avgDailyUsage, leadTimeDays)
}

// OrderQuantity covers twice the lead-time demand on top of the minimum
// stock, with at least one week of usage per order. Without usage data it
// falls back to twice the minimum stock.
func OrderQuantity(currentStock, minimumStock int, avgDailyUsage float64, leadTimeDays int) float64 {
	if avgDailyUsage <= 0 {
		return float64(minimumStock * 2)
	}
	target := avgDailyUsage*float64(leadTimeDays)*targetCoverFactor + float64(minimumStock)
	qty := math.Max(0, target-float64(currentStock))
	return math.Max(qty, avgDailyUsage*minOrderDays)
}

// Classify returns the urgency of an order and the reason shown to operators.
func Classify(currentStock, minimumStock int) (domain.Priority, string) {
	switch {
	case currentStock <= minimumStock:
		return domain.PriorityHigh, fmt.Sprintf("Stock below minimum level (%d <= %d)", currentStock, minimumStock)
	case float64(currentStock) <= float64(minimumStock)*mediumStockFactor:
		return domain.PriorityMedium, "Stock approaching minimum level"
	default:
		return domain.PriorityLow, "Preventive reorder recommended"
	}
}

// DaysUntilStockout truncates stock/usage to whole days. It returns the
// NoStockoutRisk sentinel when nothing is being consumed or when the runway
// reaches the sentinel.
func DaysUntilStockout(currentStock int, avgDailyUsage float64) int {
	if avgDailyUsage <= 0 || math.IsNaN(avgDailyUsage) {
		return domain.NoStockoutRisk
	}
	days := float64(currentStock) / avgDailyUsage
	if math.IsInf(days, 0) || days >= domain.NoStockoutRisk {
		return domain.NoStockoutRisk
	}
	return int(days)
}

// Analyze returns a suggestion when the drug is at or below its reorder point.
func (a *Analyzer) Analyze(in domain.ReorderInput) (*domain.ReorderSuggestion, bool) {
	usage := math.Max(0, in.AvgDailyUsage)
	leadTime := in.LeadTimeDays
	if leadTime <= 0 {
		leadTime = a.DefaultLeadTimeDays
	}
	stock := in.CurrentStock
	if stock < 0 {
		stock = 0
	}
	price := math.Max(0, in.UnitPrice)

	if float64(stock) > a.ReorderPoint(in.MinimumStock, usage, leadTime) {
		return nil, false
	}

	qty := int(OrderQuantity(stock, in.MinimumStock, usage, leadTime))
	priority, reason := Classify(stock, in.MinimumStock)

	return &domain.ReorderSuggestion{
		DrugID:            in.DrugID,
		DrugName:          in.DrugName,
		CurrentStock:      stock,
		MinimumStock:      in.MinimumStock,
		SuggestedQuantity: qty,
		Priority:          priority,
		Reason:            reason,
		DaysUntilStockout: DaysUntilStockout(stock, usage),
		AvgDailyUsage:     usage,
		Supplier:          in.Supplier,
		LeadTimeDays:      leadTime,
		EstimatedCost:     float64(qty) * price,
		UnitPrice:         price,
	}, true
}

// Suggestions analyzes every input and orders the triggered ones from high
// to low priority, keeping input order within a priority.
func (a *Analyzer) Suggestions(inputs []domain.ReorderInput) []domain.ReorderSuggestion {
	out := make([]domain.ReorderSuggestion, 0, len(inputs))
	for _, in := range inputs {
		if s, ok := a.Analyze(in); ok {
			out = append(out, *s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() > out[j].Priority.Rank()
	})
	return out
}

// FromForecast replaces the trailing usage with the mean of a forecast so
// the reorder policy plans against projected demand.
func FromForecast(in domain.ReorderInput, result *domain.ForecastResult) domain.ReorderInput {
	if result == nil || len(result.Forecast) == 0 {
		return in
	}
	sum := 0.0
	for _, v := range result.Forecast {
		sum += v
	}
	in.AvgDailyUsage = sum / float64(len(result.Forecast))
	return in
}
