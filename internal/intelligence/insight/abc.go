package insight

import (
	"sort"

	"github.com/andresuchdata/pharmastock/backend-go/internal/domain"
)

// ClassifyABC ranks items by stock value and assigns A to the items making
// up the first 70% of the cumulative value, B up to 90% and C to the rest.
func ClassifyABC(items []domain.InventoryValue) []domain.ABCItem {
	out := make([]domain.ABCItem, len(items))
	total := 0.0
	for i, it := range items {
		v := float64(it.CurrentStock) * it.UnitPrice
		out[i] = domain.ABCItem{InventoryValue: it, TotalValue: v}
		total += v
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalValue > out[j].TotalValue })

	cumulative := 0.0
	for i := range out {
		cumulative += out[i].TotalValue
		if total > 0 {
			out[i].CumulativePercentage = cumulative / total * 100
		}
		switch p := out[i].CumulativePercentage; {
		case p <= 70:
			out[i].Class = "A"
		case p <= 90:
			out[i].Class = "B"
		default:
			out[i].Class = "C"
		}
	}
	return out
}
