package reorder

import (
	"math"
	"sort"

	"github.com/andresuchdata/pharmastock/backend-go/internal/domain"
)

// OrderScore rates a supplier for a single purchase order. Cost is inverted
// (6 - rating) so cheaper suppliers score higher, and delivery earns up to
// 5 points, losing half a point per day of lead time.
func OrderScore(s domain.SupplierProfile) float64 {
	delivery := math.Max(0, 10-s.AvgDeliveryTimeDays) / 10 * 5
	return 0.3*s.ReliabilityScore +
		0.4*(6-s.CostRating) +
		0.2*s.QualityScore +
		0.1*delivery
}

// SelectOptimalSupplier returns the best supplier for an order, or nil when
// there is none. Ties go to the first supplier in input order.
func SelectOptimalSupplier(suppliers []domain.SupplierProfile) *domain.ScoredSupplier {
	if len(suppliers) == 0 {
		return nil
	}
	best := domain.ScoredSupplier{Supplier: suppliers[0], Score: OrderScore(suppliers[0])}
	for _, s := range suppliers[1:] {
		if score := OrderScore(s); score > best.Score {
			best = domain.ScoredSupplier{Supplier: s, Score: score}
		}
	}
	return &best
}

// CompositeScore is the display ranking score: each 1-5 rating normalized
// to [0.2, 1] and weighted 0.3 reliability, 0.3 cost, 0.4 quality.
func CompositeScore(s domain.SupplierProfile) float64 {
	return 0.3*s.ReliabilityScore/5 +
		0.3*(6-s.CostRating)/5 +
		0.4*s.QualityScore/5
}

// RankSuppliers orders suppliers by composite score, best first, with the
// name as tie-breaker so repeated calls return the same order.
func RankSuppliers(suppliers []domain.SupplierProfile) []domain.ScoredSupplier {
	ranked := make([]domain.ScoredSupplier, len(suppliers))
	for i, s := range suppliers {
		ranked[i] = domain.ScoredSupplier{Supplier: s, Score: CompositeScore(s)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Supplier.Name < ranked[j].Supplier.Name
	})
	return ranked
}
