package domain

// SupplierProfile carries the 1-5 ratings used for supplier scoring.
// A lower CostRating means a cheaper supplier.
type SupplierProfile struct {
	ID                  int64   `json:"id" db:"id"`
	Name                string  `json:"name" db:"name"`
	ReliabilityScore    float64 `json:"reliability_score" db:"reliability_score"`
	CostRating          float64 `json:"cost_rating" db:"cost_rating"`
	QualityScore        float64 `json:"quality_score" db:"quality_score"`
	AvgDeliveryTimeDays float64 `json:"avg_delivery_time_days" db:"avg_delivery_time"`
}

// ScoredSupplier pairs a supplier with the score it got in one scoring context.
type ScoredSupplier struct {
	Supplier SupplierProfile `json:"supplier"`
	Score    float64         `json:"score"`
}
