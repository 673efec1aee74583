package domain

// ReorderInput is the per-drug snapshot the reorder analyzer works from.
type ReorderInput struct {
	DrugID        int64   `json:"drug_id" db:"drug_id"`
	DrugName      string  `json:"drug_name" db:"drug_name"`
	CurrentStock  int     `json:"current_stock" db:"current_stock"`
	MinimumStock  int     `json:"minimum_stock" db:"minimum_stock"`
	AvgDailyUsage float64 `json:"avg_daily_usage" db:"avg_daily_usage"`
	LeadTimeDays  int     `json:"lead_time_days" db:"lead_time_days"`
	UnitPrice     float64 `json:"unit_price" db:"unit_price"`
	Supplier      string  `json:"supplier" db:"supplier_name"`
}

// NoStockoutRisk is the days_until_stockout sentinel used when there is no
// consumption to deplete the stock.
const NoStockoutRisk = 999

// ReorderSuggestion is a purchase recommendation for one drug.
type ReorderSuggestion struct {
	DrugID            int64    `json:"drug_id"`
	DrugName          string   `json:"drug_name"`
	CurrentStock      int      `json:"current_stock"`
	MinimumStock      int      `json:"minimum_stock"`
	SuggestedQuantity int      `json:"suggested_quantity"`
	Priority          Priority `json:"priority"`
	Reason            string   `json:"reason"`
	DaysUntilStockout int      `json:"days_until_stockout"`
	AvgDailyUsage     float64  `json:"avg_daily_usage"`
	Supplier          string   `json:"supplier"`
	LeadTimeDays      int      `json:"lead_time_days"`
	EstimatedCost     float64  `json:"estimated_cost"`
	UnitPrice         float64  `json:"unit_price"`
}
