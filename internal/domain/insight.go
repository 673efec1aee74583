package domain

// AnomalyDirection tells whether consumption jumped or dropped.
type AnomalyDirection string

const (
	AnomalyIncrease AnomalyDirection = "increase"
	AnomalyDecrease AnomalyDirection = "decrease"
)

// ConsumptionAnomaly flags a drug whose recent usage moved sharply against
// the preceding window.
type ConsumptionAnomaly struct {
	DrugName    string           `json:"drug_name"`
	Direction   AnomalyDirection `json:"direction"`
	ChangePct   float64          `json:"change_pct"`
	Description string           `json:"change_description"`
	RecentAvg   float64          `json:"recent_avg"`
	PreviousAvg float64          `json:"previous_avg"`
}

// InventoryValue is the stock value row used for ABC classification.
type InventoryValue struct {
	DrugID       int64   `json:"drug_id" db:"drug_id"`
	DrugName     string  `json:"drug_name" db:"drug_name"`
	CurrentStock int     `json:"current_stock" db:"current_stock"`
	UnitPrice    float64 `json:"unit_price" db:"unit_price"`
}

// ABCItem is an InventoryValue with its Pareto class.
type ABCItem struct {
	InventoryValue
	TotalValue           float64 `json:"total_value"`
	CumulativePercentage float64 `json:"cumulative_percentage"`
	Class                string  `json:"abc_class"`
}

// StockPlan is the service-level safety stock and reorder point of a drug.
type StockPlan struct {
	DrugID        int64   `json:"drug_id"`
	DrugName      string  `json:"drug_name"`
	AvgDailyUsage float64 `json:"avg_daily_usage"`
	LeadTimeDays  int     `json:"lead_time_days"`
	ServiceLevel  float64 `json:"service_level"`
	SafetyStock   int     `json:"safety_stock"`
	ReorderPoint  int     `json:"reorder_point"`
}
