package insight

// TurnoverResult is the yearly inventory turnover of a drug or the whole stock.
type TurnoverResult struct {
	Ratio                 float64 `json:"turnover_ratio"`
	DaysInInventory       float64 `json:"days_in_inventory"`
	ConsumptionValue      float64 `json:"total_consumption_value"`
	AverageInventoryValue float64 `json:"avg_inventory_value"`
}

const daysPerYear = 365

// Turnover divides a year's consumption value by the average inventory
// value. Without both values the stock is assumed to sit for a full year.
func Turnover(consumptionValue, avgInventoryValue float64) TurnoverResult {
	res := TurnoverResult{
		DaysInInventory:       daysPerYear,
		ConsumptionValue:      consumptionValue,
		AverageInventoryValue: avgInventoryValue,
	}
	if consumptionValue <= 0 || avgInventoryValue <= 0 {
		return res
	}
	res.Ratio = consumptionValue / avgInventoryValue
	res.DaysInInventory = daysPerYear / res.Ratio
	return res
}
