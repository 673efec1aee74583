package insight

import "math"

// serviceLevelZ maps supported service levels to their normal quantile.
var serviceLevelZ = map[float64]float64{
	0.90: 1.28,
	0.95: 1.65,
	0.99: 2.33,
}

const (
	defaultServiceZ  = 1.65
	demandCV         = 0.2
	leadTimeVariance = 0.1
)

// ServiceLevelSafetyStock sizes safety stock for a target service level
// assuming 20% demand variation and 10% lead-time variation:
// z * sqrt(LT*sd^2 + d^2*slt^2). Unknown service levels use 95%.
func ServiceLevelSafetyStock(avgDailyUsage float64, leadTimeDays int, serviceLevel float64) int {
	if avgDailyUsage <= 0 {
		return 0
	}
	z, ok := serviceLevelZ[serviceLevel]
	if !ok {
		z = defaultServiceZ
	}

	lt := float64(leadTimeDays)
	demandStd := avgDailyUsage * demandCV
	leadTimeStd := lt * leadTimeVariance
	ss := z * math.Sqrt(lt*demandStd*demandStd+avgDailyUsage*avgDailyUsage*leadTimeStd*leadTimeStd)

	return max(1, int(ss))
}

// ReorderPoint is the lead-time demand plus safety stock, at least 1. With no
// usage it is just the safety stock.
func ReorderPoint(avgDailyUsage float64, leadTimeDays, safetyStock int) int {
	if avgDailyUsage <= 0 {
		return safetyStock
	}
	return max(1, int(avgDailyUsage*float64(leadTimeDays)+float64(safetyStock)))
}
