package domain

import (
	"encoding/json"
	"math"
	"time"
)

// RiskLevel buckets an expiry risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// DayCount is a possibly unbounded number of days. +Inf is encoded as JSON
// null because JSON has no representation for infinity.
type DayCount float64

// Unbounded reports whether the count is +Inf.
func (d DayCount) Unbounded() bool {
	return math.IsInf(float64(d), 1)
}

func (d DayCount) MarshalJSON() ([]byte, error) {
	if d.Unbounded() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(d))
}

func (d *DayCount) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = DayCount(math.Inf(1))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*d = DayCount(f)
	return nil
}

// TrendData is the history plus a 30-day projection for charting.
type TrendData struct {
	Dates                []time.Time `json:"dates"`
	Consumption          []float64   `json:"consumption"`
	FutureDates          []time.Time `json:"future_dates"`
	PredictedConsumption []float64   `json:"predicted_consumption"`
}

// ExpiryRiskAssessment scores the wastage exposure of the stock on hand.
type ExpiryRiskAssessment struct {
	DrugName         string    `json:"drug_name"`
	RiskScore        float64   `json:"risk_score"`
	RiskLevel        RiskLevel `json:"risk_level"`
	DaysToUse        DayCount  `json:"days_to_use"`
	Trend            float64   `json:"trend"`
	PredictedWastage float64   `json:"predicted_wastage"`
	Recommendations  []string  `json:"recommendations"`
	TrendData        TrendData `json:"trend_data"`
}
