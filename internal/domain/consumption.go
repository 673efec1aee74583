package domain

import (
	"fmt"
	"time"
)

// ConsumptionPoint is the quantity of a drug consumed on one calendar date.
type ConsumptionPoint struct {
	Date     time.Time `json:"date" db:"date"`
	Quantity int       `json:"quantity" db:"consumption"`
}

// ConsumptionSeries is ordered ascending by date with one point per date.
type ConsumptionSeries []ConsumptionPoint

// Validate checks the series invariants: at least one point, strictly
// ascending dates and non-negative quantities.
func (s ConsumptionSeries) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("empty consumption series: %w", ErrInsufficientData)
	}
	for i, p := range s {
		if p.Quantity < 0 {
			return fmt.Errorf("negative consumption %d on %s: %w", p.Quantity, p.Date.Format(time.DateOnly), ErrInvalidInput)
		}
		if i > 0 && !p.Date.After(s[i-1].Date) {
			return fmt.Errorf("consumption dates not strictly ascending at %s: %w", p.Date.Format(time.DateOnly), ErrInvalidInput)
		}
	}
	return nil
}

// Values returns the quantities as float64 in series order.
func (s ConsumptionSeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = float64(p.Quantity)
	}
	return out
}

// Dates returns the dates in series order.
func (s ConsumptionSeries) Dates() []time.Time {
	out := make([]time.Time, len(s))
	for i, p := range s {
		out[i] = p.Date
	}
	return out
}

// LastDate returns the most recent date, or the zero time for an empty series.
func (s ConsumptionSeries) LastDate() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[len(s)-1].Date
}
