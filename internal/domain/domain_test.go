package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestConsumptionSeries_Validate(t *testing.T) {
	tests := []struct {
		name    string
		series  ConsumptionSeries
		wantErr error
	}{
		{"empty", ConsumptionSeries{}, ErrInsufficientData},
		{"valid", ConsumptionSeries{{day(0), 1}, {day(1), 0}}, nil},
		{"negative quantity", ConsumptionSeries{{day(0), -1}}, ErrInvalidInput},
		{"duplicate date", ConsumptionSeries{{day(0), 1}, {day(0), 2}}, ErrInvalidInput},
		{"descending", ConsumptionSeries{{day(1), 1}, {day(0), 2}}, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.series.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestParseModelVariant(t *testing.T) {
	v, err := ParseModelVariant("Random Forest")
	require.NoError(t, err)
	assert.Equal(t, ModelEnsembleTree, v)

	v, err = ParseModelVariant("ARIMA")
	require.NoError(t, err)
	assert.Equal(t, ModelTrendAverage, v)

	_, err = ParseModelVariant("prophet")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPriority_Rank(t *testing.T) {
	assert.Greater(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Equal(t, 0, Priority("unknown").Rank())
}

func TestNewPurchaseOrderFromSuggestion(t *testing.T) {
	po := NewPurchaseOrderFromSuggestion("PO-1", ReorderSuggestion{
		DrugID:            7,
		DrugName:          "Amoxicillin",
		SuggestedQuantity: 110,
		UnitPrice:         2.35,
		Supplier:          "MediSupply Co",
	}, "")

	assert.Equal(t, "PO-1", po.OrderNumber)
	assert.Equal(t, PurchaseOrderPending, po.Status)
	assert.Equal(t, "Auto-generated order", po.Notes)
	assert.True(t, po.TotalAmount.Equal(decimal.RequireFromString("258.5")), po.TotalAmount.String())
}

func TestNewOrderNumber(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

	a := NewOrderNumber(now)
	b := NewOrderNumber(now)

	assert.Regexp(t, `^PO20240305140709-[0-9a-f]{8}$`, a)
	assert.NotEqual(t, a, b)
}
