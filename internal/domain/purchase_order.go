package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const PurchaseOrderPending = "pending"

// PurchaseOrder is created when an operator approves a reorder suggestion.
type PurchaseOrder struct {
	ID          int64           `json:"id" db:"id"`
	OrderNumber string          `json:"order_number" db:"order_number"`
	DrugID      int64           `json:"drug_id" db:"drug_id"`
	DrugName    string          `json:"drug_name" db:"-"`
	SupplierID  *int64          `json:"supplier_id,omitempty" db:"supplier_id"`
	Supplier    string          `json:"supplier" db:"-"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status      string          `json:"status" db:"status"`
	Notes       string          `json:"notes" db:"notes"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// NewOrderNumber builds a sortable, collision-free order number such as
// PO20240101120000-1a2b3c4d.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "PO" + now.UTC().Format("20060102150405") + "-" + suffix
}

// NewPurchaseOrderFromSuggestion prices an approved suggestion.
func NewPurchaseOrderFromSuggestion(orderNumber string, s ReorderSuggestion, notes string) *PurchaseOrder {
	unit := decimal.NewFromFloat(s.UnitPrice).Round(2)
	if notes == "" {
		notes = "Auto-generated order"
	}
	return &PurchaseOrder{
		OrderNumber: orderNumber,
		DrugID:      s.DrugID,
		DrugName:    s.DrugName,
		Supplier:    s.Supplier,
		Quantity:    s.SuggestedQuantity,
		UnitPrice:   unit,
		TotalAmount: unit.Mul(decimal.NewFromInt(int64(s.SuggestedQuantity))),
		Status:      PurchaseOrderPending,
		Notes:       notes,
	}
}
