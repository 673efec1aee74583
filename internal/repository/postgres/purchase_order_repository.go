// backend-go/internal/repository/postgres/purchase_order_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/pharmastock/backend-go/internal/domain"
)

type PurchaseOrderRepository struct {
	db *DB
}

func NewPurchaseOrderRepository(db *DB) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{db: db}
}

// CreatePurchaseOrder resolves the drug and supplier and inserts a pending
// order in one transaction. ID, SupplierID and CreatedAt are filled in on
// success. An unknown supplier name leaves the order without a supplier.
func (r *PurchaseOrderRepository) CreatePurchaseOrder(ctx context.Context, po *domain.PurchaseOrder) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if po.DrugID == 0 {
			drugID, err := r.lookupDrug(ctx, tx, po.DrugName)
			if err != nil {
				return err
			}
			po.DrugID = drugID
		}

		supplierID, err := r.lookupSupplier(ctx, tx, po.Supplier)
		if err != nil {
			return err
		}
		po.SupplierID = supplierID

		query := `
			INSERT INTO purchase_orders (
				order_number, supplier_id, drug_id, quantity,
				unit_price, total_amount, status, notes
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at
		`

		err = tx.QueryRowContext(ctx, query,
			po.OrderNumber,
			po.SupplierID,
			po.DrugID,
			po.Quantity,
			po.UnitPrice,
			po.TotalAmount,
			po.Status,
			po.Notes,
		).Scan(&po.ID, &po.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert purchase order: %w", err)
		}

		return nil
	})
}

func (r *PurchaseOrderRepository) lookupDrug(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM inventory WHERE drug_name = $1 ORDER BY id LIMIT 1`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("drug %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up drug: %w", err)
	}
	return id, nil
}

func (r *PurchaseOrderRepository) lookupSupplier(ctx context.Context, tx *sql.Tx, name string) (*int64, error) {
	if name == "" {
		return nil, nil
	}
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM suppliers WHERE name = $1`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up supplier: %w", err)
	}
	return &id, nil
}
