// backend-go/internal/repository/intelligence_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/pharmastock/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

// IntelligenceRepository materializes the history and stock snapshots the
// forecasting, reorder and expiry engines work from.
type IntelligenceRepository interface {
	GetHistoricalConsumption(ctx context.Context, drugName string) (domain.ConsumptionSeries, error)
	GetCurrentStock(ctx context.Context, drugName string) (int, error)
	GetReorderInputs(ctx context.Context) ([]domain.ReorderInput, error)
	GetSupplierProfiles(ctx context.Context) ([]domain.SupplierProfile, error)
	GetDrugsForForecasting(ctx context.Context, minPoints int) ([]string, error)
	GetDrugsWithConsumption(ctx context.Context) ([]string, error)
	GetInventoryValues(ctx context.Context) ([]domain.InventoryValue, error)
	GetTurnoverValues(ctx context.Context, drugName string) (consumptionValue, avgInventoryValue float64, err error)
}

type intelligenceRepository struct {
	db *sqlx.DB
}

func NewIntelligenceRepository(db *sqlx.DB) IntelligenceRepository {
	return &intelligenceRepository{db: db}
}

func (r *intelligenceRepository) GetHistoricalConsumption(ctx context.Context, drugName string) (domain.ConsumptionSeries, error) {
	query := `
		SELECT cp.date, SUM(cp.quantity_consumed) AS consumption
		FROM consumption_patterns cp
		JOIN inventory i ON cp.drug_id = i.id
		WHERE i.drug_name = $1
		GROUP BY cp.date
		ORDER BY cp.date
	`

	var points []domain.ConsumptionPoint
	if err := r.db.SelectContext(ctx, &points, query, drugName); err != nil {
		return nil, fmt.Errorf("error getting consumption history for %s: %w", drugName, err)
	}

	return domain.ConsumptionSeries(points), nil
}

func (r *intelligenceRepository) GetCurrentStock(ctx context.Context, drugName string) (int, error) {
	query := `
		SELECT COALESCE(SUM(current_stock), 0)
		FROM inventory
		WHERE drug_name = $1
		HAVING COUNT(*) > 0
	`

	var stock int
	err := r.db.GetContext(ctx, &stock, query, drugName)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("drug %q: %w", drugName, domain.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("error getting current stock for %s: %w", drugName, err)
	}

	return stock, nil
}

// GetReorderInputs returns one row per inventory item with its trailing
// 30-day average usage and the lead time of its supplier (0 when unknown).
func (r *intelligenceRepository) GetReorderInputs(ctx context.Context) ([]domain.ReorderInput, error) {
	query := `
		SELECT
			i.id AS drug_id,
			i.drug_name,
			i.current_stock,
			i.minimum_stock,
			COALESCE(i.unit_price, 0)::float8 AS unit_price,
			COALESCE(i.supplier_name, '') AS supplier_name,
			COALESCE(s.lead_time_days, 0) AS lead_time_days,
			COALESCE(AVG(cp.quantity_consumed), 0)::float8 AS avg_daily_usage
		FROM inventory i
		LEFT JOIN suppliers s ON i.supplier_name = s.name
		LEFT JOIN consumption_patterns cp ON i.id = cp.drug_id
			AND cp.date >= CURRENT_DATE - INTERVAL '30 days'
		GROUP BY i.id, i.drug_name, i.current_stock, i.minimum_stock,
			i.unit_price, i.supplier_name, s.lead_time_days
		ORDER BY i.id
	`

	var inputs []domain.ReorderInput
	if err := r.db.SelectContext(ctx, &inputs, query); err != nil {
		return nil, fmt.Errorf("error getting reorder inputs: %w", err)
	}

	return inputs, nil
}

func (r *intelligenceRepository) GetSupplierProfiles(ctx context.Context) ([]domain.SupplierProfile, error) {
	query := `
		SELECT
			id,
			name,
			COALESCE(reliability_score, 3)::float8 AS reliability_score,
			COALESCE(cost_rating, 3)::float8 AS cost_rating,
			COALESCE(quality_score, 3)::float8 AS quality_score,
			COALESCE(lead_time_days, 7)::float8 AS avg_delivery_time
		FROM suppliers
		ORDER BY name
	`

	var suppliers []domain.SupplierProfile
	if err := r.db.SelectContext(ctx, &suppliers, query); err != nil {
		return nil, fmt.Errorf("error getting supplier profiles: %w", err)
	}

	return suppliers, nil
}

// GetDrugsForForecasting lists drugs with at least minPoints consumption records.
func (r *intelligenceRepository) GetDrugsForForecasting(ctx context.Context, minPoints int) ([]string, error) {
	query := `
		SELECT i.drug_name
		FROM inventory i
		JOIN consumption_patterns cp ON i.id = cp.drug_id
		GROUP BY i.drug_name
		HAVING COUNT(cp.id) >= $1
		ORDER BY i.drug_name
	`

	var names []string
	if err := r.db.SelectContext(ctx, &names, query, minPoints); err != nil {
		return nil, fmt.Errorf("error getting drugs for forecasting: %w", err)
	}

	return names, nil
}

// GetDrugsWithConsumption lists drugs that are in stock and have any
// consumption on record.
func (r *intelligenceRepository) GetDrugsWithConsumption(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT i.drug_name
		FROM inventory i
		JOIN consumption_patterns cp ON i.id = cp.drug_id
		WHERE i.current_stock > 0
		ORDER BY i.drug_name
	`

	var names []string
	if err := r.db.SelectContext(ctx, &names, query); err != nil {
		return nil, fmt.Errorf("error getting drugs with consumption: %w", err)
	}

	return names, nil
}

func (r *intelligenceRepository) GetInventoryValues(ctx context.Context) ([]domain.InventoryValue, error) {
	query := `
		SELECT
			id AS drug_id,
			drug_name,
			current_stock,
			COALESCE(unit_price, 0)::float8 AS unit_price
		FROM inventory
		ORDER BY id
	`

	var values []domain.InventoryValue
	if err := r.db.SelectContext(ctx, &values, query); err != nil {
		return nil, fmt.Errorf("error getting inventory values: %w", err)
	}

	return values, nil
}

// GetTurnoverValues sums the last year's consumption value and averages the
// stock value, for one drug or for the whole inventory when drugName is empty.
func (r *intelligenceRepository) GetTurnoverValues(ctx context.Context, drugName string) (float64, float64, error) {
	query := `
		SELECT
			COALESCE(SUM(cp.quantity_consumed * i.unit_price), 0)::float8 AS consumption_value,
			COALESCE(AVG(i.current_stock * i.unit_price), 0)::float8 AS inventory_value
		FROM consumption_patterns cp
		JOIN inventory i ON cp.drug_id = i.id
		WHERE cp.date >= CURRENT_DATE - INTERVAL '365 days'
			AND ($1 = '' OR i.drug_name = $1)
	`

	var row struct {
		ConsumptionValue float64 `db:"consumption_value"`
		InventoryValue   float64 `db:"inventory_value"`
	}
	if err := r.db.GetContext(ctx, &row, query, drugName); err != nil {
		return 0, 0, fmt.Errorf("error getting turnover values: %w", err)
	}

	return row.ConsumptionValue, row.InventoryValue, nil
}
