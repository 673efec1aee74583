package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/andresuchdata/pharmastock/backend-go/internal/domain"
	"github.com/andresuchdata/pharmastock/backend-go/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	objects map[string][]byte
	err     error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (m *memoryStorage) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	var out []storage.ObjectInfo
	for k, v := range m.objects {
		out = append(out, storage.ObjectInfo{Key: k, Size: int64(len(v))})
	}
	return out, nil
}

func (m *memoryStorage) DownloadObject(ctx context.Context, key string, destPath string) error {
	return errors.New("not implemented")
}

func (m *memoryStorage) UploadObject(ctx context.Context, key string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.objects[key] = data
	return nil
}

func fixedExporter(store storage.Uploader) *Exporter {
	e := NewExporter(store, "reports")
	e.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	return e
}

func TestExporter_ExportReorderSuggestions(t *testing.T) {
	store := newMemoryStorage()
	e := fixedExporter(store)

	key, err := e.ExportReorderSuggestions(context.Background(), []domain.ReorderSuggestion{{
		DrugID:            1,
		DrugName:          "Paracetamol 500mg",
		Priority:          domain.PriorityLow,
		CurrentStock:      50,
		MinimumStock:      20,
		SuggestedQuantity: 110,
		DaysUntilStockout: 5,
		AvgDailyUsage:     10,
		LeadTimeDays:      7,
		Supplier:          "PharmaCorp, Inc",
		UnitPrice:         0.25,
		EstimatedCost:     27.5,
		Reason:            "Preventive reorder recommended",
	}})
	require.NoError(t, err)
	assert.Equal(t, "reports/2024/05/06/reorder-20240506T070809Z.csv", key)

	records, err := csv.NewReader(bytes.NewReader(store.objects[key])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, reorderHeader, records[0])
	assert.Equal(t, []string{
		"1", "Paracetamol 500mg", "low", "50", "20", "110", "5", "10.00", "7",
		"PharmaCorp, Inc", "0.25", "27.50", "Preventive reorder recommended",
	}, records[1])
}

func TestExporter_UploadFailure(t *testing.T) {
	store := newMemoryStorage()
	store.err = errors.New("bucket gone")

	_, err := fixedExporter(store).ExportReorderSuggestions(context.Background(), nil)
	assert.ErrorIs(t, err, store.err)
}

func TestWriteExpiryCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteExpiryCSV(&buf, []domain.ExpiryRiskAssessment{
		{DrugName: "A", RiskLevel: domain.RiskHigh, RiskScore: 0.8, DaysToUse: 10.62, Trend: -0.5, PredictedWastage: 3},
		{DrugName: "B", RiskLevel: domain.RiskLow, RiskScore: 0.2, DaysToUse: domain.DayCount(math.Inf(1)), PredictedWastage: 7.5},
	})
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"A", "high", "0.80", "10.6", "-0.500", "3.0"}, records[1])
	assert.Equal(t, "", records[2][3])
}
