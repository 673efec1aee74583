// Package report renders intelligence results to CSV and archives them in
// object storage.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"strconv"
	"time"

	"github.com/andresuchdata/pharmastock/backend-go/internal/domain"
	"github.com/andresuchdata/pharmastock/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
)

var reorderHeader = []string{
	"Drug ID", "Drug", "Priority", "Current Stock", "Minimum Stock", "Suggested Quantity",
	"Days Until Stockout", "Avg Daily Usage", "Lead Time Days", "Supplier",
	"Unit Price", "Estimated Cost", "Reason",
}

var expiryHeader = []string{
	"Drug", "Risk Level", "Risk Score", "Days To Use", "Trend", "Predicted Wastage",
}

// Exporter uploads CSV reports under a date-partitioned prefix.
type Exporter struct {
	store  storage.Uploader
	prefix string
	now    func() time.Time
}

func NewExporter(store storage.Uploader, prefix string) *Exporter {
	return &Exporter{store: store, prefix: prefix, now: time.Now}
}

// ExportReorderSuggestions uploads the suggestions and returns the object key.
func (e *Exporter) ExportReorderSuggestions(ctx context.Context, suggestions []domain.ReorderSuggestion) (string, error) {
	var buf bytes.Buffer
	if err := WriteReorderCSV(&buf, suggestions); err != nil {
		return "", fmt.Errorf("render reorder report: %w", err)
	}
	return e.upload(ctx, "reorder", buf.Bytes(), len(suggestions))
}

// ExportExpiryOverview uploads the expiry assessments and returns the object key.
func (e *Exporter) ExportExpiryOverview(ctx context.Context, assessments []domain.ExpiryRiskAssessment) (string, error) {
	var buf bytes.Buffer
	if err := WriteExpiryCSV(&buf, assessments); err != nil {
		return "", fmt.Errorf("render expiry report: %w", err)
	}
	return e.upload(ctx, "expiry", buf.Bytes(), len(assessments))
}

func (e *Exporter) upload(ctx context.Context, kind string, data []byte, rows int) (string, error) {
	key := e.objectKey(kind)
	if err := e.store.UploadObject(ctx, key, data); err != nil {
		return "", err
	}

	log.Info().
		Str("key", key).
		Int("rows", rows).
		Int("bytes", len(data)).
		Msgf("%s report archived", kind)

	return key, nil
}

func (e *Exporter) objectKey(kind string) string {
	now := e.now().UTC()
	return path.Join(e.prefix, now.Format("2006/01/02"), fmt.Sprintf("%s-%s.csv", kind, now.Format("20060102T150405Z")))
}

// WriteReorderCSV writes the suggestions with a header row.
func WriteReorderCSV(out io.Writer, suggestions []domain.ReorderSuggestion) error {
	w := csv.NewWriter(out)

	if err := w.Write(reorderHeader); err != nil {
		return err
	}

	for _, s := range suggestions {
		record := []string{
			strconv.FormatInt(s.DrugID, 10),
			s.DrugName,
			string(s.Priority),
			strconv.Itoa(s.CurrentStock),
			strconv.Itoa(s.MinimumStock),
			strconv.Itoa(s.SuggestedQuantity),
			strconv.Itoa(s.DaysUntilStockout),
			fmt.Sprintf("%.2f", s.AvgDailyUsage),
			strconv.Itoa(s.LeadTimeDays),
			s.Supplier,
			fmt.Sprintf("%.2f", s.UnitPrice),
			fmt.Sprintf("%.2f", s.EstimatedCost),
			s.Reason,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteExpiryCSV writes one row per assessment. Unbounded days to use are
// written as an empty cell.
func WriteExpiryCSV(out io.Writer, assessments []domain.ExpiryRiskAssessment) error {
	w := csv.NewWriter(out)

	if err := w.Write(expiryHeader); err != nil {
		return err
	}

	for _, a := range assessments {
		days := ""
		if !a.DaysToUse.Unbounded() {
			days = fmt.Sprintf("%.1f", float64(a.DaysToUse))
		}
		record := []string{
			a.DrugName,
			string(a.RiskLevel),
			fmt.Sprintf("%.2f", a.RiskScore),
			days,
			fmt.Sprintf("%.3f", a.Trend),
			fmt.Sprintf("%.1f", a.PredictedWastage),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
