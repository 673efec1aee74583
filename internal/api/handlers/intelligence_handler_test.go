package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andresuchdata/pharmastock/backend-go/internal/domain"
	"github.com/andresuchdata/pharmastock/backend-go/internal/intelligence/insight"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	err error

	gotDays    int
	gotModel   string
	gotNames   []string
	gotLevel   float64
	gotApprove domain.ReorderSuggestion
	gotNotes   string
}

func (s *stubService) ForecastWithRecommendations(_ context.Context, drugName string, days int, model string) (*domain.ForecastReport, error) {
	s.gotDays, s.gotModel = days, model
	if s.err != nil {
		return nil, s.err
	}
	return &domain.ForecastReport{DrugName: drugName, CurrentStock: 40}, nil
}

func (s *stubService) Backtest(_ context.Context, _ string, holdoutDays int, _ string) (insight.Metrics, error) {
	s.gotDays = holdoutDays
	return insight.Metrics{MAE: 1.5, Accuracy: 0.9}, s.err
}

func (s *stubService) ReorderSuggestions(_ context.Context, model string) ([]domain.ReorderSuggestion, error) {
	s.gotModel = model
	if s.err != nil {
		return nil, s.err
	}
	return []domain.ReorderSuggestion{{DrugName: "Paracetamol", Priority: domain.PriorityHigh}}, nil
}

func (s *stubService) ApproveSuggestion(_ context.Context, suggestion domain.ReorderSuggestion, notes string) (*domain.PurchaseOrder, error) {
	s.gotApprove, s.gotNotes = suggestion, notes
	if s.err != nil {
		return nil, s.err
	}
	return &domain.PurchaseOrder{ID: 1, OrderNumber: "PO1", DrugName: suggestion.DrugName, Quantity: suggestion.SuggestedQuantity}, nil
}

func (s *stubService) SupplierRanking(context.Context) ([]domain.ScoredSupplier, error) {
	return []domain.ScoredSupplier{{Supplier: domain.SupplierProfile{Name: "PharmaCorp Inc"}, Score: 0.81}}, s.err
}

func (s *stubService) SelectSupplier(_ context.Context, names []string) (*domain.ScoredSupplier, error) {
	s.gotNames = names
	if s.err != nil {
		return nil, s.err
	}
	return &domain.ScoredSupplier{Supplier: domain.SupplierProfile{Name: "MediSupply Co"}, Score: 3.75}, nil
}

func (s *stubService) ExpiryRisk(_ context.Context, drugName string) (*domain.ExpiryRiskAssessment, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.ExpiryRiskAssessment{DrugName: drugName, RiskScore: 0.8, RiskLevel: domain.RiskHigh}, nil
}

func (s *stubService) ExpiryOverview(context.Context) ([]domain.ExpiryRiskAssessment, error) {
	return []domain.ExpiryRiskAssessment{{DrugName: "Insulin"}}, s.err
}

func (s *stubService) Anomalies(context.Context) ([]domain.ConsumptionAnomaly, error) {
	return []domain.ConsumptionAnomaly{{DrugName: "Amoxicillin", Direction: domain.AnomalyIncrease, ChangePct: 100}}, s.err
}

func (s *stubService) ABC(context.Context) ([]domain.ABCItem, error) {
	return []domain.ABCItem{{Class: "A"}}, s.err
}

func (s *stubService) Turnover(context.Context, string) (insight.TurnoverResult, error) {
	return insight.TurnoverResult{Ratio: 4, DaysInInventory: 91.25}, s.err
}

func (s *stubService) StockPlans(_ context.Context, serviceLevel float64) ([]domain.StockPlan, error) {
	s.gotLevel = serviceLevel
	return []domain.StockPlan{{DrugName: "Amoxicillin", SafetyStock: 14}}, s.err
}

func newTestRouter(svc IntelligenceService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewIntelligenceHandler(svc)
	r := gin.New()
	r.GET("/forecast/:drug", h.GetForecast)
	r.GET("/forecast/:drug/backtest", h.GetBacktest)
	r.GET("/reorder/suggestions", h.GetReorderSuggestions)
	r.POST("/reorder/approve", h.ApproveSuggestion)
	r.GET("/suppliers/ranking", h.GetSupplierRanking)
	r.POST("/suppliers/select", h.SelectSupplier)
	r.GET("/expiry", h.GetExpiryOverview)
	r.GET("/expiry/:drug", h.GetExpiryRisk)
	r.GET("/anomalies", h.GetAnomalies)
	r.GET("/abc", h.GetABC)
	r.GET("/turnover", h.GetTurnover)
	r.GET("/stock-plans", h.GetStockPlans)
	return r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestGetForecast(t *testing.T) {
	svc := &stubService{}
	r := newTestRouter(svc)

	w := do(r, http.MethodGet, "/forecast/Amoxicillin?days=14&model=ensemble-tree", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 14, svc.gotDays)
	assert.Equal(t, "ensemble-tree", svc.gotModel)
	assert.Equal(t, "Amoxicillin", decode(t, w)["drug_name"])

	w = do(r, http.MethodGet, "/forecast/Amoxicillin", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 30, svc.gotDays)

	w = do(r, http.MethodGet, "/forecast/Amoxicillin?days=soon", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetForecast_ZeroHorizon(t *testing.T) {
	svc := &stubService{err: fmt.Errorf("forecast horizon must be positive, got 0: %w", domain.ErrInvalidInput)}
	r := newTestRouter(svc)

	w := do(r, http.MethodGet, "/forecast/Amoxicillin?days=0", "")
	assert.Equal(t, 0, svc.gotDays)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", decode(t, w)["code"])
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"insufficient data", fmt.Errorf("forecast x: %w", domain.ErrInsufficientData), http.StatusUnprocessableEntity, "INSUFFICIENT_DATA"},
		{"invalid input", fmt.Errorf("bad model: %w", domain.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT"},
		{"not found", domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"no stock", fmt.Errorf("Insulin: %w", domain.ErrNoStockOnHand), http.StatusNotFound, "NO_STOCK_ON_HAND"},
		{"unexpected", fmt.Errorf("db down"), http.StatusInternalServerError, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&stubService{err: tc.err})
			w := do(r, http.MethodGet, "/expiry/Insulin", "")
			assert.Equal(t, tc.status, w.Code)

			body := decode(t, w)
			assert.NotEmpty(t, body["error"])
			if tc.code != "" {
				assert.Equal(t, tc.code, body["code"])
			}
		})
	}
}

func TestApproveSuggestion(t *testing.T) {
	svc := &stubService{}
	r := newTestRouter(svc)

	w := do(r, http.MethodPost, "/reorder/approve", `{"suggestion":{"drug_id":7,"drug_name":"Paracetamol","suggested_quantity":38,"unit_price":0.5},"notes":"urgent"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Paracetamol", svc.gotApprove.DrugName)
	assert.Equal(t, 38, svc.gotApprove.SuggestedQuantity)
	assert.Equal(t, "urgent", svc.gotNotes)
	assert.Equal(t, "PO1", decode(t, w)["order_number"])

	w = do(r, http.MethodPost, "/reorder/approve", `{"suggestion":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSelectSupplier(t *testing.T) {
	svc := &stubService{}
	r := newTestRouter(svc)

	w := do(r, http.MethodPost, "/suppliers/select", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, svc.gotNames)

	w = do(r, http.MethodPost, "/suppliers/select", `{"suppliers":["PharmaCorp Inc","MediSupply Co"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"PharmaCorp Inc", "MediSupply Co"}, svc.gotNames)

	r = newTestRouter(&stubService{err: domain.ErrNotFound})
	w = do(r, http.MethodPost, "/suppliers/select", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListEndpoints(t *testing.T) {
	svc := &stubService{}
	r := newTestRouter(svc)

	cases := []struct {
		target string
		key    string
	}{
		{"/reorder/suggestions?model=trend-average", "suggestions"},
		{"/suppliers/ranking", "suppliers"},
		{"/expiry", "assessments"},
		{"/anomalies", "anomalies"},
		{"/abc", "items"},
		{"/stock-plans", "plans"},
		{"/forecast/Amoxicillin/backtest?holdout=10", "metrics"},
		{"/turnover?drug=Amoxicillin", "turnover_ratio"},
	}
	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			w := do(r, http.MethodGet, tc.target, "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, decode(t, w), tc.key)
		})
	}

	assert.Equal(t, "trend-average", svc.gotModel)
	assert.Equal(t, 10, svc.gotDays)
	assert.Equal(t, 0.95, svc.gotLevel)
}

func TestGetStockPlans_BadLevel(t *testing.T) {
	r := newTestRouter(&stubService{})
	for _, level := range []string{"abc", "0", "1.5"} {
		w := do(r, http.MethodGet, "/stock-plans?service_level="+level, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, level)
	}
}
