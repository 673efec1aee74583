// backend-go/internal/api/handlers/intelligence_handler.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/pharmastock/backend-go/internal/domain"
	"github.com/andresuchdata/pharmastock/backend-go/internal/intelligence/insight"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// IntelligenceService is the part of service.IntelligenceService the
// handlers call.
type IntelligenceService interface {
	ForecastWithRecommendations(ctx context.Context, drugName string, days int, model string) (*domain.ForecastReport, error)
	Backtest(ctx context.Context, drugName string, holdoutDays int, model string) (insight.Metrics, error)
	ReorderSuggestions(ctx context.Context, model string) ([]domain.ReorderSuggestion, error)
	ApproveSuggestion(ctx context.Context, suggestion domain.ReorderSuggestion, notes string) (*domain.PurchaseOrder, error)
	SupplierRanking(ctx context.Context) ([]domain.ScoredSupplier, error)
	SelectSupplier(ctx context.Context, names []string) (*domain.ScoredSupplier, error)
	ExpiryRisk(ctx context.Context, drugName string) (*domain.ExpiryRiskAssessment, error)
	ExpiryOverview(ctx context.Context) ([]domain.ExpiryRiskAssessment, error)
	Anomalies(ctx context.Context) ([]domain.ConsumptionAnomaly, error)
	ABC(ctx context.Context) ([]domain.ABCItem, error)
	Turnover(ctx context.Context, drugName string) (insight.TurnoverResult, error)
	StockPlans(ctx context.Context, serviceLevel float64) ([]domain.StockPlan, error)
}

type IntelligenceHandler struct {
	service IntelligenceService
}

func NewIntelligenceHandler(service IntelligenceService) *IntelligenceHandler {
	return &IntelligenceHandler{service: service}
}

type approveRequest struct {
	Suggestion domain.ReorderSuggestion `json:"suggestion"`
	Notes      string                   `json:"notes"`
}

type selectSupplierRequest struct {
	Suppliers []string `json:"suppliers"`
}

// GetForecast returns the forecast of one drug with its recommendations.
func (h *IntelligenceHandler) GetForecast(c *gin.Context) {
	days, ok := queryInt(c, "days", 30)
	if !ok {
		return
	}

	report, err := h.service.ForecastWithRecommendations(c.Request.Context(), c.Param("drug"), days, c.Query("model"))
	if err != nil {
		respondError(c, "failed to forecast", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *IntelligenceHandler) GetBacktest(c *gin.Context) {
	holdout, ok := queryInt(c, "holdout", 7)
	if !ok {
		return
	}

	metrics, err := h.service.Backtest(c.Request.Context(), c.Param("drug"), holdout, c.Query("model"))
	if err != nil {
		respondError(c, "failed to backtest forecast", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"drug_name": c.Param("drug"),
		"holdout":   holdout,
		"metrics":   metrics,
	})
}

func (h *IntelligenceHandler) GetReorderSuggestions(c *gin.Context) {
	suggestions, err := h.service.ReorderSuggestions(c.Request.Context(), strings.TrimSpace(c.Query("model")))
	if err != nil {
		respondError(c, "failed to fetch reorder suggestions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"suggestions": suggestions,
		"total":       len(suggestions),
	})
}

// ApproveSuggestion turns a reorder suggestion into a purchase order.
func (h *IntelligenceHandler) ApproveSuggestion(c *gin.Context) {
	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	po, err := h.service.ApproveSuggestion(c.Request.Context(), req.Suggestion, req.Notes)
	if err != nil {
		respondError(c, "failed to create purchase order", err)
		return
	}

	c.JSON(http.StatusCreated, po)
}

func (h *IntelligenceHandler) GetSupplierRanking(c *gin.Context) {
	ranking, err := h.service.SupplierRanking(c.Request.Context())
	if err != nil {
		respondError(c, "failed to rank suppliers", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"suppliers": ranking})
}

// SelectSupplier picks the best supplier for an order, optionally among the
// suppliers named in the body.
func (h *IntelligenceHandler) SelectSupplier(c *gin.Context) {
	var req selectSupplierRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}
	}

	best, err := h.service.SelectSupplier(c.Request.Context(), req.Suppliers)
	if err != nil {
		respondError(c, "failed to select supplier", err)
		return
	}

	c.JSON(http.StatusOK, best)
}

func (h *IntelligenceHandler) GetExpiryRisk(c *gin.Context) {
	assessment, err := h.service.ExpiryRisk(c.Request.Context(), c.Param("drug"))
	if err != nil {
		respondError(c, "failed to assess expiry risk", err)
		return
	}

	c.JSON(http.StatusOK, assessment)
}

func (h *IntelligenceHandler) GetExpiryOverview(c *gin.Context) {
	assessments, err := h.service.ExpiryOverview(c.Request.Context())
	if err != nil {
		respondError(c, "failed to assess expiry risk", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"assessments": assessments})
}

func (h *IntelligenceHandler) GetAnomalies(c *gin.Context) {
	anomalies, err := h.service.Anomalies(c.Request.Context())
	if err != nil {
		respondError(c, "failed to detect anomalies", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"anomalies": anomalies})
}

func (h *IntelligenceHandler) GetABC(c *gin.Context) {
	items, err := h.service.ABC(c.Request.Context())
	if err != nil {
		respondError(c, "failed to classify inventory", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *IntelligenceHandler) GetTurnover(c *gin.Context) {
	drug := strings.TrimSpace(c.Query("drug"))
	result, err := h.service.Turnover(c.Request.Context(), drug)
	if err != nil {
		respondError(c, "failed to compute turnover", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *IntelligenceHandler) GetStockPlans(c *gin.Context) {
	level, err := strconv.ParseFloat(c.DefaultQuery("service_level", "0.95"), 64)
	if err != nil || level <= 0 || level >= 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "service_level must be between 0 and 1"})
		return
	}

	plans, err := h.service.StockPlans(c.Request.Context(), level)
	if err != nil {
		respondError(c, "failed to plan safety stock", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// queryInt reads an integer query parameter, answering 400 itself when the
// value does not parse.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be an integer"})
		return 0, false
	}
	return v, true
}

// respondError maps domain sentinels to status codes. Anything unrecognized
// is logged and reported as 500.
func respondError(c *gin.Context, message string, err error) {
	var domainErr *domain.DomainError
	code := ""
	if errors.As(err, &domainErr) {
		code = domainErr.Code
	}

	switch {
	case errors.Is(err, domain.ErrInsufficientData):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": message, "code": code, "details": err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": message, "code": code, "details": err.Error()})
	case errors.Is(err, domain.ErrNoStockOnHand):
		c.JSON(http.StatusNotFound, gin.H{"error": "no stock on hand", "code": code, "details": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": message, "code": code, "details": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
		c.JSON(http.StatusInternalServerError, gin.H{"error": message, "details": err.Error()})
	}
}
