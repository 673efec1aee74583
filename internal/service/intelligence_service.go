package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/andresuchdata/pharmastock/backend-go/internal/cache"
	"github.com/andresuchdata/pharmastock/backend-go/internal/config"
	"github.com/andresuchdata/pharmastock/backend-go/internal/domain"
	"github.com/andresuchdata/pharmastock/backend-go/internal/intelligence/expiry"
	"github.com/andresuchdata/pharmastock/backend-go/internal/intelligence/forecast"
	"github.com/andresuchdata/pharmastock/backend-go/internal/intelligence/insight"
	"github.com/andresuchdata/pharmastock/backend-go/internal/intelligence/reorder"
	"github.com/andresuchdata/pharmastock/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// PurchaseOrderStore persists approved reorder suggestions.
type PurchaseOrderStore interface {
	CreatePurchaseOrder(ctx context.Context, po *domain.PurchaseOrder) error
}

// IntelligenceService loads history through the repository and hands it to
// the pure forecasting, reorder and expiry engines.
type IntelligenceService struct {
	repo       repository.IntelligenceRepository
	orders     PurchaseOrderStore
	cache      cache.IntelligenceCache
	cfg        config.IntelligenceConfig
	forecaster *forecast.Forecaster
	analyzer   *reorder.Analyzer
	predictor  *expiry.Predictor
	now        func() time.Time
}

func NewIntelligenceService(
	repo repository.IntelligenceRepository,
	orders PurchaseOrderStore,
	cacheImpl cache.IntelligenceCache,
	cfg config.IntelligenceConfig,
) *IntelligenceService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopIntelligenceCache()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.DefaultHorizonDays <= 0 {
		cfg.DefaultHorizonDays = 30
	}

	return &IntelligenceService{
		repo:   repo,
		orders: orders,
		cache:  cacheImpl,
		cfg:    cfg,
		forecaster: forecast.NewForecaster(forecast.Options{
			TrendAverageAccuracy: cfg.TrendAverageAccuracy,
			Trees:                cfg.Trees,
			Seed:                 cfg.Seed,
			MinHistory:           cfg.MinForecastHistoryLen,
		}),
		analyzer:  reorder.NewAnalyzer(cfg.SafetyFactor, cfg.DefaultLeadTimeDays),
		predictor: expiry.NewPredictor(cfg.RiskHighThreshold, cfg.RiskMediumThreshold),
		now:       time.Now,
	}
}

func (s *IntelligenceService) resolveModel(model string) (domain.ModelVariant, error) {
	if model == "" {
		model = s.cfg.DefaultModel
	}
	if model == "" {
		return domain.ModelLinearRegression, nil
	}
	return domain.ParseModelVariant(model)
}

// Forecast projects days of consumption for drugName. An empty model falls
// back to the configured default; a non-positive horizon is invalid input.
func (s *IntelligenceService) Forecast(ctx context.Context, drugName string, days int, model string) (*domain.ForecastResult, error) {
	variant, err := s.resolveModel(model)
	if err != nil {
		return nil, err
	}
	series, err := s.repo.GetHistoricalConsumption(ctx, drugName)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.forecaster.Forecast(series, days, variant)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", drugName, err)
	}

	log.Debug().
		Str("drug", drugName).
		Str("model", string(variant)).
		Int("horizon", days).
		Int("rows", len(series)).
		Float64("accuracy", result.Accuracy).
		Dur("took", time.Since(start)).
		Msg("intelligence: forecast fitted")

	return result, nil
}

// ForecastWithRecommendations pairs a forecast with stocking advice. A drug
// with too little history still gets a report carrying the insufficient
// data advice instead of an error.
func (s *IntelligenceService) ForecastWithRecommendations(ctx context.Context, drugName string, days int, model string) (*domain.ForecastReport, error) {
	stock, err := s.repo.GetCurrentStock(ctx, drugName)
	if err != nil {
		return nil, err
	}

	result, err := s.Forecast(ctx, drugName, days, model)
	if err != nil && !errors.Is(err, domain.ErrInsufficientData) {
		return nil, err
	}

	return &domain.ForecastReport{
		DrugName:        drugName,
		CurrentStock:    stock,
		Result:          result,
		Recommendations: forecast.Recommend(drugName, result, stock),
	}, nil
}

// Backtest holds out the last holdoutDays of history, forecasts them from
// the rest and scores the forecast against what actually happened.
func (s *IntelligenceService) Backtest(ctx context.Context, drugName string, holdoutDays int, model string) (insight.Metrics, error) {
	variant, err := s.resolveModel(model)
	if err != nil {
		return insight.Metrics{}, err
	}
	if holdoutDays <= 0 {
		return insight.Metrics{}, fmt.Errorf("holdout must be positive, got %d: %w", holdoutDays, domain.ErrInvalidInput)
	}

	series, err := s.repo.GetHistoricalConsumption(ctx, drugName)
	if err != nil {
		return insight.Metrics{}, err
	}
	if len(series) <= holdoutDays {
		return insight.Metrics{}, fmt.Errorf("holdout of %d days leaves no history: %w", holdoutDays, domain.ErrInsufficientData)
	}

	train, test := series[:len(series)-holdoutDays], series[len(series)-holdoutDays:]
	result, err := s.forecaster.Forecast(train, holdoutDays, variant)
	if err != nil {
		return insight.Metrics{}, fmt.Errorf("backtest %s: %w", drugName, err)
	}

	return insight.AccuracyMetrics(result.Forecast, test.Values()), nil
}

// ReorderSuggestions runs the reorder policy over the whole inventory. With
// a model the trailing usage of each drug is replaced by its forecast mean;
// drugs that cannot be forecast keep their trailing usage.
func (s *IntelligenceService) ReorderSuggestions(ctx context.Context, model string) ([]domain.ReorderSuggestion, error) {
	params := cache.SnapshotParams{
		SafetyFactor:  s.analyzer.SafetyFactor,
		LeadTimeDays:  s.analyzer.DefaultLeadTimeDays,
		ForecastModel: model,
	}
	if suggestions, ok, err := s.cache.GetReorderSuggestions(ctx, params); err == nil && ok {
		return suggestions, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("intelligence: cache get reorder suggestions failed")
	}

	inputs, err := s.repo.GetReorderInputs(ctx)
	if err != nil {
		return nil, err
	}

	if model != "" {
		if inputs, err = s.forecastDrivenInputs(ctx, inputs, model); err != nil {
			return nil, err
		}
	}

	suggestions := s.analyzer.Suggestions(inputs)

	if err := s.cache.SetReorderSuggestions(ctx, params, suggestions); err != nil {
		log.Warn().Err(err).Msg("intelligence: cache set reorder suggestions failed")
	}

	return suggestions, nil
}

func (s *IntelligenceService) forecastDrivenInputs(ctx context.Context, inputs []domain.ReorderInput, model string) ([]domain.ReorderInput, error) {
	if _, err := s.resolveModel(model); err != nil {
		return nil, err
	}

	eligible, err := s.repo.GetDrugsForForecasting(ctx, s.forecaster.MinHistory())
	if err != nil {
		return nil, err
	}
	forecastable := make(map[string]struct{}, len(eligible))
	for _, name := range eligible {
		forecastable[name] = struct{}{}
	}

	out := make([]domain.ReorderInput, len(inputs))
	copy(out, inputs)

	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = in.DrugName
	}

	err = s.forEachDrug(ctx, names, func(ctx context.Context, i int, name string) error {
		if _, ok := forecastable[name]; !ok {
			return nil
		}
		result, err := s.Forecast(ctx, name, s.cfg.DefaultHorizonDays, model)
		if errors.Is(err, domain.ErrInsufficientData) || errors.Is(err, domain.ErrInvalidInput) {
			log.Debug().Err(err).Str("drug", name).Msg("intelligence: keeping trailing usage")
			return nil
		}
		if err != nil {
			return err
		}
		out[i] = reorder.FromForecast(out[i], result)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// SupplierRanking ranks every supplier by the composite display score.
func (s *IntelligenceService) SupplierRanking(ctx context.Context) ([]domain.ScoredSupplier, error) {
	if ranking, ok, err := s.cache.GetSupplierRanking(ctx); err == nil && ok {
		return ranking, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("intelligence: cache get supplier ranking failed")
	}

	suppliers, err := s.repo.GetSupplierProfiles(ctx)
	if err != nil {
		return nil, err
	}

	ranking := reorder.RankSuppliers(suppliers)

	if err := s.cache.SetSupplierRanking(ctx, ranking); err != nil {
		log.Warn().Err(err).Msg("intelligence: cache set supplier ranking failed")
	}

	return ranking, nil
}

// SelectSupplier picks the supplier for a single order. When names is not
// empty only those suppliers are considered.
func (s *IntelligenceService) SelectSupplier(ctx context.Context, names []string) (*domain.ScoredSupplier, error) {
	suppliers, err := s.repo.GetSupplierProfiles(ctx)
	if err != nil {
		return nil, err
	}

	if len(names) > 0 {
		wanted := make(map[string]struct{}, len(names))
		for _, n := range names {
			wanted[n] = struct{}{}
		}
		filtered := suppliers[:0:0]
		for _, sp := range suppliers {
			if _, ok := wanted[sp.Name]; ok {
				filtered = append(filtered, sp)
			}
		}
		suppliers = filtered
	}

	best := reorder.SelectOptimalSupplier(suppliers)
	if best == nil {
		return nil, fmt.Errorf("no supplier available: %w", domain.ErrNotFound)
	}
	return best, nil
}

// ApproveSuggestion turns a suggestion into a pending purchase order and
// drops the cached snapshots, which no longer reflect open orders.
func (s *IntelligenceService) ApproveSuggestion(ctx context.Context, suggestion domain.ReorderSuggestion, notes string) (*domain.PurchaseOrder, error) {
	if s.orders == nil {
		return nil, errors.New("purchase orders are not configured")
	}
	if suggestion.SuggestedQuantity <= 0 {
		return nil, fmt.Errorf("suggested quantity must be positive: %w", domain.ErrInvalidInput)
	}
	if suggestion.DrugID == 0 && suggestion.DrugName == "" {
		return nil, fmt.Errorf("drug is required: %w", domain.ErrInvalidInput)
	}

	po := domain.NewPurchaseOrderFromSuggestion(domain.NewOrderNumber(s.now()), suggestion, notes)
	if err := s.orders.CreatePurchaseOrder(ctx, po); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("intelligence: cache invalidation failed")
	}

	log.Info().
		Str("order_number", po.OrderNumber).
		Str("drug", po.DrugName).
		Int("quantity", po.Quantity).
		Str("total", po.TotalAmount.StringFixed(2)).
		Msg("intelligence: purchase order created")

	return po, nil
}

// ExpiryRisk assesses one drug.
func (s *IntelligenceService) ExpiryRisk(ctx context.Context, drugName string) (*domain.ExpiryRiskAssessment, error) {
	stock, err := s.repo.GetCurrentStock(ctx, drugName)
	if err != nil {
		return nil, err
	}

	series, err := s.repo.GetHistoricalConsumption(ctx, drugName)
	if err != nil {
		return nil, err
	}

	return s.predictor.Predict(drugName, series, stock)
}

// ExpiryOverview assesses every stocked drug with consumption history,
// riskiest first. Drugs without enough history or stock are skipped.
func (s *IntelligenceService) ExpiryOverview(ctx context.Context) ([]domain.ExpiryRiskAssessment, error) {
	names, err := s.repo.GetDrugsWithConsumption(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*domain.ExpiryRiskAssessment, len(names))
	err = s.forEachDrug(ctx, names, func(ctx context.Context, i int, name string) error {
		a, err := s.ExpiryRisk(ctx, name)
		if errors.Is(err, domain.ErrInsufficientData) || errors.Is(err, domain.ErrNoStockOnHand) || errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		results[i] = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.ExpiryRiskAssessment, 0, len(results))
	for _, a := range results {
		if a != nil {
			out = append(out, *a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RiskScore != out[j].RiskScore {
			return out[i].RiskScore > out[j].RiskScore
		}
		return out[i].DrugName < out[j].DrugName
	})
	return out, nil
}

// Anomalies compares the last 30 days of each drug with the 30 before and
// returns the largest swings.
func (s *IntelligenceService) Anomalies(ctx context.Context) ([]domain.ConsumptionAnomaly, error) {
	names, err := s.repo.GetDrugsWithConsumption(ctx)
	if err != nil {
		return nil, err
	}

	asOf := s.now().UTC().Truncate(24 * time.Hour)
	found := make([]*domain.ConsumptionAnomaly, len(names))
	err = s.forEachDrug(ctx, names, func(ctx context.Context, i int, name string) error {
		series, err := s.repo.GetHistoricalConsumption(ctx, name)
		if err != nil {
			return err
		}
		recent, previous := insight.WindowAverages(series, asOf, insight.AnomalyWindowDays)
		if a, ok := insight.DetectAnomaly(name, recent, previous); ok {
			found[i] = a
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var anomalies []domain.ConsumptionAnomaly
	for _, a := range found {
		if a != nil {
			anomalies = append(anomalies, *a)
		}
	}
	return insight.TopAnomalies(anomalies, insight.MaxAnomalies), nil
}

// ABC classifies the inventory by stock value.
func (s *IntelligenceService) ABC(ctx context.Context) ([]domain.ABCItem, error) {
	values, err := s.repo.GetInventoryValues(ctx)
	if err != nil {
		return nil, err
	}
	return insight.ClassifyABC(values), nil
}

// Turnover reports the yearly turnover of one drug, or of the whole
// inventory when drugName is empty.
func (s *IntelligenceService) Turnover(ctx context.Context, drugName string) (insight.TurnoverResult, error) {
	consumption, inventory, err := s.repo.GetTurnoverValues(ctx, drugName)
	if err != nil {
		return insight.TurnoverResult{}, err
	}
	return insight.Turnover(consumption, inventory), nil
}

// StockPlans sizes service-level safety stock and reorder points for every
// inventory item.
func (s *IntelligenceService) StockPlans(ctx context.Context, serviceLevel float64) ([]domain.StockPlan, error) {
	inputs, err := s.repo.GetReorderInputs(ctx)
	if err != nil {
		return nil, err
	}

	plans := make([]domain.StockPlan, len(inputs))
	for i, in := range inputs {
		leadTime := in.LeadTimeDays
		if leadTime <= 0 {
			leadTime = s.analyzer.DefaultLeadTimeDays
		}
		ss := insight.ServiceLevelSafetyStock(in.AvgDailyUsage, leadTime, serviceLevel)
		plans[i] = domain.StockPlan{
			DrugID:        in.DrugID,
			DrugName:      in.DrugName,
			AvgDailyUsage: in.AvgDailyUsage,
			LeadTimeDays:  leadTime,
			ServiceLevel:  serviceLevel,
			SafetyStock:   ss,
			ReorderPoint:  insight.ReorderPoint(in.AvgDailyUsage, leadTime, ss),
		}
	}
	return plans, nil
}

// forEachDrug runs fn for every name with at most cfg.Workers in flight.
// The first error cancels the rest.
func (s *IntelligenceService) forEachDrug(ctx context.Context, names []string, fn func(ctx context.Context, i int, name string) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for i, name := range names {
		g.Go(func() error {
			return fn(gctx, i, name)
		})
	}

	return g.Wait()
}
