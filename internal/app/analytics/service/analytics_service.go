package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reviewlens/internal/app/analytics/aggregate"
	"reviewlens/internal/app/analytics/entity"
	"reviewlens/internal/app/analytics/repository"
	"reviewlens/internal/app/analytics/util"
	"reviewlens/pkg/logger"
	"reviewlens/pkg/metrics"
)

// AnalyticsService считает агрегаты тональности по сырым отзывам.
// Репозитории отдают сырые записи, сама агрегация выполняется пакетом
// aggregate, готовые ответы кешируются в Redis по схеме cache-aside.
type AnalyticsService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	cache       util.CacheStore
	fetchLimit  int64
	cacheTTL    time.Duration
}

// NewAnalyticsService создает сервис аналитики с внедрением зависимостей
func NewAnalyticsService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	cache util.CacheStore,
	fetchLimit int64,
	cacheTTL time.Duration,
) *AnalyticsService {
	return &AnalyticsService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		cache:       cache,
		fetchLimit:  fetchLimit,
		cacheTTL:    cacheTTL,
	}
}

// SentimentOverTime возвращает помесячную динамику тональности товара
// со сводкой. Пустые даты означают отсутствие ограничения по времени.
func (s *AnalyticsService) SentimentOverTime(ctx context.Context, productID, startDate, endDate string) (*entity.TrendResponse, error) {
	from, to, err := parseWindow(startDate, endDate)
	if err != nil {
		return nil, err
	}

	key := util.ChartKey("trend", productID, map[string]string{
		"start_date": startDate,
		"end_date":   endDate,
	})
	var cached entity.TrendResponse
	if hit, cacheErr := s.cache.GetJSON(ctx, key, &cached); cacheErr == nil && hit {
		return &cached, nil
	}

	reviews, err := s.reviewRepo.GetByProduct(ctx, productID, s.fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}

	result := aggregate.ByMonth(aggregate.FilterByRange(reviews, from, to))
	metrics.AggregationsComputed.WithLabelValues("trend").Inc()

	response := &entity.TrendResponse{
		ProductID:  productID,
		Summary:    result.Summary,
		TimeSeries: result.Series,
	}

	s.cacheSet(ctx, key, response)
	return response, nil
}

// Distribution возвращает распределение тональности товара по годам,
// месяцам года или дням недели
func (s *AnalyticsService) Distribution(ctx context.Context, productID, period, startDate, endDate string) (*entity.DistributionResponse, error) {
	parsedPeriod, err := aggregate.ParsePeriod(period)
	if err != nil {
		return nil, err
	}

	from, to, err := parseWindow(startDate, endDate)
	if err != nil {
		return nil, err
	}

	key := util.ChartKey("distribution", productID, map[string]string{
		"period":     period,
		"start_date": startDate,
		"end_date":   endDate,
	})
	var cached entity.DistributionResponse
	if hit, cacheErr := s.cache.GetJSON(ctx, key, &cached); cacheErr == nil && hit {
		return &cached, nil
	}

	reviews, err := s.reviewRepo.GetByProduct(ctx, productID, s.fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}

	buckets, err := aggregate.Distribution(aggregate.FilterByRange(reviews, from, to), parsedPeriod)
	if err != nil {
		return nil, err
	}
	metrics.AggregationsComputed.WithLabelValues("distribution").Inc()

	response := &entity.DistributionResponse{
		ProductID: productID,
		Period:    period,
		Buckets:   buckets,
	}

	s.cacheSet(ctx, key, response)
	return response, nil
}

// TimelineComparison строит общий датасет для сравнения нескольких товаров
// по одной метрике тональности. Порядок линий повторяет порядок productIDs,
// месяцы без данных у товара отдаются как null.
func (s *AnalyticsService) TimelineComparison(ctx context.Context, productIDs []string, metric, startDate, endDate string) (*entity.ComparisonResponse, error) {
	parsedMetric, err := aggregate.ParseMetric(metric)
	if err != nil {
		return nil, err
	}

	if len(productIDs) == 0 {
		return nil, ErrNoProducts
	}
	if len(productIDs) > maxComparisonProducts {
		return nil, ErrTooManyProducts
	}

	from, to, err := parseWindow(startDate, endDate)
	if err != nil {
		return nil, err
	}

	series := make([]aggregate.ProductSeries, 0, len(productIDs))
	for _, productID := range productIDs {
		reviews, err := s.reviewRepo.GetByProduct(ctx, productID, s.fetchLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to load reviews for %s: %w", productID, err)
		}

		result := aggregate.ByMonth(aggregate.FilterByRange(reviews, from, to))

		series = append(series, aggregate.ProductSeries{
			Label:   s.productLabel(ctx, productID),
			Buckets: result.Series,
		})
	}

	dataset, err := aggregate.ToTimeSeriesDataset(series, parsedMetric)
	if err != nil {
		return nil, err
	}
	metrics.AggregationsComputed.WithLabelValues("comparison").Inc()

	return &entity.ComparisonResponse{
		Metric:  metric,
		Dataset: dataset,
	}, nil
}

// DateRange возвращает наблюдаемый период отзывов товара
func (s *AnalyticsService) DateRange(ctx context.Context, productID string) (*entity.DateRangeResponse, error) {
	reviews, err := s.reviewRepo.GetByProduct(ctx, productID, s.fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}

	dr, ok := aggregate.ReviewDateRange(reviews)
	if !ok {
		return nil, ErrNoReviews
	}

	total, err := s.reviewRepo.CountByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	return &entity.DateRangeResponse{
		ProductID:    productID,
		Earliest:     dr.Earliest,
		Latest:       dr.Latest,
		TotalReviews: int(total),
	}, nil
}

// WarmProduct прогревает кеш по стандартному набору графиков товара
func (s *AnalyticsService) WarmProduct(ctx context.Context, productID string) (*entity.WarmResult, error) {
	warmers := []func() error{
		func() error { _, err := s.SentimentOverTime(ctx, productID, "", ""); return err },
		func() error { _, err := s.Distribution(ctx, productID, string(aggregate.PeriodYear), "", ""); return err },
		func() error { _, err := s.Distribution(ctx, productID, string(aggregate.PeriodMonth), "", ""); return err },
		func() error { _, err := s.Distribution(ctx, productID, string(aggregate.PeriodDayOfWeek), "", ""); return err },
	}

	result := &entity.WarmResult{ProductID: productID}
	for _, warm := range warmers {
		if err := warm(); err != nil {
			logger.Warn().Err(err).Str("product_id", productID).Msg("Cache warm step failed")
			result.Failed++
			continue
		}
		result.Successful++
	}

	if result.Successful > 0 {
		metrics.CacheWarms.WithLabelValues("success").Inc()
	} else {
		metrics.CacheWarms.WithLabelValues("failed").Inc()
	}

	return result, nil
}

// InvalidateProduct сбрасывает закешированные графики товара
func (s *AnalyticsService) InvalidateProduct(ctx context.Context, productID string) (int64, error) {
	deleted, err := s.cache.InvalidateProduct(ctx, productID)
	if err != nil {
		return deleted, fmt.Errorf("failed to invalidate product cache: %w", err)
	}
	metrics.CacheInvalidations.Inc()
	return deleted, nil
}

// CacheStats возвращает состояние кеша
func (s *AnalyticsService) CacheStats(ctx context.Context) (*entity.CacheStatsResponse, error) {
	stats, err := s.cache.Stats(ctx)
	if err != nil {
		return &stats, err
	}
	return &stats, nil
}

// productLabel подбирает подпись серии: название товара из каталога,
// при отсутствии - сам идентификатор
func (s *AnalyticsService) productLabel(ctx context.Context, productID string) string {
	product, err := s.productRepo.GetByProductID(ctx, productID)
	if err != nil {
		if !errors.Is(err, repository.ErrProductNotFound) {
			logger.Warn().Err(err).Str("product_id", productID).Msg("Failed to resolve product title")
		}
		return productID
	}
	return product.Title
}

// cacheSet кладет ответ в кеш; ошибки кеша не фатальны - данные уже посчитаны
func (s *AnalyticsService) cacheSet(ctx context.Context, key string, value any) {
	if err := s.cache.SetJSON(ctx, key, value, s.cacheTTL); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Failed to cache aggregation result")
	}
}

// parseWindow разбирает границы окна дат. Пустая строка - границы нет.
// Конечная дата включается целиком: к полуночи добавляются сутки,
// как это делает исходный API дашборда.
func parseWindow(startDate, endDate string) (from, to int64, err error) {
	if startDate != "" {
		t, parseErr := time.ParseInLocation("2006-01-02", startDate, time.Local)
		if parseErr != nil {
			return 0, 0, ErrInvalidDate
		}
		from = t.Unix()
	}
	if endDate != "" {
		t, parseErr := time.ParseInLocation("2006-01-02", endDate, time.Local)
		if parseErr != nil {
			return 0, 0, ErrInvalidDate
		}
		to = t.Unix() + 86400
	}
	return from, to, nil
}
