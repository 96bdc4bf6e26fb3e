package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"reviewlens/internal/app/analytics/aggregate"
	"reviewlens/internal/app/analytics/entity"
	"reviewlens/internal/app/analytics/repository"
	"reviewlens/internal/app/analytics/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Полдень 15-го числа по UTC, чтобы месяц не зависел от локальной зоны
const (
	jan2024 = int64(1705320000)
	feb2024 = int64(1707998400)
)

func newAnalyticsService(
	reviewRepo *mocks.MockReviewRepository,
	productRepo *mocks.MockProductRepository,
	cache *mocks.MockCacheStore,
) *AnalyticsService {
	return NewAnalyticsService(reviewRepo, productRepo, cache, 10000, 10*time.Minute)
}

func TestSentimentOverTime_CacheMiss(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCacheStore)
	service := newAnalyticsService(reviewRepo, productRepo, cache)

	ctx := context.Background()
	reviews := []aggregate.RawReview{
		{Rating: 5.0, Timestamp: jan2024},
		{Rating: 2.0, Timestamp: jan2024},
		{Rating: 4.0, Timestamp: feb2024},
	}

	cache.On("GetJSON", ctx, mock.Anything, mock.Anything).Return(false, nil)
	cache.On("SetJSON", ctx, mock.Anything, mock.Anything, 10*time.Minute).Return(nil)
	reviewRepo.On("GetByProduct", ctx, "B00TEST123", int64(10000)).Return(reviews, nil)

	result, err := service.SentimentOverTime(ctx, "B00TEST123", "", "")

	assert.NoError(t, err)
	assert.Equal(t, "B00TEST123", result.ProductID)
	assert.Len(t, result.TimeSeries, 2)
	assert.Equal(t, "2024-01", result.TimeSeries[0].Month)
	assert.Equal(t, "2024-02", result.TimeSeries[1].Month)
	assert.Equal(t, 3, result.Summary.TotalReviews)
	cache.AssertCalled(t, "SetJSON", ctx, mock.Anything, mock.Anything, 10*time.Minute)
}

func TestSentimentOverTime_CacheHit(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCacheStore)
	service := newAnalyticsService(reviewRepo, productRepo, cache)

	ctx := context.Background()
	cached := entity.TrendResponse{
		ProductID: "B00TEST123",
		Summary:   aggregate.Summary{TotalReviews: 42},
	}

	cache.On("GetJSON", ctx, mock.Anything, mock.Anything).Return(true, nil).Run(func(args mock.Arguments) {
		dest := args.Get(2).(*entity.TrendResponse)
		*dest = cached
	})

	result, err := service.SentimentOverTime(ctx, "B00TEST123", "", "")

	assert.NoError(t, err)
	assert.Equal(t, 42, result.Summary.TotalReviews)
	reviewRepo.AssertNotCalled(t, "GetByProduct")
}

func TestSentimentOverTime_DateWindow(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCacheStore)
	service := newAnalyticsService(reviewRepo, productRepo, cache)

	ctx := context.Background()
	reviews := []aggregate.RawReview{
		{Rating: 5.0, Timestamp: jan2024},
		{Rating: 1.0, Timestamp: feb2024},
	}

	cache.On("GetJSON", ctx, mock.Anything, mock.Anything).Return(false, nil)
	cache.On("SetJSON", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	reviewRepo.On("GetByProduct", ctx, "B00TEST123", int64(10000)).Return(reviews, nil)

	result, err := service.SentimentOverTime(ctx, "B00TEST123", "2024-01-01", "2024-01-31")

	assert.NoError(t, err)
	assert.Len(t, result.TimeSeries, 1)
	assert.Equal(t, "2024-01", result.TimeSeries[0].Month)
}

func TestSentimentOverTime_InvalidDate(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCacheStore)
	service := newAnalyticsService(reviewRepo, productRepo, cache)

	result, err := service.SentimentOverTime(context.Background(), "B00TEST123", "31-01-2024", "")

	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.Nil(t, result)
	reviewRepo.AssertNotCalled(t, "GetByProduct")
}

func TestSentimentOverTime_RepoError(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCacheStore)
	service := newAnalyticsService(reviewRepo, productRepo, cache)

	ctx := context.Background()
	cache.On("GetJSON", ctx, mock.Anything, mock.Anything).Return(false, nil)
	reviewRepo.On("GetByProduct", ctx, "B00TEST123", int64(10000)).Return(nil, errors.New("mongo down"))

	result, err := service.SentimentOverTime(ctx, "B00TEST123", "", "")

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestDistribution_Success(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCacheStore)
	service := newAnalyticsService(reviewRepo, productRepo, cache)

	ctx := context.Background()
	reviews := []aggregate.RawReview{
		{Rating: 5.0, Timestamp: jan2024},
		{Rating: 2.0, Timestamp: feb2024},
	}

	cache.On("GetJSON", ctx, mock.Anything, mock.Anything).Return(false, nil)
	cache.On("SetJSON", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	reviewRepo.On("GetByProduct", ctx, "B00TEST123", int64(10000)).Return(reviews, nil)

	result, err := service.Distribution(ctx, "B00TEST123", "year", "", "")

	assert.NoError(t, err)
	assert.Equal(t, "year", result.Period)
	assert.Len(t, result.Buckets, 1)
	assert.Equal(t, "2024", result.Buckets[0].Label)
	assert.Equal(t, 2, result.Buckets[0].Total)
}

func TestDistribution_InvalidPeriod(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCacheStore)
	service := newAnalyticsService(reviewRepo, productRepo, cache)

	result, err := service.Distribution(context.Background(), "B00TEST123", "quarter", "", "")

	assert.ErrorIs(t, err, aggregate.ErrInvalidPeriod)
	assert.Nil(t, result)
	reviewRepo.AssertNotCalled(t, "GetByProduct")
}

func TestTimelineComparison_Success(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCacheStore)
	service := newAnalyticsService(reviewRepo, productRepo, cache)

	ctx := context.Background()
	reviewRepo.On("GetByProduct", ctx, "B001", int64(10000)).Return([]aggregate.RawReview{
		{Rating: 5.0, Timestamp: jan2024},
	}, nil)
	reviewRepo.On("GetByProduct", ctx, "B002", int64(10000)).Return([]aggregate.RawReview{
		{Rating: 1.0, Timestamp: feb2024},
	}, nil)
	productRepo.On("GetByProductID", ctx, "B001").Return(&entity.Product{ProductID: "B001", Title: "Coffee Grinder"}, nil)
	productRepo.On("GetByProductID", ctx, "B002").Return(nil, repository.ErrProductNotFound)

	result, err := service.TimelineComparison(ctx, []string{"B001", "B002"}, "positive", "", "")

	assert.NoError(t, err)
	assert.Equal(t, "positive", result.Metric)
	assert.Equal(t, []string{"2024-01", "2024-02"}, result.Dataset.Categories)
	assert.Len(t, result.Dataset.Series, 2)
	assert.Equal(t, "Coffee Grinder", result.Dataset.Series[0].Label)
	assert.Equal(t, "B002", result.Dataset.Series[1].Label, "unknown product falls back to its id")

	// Февраля у первого товара нет - в серии null, а не ноль
	assert.NotNil(t, result.Dataset.Series[0].Values[0])
	assert.Nil(t, result.Dataset.Series[0].Values[1])
}

func TestTimelineComparison_NoProducts(t *testing.T) {
	service := newAnalyticsService(new(mocks.MockReviewRepository), new(mocks.MockProductRepository), new(mocks.MockCacheStore))

	result, err := service.TimelineComparison(context.Background(), nil, "positive", "", "")

	assert.ErrorIs(t, err, ErrNoProducts)
	assert.Nil(t, result)
}

func TestTimelineComparison_TooManyProducts(t *testing.T) {
	service := newAnalyticsService(new(mocks.MockReviewRepository), new(mocks.MockProductRepository), new(mocks.MockCacheStore))

	ids := make([]string, maxComparisonProducts+1)
	for i := range ids {
		ids[i] = "B00"
	}

	result, err := service.TimelineComparison(context.Background(), ids, "positive", "", "")

	assert.ErrorIs(t, err, ErrTooManyProducts)
	assert.Nil(t, result)
}

func TestTimelineComparison_InvalidMetric(t *testing.T) {
	service := newAnalyticsService(new(mocks.MockReviewRepository), new(mocks.MockProductRepository), new(mocks.MockCacheStore))

	result, err := service.TimelineComparison(context.Background(), []string{"B001"}, "happiness", "", "")

	assert.ErrorIs(t, err, aggregate.ErrInvalidMetric)
	assert.Nil(t, result)
}

func TestDateRange_Success(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCacheStore)
	service := newAnalyticsService(reviewRepo, productRepo, cache)

	ctx := context.Background()
	reviewRepo.On("GetByProduct", ctx, "B00TEST123", int64(10000)).Return([]aggregate.RawReview{
		{Rating: 5.0, Timestamp: jan2024},
		{Rating: 2.0, Timestamp: feb2024},
	}, nil)
	reviewRepo.On("CountByProduct", ctx, "B00TEST123").Return(int64(2), nil)

	result, err := service.DateRange(ctx, "B00TEST123")

	assert.NoError(t, err)
	assert.Equal(t, 2, result.TotalReviews)
	assert.NotEmpty(t, result.Earliest)
	assert.NotEmpty(t, result.Latest)
}

func TestDateRange_NoReviews(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCacheStore)
	service := newAnalyticsService(reviewRepo, productRepo, cache)

	ctx := context.Background()
	reviewRepo.On("GetByProduct", ctx, "B00EMPTY", int64(10000)).Return([]aggregate.RawReview{}, nil)

	result, err := service.DateRange(ctx, "B00EMPTY")

	assert.ErrorIs(t, err, ErrNoReviews)
	assert.Nil(t, result)
}

func TestWarmProduct_AllCharts(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCacheStore)
	service := newAnalyticsService(reviewRepo, productRepo, cache)

	ctx := context.Background()
	cache.On("GetJSON", ctx, mock.Anything, mock.Anything).Return(false, nil)
	cache.On("SetJSON", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	reviewRepo.On("GetByProduct", ctx, "B00TEST123", int64(10000)).Return([]aggregate.RawReview{
		{Rating: 4.5, Timestamp: jan2024},
	}, nil)

	result, err := service.WarmProduct(ctx, "B00TEST123")

	assert.NoError(t, err)
	assert.Equal(t, 4, result.Successful, "trend plus three distributions")
	assert.Equal(t, 0, result.Failed)
	cache.AssertNumberOfCalls(t, "SetJSON", 4)
}

func TestWarmProduct_PartialFailure(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCacheStore)
	service := newAnalyticsService(reviewRepo, productRepo, cache)

	ctx := context.Background()
	cache.On("GetJSON", ctx, mock.Anything, mock.Anything).Return(false, nil)
	cache.On("SetJSON", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	reviewRepo.On("GetByProduct", ctx, "B00FLAKY", int64(10000)).Return(nil, errors.New("mongo down")).Once()
	reviewRepo.On("GetByProduct", ctx, "B00FLAKY", int64(10000)).Return([]aggregate.RawReview{
		{Rating: 4.5, Timestamp: jan2024},
	}, nil)

	result, err := service.WarmProduct(ctx, "B00FLAKY")

	assert.NoError(t, err)
	assert.Equal(t, 3, result.Successful)
	assert.Equal(t, 1, result.Failed)
}

func TestInvalidateProduct(t *testing.T) {
	cache := new(mocks.MockCacheStore)
	service := newAnalyticsService(new(mocks.MockReviewRepository), new(mocks.MockProductRepository), cache)

	ctx := context.Background()
	cache.On("InvalidateProduct", ctx, "B00TEST123").Return(int64(5), nil)

	deleted, err := service.InvalidateProduct(ctx, "B00TEST123")

	assert.NoError(t, err)
	assert.Equal(t, int64(5), deleted)
}

func TestCacheStats(t *testing.T) {
	cache := new(mocks.MockCacheStore)
	service := newAnalyticsService(new(mocks.MockReviewRepository), new(mocks.MockProductRepository), cache)

	ctx := context.Background()
	cache.On("Stats", ctx).Return(entity.CacheStatsResponse{Connected: true, Keys: 12}, nil)

	stats, err := service.CacheStats(ctx)

	assert.NoError(t, err)
	assert.True(t, stats.Connected)
	assert.Equal(t, int64(12), stats.Keys)
}
