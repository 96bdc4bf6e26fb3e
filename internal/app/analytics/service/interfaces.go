package service

import (
	"context"

	"reviewlens/internal/app/analytics/entity"
)

// AnalyticsServiceInterface - операции над агрегатами для handlers и processors
type AnalyticsServiceInterface interface {
	SentimentOverTime(ctx context.Context, productID, startDate, endDate string) (*entity.TrendResponse, error)
	Distribution(ctx context.Context, productID, period, startDate, endDate string) (*entity.DistributionResponse, error)
	TimelineComparison(ctx context.Context, productIDs []string, metric, startDate, endDate string) (*entity.ComparisonResponse, error)
	DateRange(ctx context.Context, productID string) (*entity.DateRangeResponse, error)
	WarmProduct(ctx context.Context, productID string) (*entity.WarmResult, error)
	InvalidateProduct(ctx context.Context, productID string) (int64, error)
	CacheStats(ctx context.Context) (*entity.CacheStatsResponse, error)
}

// ReviewServiceInterface - прием новых отзывов
type ReviewServiceInterface interface {
	CreateReview(ctx context.Context, userID string, req *entity.CreateReviewRequest) (*entity.Review, error)
}

// ProductServiceInterface - каталог товаров
type ProductServiceInterface interface {
	ListProducts(ctx context.Context) ([]entity.Product, error)
	GetProduct(ctx context.Context, productID string) (*entity.Product, error)
}
