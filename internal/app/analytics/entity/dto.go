package entity

import (
	"reviewlens/internal/app/analytics/aggregate"
)

// CreateReviewRequest - запрос на добавление отзыва
type CreateReviewRequest struct {
	ProductID string  `json:"product_id" validate:"required"`
	Rating    float64 `json:"rating" validate:"required,min=1,max=5"`
	Timestamp int64   `json:"timestamp" validate:"omitempty,min=0"` // Unix-секунды, по умолчанию текущий момент
	Text      string  `json:"text" validate:"omitempty,max=5000"`
}

// TrendResponse - помесячная динамика тональности со сводкой
type TrendResponse struct {
	ProductID  string                  `json:"product_id"`
	Summary    aggregate.Summary       `json:"summary"`
	TimeSeries []aggregate.MonthBucket `json:"timeSeries"`
}

// DistributionResponse - распределение тональности по выбранному разрезу
type DistributionResponse struct {
	ProductID string                   `json:"product_id"`
	Period    string                   `json:"period"`
	Buckets   []aggregate.PeriodBucket `json:"buckets"`
}

// ComparisonResponse - сравнение нескольких товаров по одной метрике
type ComparisonResponse struct {
	Metric  string                 `json:"metric"`
	Dataset aggregate.ChartDataset `json:"dataset"`
}

// DateRangeResponse - наблюдаемый период отзывов по товару
type DateRangeResponse struct {
	ProductID    string `json:"product_id"`
	Earliest     string `json:"earliest"`
	Latest       string `json:"latest"`
	TotalReviews int    `json:"total_reviews"`
}

// ProductListResponse - ответ со списком товаров каталога
type ProductListResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

// WarmResult - итог прогрева кеша по товару
type WarmResult struct {
	ProductID  string `json:"product_id"`
	Successful int    `json:"successful"`
	Failed     int    `json:"failed"`
}

// CacheStatsResponse - состояние кеша для административного endpoint
type CacheStatsResponse struct {
	Connected bool  `json:"connected"`
	Keys      int64 `json:"keys"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - стандартный ответ об успехе
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
