package util

import (
	"context"
	"time"

	"reviewlens/internal/app/analytics/entity"
)

// CacheStore интерфейс для работы с Redis кешем агрегатов.
// Используется для dependency injection и упрощения тестирования.
type CacheStore interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	InvalidateProduct(ctx context.Context, productID string) (int64, error)
	Stats(ctx context.Context) (entity.CacheStatsResponse, error)
	Healthy(ctx context.Context) bool
	Close() error
}

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
