package repository

import (
	"context"

	"reviewlens/internal/app/analytics/aggregate"
	"reviewlens/internal/app/analytics/entity"
)

// ReviewRepository определяет методы работы с отзывами в MongoDB.
// Выборка возвращает сырые записи: вся агрегация выполняется в памяти
// пакетом aggregate, а не в БД.
type ReviewRepository interface {
	Insert(ctx context.Context, review *entity.Review) error
	GetByProduct(ctx context.Context, productID string, limit int64) ([]aggregate.RawReview, error)
	CountByProduct(ctx context.Context, productID string) (int64, error)
}

// ProductRepository определяет методы работы с каталогом товаров в PostgreSQL
type ProductRepository interface {
	GetAll(ctx context.Context) ([]entity.Product, error)
	GetByProductID(ctx context.Context, productID string) (*entity.Product, error)
	Create(ctx context.Context, product *entity.Product) error
}
