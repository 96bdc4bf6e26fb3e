package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"reviewlens/internal/app/analytics/entity"
	"reviewlens/pkg/metrics"
)

const serviceName = "reviewlens"

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrProductNotFound = errors.New("product not found")
)

// productRepository реализует ProductRepository поверх PostgreSQL через GORM
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository создает репозиторий каталога товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// GetAll возвращает все товары каталога, свежие первыми
func (r *productRepository) GetAll(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "products")
	result := r.db.WithContext(ctx).Order("created_at DESC").Find(&products)
	timer.ObserveDuration()

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get products: %w", result.Error)
	}

	return products, nil
}

// GetByProductID находит товар по внешнему идентификатору каталога
func (r *productRepository) GetByProductID(ctx context.Context, productID string) (*entity.Product, error) {
	var product entity.Product
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "products")
	result := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&product)
	timer.ObserveDuration()

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get product: %w", result.Error)
	}

	return &product, nil
}

// Create добавляет товар в каталог
func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "products")
	result := r.db.WithContext(ctx).Create(product)
	timer.ObserveDuration()

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to create product: %w", result.Error)
	}
	return nil
}
