package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reviewlens/internal/app/analytics/entity"
	"reviewlens/internal/app/analytics/repository"
	"reviewlens/internal/app/analytics/util"
	"reviewlens/pkg/logger"
)

const productsCacheKey = "catalog:products:all"

// ProductService отдает каталог товаров для выпадающих списков дашборда
type ProductService struct {
	productRepo repository.ProductRepository
	cache       util.CacheStore
}

// NewProductService создает сервис каталога
func NewProductService(productRepo repository.ProductRepository, cache util.CacheStore) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		cache:       cache,
	}
}

// ListProducts возвращает все товары с кешированием.
// Каталог меняется редко, TTL в час достаточно.
func (s *ProductService) ListProducts(ctx context.Context) ([]entity.Product, error) {
	var cached []entity.Product
	if hit, err := s.cache.GetJSON(ctx, productsCacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	if err := s.cache.SetJSON(ctx, productsCacheKey, products, time.Hour); err != nil {
		// Данные получены из БД, проблемы с кешем не критичны
		logger.Warn().Err(err).Msg("Failed to cache product list")
	}

	return products, nil
}

// GetProduct возвращает один товар по внешнему идентификатору
func (s *ProductService) GetProduct(ctx context.Context, productID string) (*entity.Product, error) {
	product, err := s.productRepo.GetByProductID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}
