package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"reviewlens/internal/app/analytics/entity"
	"reviewlens/internal/app/analytics/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) ListProducts(ctx context.Context) ([]entity.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Product), args.Error(1)
}

func (m *MockProductService) GetProduct(ctx context.Context, productID string) (*entity.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func TestGetAllProducts_Success(t *testing.T) {
	router := setupTestRouter()
	mockService := new(MockProductService)
	h := NewProductHandler(mockService)
	router.GET("/api/products", h.GetAllProducts)

	mockService.On("ListProducts", mock.Anything).Return([]entity.Product{
		{ProductID: "B001", Title: "Coffee Grinder"},
		{ProductID: "B002", Title: "French Press"},
	}, nil)

	req, _ := http.NewRequest(http.MethodGet, "/api/products", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.ProductListResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Total)
}

func TestGetProduct_NotFound(t *testing.T) {
	router := setupTestRouter()
	mockService := new(MockProductService)
	h := NewProductHandler(mockService)
	router.GET("/api/products/:product_id", h.GetProduct)

	mockService.On("GetProduct", mock.Anything, "B404").Return(nil, service.ErrProductNotFound)

	req, _ := http.NewRequest(http.MethodGet, "/api/products/B404", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
