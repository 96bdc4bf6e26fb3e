package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"reviewlens/internal/app/analytics/entity"
	"reviewlens/internal/app/analytics/repository/mocks"
)

const testJWTSecret = "test-secret"

func signTestToken(t *testing.T, role string) string {
	t.Helper()
	claims := JWTClaims{
		UserID:   "user-1",
		Email:    "user@example.com",
		RoleName: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	assert.NoError(t, err)
	return token
}

func setupFullRouter(analyticsSvc *MockAnalyticsService, cache *mocks.MockCacheStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return SetupRoutes(
		NewAnalyticsHandler(analyticsSvc),
		NewReviewHandler(new(MockReviewService)),
		NewProductHandler(new(MockProductService)),
		NewAuthMiddleware(testJWTSecret),
		cache,
	)
}

func TestSetupRoutes_ApiWithoutTokenRejected(t *testing.T) {
	router := setupFullRouter(new(MockAnalyticsService), new(mocks.MockCacheStore))

	paths := []string{
		"/api/trends/sentiment-over-time?product_id=B001",
		"/api/distributions/sentiment?product_id=B001",
		"/api/products/timeline-comparison?product_ids=B001",
		"/api/date-range?product_id=B001",
		"/api/products",
		"/api/products/B001",
	}

	for _, path := range paths {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "path %s", path)
	}
}

func TestSetupRoutes_ApiWithInvalidTokenRejected(t *testing.T) {
	router := setupFullRouter(new(MockAnalyticsService), new(mocks.MockCacheStore))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/trends/sentiment-over-time?product_id=B001", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSetupRoutes_ApiWithValidToken(t *testing.T) {
	analyticsSvc := new(MockAnalyticsService)
	analyticsSvc.On("SentimentOverTime", mock.Anything, "B001", "", "").
		Return(&entity.TrendResponse{ProductID: "B001"}, nil)

	router := setupFullRouter(analyticsSvc, new(mocks.MockCacheStore))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/trends/sentiment-over-time?product_id=B001", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "user"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	analyticsSvc.AssertExpectations(t)
}

func TestSetupRoutes_CacheRequiresManagerRole(t *testing.T) {
	router := setupFullRouter(new(MockAnalyticsService), new(mocks.MockCacheStore))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/cache/warm/B001", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "user"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSetupRoutes_CacheAllowsManager(t *testing.T) {
	analyticsSvc := new(MockAnalyticsService)
	analyticsSvc.On("WarmProduct", mock.Anything, "B001").
		Return(&entity.WarmResult{ProductID: "B001", Successful: 4}, nil)

	router := setupFullRouter(analyticsSvc, new(mocks.MockCacheStore))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/cache/warm/B001", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "manager"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	analyticsSvc.AssertExpectations(t)
}

func TestSetupRoutes_HealthIsPublic(t *testing.T) {
	cache := new(mocks.MockCacheStore)
	cache.On("Healthy", mock.Anything).Return(true)

	router := setupFullRouter(new(MockAnalyticsService), cache)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
