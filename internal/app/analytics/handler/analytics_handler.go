package handler

import (
	"errors"
	"net/http"
	"strings"

	"reviewlens/internal/app/analytics/aggregate"
	"reviewlens/internal/app/analytics/service"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler отдает графики тональности для дашборда
type AnalyticsHandler struct {
	analyticsService service.AnalyticsServiceInterface
}

func NewAnalyticsHandler(analyticsService service.AnalyticsServiceInterface) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// GetSentimentOverTime возвращает помесячную динамику тональности товара
func (h *AnalyticsHandler) GetSentimentOverTime(c *gin.Context) {
	productID := c.Query("product_id")
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
		return
	}

	response, err := h.analyticsService.SentimentOverTime(
		c.Request.Context(),
		productID,
		c.Query("start_date"),
		c.Query("end_date"),
	)
	if err != nil {
		h.renderError(c, err, "Failed to compute sentiment trend")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetDistribution возвращает распределение тональности по годам,
// месяцам года или дням недели
func (h *AnalyticsHandler) GetDistribution(c *gin.Context) {
	productID := c.Query("product_id")
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
		return
	}

	period := c.DefaultQuery("period", string(aggregate.PeriodMonth))

	response, err := h.analyticsService.Distribution(
		c.Request.Context(),
		productID,
		period,
		c.Query("start_date"),
		c.Query("end_date"),
	)
	if err != nil {
		h.renderError(c, err, "Failed to compute sentiment distribution")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetTimelineComparison строит сравнение нескольких товаров по одной метрике.
// product_ids - идентификаторы через запятую, не более десяти.
func (h *AnalyticsHandler) GetTimelineComparison(c *gin.Context) {
	rawIDs := c.Query("product_ids")
	if rawIDs == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_ids is required"})
		return
	}

	productIDs := make([]string, 0)
	for _, id := range strings.Split(rawIDs, ",") {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			productIDs = append(productIDs, trimmed)
		}
	}

	metric := c.DefaultQuery("metric", string(aggregate.MetricPositive))

	response, err := h.analyticsService.TimelineComparison(
		c.Request.Context(),
		productIDs,
		metric,
		c.Query("start_date"),
		c.Query("end_date"),
	)
	if err != nil {
		h.renderError(c, err, "Failed to compare products")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetDateRange возвращает наблюдаемый период отзывов товара
func (h *AnalyticsHandler) GetDateRange(c *gin.Context) {
	productID := c.Query("product_id")
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
		return
	}

	response, err := h.analyticsService.DateRange(c.Request.Context(), productID)
	if err != nil {
		h.renderError(c, err, "Failed to get review date range")
		return
	}

	c.JSON(http.StatusOK, response)
}

// WarmCache прогревает кеш по стандартному набору графиков товара
func (h *AnalyticsHandler) WarmCache(c *gin.Context) {
	productID := c.Param("product_id")
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product ID is required"})
		return
	}

	result, err := h.analyticsService.WarmProduct(c.Request.Context(), productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to warm cache"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// InvalidateCache сбрасывает закешированные графики товара
func (h *AnalyticsHandler) InvalidateCache(c *gin.Context) {
	productID := c.Param("product_id")
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product ID is required"})
		return
	}

	deleted, err := h.analyticsService.InvalidateProduct(c.Request.Context(), productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invalidate cache"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id":   productID,
		"keys_deleted": deleted,
	})
}

// GetCacheStats возвращает состояние кеша
func (h *AnalyticsHandler) GetCacheStats(c *gin.Context) {
	stats, err := h.analyticsService.CacheStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get cache stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// renderError переводит ошибки бизнес-логики в HTTP статусы
func (h *AnalyticsHandler) renderError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrNoProducts),
		errors.Is(err, service.ErrTooManyProducts),
		errors.Is(err, aggregate.ErrInvalidMetric),
		errors.Is(err, aggregate.ErrInvalidPeriod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoReviews),
		errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
