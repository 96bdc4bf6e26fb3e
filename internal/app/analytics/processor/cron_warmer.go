package processor

import (
	"context"

	"reviewlens/internal/app/analytics/service"
	"reviewlens/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CronWarmer периодически прогревает кеш графиков, чтобы первые
// утренние запросы дашборда не упирались в холодный Redis.
// Список товаров задается в конфигурации; пустой список означает
// прогрев всего каталога.
type CronWarmer struct {
	cron         *cron.Cron
	analyticsSvc service.AnalyticsServiceInterface
	productSvc   service.ProductServiceInterface
	products     []string
}

func NewCronWarmer(
	analyticsSvc service.AnalyticsServiceInterface,
	productSvc service.ProductServiceInterface,
	products []string,
) *CronWarmer {
	return &CronWarmer{
		cron:         cron.New(),
		analyticsSvc: analyticsSvc,
		productSvc:   productSvc,
		products:     products,
	}
}

// Start регистрирует задачу по расписанию и сразу выполняет первый прогрев
func (w *CronWarmer) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting cache warmer")

	_, err := w.cron.AddFunc(schedule, func() {
		w.warmAll(ctx)
	})
	if err != nil {
		return err
	}

	w.cron.Start()

	// Первый прогрев сразу при старте сервиса
	w.warmAll(ctx)

	return nil
}

// Stop останавливает планировщик, дожидаясь активных задач
func (w *CronWarmer) Stop() {
	logger.Info().Msg("Stopping cache warmer")
	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
	logger.Info().Msg("Cache warmer stopped")
}

// GetEntries возвращает зарегистрированные cron задачи
func (w *CronWarmer) GetEntries() []cron.Entry {
	return w.cron.Entries()
}

// warmAll прогревает кеш по каждому товару из списка
func (w *CronWarmer) warmAll(ctx context.Context) {
	products, err := w.targetProducts(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Cache warm run failed to resolve products")
		return
	}

	successful, failed := 0, 0
	for _, productID := range products {
		result, err := w.analyticsSvc.WarmProduct(ctx, productID)
		if err != nil {
			logger.Warn().Err(err).Str("product_id", productID).Msg("Cache warm failed")
			failed++
			continue
		}
		successful += result.Successful
		failed += result.Failed
	}

	logger.Info().
		Int("products", len(products)).
		Int("successful", successful).
		Int("failed", failed).
		Msg("Cache warm run completed")
}

// targetProducts отдает настроенный список товаров, либо весь каталог
func (w *CronWarmer) targetProducts(ctx context.Context) ([]string, error) {
	if len(w.products) > 0 {
		return w.products, nil
	}

	catalog, err := w.productSvc.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(catalog))
	for _, product := range catalog {
		ids = append(ids, product.ProductID)
	}
	return ids, nil
}
