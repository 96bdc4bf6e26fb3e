package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"reviewlens/internal/app/analytics/entity"
	"reviewlens/internal/app/analytics/service"
	"reviewlens/pkg/logger"
	"reviewlens/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

const serviceName = "reviewlens"

// KafkaConsumer обрабатывает события отзывов из Kafka.
// На REVIEW_CREATED сбрасывает закешированные графики товара, чтобы
// дашборд не отдавал устаревшие агрегаты до истечения TTL.
type KafkaConsumer struct {
	reader       *kafka.Reader
	analyticsSvc service.AnalyticsServiceInterface
	topic        string
	groupID      string
	stopChan     chan struct{}
	doneChan     chan struct{}
}

// NewKafkaConsumer создает новый Kafka consumer
func NewKafkaConsumer(
	brokers []string,
	topic string,
	groupID string,
	minBytes int,
	maxBytes int,
	analyticsSvc service.AnalyticsServiceInterface,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       minBytes,
		MaxBytes:       maxBytes,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 1 * time.Second,
	})

	return &KafkaConsumer{
		reader:       reader,
		analyticsSvc: analyticsSvc,
		topic:        topic,
		groupID:      groupID,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start запускает consumer в отдельной горутине
func (c *KafkaConsumer) Start(ctx context.Context) {
	logger.Info().Str("topic", c.topic).Str("group", c.groupID).Msg("Starting Kafka consumer")
	go c.consume(ctx)
}

// Stop останавливает consumer
func (c *KafkaConsumer) Stop() {
	logger.Info().Msg("Stopping Kafka consumer")
	close(c.stopChan)
	<-c.doneChan
	c.reader.Close()
	logger.Info().Msg("Kafka consumer stopped")
}

// consume читает и обрабатывает сообщения из Kafka
func (c *KafkaConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	for {
		select {
		case <-c.stopChan:
			return
		default:
			readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			message, err := c.reader.FetchMessage(readCtx)
			cancel()

			if err != nil {
				if ctx.Err() != nil {
					return
				}

				logger.Warn().Err(err).Msg("Error fetching message")
				time.Sleep(time.Second)
				continue
			}

			if err := c.processMessage(ctx, message); err != nil {
				logger.Error().Err(err).Int64("offset", message.Offset).Msg("Error processing message")
				metrics.RecordKafkaError(serviceName, c.topic, "consume")
				// Offset не коммитим - сообщение будет обработано повторно
			} else {
				if err := c.reader.CommitMessages(ctx, message); err != nil {
					logger.Warn().Err(err).Msg("Error committing message")
				}
			}
		}
	}
}

// processMessage обрабатывает одно сообщение из Kafka
func (c *KafkaConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	start := time.Now()

	var event entity.ReviewEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal review event: %w", err)
	}

	logger.Info().
		Str("event_type", event.EventType).
		Str("product_id", event.ProductID).
		Int64("offset", message.Offset).
		Int("partition", message.Partition).
		Msg("Received review event")

	// Интересны только события о новых отзывах
	if event.EventType != entity.EventReviewCreated {
		return nil
	}

	if event.ProductID == "" {
		return fmt.Errorf("review event has empty product id")
	}

	deleted, err := c.analyticsSvc.InvalidateProduct(ctx, event.ProductID)
	if err != nil {
		return fmt.Errorf("failed to invalidate product cache: %w", err)
	}

	logger.Info().
		Str("product_id", event.ProductID).
		Int64("keys_deleted", deleted).
		Msg("Chart cache invalidated after new review")

	metrics.RecordKafkaMessageConsumed(serviceName, c.topic, c.groupID, time.Since(start))
	return nil
}

// GetStats возвращает статистику consumer
func (c *KafkaConsumer) GetStats() kafka.ReaderStats {
	return c.reader.Stats()
}
