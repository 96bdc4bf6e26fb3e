package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"reviewlens/internal/app/analytics/entity"
	"reviewlens/internal/app/analytics/repository"
	"reviewlens/internal/app/analytics/util"
	"reviewlens/pkg/logger"
	"reviewlens/pkg/metrics"
)

// ReviewService принимает новые отзывы.
// Сохраняет отзыв в MongoDB и объявляет о нем событием REVIEW_CREATED в
// Kafka: consumer этого же сервиса сбрасывает по событию кеш графиков.
type ReviewService struct {
	reviewRepo    repository.ReviewRepository
	kafkaProducer util.MessagePublisher
}

// NewReviewService создает сервис приема отзывов с внедрением зависимостей
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	kafkaProducer util.MessagePublisher,
) *ReviewService {
	return &ReviewService{
		reviewRepo:    reviewRepo,
		kafkaProducer: kafkaProducer,
	}
}

// CreateReview сохраняет отзыв и отправляет событие REVIEW_CREATED.
// Метка времени по умолчанию - момент приема.
func (s *ReviewService) CreateReview(ctx context.Context, userID string, req *entity.CreateReviewRequest) (*entity.Review, error) {
	timestamp := req.Timestamp
	if timestamp == 0 {
		timestamp = time.Now().Unix()
	}

	review := &entity.Review{
		ProductID: req.ProductID,
		UserID:    userID,
		Rating:    req.Rating,
		Timestamp: timestamp,
		Text:      req.Text,
	}

	if err := s.reviewRepo.Insert(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	metrics.ReviewsIngested.Inc()
	metrics.ReviewsRating.Observe(review.Rating)

	event := entity.ReviewEvent{
		EventType: entity.EventReviewCreated,
		ReviewID:  review.ID.Hex(),
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		Timestamp: time.Now(),
	}

	if err := s.publishReviewEvent(ctx, event); err != nil {
		// Отзыв уже сохранен, проблемы с Kafka не критичны
		logger.Warn().Err(err).Str("review_id", event.ReviewID).Msg("Failed to publish review created event")
	}

	return review, nil
}

// publishReviewEvent отправляет событие об отзыве в Kafka.
// Ключ сообщения - ProductID: события одного товара сохраняют порядок.
func (s *ReviewService) publishReviewEvent(ctx context.Context, event entity.ReviewEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal review event: %w", err)
	}

	if err := s.kafkaProducer.PublishMessage(ctx, event.ProductID, eventData); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}
