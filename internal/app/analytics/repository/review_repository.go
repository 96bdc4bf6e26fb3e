package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"reviewlens/internal/app/analytics/aggregate"
	"reviewlens/internal/app/analytics/entity"
	"reviewlens/pkg/logger"
)

type reviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository создает репозиторий отзывов.
// Автоматически создает индекс по product_id - все аналитические выборки
// идут через него.
func NewReviewRepository(db *mongo.Database) ReviewRepository {
	collection := db.Collection("reviews")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "product_id", Value: 1},
		},
		Options: options.Index().SetName("product_id_idx"),
	}

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		// Индекс может уже существовать, работу не прерываем
		logger.Warn().Err(err).Msg("Failed to create index on product_id")
	}

	return &reviewRepository{collection: collection}
}

// Insert сохраняет новый отзыв
func (r *reviewRepository) Insert(ctx context.Context, review *entity.Review) error {
	review.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		review.ID = oid
	}

	return nil
}

// GetByProduct выбирает сырые отзывы товара для агрегации.
// Проекция оставляет только поля, нужные агрегатору; limit ограничивает
// объем одной выборки (0 - без ограничения).
func (r *reviewRepository) GetByProduct(ctx context.Context, productID string, limit int64) ([]aggregate.RawReview, error) {
	filter := bson.M{"product_id": productID}

	opts := options.Find().
		SetProjection(bson.M{"rating": 1, "timestamp": 1, "text": 1, "_id": 0})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []aggregate.RawReview
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	return reviews, nil
}

// CountByProduct возвращает общее число отзывов товара
func (r *reviewRepository) CountByProduct(ctx context.Context, productID string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"product_id": productID})
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}
