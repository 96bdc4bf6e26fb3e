package entity

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review - проверенный отзыв, сохраняемый в MongoDB после валидации
// на границе сервиса
type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProductID string             `json:"product_id" bson:"product_id"` // Внешний идентификатор товара из каталога
	UserID    string             `json:"user_id" bson:"user_id"`       // UUID пользователя из JWT claims
	Rating    float64            `json:"rating" bson:"rating"`         // Оценка от 1.0 до 5.0
	Timestamp int64              `json:"timestamp" bson:"timestamp"`   // Unix-секунды, момент отзыва
	Text      string             `json:"text" bson:"text"`             // Текст отзыва
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// ReviewEvent - событие REVIEW_CREATED для Kafka
type ReviewEvent struct {
	EventType string    `json:"event_type"`
	ReviewID  string    `json:"review_id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    float64   `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}

const EventReviewCreated = "REVIEW_CREATED"

// Product - товар из каталога в PostgreSQL
type Product struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ProductID string    `json:"product_id" gorm:"uniqueIndex;not null"` // Внешний идентификатор (ASIN)
	Title     string    `json:"title" gorm:"not null"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName задает имя таблицы для GORM
func (Product) TableName() string {
	return "products"
}
