package service

import "errors"

// Ошибки бизнес-логики для обработки в handlers
var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidDate     = errors.New("invalid date format, expected YYYY-MM-DD")
	ErrNoProducts      = errors.New("no product ids provided")
	ErrTooManyProducts = errors.New("too many products requested for comparison")
	ErrNoReviews       = errors.New("no reviews found for product")
)

// Максимум товаров в одном запросе сравнения
const maxComparisonProducts = 10
