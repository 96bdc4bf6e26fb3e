package aggregate

import (
	"errors"
	"sort"
	"strconv"
	"time"
)

var (
	ErrInvalidPeriod = errors.New("unknown distribution period")
)

// Period - разрез распределения тональности для столбчатых диаграмм
type Period string

const (
	PeriodYear      Period = "year"
	PeriodMonth     Period = "month"
	PeriodDayOfWeek Period = "day_of_week"
)

// ParsePeriod валидирует строковое значение периода из запроса
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodYear, PeriodMonth, PeriodDayOfWeek:
		return Period(s), nil
	default:
		return "", ErrInvalidPeriod
	}
}

// PeriodBucket - агрегат по одной категории периода (год, месяц года
// или день недели)
type PeriodBucket struct {
	Label           string  `json:"label"`
	PositiveCount   int     `json:"positiveCount"`
	NeutralCount    int     `json:"neutralCount"`
	NegativeCount   int     `json:"negativeCount"`
	Total           int     `json:"total"`
	PositivePercent float64 `json:"positivePercent"`
	NeutralPercent  float64 `json:"neutralPercent"`
	NegativePercent float64 `json:"negativePercent"`
}

// Distribution сворачивает отзывы в распределение тональности по заданному
// разрезу. Для года категории идут по возрастанию наблюдавшихся лет, для
// месяца и дня недели - в календарном порядке, пустые категории опущены.
// Политика пропуска невалидных записей та же, что и в ByMonth.
func Distribution(reviews []RawReview, period Period) ([]PeriodBucket, error) {
	if _, err := ParsePeriod(string(period)); err != nil {
		return nil, err
	}

	type cell struct {
		bucket PeriodBucket
		order  int
	}
	cells := make(map[string]*cell)

	for _, r := range reviews {
		rating, ts, ok := validate(r)
		if !ok {
			continue
		}

		label, order := periodKey(ts, period)
		c, exists := cells[label]
		if !exists {
			c = &cell{bucket: PeriodBucket{Label: label}, order: order}
			cells[label] = c
		}

		switch Classify(rating) {
		case SentimentPositive:
			c.bucket.PositiveCount++
		case SentimentNeutral:
			c.bucket.NeutralCount++
		case SentimentNegative:
			c.bucket.NegativeCount++
		}
		c.bucket.Total++
	}

	ordered := make([]*cell, 0, len(cells))
	for _, c := range cells {
		ordered = append(ordered, c)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].order < ordered[j].order })

	buckets := make([]PeriodBucket, 0, len(ordered))
	for _, c := range ordered {
		b := c.bucket
		if b.Total > 0 {
			total := float64(b.Total)
			b.PositivePercent = round1(float64(b.PositiveCount) / total * 100)
			b.NeutralPercent = round1(float64(b.NeutralCount) / total * 100)
			b.NegativePercent = round1(float64(b.NegativeCount) / total * 100)
		}
		buckets = append(buckets, b)
	}

	return buckets, nil
}

// periodKey возвращает подпись категории и числовой порядок сортировки
func periodKey(ts time.Time, period Period) (string, int) {
	switch period {
	case PeriodYear:
		return strconv.Itoa(ts.Year()), ts.Year()
	case PeriodMonth:
		return ts.Month().String(), int(ts.Month())
	default:
		return ts.Weekday().String(), int(ts.Weekday())
	}
}
