// Package aggregate содержит чистую логику агрегации отзывов:
// классификация тональности, помесячные корзины и подготовка данных
// для графиков. Никакого I/O и разделяемого состояния - только
// детерминированные преобразования входного среза.
package aggregate

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"time"
)

// Порог эвристики единиц времени: значения больше 1e12 считаем миллисекундами.
// Эвристика не отличает секунды далекого будущего от недавних миллисекунд,
// исходные данные не декларируют единицы - поведение сохранено как есть.
const millisThreshold = 1_000_000_000_000

// RawReview - сырой отзыв в том виде, в котором он приходит из хранилища
// или из внешнего API. Оценка и метка времени могут быть числом или строкой,
// валидация выполняется на каждой записи при агрегации.
type RawReview struct {
	Rating    any    `json:"rating" bson:"rating"`
	Timestamp any    `json:"timestamp" bson:"timestamp"`
	Text      string `json:"text,omitempty" bson:"text,omitempty"`
}

// MonthBucket - агрегат по одному календарному месяцу (ключ YYYY-MM)
type MonthBucket struct {
	Month           string  `json:"month"`
	PositiveCount   int     `json:"positiveCount"`
	NeutralCount    int     `json:"neutralCount"`
	NegativeCount   int     `json:"negativeCount"`
	Total           int     `json:"total"`
	PositivePercent float64 `json:"positivePercent"`
	NeutralPercent  float64 `json:"neutralPercent"`
	NegativePercent float64 `json:"negativePercent"`
}

// Summary - сводная статистика по всем корзинам серии
type Summary struct {
	TotalReviews int     `json:"totalReviews"`
	AvgPositive  float64 `json:"avgPositive"`
	AvgNeutral   float64 `json:"avgNeutral"`
	AvgNegative  float64 `json:"avgNegative"`
}

// Result - результат помесячной агрегации одного товара
type Result struct {
	Series  []MonthBucket `json:"series"`
	Summary Summary       `json:"summary"`
}

// ByMonth сворачивает список сырых отзывов в упорядоченную по месяцам серию
// корзин и сводку. Записи без метки времени, с нечисловой оценкой или
// оценкой вне диапазона [1, 5] пропускаются, ошибок при этом не возникает.
// Пустой вход дает пустую серию и нулевую сводку.
func ByMonth(reviews []RawReview) Result {
	buckets := make(map[string]*MonthBucket)

	for _, r := range reviews {
		rating, ts, ok := validate(r)
		if !ok {
			continue
		}

		key := ts.Format("2006-01")
		b, exists := buckets[key]
		if !exists {
			b = &MonthBucket{Month: key}
			buckets[key] = b
		}

		switch Classify(rating) {
		case SentimentPositive:
			b.PositiveCount++
		case SentimentNeutral:
			b.NeutralCount++
		case SentimentNegative:
			b.NegativeCount++
		}
		b.Total++
	}

	series := make([]MonthBucket, 0, len(buckets))
	for _, b := range buckets {
		b.fillPercents()
		series = append(series, *b)
	}
	// Лексикографическая сортировка ключей YYYY-MM совпадает с хронологической
	sort.Slice(series, func(i, j int) bool { return series[i].Month < series[j].Month })

	return Result{Series: series, Summary: summarize(series)}
}

// FilterByRange оставляет только отзывы, попадающие в окно [from, to]
// по нормализованному времени (Unix-секунды). Нулевая граница означает
// отсутствие ограничения. Невалидные записи отбрасываются.
func FilterByRange(reviews []RawReview, from, to int64) []RawReview {
	filtered := make([]RawReview, 0, len(reviews))
	for _, r := range reviews {
		sec, ok := normalizedSeconds(r.Timestamp)
		if !ok {
			continue
		}
		if from != 0 && sec < from {
			continue
		}
		if to != 0 && sec > to {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

// DateRange - границы наблюдаемого периода по валидным отзывам
type DateRange struct {
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
}

// ReviewDateRange возвращает самую раннюю и самую позднюю календарные даты
// среди валидных отзывов. Второе значение false, если валидных записей нет.
func ReviewDateRange(reviews []RawReview) (DateRange, bool) {
	var minSec, maxSec int64
	found := false

	for _, r := range reviews {
		if _, _, ok := validate(r); !ok {
			continue
		}
		sec, _ := normalizedSeconds(r.Timestamp)
		if !found || sec < minSec {
			minSec = sec
		}
		if !found || sec > maxSec {
			maxSec = sec
		}
		found = true
	}

	if !found {
		return DateRange{}, false
	}
	return DateRange{
		Earliest: time.Unix(minSec, 0).Format("2006-01-02"),
		Latest:   time.Unix(maxSec, 0).Format("2006-01-02"),
	}, true
}

func (b *MonthBucket) fillPercents() {
	if b.Total == 0 {
		// Деление на ноль недопустимо: пустая корзина дает нулевые проценты
		return
	}
	total := float64(b.Total)
	b.PositivePercent = round1(float64(b.PositiveCount) / total * 100)
	b.NeutralPercent = round1(float64(b.NeutralCount) / total * 100)
	b.NegativePercent = round1(float64(b.NegativeCount) / total * 100)
}

// summarize считает сводку: суммарное число отзывов и невзвешенное среднее
// процентов по корзинам. Корзины без отзывов в среднее не входят.
func summarize(series []MonthBucket) Summary {
	var s Summary
	var sumPos, sumNeu, sumNeg float64
	nonEmpty := 0

	for _, b := range series {
		s.TotalReviews += b.Total
		if b.Total == 0 {
			continue
		}
		sumPos += b.PositivePercent
		sumNeu += b.NeutralPercent
		sumNeg += b.NegativePercent
		nonEmpty++
	}

	if nonEmpty > 0 {
		n := float64(nonEmpty)
		s.AvgPositive = round1(sumPos / n)
		s.AvgNeutral = round1(sumNeu / n)
		s.AvgNegative = round1(sumNeg / n)
	}
	return s
}

// validate проверяет одну запись: метка времени обязана приводиться к числу,
// оценка - к конечному float64 в диапазоне [1, 5]. Возвращает готовые к
// агрегации значения либо ok=false.
func validate(r RawReview) (rating float64, ts time.Time, ok bool) {
	sec, tsOK := normalizedSeconds(r.Timestamp)
	if !tsOK {
		return 0, time.Time{}, false
	}

	rating, ratingOK := toFloat(r.Rating)
	if !ratingOK || math.IsNaN(rating) || math.IsInf(rating, 0) {
		return 0, time.Time{}, false
	}
	if rating < 1.0 || rating > 5.0 {
		return 0, time.Time{}, false
	}

	return rating, time.Unix(sec, 0), true
}

// normalizedSeconds приводит метку времени к Unix-секундам,
// применяя эвристику миллисекунд
func normalizedSeconds(v any) (int64, bool) {
	num, ok := toFloat(v)
	if !ok || math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, false
	}
	if num > millisThreshold {
		num /= 1000
	}
	return int64(num), true
}

// toFloat приводит значение произвольного JSON/BSON типа к float64
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
