package aggregate

import (
	"errors"
	"sort"
)

// Ошибки контракта адаптера, обрабатываются в handlers как 400
var (
	ErrInvalidMetric = errors.New("unknown chart metric")
)

// Metric - какой процент тональности откладывается по оси значений
type Metric string

const (
	MetricPositive Metric = "positive"
	MetricNeutral  Metric = "neutral"
	MetricNegative Metric = "negative"
)

// ParseMetric валидирует строковое значение метрики из запроса
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricPositive, MetricNeutral, MetricNegative:
		return Metric(s), nil
	default:
		return "", ErrInvalidMetric
	}
}

// ProductSeries - помесячная серия одного товара с подписью для легенды
type ProductSeries struct {
	Label   string        `json:"label"`
	Buckets []MonthBucket `json:"buckets"`
}

// ChartSeries - одна линия графика. Значение nil означает отсутствие
// данных за месяц (разрыв линии), а не нулевой процент.
type ChartSeries struct {
	Label  string     `json:"label"`
	Values []*float64 `json:"values"`
}

// ChartDataset - обобщенный контракт данных для библиотеки графиков
type ChartDataset struct {
	Categories []string      `json:"categories"`
	Series     []ChartSeries `json:"series"`
}

// ToTimeSeriesDataset собирает из серий нескольких товаров общий датасет:
// ось категорий - объединение всех месячных ключей по возрастанию, порядок
// линий повторяет порядок входных серий. Товар без данных за месяц получает
// null в соответствующей позиции.
func ToTimeSeriesDataset(series []ProductSeries, metric Metric) (ChartDataset, error) {
	if _, err := ParseMetric(string(metric)); err != nil {
		return ChartDataset{}, err
	}

	monthSet := make(map[string]struct{})
	for _, ps := range series {
		for _, b := range ps.Buckets {
			monthSet[b.Month] = struct{}{}
		}
	}

	categories := make([]string, 0, len(monthSet))
	for m := range monthSet {
		categories = append(categories, m)
	}
	sort.Strings(categories)

	dataset := ChartDataset{
		Categories: categories,
		Series:     make([]ChartSeries, 0, len(series)),
	}

	for _, ps := range series {
		byMonth := make(map[string]MonthBucket, len(ps.Buckets))
		for _, b := range ps.Buckets {
			byMonth[b.Month] = b
		}

		values := make([]*float64, len(categories))
		for i, month := range categories {
			if b, ok := byMonth[month]; ok {
				v := metricValue(b, metric)
				values[i] = &v
			}
		}

		dataset.Series = append(dataset.Series, ChartSeries{
			Label:  ps.Label,
			Values: values,
		})
	}

	return dataset, nil
}

func metricValue(b MonthBucket, metric Metric) float64 {
	switch metric {
	case MetricPositive:
		return b.PositivePercent
	case MetricNeutral:
		return b.NeutralPercent
	default:
		return b.NegativePercent
	}
}
