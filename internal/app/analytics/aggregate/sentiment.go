package aggregate

// Sentiment - тональность отзыва, выводится детерминированно из оценки
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Границы классификации: >= 4.0 positive, [3.0, 4.0) neutral, < 3.0 negative
const (
	positiveThreshold = 4.0
	neutralThreshold  = 3.0
)

// Classify переводит числовую оценку в тональность
func Classify(rating float64) Sentiment {
	switch {
	case rating >= positiveThreshold:
		return SentimentPositive
	case rating >= neutralThreshold:
		return SentimentNeutral
	default:
		return SentimentNegative
	}
}
