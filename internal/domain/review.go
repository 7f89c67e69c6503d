package domain

import (
	"strings"
	"time"
)

// Sentiment is the closed set of labels a review can carry.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// FallbackConfidence is stored whenever a review could not be classified.
const FallbackConfidence = "0.00"

// ValidSentiments returns the labels in reporting order.
func ValidSentiments() []Sentiment {
	return []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral}
}

// IsValid reports whether s is one of the known labels.
func (s Sentiment) IsValid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// ParseSentiment normalises a label and maps the Portuguese aliases
// positiva, negativa and neutra onto the canonical labels.
func ParseSentiment(raw string) (Sentiment, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "positive", "positiva":
		return SentimentPositive, true
	case "negative", "negativa":
		return SentimentNegative, true
	case "neutral", "neutra":
		return SentimentNeutral, true
	}
	return "", false
}

// Description returns a human readable summary of the label.
func (s Sentiment) Description() string {
	switch s {
	case SentimentPositive:
		return "Positive review - satisfied customer"
	case SentimentNegative:
		return "Negative review - dissatisfied customer"
	case SentimentNeutral:
		return "Neutral review - neutral or mixed sentiment"
	}
	return "Unidentified sentiment"
}

// MaxCustomerNameLength bounds Review.CustomerName.
const MaxCustomerNameLength = 255

// Review is a classified customer review. Reviews are never updated once
// stored.
type Review struct {
	ID              int64     `json:"id"`
	CustomerName    string    `json:"customer_name"`
	ReviewText      string    `json:"review_text"`
	Sentiment       Sentiment `json:"sentiment"`
	ConfidenceScore *string   `json:"confidence_score"`
	CreatedAt       time.Time `json:"created_at"`
}

// Classification is the transient output of the classifier.
type Classification struct {
	Sentiment  Sentiment
	Confidence string
}

// FallbackClassification is returned when no usable classification exists.
func FallbackClassification() Classification {
	return Classification{Sentiment: SentimentNeutral, Confidence: FallbackConfidence}
}

// Report holds sentiment counts for an inclusive date range.
type Report struct {
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	TotalReviews  int64  `json:"total_reviews"`
	PositiveCount int64  `json:"positive_count"`
	NegativeCount int64  `json:"negative_count"`
	NeutralCount  int64  `json:"neutral_count"`
}

// SentimentCounts is the result of a grouped count over stored reviews.
type SentimentCounts struct {
	Total    int64
	Positive int64
	Negative int64
	Neutral  int64
}

// Stats summarises the whole review table.
type Stats struct {
	Counts SentimentCounts
	First  *time.Time
	Last   *time.Time
}

// Percent returns n as a percentage of the total, or zero for an empty table.
func (c SentimentCounts) Percent(n int64) float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(c.Total)
}

// Of returns the count for a single label.
func (c SentimentCounts) Of(s Sentiment) int64 {
	switch s {
	case SentimentPositive:
		return c.Positive
	case SentimentNegative:
		return c.Negative
	case SentimentNeutral:
		return c.Neutral
	}
	return 0
}
