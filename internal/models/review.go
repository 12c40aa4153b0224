package models

import "time"

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
)

func (s Sentiment) Valid() bool {
	return s == SentimentPositive || s == SentimentNegative
}

// Review is a classified review. ID and CreatedAt are assigned by the store.
type Review struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	Sentiment  Sentiment `json:"sentiment" gorm:"type:varchar(16);not null;check:chk_reviews_sentiment,sentiment IN ('positive','negative');index:idx_reviews_ranking,priority:1"`
	Confidence float64   `json:"confidence" gorm:"not null;index:idx_reviews_ranking,priority:2,sort:desc"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Review) TableName() string {
	return "reviews"
}

type AnalyzeRequest struct {
	Content string `json:"content" binding:"required"`
}

type StatsResponse struct {
	TotalCount        int64   `json:"total_count"`
	PositiveCount     int64   `json:"positive_count"`
	NegativeCount     int64   `json:"negative_count"`
	PositiveRatio     float64 `json:"positive_ratio"`
	AverageConfidence float64 `json:"average_confidence"`
}

type RankingResponse struct {
	BestReviews  []Review `json:"best_reviews"`
	WorstReviews []Review `json:"worst_reviews"`
}
