package model

import (
	"time"
)

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

type Review struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	CandidateID string    `json:"candidate_id"`
	Text        string    `json:"text"`
	Sentiment   string    `json:"sentiment"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReviewStats aggregates reviews by sentiment label.
type ReviewStats struct {
	Total    int `json:"total"`
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}
