package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type YoutubeVideoID string

type YoutubeChannelID string

func (id YoutubeChannelID) URL() string {
	if id == "" {
		return ""
	}
	return fmt.Sprintf("https://www.youtube.com/channel/%s", id)
}

func (id YoutubeVideoID) URL() string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", id)
}

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// Enrichment is what the language model made of a transcript. A plain
// summary only fills Summary.
type Enrichment struct {
	Summary    string    `json:"summary"`
	Sentiment  Sentiment `json:"sentiment,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	KeyTopics  []string  `json:"key_topics,omitempty"`
}

// Video is a stored summary. There is at most one per YoutubeID and it is
// never changed after it was written.
type Video struct {
	ID          uuid.UUID
	YoutubeID   YoutubeVideoID
	ChannelURL  string
	Title       string
	PublishedAt time.Time
	Enrichment  Enrichment
	CreatedAt   time.Time
}

// Candidate is a video found by discovery that has not been processed yet.
type Candidate struct {
	YoutubeID        YoutubeVideoID
	YoutubeChannelID YoutubeChannelID
	Title            string
	PublishedAt      time.Time
}
