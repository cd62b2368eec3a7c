package domain

import "time"

// Article is a news record as held by the record store.
type Article struct {
	ID          string
	Headline    string
	Content     string
	Publisher   string
	URL         string
	Author      string
	PublishedAt time.Time
	Processed   bool
}

// Script classifies the writing system of a text for the scoring gate.
type Script string

const (
	ScriptLatin      Script = "latin"
	ScriptDevanagari Script = "devanagari"
)

// PoliticalLeaning is the three-way leaning label.
type PoliticalLeaning string

const (
	LeaningLeft    PoliticalLeaning = "Left"
	LeaningNeutral PoliticalLeaning = "Neutral"
	LeaningRight   PoliticalLeaning = "Right"
)

// SentimentLabel is the three-way sentiment label.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNegative SentimentLabel = "Negative"
	SentimentNeutral  SentimentLabel = "Neutral"
)

// FeedEntry is a candidate article discovered in a publisher feed.
type FeedEntry struct {
	Publisher   string
	Extractor   string
	Options     map[string]string
	Title       string
	URL         string
	Description string
	PublishedAt time.Time
}

// Extraction is the article body pulled from a publisher page.
type Extraction struct {
	Text    string
	Authors []string
}
