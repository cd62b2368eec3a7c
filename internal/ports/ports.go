package ports

import (
	"context"
	"time"

	"NewsLens/internal/domain"
)

// RecordStore lists unscored articles and patches results back.
type RecordStore interface {
	ListUnprocessed(ctx context.Context) ([]domain.Article, error)
	UpdateFields(ctx context.Context, id string, fields domain.Fields) error
}

// ArticleWriter stores freshly ingested articles.
type ArticleWriter interface {
	URLExists(ctx context.Context, url string) (bool, error)
	Insert(ctx context.Context, article domain.Article) error
}

// Classifier asks a language model for the framing of an article.
type Classifier interface {
	Classify(ctx context.Context, headline, text string) (domain.ExternalFraming, error)
}

// LanguageDetector reports the ISO 639-1 code of a text's language.
type LanguageDetector interface {
	Detect(text string) (string, bool)
}

// FeedSource lists recent entries from the configured publisher feeds.
type FeedSource interface {
	FetchRecent(ctx context.Context, since time.Time) ([]domain.FeedEntry, error)
}

// Extractor downloads and extracts the article body for a feed entry.
type Extractor interface {
	Extract(ctx context.Context, entry domain.FeedEntry) (domain.Extraction, error)
}

// Notifier streams run digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
