package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsLens/internal/config"
	"NewsLens/internal/domain"
	"NewsLens/internal/ports"
)

// Source implements FeedSource over the configured RSS/Atom feeds.
type Source struct {
	parser *gofeed.Parser
	feeds  []config.FeedConfig
	logger *slog.Logger
}

var _ ports.FeedSource = (*Source)(nil)

// NewSource wires a gofeed parser with config-defined feeds.
func NewSource(client *http.Client, feeds []config.FeedConfig, log *slog.Logger) *Source {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	parser := gofeed.NewParser()
	parser.Client = client
	return &Source{parser: parser, feeds: feeds, logger: log}
}

// FetchRecent returns entries published at or after since. A feed that fails
// to load is logged and skipped; the call only fails when every feed fails.
func (s *Source) FetchRecent(ctx context.Context, since time.Time) ([]domain.FeedEntry, error) {
	var (
		entries []domain.FeedEntry
		errs    []error
	)

	for _, fc := range s.feeds {
		feed, err := s.parser.ParseURLWithContext(fc.URL, ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.warn("feed unavailable", "publisher", fc.Publisher, "url", fc.URL, "error", err)
			errs = append(errs, fmt.Errorf("feed %s: %w", fc.Publisher, err))
			continue
		}

		count := 0
		for _, item := range feed.Items {
			published := itemTime(item)
			if published == nil || published.Before(since) {
				continue
			}
			entries = append(entries, domain.FeedEntry{
				Publisher:   fc.Publisher,
				Extractor:   fc.Extractor,
				Options:     fc.Options,
				Title:       strings.TrimSpace(item.Title),
				URL:         strings.TrimSpace(item.Link),
				Description: item.Description,
				PublishedAt: published.UTC(),
			})
			count++
		}
		s.debug("feed parsed", "publisher", fc.Publisher, "items", len(feed.Items), "recent", count)
	}

	if len(s.feeds) > 0 && len(errs) == len(s.feeds) {
		return nil, errors.Join(errs...)
	}
	return entries, nil
}

func itemTime(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	return item.UpdatedParsed
}

func (s *Source) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Source) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
