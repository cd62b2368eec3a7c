package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"NewsLens/internal/domain"
	"NewsLens/internal/metrics"
	"NewsLens/internal/ports"
)

// Ingest results recorded per feed entry.
const (
	IngestInserted  = "inserted"
	IngestDuplicate = "duplicate"
	IngestFailed    = "failed"
)

// IngestDeps wires the adapters ingestion needs.
type IngestDeps struct {
	Source    ports.FeedSource
	Extractor ports.Extractor
	Writer    ports.ArticleWriter
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	Now       func() time.Time

	Window  time.Duration
	PerFeed int
}

// IngestReport counts what one ingest run did.
type IngestReport struct {
	Inserted   int
	Duplicates int
	Failed     int
}

// Ingestor pulls recent feed entries into the record store.
type Ingestor struct {
	source    ports.FeedSource
	extractor ports.Extractor
	writer    ports.ArticleWriter
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
	window    time.Duration
	perFeed   int
}

// NewIngestor constructs the ingestion use case.
func NewIngestor(deps IngestDeps) *Ingestor {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	in := &Ingestor{
		source:    deps.Source,
		extractor: deps.Extractor,
		writer:    deps.Writer,
		metrics:   deps.Metrics,
		logger:    logger.With("component", "ingest"),
		now:       deps.Now,
		window:    deps.Window,
		perFeed:   deps.PerFeed,
	}
	if in.now == nil {
		in.now = time.Now
	}
	if in.window <= 0 {
		in.window = time.Hour
	}
	if in.perFeed <= 0 {
		in.perFeed = 3
	}
	return in
}

// Run fetches entries published within the window, keeps the newest few per
// publisher and stores those whose URL is not already present.
func (in *Ingestor) Run(ctx context.Context) (IngestReport, error) {
	var report IngestReport
	if in.source == nil || in.extractor == nil || in.writer == nil {
		return report, errors.New("ingest: source, extractor and writer are required")
	}

	since := in.now().Add(-in.window)
	entries, err := in.source.FetchRecent(ctx, since)
	if err != nil {
		return report, fmt.Errorf("fetch feeds: %w", err)
	}

	selected := newestPerPublisher(entries, in.perFeed)
	in.logger.Info("ingest started", "entries", len(entries), "selected", len(selected), "since", since.Format(time.RFC3339))

	for _, entry := range selected {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result, err := in.ingest(ctx, entry)
		in.metrics.RecordIngest(entry.Publisher, result)
		switch result {
		case IngestInserted:
			report.Inserted++
		case IngestDuplicate:
			report.Duplicates++
		default:
			report.Failed++
			in.logger.Warn("entry not ingested", "publisher", entry.Publisher, "url", entry.URL, "error", err)
		}
	}

	in.metrics.MarkRun(in.now())
	in.logger.Info("ingest finished", "inserted", report.Inserted, "duplicates", report.Duplicates, "failed", report.Failed)
	return report, nil
}

// RunOnce adapts Run to the Runner interface.
func (in *Ingestor) RunOnce(ctx context.Context) error {
	_, err := in.Run(ctx)
	return err
}

func (in *Ingestor) ingest(ctx context.Context, entry domain.FeedEntry) (string, error) {
	if entry.URL == "" {
		return IngestFailed, errors.New("entry has no link")
	}

	exists, err := in.writer.URLExists(ctx, entry.URL)
	if err != nil {
		return IngestFailed, fmt.Errorf("lookup url: %w", err)
	}
	if exists {
		in.logger.Debug("duplicate skipped", "url", entry.URL)
		return IngestDuplicate, nil
	}

	extracted, err := in.extractor.Extract(ctx, entry)
	if err != nil {
		return IngestFailed, fmt.Errorf("extract: %w", err)
	}

	article := domain.Article{
		Headline:    entry.Title,
		Content:     extracted.Text,
		Publisher:   entry.Publisher,
		URL:         entry.URL,
		Author:      strings.Join(extracted.Authors, ", "),
		PublishedAt: entry.PublishedAt,
	}
	if err := in.writer.Insert(ctx, article); err != nil {
		return IngestFailed, fmt.Errorf("insert: %w", err)
	}

	in.logger.Info("article stored", "publisher", entry.Publisher, "headline", entry.Title)
	return IngestInserted, nil
}

// newestPerPublisher keeps the n most recent entries of each publisher,
// preserving the order publishers first appear in.
func newestPerPublisher(entries []domain.FeedEntry, n int) []domain.FeedEntry {
	var order []string
	groups := map[string][]domain.FeedEntry{}
	for _, e := range entries {
		if _, ok := groups[e.Publisher]; !ok {
			order = append(order, e.Publisher)
		}
		groups[e.Publisher] = append(groups[e.Publisher], e)
	}

	var out []domain.FeedEntry
	for _, publisher := range order {
		group := groups[publisher]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].PublishedAt.After(group[j].PublishedAt)
		})
		if len(group) > n {
			group = group[:n]
		}
		out = append(out, group...)
	}
	return out
}
