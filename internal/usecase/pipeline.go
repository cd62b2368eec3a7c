package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"NewsLens/internal/domain"
	"NewsLens/internal/ideology"
	"NewsLens/internal/metrics"
	"NewsLens/internal/ports"
	"NewsLens/internal/retry"
	"NewsLens/internal/textnorm"
)

// Default content gate and classifier input size.
const (
	DefaultMinWords      = 40
	DefaultMinChars      = 250
	DefaultMaxInputChars = 4000
)

// PipelineDeps wires the driven adapters into the scoring pipeline.
type PipelineDeps struct {
	Store      ports.RecordStore
	Classifier ports.Classifier
	Engine     *ideology.Engine
	Detector   ports.LanguageDetector
	Notifier   ports.Notifier
	Metrics    *metrics.Metrics
	Limiter    *rate.Limiter
	Retry      retry.Config
	Logger     *slog.Logger

	MinWords      int
	MinChars      int
	MaxInputChars int
}

// Pipeline scores every unprocessed record in the store.
type Pipeline struct {
	store      ports.RecordStore
	classifier ports.Classifier
	engine     *ideology.Engine
	detector   ports.LanguageDetector
	notifier   ports.Notifier
	metrics    *metrics.Metrics
	limiter    *rate.Limiter
	retry      retry.Config
	logger     *slog.Logger

	minWords      int
	minChars      int
	maxInputChars int
}

// NewPipeline constructs the scoring driver, filling unset limits with defaults.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		store:         deps.Store,
		classifier:    deps.Classifier,
		engine:        deps.Engine,
		detector:      deps.Detector,
		notifier:      deps.Notifier,
		metrics:       deps.Metrics,
		limiter:       deps.Limiter,
		retry:         deps.Retry,
		logger:        logger.With("component", "pipeline"),
		minWords:      deps.MinWords,
		minChars:      deps.MinChars,
		maxInputChars: deps.MaxInputChars,
	}
	if p.minWords <= 0 {
		p.minWords = DefaultMinWords
	}
	if p.minChars <= 0 {
		p.minChars = DefaultMinChars
	}
	if p.maxInputChars <= 0 {
		p.maxInputChars = DefaultMaxInputChars
	}
	if p.retry.OnRetry == nil {
		p.retry.OnRetry = func(err error, next time.Duration) {
			p.logger.Warn("classifier call failed, retrying", "error", err, "wait", next.String())
		}
	}
	return p
}

// Run lists unprocessed records and scores them in listing order. Per-record
// failures are reported in the summary; only a listing error or cancellation
// ends the batch early.
func (p *Pipeline) Run(ctx context.Context) (*domain.BatchSummary, error) {
	if p.store == nil || p.engine == nil {
		return nil, errors.New("pipeline: store and engine are required")
	}
	if p.classifier == nil {
		return nil, domain.ErrClassifierUnavailable
	}

	summary := domain.NewBatchSummary(uuid.NewString())
	logger := p.logger.With("run_id", summary.RunID)

	articles, err := p.store.ListUnprocessed(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unprocessed: %w", err)
	}
	logger.Info("batch started", "records", len(articles))

	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			p.finish(ctx, logger, summary)
			return summary, err
		}
		outcome := p.process(ctx, logger, article)
		summary.Add(outcome)
		p.metrics.RecordOutcome(outcome.Status)
	}

	p.finish(ctx, logger, summary)
	return summary, nil
}

// Process scores a single article and writes its fields back.
func (p *Pipeline) Process(ctx context.Context, article domain.Article) domain.Outcome {
	return p.process(ctx, p.logger, article)
}

func (p *Pipeline) process(ctx context.Context, logger *slog.Logger, article domain.Article) domain.Outcome {
	outcome := domain.Outcome{
		ArticleID: article.ID,
		Headline:  article.Headline,
		Publisher: article.Publisher,
	}
	logger = logger.With("record_id", article.ID, "headline", article.Headline, "publisher", article.Publisher)

	if article.Processed {
		outcome.Status = domain.StatusSkipped
		outcome.Reason = "already processed"
		return outcome
	}

	text := textnorm.PrepareFor(article.Content, article.Publisher)
	if text.WordCount < p.minWords && text.CharCount < p.minChars {
		outcome.Status = domain.StatusSkipped
		outcome.Reason = fmt.Sprintf("content too short (%d words, %d chars)", text.WordCount, text.CharCount)
		logger.Info("record skipped", "reason", outcome.Reason)
		return outcome
	}

	framing, err := p.classify(ctx, article.Headline, truncateRunes(text.Body, p.maxInputChars))
	if err != nil {
		return p.fail(logger, outcome, "classify", err)
	}

	framing, clamped, err := framing.Sanitize()
	if err != nil {
		return p.fail(logger, outcome, "validate framing", err)
	}
	if len(clamped) > 0 {
		logger.Warn("framing values clamped into range", "fields", clamped)
	}

	result := p.engine.Score(framing, text.Body, text.Script)
	fields := domain.ResultFields(framing, result)
	if p.detector != nil {
		if lang, ok := p.detector.Detect(text.Body); ok {
			fields[domain.FieldDetectedLanguage] = lang
		}
	}

	if err := p.store.UpdateFields(ctx, article.ID, fields); err != nil {
		return p.fail(logger, outcome, "update record", err)
	}

	logger.Info("record scored",
		"composite", result.CompositeIdeologyScore,
		"leaning", result.PoliticalLeaning,
		"sentiment", result.Sentiment,
		"script", result.Script)

	outcome.Status = domain.StatusScored
	outcome.Result = &result
	return outcome
}

func (p *Pipeline) classify(ctx context.Context, headline, text string) (domain.ExternalFraming, error) {
	var framing domain.ExternalFraming
	err := retry.Do(ctx, p.retry, func(ctx context.Context) error {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		started := time.Now()
		got, err := p.classifier.Classify(ctx, headline, text)
		p.metrics.ObserveClassifier(time.Since(started))
		if err != nil {
			if errors.Is(err, domain.ErrMissingFramingField) || errors.Is(err, domain.ErrInvalidFraming) {
				return backoff.Permanent(err)
			}
			return err
		}
		framing = got
		return nil
	})
	return framing, err
}

func (p *Pipeline) fail(logger *slog.Logger, outcome domain.Outcome, stage string, err error) domain.Outcome {
	outcome.Status = domain.StatusFailed
	outcome.Reason = stage
	outcome.Err = fmt.Errorf("%s: %w", stage, err)
	logger.Error("record failed", "stage", stage, "error", err)
	return outcome
}

func (p *Pipeline) finish(ctx context.Context, logger *slog.Logger, summary *domain.BatchSummary) {
	p.metrics.MarkRun(time.Now())
	digest := summary.Digest()
	logger.Info("batch finished",
		"scored", summary.Count(domain.StatusScored),
		"skipped", summary.Count(domain.StatusSkipped),
		"failed", summary.Count(domain.StatusFailed))
	logger.Debug("batch digest", "digest", digest)

	if p.notifier == nil || len(summary.Outcomes) == 0 {
		return
	}
	if err := p.notifier.PublishDigest(ctx, digest); err != nil {
		logger.Warn("publish digest failed", "error", err)
	}
}

// truncateRunes keeps at most n runes of s.
func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
