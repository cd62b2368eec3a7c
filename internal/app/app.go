package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"NewsLens/internal/config"
	"NewsLens/internal/domain"
	"NewsLens/internal/extraction"
	"NewsLens/internal/ideology"
	"NewsLens/internal/infrastructure/feed"
	"NewsLens/internal/infrastructure/langdetect"
	"NewsLens/internal/infrastructure/llm"
	"NewsLens/internal/infrastructure/ml"
	"NewsLens/internal/infrastructure/parser"
	"NewsLens/internal/infrastructure/scheduler"
	"NewsLens/internal/infrastructure/storage"
	"NewsLens/internal/infrastructure/telegram"
	"NewsLens/internal/lexicon"
	"NewsLens/internal/logging"
	"NewsLens/internal/metrics"
	"NewsLens/internal/ports"
	"NewsLens/internal/retry"
	"NewsLens/internal/scoring"
	"NewsLens/internal/textnorm"
	"NewsLens/internal/usecase"
)

// recordStore is what both store backends provide.
type recordStore interface {
	ports.RecordStore
	ports.ArticleWriter
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	closers []func() error
}

// New builds an application; adapters are created per command.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.LogLevel, cfg.LogFormat)
	}
	return &Application{cfg: cfg, logger: baseLogger, metrics: metrics.New()}
}

// Close releases clients and database handles opened by earlier commands.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Score runs the scoring pipeline once, or on the scheduler interval until
// ctx is cancelled when watch is set.
func (a *Application) Score(ctx context.Context, watch bool) error {
	pipeline, err := a.pipeline(ctx)
	if err != nil {
		return err
	}

	runner := &exportingRunner{runner: pipeline, app: a}
	if !watch {
		return runner.RunOnce(ctx)
	}
	return a.watch(ctx, runner)
}

// Ingest pulls recent feed entries into the record store.
func (a *Application) Ingest(ctx context.Context) (usecase.IngestReport, error) {
	store, err := a.store(ctx)
	if err != nil {
		return usecase.IngestReport{}, err
	}

	client := &http.Client{Timeout: a.cfg.Ingest.Timeout}
	registry := extraction.NewRegistry(parser.ReadabilityStrategy{}, parser.SelectorStrategy{})
	ingestor := usecase.NewIngestor(usecase.IngestDeps{
		Source: feed.NewSource(client, a.cfg.Ingest.Feeds, a.logger.With("component", "feed")),
		Extractor: parser.NewPageExtractor(client, registry, parser.PageExtractorConfig{
			MinChars: a.cfg.Ingest.MinExtractChars,
			MaxChars: a.cfg.Ingest.MaxContentChars,
		}, a.logger.With("component", "extractor")),
		Writer:  store,
		Metrics: a.metrics,
		Logger:  a.logger,
		Window:  a.cfg.Ingest.Window,
		PerFeed: a.cfg.Ingest.PerFeed,
	})

	report, err := ingestor.Run(ctx)
	a.exportMetrics()
	return report, err
}

// WarmLexicon loads the lexicon, writing the cache file when it is missing,
// and returns the entry counts.
func (a *Application) WarmLexicon() (map[string]int, error) {
	set, err := a.lexiconStore().Load()
	if err != nil {
		return nil, err
	}
	return set.Sizes(), nil
}

// Analysis is the offline result for one text.
type Analysis struct {
	Words   int
	Chars   int
	Clamped []string
	Result  domain.ScoreResult
}

// Analyze scores raw text with caller-supplied framing, bypassing the store
// and the classifier.
func (a *Application) Analyze(raw string, framing domain.ExternalFraming) (Analysis, error) {
	engine, err := a.engine()
	if err != nil {
		return Analysis{}, err
	}

	framing, clamped, err := framing.Sanitize()
	if err != nil {
		return Analysis{}, err
	}

	text := textnorm.Prepare(raw)
	return Analysis{
		Words:   text.WordCount,
		Chars:   text.CharCount,
		Clamped: clamped,
		Result:  engine.Score(framing, text.Body, text.Script),
	}, nil
}

func (a *Application) pipeline(ctx context.Context) (*usecase.Pipeline, error) {
	engine, err := a.engine()
	if err != nil {
		return nil, err
	}
	store, err := a.store(ctx)
	if err != nil {
		return nil, err
	}
	classifier, err := a.classifier(ctx)
	if err != nil {
		return nil, err
	}

	var detector ports.LanguageDetector
	if a.cfg.Language.Detect {
		detector = langdetect.New()
	}

	var notifier ports.Notifier
	if a.cfg.Telegram() {
		tc := a.cfg.Notifications.Telegram
		notifier = telegram.NewNotifier(tc.APIBase, tc.BotToken, tc.ChatID)
	}

	var limiter *rate.Limiter
	if rpm := a.cfg.Classifier.RequestsPerMinute; rpm > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
	}

	return usecase.NewPipeline(usecase.PipelineDeps{
		Store:      store,
		Classifier: classifier,
		Engine:     engine,
		Detector:   detector,
		Notifier:   notifier,
		Metrics:    a.metrics,
		Limiter:    limiter,
		Retry: retry.Config{
			MaxAttempts: a.cfg.Classifier.Retry.Attempts,
			Delay:       a.cfg.Classifier.Retry.Delay,
			Backoff:     a.cfg.Classifier.Retry.Backoff,
		},
		Logger:        a.logger,
		MinWords:      a.cfg.Pipeline.MinWords,
		MinChars:      a.cfg.Pipeline.MinChars,
		MaxInputChars: a.cfg.Classifier.MaxInputChars,
	}), nil
}

func (a *Application) lexiconStore() *lexicon.Store {
	return lexicon.NewStore(lexicon.Paths{
		Cache:          a.cfg.Lexicon.CacheFile,
		RiskWords:      a.cfg.Lexicon.RiskWords,
		EmotionTriples: a.cfg.Lexicon.EmotionTriples,
		EmotionMatrix:  a.cfg.Lexicon.EmotionMatrix,
		Intensity:      a.cfg.Lexicon.Intensity,
	}, a.logger.With("component", "lexicon"))
}

func (a *Application) engine() (*ideology.Engine, error) {
	set, err := a.lexiconStore().Load()
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}
	return ideology.NewEngine(scoring.NewScorer(set)), nil
}

func (a *Application) classifier(ctx context.Context) (ports.Classifier, error) {
	cc := a.cfg.Classifier
	switch cc.Provider {
	case config.ProviderOpenAI:
		return llm.NewOpenAIClassifier(cc.OpenAI.Endpoint, cc.OpenAI.Model, cc.OpenAI.APIKey, cc.OpenAI.Temperature, cc.Timeout), nil
	case config.ProviderGemini:
		c, err := llm.NewGeminiClassifier(ctx, cc.Gemini.Model, cc.Gemini.APIKey, cc.Gemini.Temperature)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, c.Close)
		return c, nil
	case config.ProviderHTTP:
		return ml.NewClient(cc.HTTP.InferenceURL, cc.HTTP.APIKey, cc.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown classifier provider %q", cc.Provider)
	}
}

func (a *Application) store(ctx context.Context) (recordStore, error) {
	sc := a.cfg.Store
	logger := a.logger.With("component", "store")

	if sc.Backend == config.BackendAirtable {
		return storage.NewAirtableStore(&http.Client{Timeout: 30 * time.Second}, sc.Airtable, sc.PageSize, logger)
	}

	dialect, err := storage.DialectFor(sc.Backend)
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(ctx, dialect, sc.SQL.DSN)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)

	store, err := storage.NewSQLStore(db, dialect, sc.SQL.Table, sc.PageSize, logger)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return store, nil
}

func (a *Application) watch(ctx context.Context, runner usecase.Runner) error {
	sched := usecase.NewScheduler(scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval), runner, a.logger)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("watch mode started", "interval", a.cfg.Scheduler.Interval.String())

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	return nil
}

func (a *Application) exportMetrics() {
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.TextfilePath); err != nil {
		a.logger.Warn("metrics export failed", "error", err)
	}
}

// exportingRunner writes the metrics textfile after every run.
type exportingRunner struct {
	runner usecase.Runner
	app    *Application
}

func (r *exportingRunner) RunOnce(ctx context.Context) error {
	err := r.runner.RunOnce(ctx)
	r.app.exportMetrics()
	return err
}
