package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "NEWSLENS_CONFIG"
	logLevelEnv        = "LOG_LEVEL"
	storeBackendEnv    = "NEWSLENS_STORE"
	classifierEnv      = "NEWSLENS_CLASSIFIER"
	airtableTokenEnv   = "AIRTABLE_TOKEN"
	airtableBaseEnv    = "AIRTABLE_BASE_ID"
	airtableTableEnv   = "AIRTABLE_TABLE"
	databaseDSNEnv     = "DATABASE_DSN"
	openAIKeyEnv       = "OPENAI_API_KEY"
	openAIModelEnv     = "OPENAI_MODEL"
	geminiKeyEnv       = "GEMINI_API_KEY"
	inferenceKeyEnv    = "INFERENCE_API_KEY"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
	metricsTextfileEnv = "NEWSLENS_METRICS_TEXTFILE"
)

// Store backends.
const (
	BackendAirtable = "airtable"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Classifier providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderHTTP   = "http"
)

// Commands accepted by Validate.
const (
	CommandScore   = "score"
	CommandIngest  = "ingest"
	CommandLexicon = "lexicon"
	CommandAnalyze = "analyze"
)

// Config holds high-level settings required across the application.
type Config struct {
	LogLevel      string             `yaml:"logLevel"`
	LogFormat     string             `yaml:"logFormat"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Classifier    ClassifierConfig   `yaml:"classifier"`
	Store         StoreConfig        `yaml:"store"`
	Lexicon       LexiconConfig      `yaml:"lexicon"`
	Ingest        IngestConfig       `yaml:"ingest"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
	Metrics       MetricsConfig      `yaml:"metrics"`
	Language      LanguageConfig     `yaml:"language"`
}

// PipelineConfig is the content gate applied before classification.
type PipelineConfig struct {
	MinWords int `yaml:"minWords"`
	MinChars int `yaml:"minChars"`
}

// ClassifierConfig selects and tunes the framing classifier.
type ClassifierConfig struct {
	Provider          string               `yaml:"provider"`
	MaxInputChars     int                  `yaml:"maxInputChars"`
	RequestsPerMinute int                  `yaml:"requestsPerMinute"`
	Timeout           time.Duration        `yaml:"timeout"`
	Retry             RetryConfig          `yaml:"retry"`
	OpenAI            OpenAIConfig         `yaml:"openai"`
	Gemini            GeminiConfig         `yaml:"gemini"`
	HTTP              HTTPClassifierConfig `yaml:"http"`
}

// RetryConfig bounds classifier retries.
type RetryConfig struct {
	Attempts int           `yaml:"attempts"`
	Delay    time.Duration `yaml:"delay"`
	Backoff  bool          `yaml:"backoff"`
}

// OpenAIConfig defines how to contact an OpenAI-compatible chat API.
type OpenAIConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"apiKey"`
	Temperature float64 `yaml:"temperature"`
}

// GeminiConfig defines the Gemini model and key.
type GeminiConfig struct {
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"apiKey"`
	Temperature float64 `yaml:"temperature"`
}

// HTTPClassifierConfig describes a self-hosted inference endpoint.
type HTTPClassifierConfig struct {
	InferenceURL string `yaml:"inferenceUrl"`
	APIKey       string `yaml:"apiKey"`
}

// StoreConfig selects the record store.
type StoreConfig struct {
	Backend  string         `yaml:"backend"`
	PageSize int            `yaml:"pageSize"`
	Airtable AirtableConfig `yaml:"airtable"`
	SQL      SQLConfig      `yaml:"sql"`
}

// AirtableConfig wires the Airtable REST API. Columns maps canonical field
// names to the table's column names.
type AirtableConfig struct {
	BaseURL           string            `yaml:"baseUrl"`
	Token             string            `yaml:"token"`
	BaseID            string            `yaml:"baseId"`
	Table             string            `yaml:"table"`
	RequestsPerSecond float64           `yaml:"requestsPerSecond"`
	Columns           map[string]string `yaml:"columns"`
}

// SQLConfig describes a Postgres or SQLite database.
type SQLConfig struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

// LexiconConfig locates the cache artifact and its source resources.
type LexiconConfig struct {
	CacheFile      string `yaml:"cacheFile"`
	RiskWords      string `yaml:"riskWords"`
	EmotionTriples string `yaml:"emotionTriples"`
	EmotionMatrix  string `yaml:"emotionMatrix"`
	Intensity      string `yaml:"intensity"`
}

// IngestConfig drives RSS ingestion.
type IngestConfig struct {
	Window          time.Duration `yaml:"window"`
	PerFeed         int           `yaml:"perFeed"`
	MinExtractChars int           `yaml:"minExtractChars"`
	MaxContentChars int           `yaml:"maxContentChars"`
	Timeout         time.Duration `yaml:"timeout"`
	Feeds           []FeedConfig  `yaml:"feeds"`
}

// FeedConfig describes a single publisher feed with its extraction strategy.
type FeedConfig struct {
	Publisher string            `yaml:"publisher"`
	URL       string            `yaml:"url"`
	Extractor string            `yaml:"extractor"`
	Options   map[string]string `yaml:"options"`
}

// SchedulerConfig defines how often watch mode reruns.
type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	APIBase  string `yaml:"apiBase"`
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// MetricsConfig points at the node-exporter textfile to write after runs.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfilePath"`
}

// LanguageConfig toggles the language-detection diagnostic.
type LanguageConfig struct {
	Detect bool `yaml:"detect"`
}

// Load reads a .env file and the YAML configuration (if present) over the
// defaults, then applies environment overrides. An empty path falls back to
// NEWSLENS_CONFIG.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.normalize()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env    string
		target *string
	}{
		{logLevelEnv, &c.LogLevel},
		{storeBackendEnv, &c.Store.Backend},
		{classifierEnv, &c.Classifier.Provider},
		{airtableTokenEnv, &c.Store.Airtable.Token},
		{airtableBaseEnv, &c.Store.Airtable.BaseID},
		{airtableTableEnv, &c.Store.Airtable.Table},
		{databaseDSNEnv, &c.Store.SQL.DSN},
		{openAIKeyEnv, &c.Classifier.OpenAI.APIKey},
		{openAIModelEnv, &c.Classifier.OpenAI.Model},
		{geminiKeyEnv, &c.Classifier.Gemini.APIKey},
		{inferenceKeyEnv, &c.Classifier.HTTP.APIKey},
		{telegramTokenEnv, &c.Notifications.Telegram.BotToken},
		{telegramChatIDEnv, &c.Notifications.Telegram.ChatID},
		{metricsTextfileEnv, &c.Metrics.TextfilePath},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.env)); v != "" {
			*o.target = v
		}
	}
}

// normalize restores defaults for zeroed numeric settings.
func (c *Config) normalize() {
	def := defaultConfig()

	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	c.Classifier.Provider = strings.ToLower(strings.TrimSpace(c.Classifier.Provider))

	positive := []struct{ value, fallback *int }{
		{&c.Pipeline.MinWords, &def.Pipeline.MinWords},
		{&c.Pipeline.MinChars, &def.Pipeline.MinChars},
		{&c.Classifier.MaxInputChars, &def.Classifier.MaxInputChars},
		{&c.Classifier.Retry.Attempts, &def.Classifier.Retry.Attempts},
		{&c.Store.PageSize, &def.Store.PageSize},
		{&c.Ingest.PerFeed, &def.Ingest.PerFeed},
		{&c.Ingest.MinExtractChars, &def.Ingest.MinExtractChars},
		{&c.Ingest.MaxContentChars, &def.Ingest.MaxContentChars},
	}
	for _, p := range positive {
		if *p.value <= 0 {
			*p.value = *p.fallback
		}
	}
	if c.Store.PageSize > 100 {
		c.Store.PageSize = 100
	}
	if c.Scheduler.Interval <= 0 {
		c.Scheduler.Interval = def.Scheduler.Interval
	}
	if c.Ingest.Window <= 0 {
		c.Ingest.Window = def.Ingest.Window
	}
	for i := range c.Ingest.Feeds {
		if c.Ingest.Feeds[i].Extractor == "" {
			c.Ingest.Feeds[i].Extractor = "readability"
		}
	}
}

// Validate checks the settings a command needs before anything is wired.
func (c Config) Validate(command string) error {
	var errs []error
	need := func(value, name string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
		}
	}

	lexicon := func() {
		if c.Lexicon.CacheFile != "" {
			if _, err := os.Stat(c.Lexicon.CacheFile); err == nil {
				return
			}
		}
		need(c.Lexicon.RiskWords, "lexicon.riskWords")
		need(c.Lexicon.EmotionTriples, "lexicon.emotionTriples")
		need(c.Lexicon.EmotionMatrix, "lexicon.emotionMatrix")
		need(c.Lexicon.Intensity, "lexicon.intensity")
	}

	store := func() {
		switch c.Store.Backend {
		case BackendAirtable:
			need(c.Store.Airtable.Token, "store.airtable.token ("+airtableTokenEnv+")")
			need(c.Store.Airtable.BaseID, "store.airtable.baseId ("+airtableBaseEnv+")")
			need(c.Store.Airtable.Table, "store.airtable.table")
		case BackendPostgres, BackendSQLite:
			need(c.Store.SQL.DSN, "store.sql.dsn ("+databaseDSNEnv+")")
		default:
			errs = append(errs, fmt.Errorf("unknown store.backend %q", c.Store.Backend))
		}
	}

	switch command {
	case CommandScore:
		lexicon()
		store()
		switch c.Classifier.Provider {
		case ProviderOpenAI:
			need(c.Classifier.OpenAI.APIKey, "classifier.openai.apiKey ("+openAIKeyEnv+")")
		case ProviderGemini:
			need(c.Classifier.Gemini.APIKey, "classifier.gemini.apiKey ("+geminiKeyEnv+")")
		case ProviderHTTP:
			need(c.Classifier.HTTP.InferenceURL, "classifier.http.inferenceUrl")
		default:
			errs = append(errs, fmt.Errorf("unknown classifier.provider %q", c.Classifier.Provider))
		}
	case CommandIngest:
		store()
		if len(c.Ingest.Feeds) == 0 {
			errs = append(errs, errors.New("ingest.feeds must list at least one feed"))
		}
		for i, feed := range c.Ingest.Feeds {
			need(feed.Publisher, fmt.Sprintf("ingest.feeds[%d].publisher", i))
			need(feed.URL, fmt.Sprintf("ingest.feeds[%d].url", i))
		}
	case CommandLexicon, CommandAnalyze:
		lexicon()
	default:
		errs = append(errs, fmt.Errorf("unknown command %q", command))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Telegram reports whether digest notifications are configured.
func (c Config) Telegram() bool {
	return c.Notifications.Telegram.BotToken != "" && c.Notifications.Telegram.ChatID != ""
}

func defaultConfig() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Pipeline:  PipelineConfig{MinWords: 40, MinChars: 250},
		Classifier: ClassifierConfig{
			Provider:          ProviderOpenAI,
			MaxInputChars:     4000,
			RequestsPerMinute: 60,
			Timeout:           60 * time.Second,
			Retry:             RetryConfig{Attempts: 3, Delay: 2 * time.Second, Backoff: true},
			OpenAI: OpenAIConfig{
				Endpoint:    "https://api.openai.com/v1",
				Model:       "gpt-4o-mini",
				Temperature: 0.2,
			},
			Gemini: GeminiConfig{Model: "gemini-1.5-flash", Temperature: 0.2},
		},
		Store: StoreConfig{
			Backend:  BackendAirtable,
			PageSize: 100,
			Airtable: AirtableConfig{
				BaseURL:           "https://api.airtable.com/v0",
				Table:             "Data1",
				RequestsPerSecond: 5,
			},
			SQL: SQLConfig{Table: "articles"},
		},
		Lexicon: LexiconConfig{
			CacheFile:      "data/lexicon.gob",
			RiskWords:      "data/lm_master_dictionary.csv",
			EmotionTriples: "data/nrc_emotion_wordlevel.txt",
			EmotionMatrix:  "data/nrc_emotion_matrix.txt",
			Intensity:      "data/nrc_emotion_intensity.txt",
		},
		Ingest: IngestConfig{
			Window:          time.Hour,
			PerFeed:         3,
			MinExtractChars: 500,
			MaxContentChars: 100000,
			Timeout:         20 * time.Second,
		},
		Scheduler: SchedulerConfig{Interval: time.Hour},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{APIBase: "https://api.telegram.org"},
		},
		Language: LanguageConfig{Detect: true},
	}
}
