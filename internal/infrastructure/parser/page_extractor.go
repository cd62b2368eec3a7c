package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"NewsLens/internal/domain"
	"NewsLens/internal/extraction"
	"NewsLens/internal/ports"
)

const (
	defaultStrategy  = "readability"
	fallbackStrategy = "selectors"
	defaultMinChars  = 500
	defaultMaxChars  = 100000
	maxPageBytes     = 8 << 20
	userAgent        = "Mozilla/5.0 (compatible; NewsLens/1.0)"
)

// PageExtractorConfig bounds extracted text.
type PageExtractorConfig struct {
	// MinChars below which the next extraction step is tried.
	MinChars int
	// MaxChars caps stored content.
	MaxChars int
}

// PageExtractor downloads an entry's page and runs its configured strategy,
// falling back to CSS selectors and then to the feed description.
type PageExtractor struct {
	client    *http.Client
	registry  *extraction.Registry
	sanitizer *bluemonday.Policy
	cfg       PageExtractorConfig
	logger    *slog.Logger
}

var _ ports.Extractor = (*PageExtractor)(nil)

// NewPageExtractor wires the strategy registry with an HTTP client.
func NewPageExtractor(client *http.Client, reg *extraction.Registry, cfg PageExtractorConfig, log *slog.Logger) *PageExtractor {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if cfg.MinChars <= 0 {
		cfg.MinChars = defaultMinChars
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = defaultMaxChars
	}
	return &PageExtractor{
		client:    client,
		registry:  reg,
		sanitizer: bluemonday.StrictPolicy(),
		cfg:       cfg,
		logger:    log,
	}
}

// Extract returns the article text for entry. A page that cannot be fetched
// still yields the stripped feed description when there is one.
func (e *PageExtractor) Extract(ctx context.Context, entry domain.FeedEntry) (domain.Extraction, error) {
	if e.registry == nil {
		return domain.Extraction{}, fmt.Errorf("extraction registry is not configured")
	}

	name := entry.Extractor
	if name == "" {
		name = defaultStrategy
	}
	primary, err := e.registry.Resolve(name)
	if err != nil {
		return domain.Extraction{}, fmt.Errorf("publisher %s: %w", entry.Publisher, err)
	}

	var result domain.Extraction
	page, fetchErr := e.fetchPage(ctx, entry)
	if fetchErr == nil {
		result = e.run(primary, page)
		if runeLen(result.Text) < e.cfg.MinChars && primary.Name() != fallbackStrategy {
			if fallback, err := e.registry.Resolve(fallbackStrategy); err == nil {
				alt := e.run(fallback, page)
				if runeLen(alt.Text) > runeLen(result.Text) {
					e.debug("selector fallback used", "url", entry.URL, "chars", runeLen(alt.Text))
					result.Text = alt.Text
					if len(result.Authors) == 0 {
						result.Authors = alt.Authors
					}
				}
			}
		}
	}

	if runeLen(result.Text) < e.cfg.MinChars {
		if desc := e.stripDescription(entry.Description); runeLen(desc) > runeLen(result.Text) {
			e.debug("feed description used", "url", entry.URL, "chars", runeLen(desc))
			result.Text = desc
		}
	}

	if result.Text == "" {
		if fetchErr != nil {
			return domain.Extraction{}, fetchErr
		}
		return domain.Extraction{}, fmt.Errorf("no article text extracted from %s", entry.URL)
	}

	result.Text = capRunes(result.Text, e.cfg.MaxChars)
	return result, nil
}

func (e *PageExtractor) run(strategy extraction.Strategy, page extraction.Page) domain.Extraction {
	result, err := strategy.Extract(page)
	if err != nil {
		e.debug("strategy failed", "strategy", strategy.Name(), "url", page.URL.String(), "error", err)
		return domain.Extraction{}
	}
	return result
}

func (e *PageExtractor) fetchPage(ctx context.Context, entry domain.FeedEntry) (extraction.Page, error) {
	pageURL, err := url.Parse(entry.URL)
	if err != nil || pageURL.Host == "" {
		return extraction.Page{}, fmt.Errorf("invalid article url %q", entry.URL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return extraction.Page{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return extraction.Page{}, fmt.Errorf("request article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return extraction.Page{}, fmt.Errorf("%s returned %s", pageURL.Host, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return extraction.Page{}, fmt.Errorf("read article: %w", err)
	}

	return extraction.Page{URL: pageURL, HTML: body, Options: entry.Options}, nil
}

func (e *PageExtractor) stripDescription(description string) string {
	if description == "" {
		return ""
	}
	return cleanText(e.sanitizer.Sanitize(description))
}

func (e *PageExtractor) debug(msg string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func capRunes(s string, n int) string {
	if runeLen(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
