package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"NewsLens/internal/config"
	"NewsLens/internal/domain"
	"NewsLens/internal/ports"
)

// Canonical names of the input columns read from and written to a table.
const (
	ColumnHeadline    = "headline"
	ColumnContent     = "content"
	ColumnPublisher   = "publisher"
	ColumnAuthor      = "author"
	ColumnURL         = "url"
	ColumnPublishedAt = "published_at"
)

// DefaultAirtableColumns maps canonical names to the column titles of the
// newsroom base. Canonical fields without an entry are not written.
var DefaultAirtableColumns = map[string]string{
	ColumnHeadline:                     "Headline",
	ColumnContent:                      "Content",
	ColumnPublisher:                    "Publisher Name",
	ColumnAuthor:                       "Author",
	ColumnURL:                          "URL",
	ColumnPublishedAt:                  "Publication Date & Time",
	domain.FieldCompositeIdeologyScore: "Composite Ideology Score",
	domain.FieldPoliticalLeaning:       "Political Leaning",
	domain.FieldSentiment:              "Sentiment",
	domain.FieldTopic:                  "Topic",
	domain.FieldBiasExplanation:        "Bias Explanation",
	domain.FieldBehaviouralAnalysis:    "Behavioural Analysis",
	domain.FieldProcessed:              "Processed",
	domain.FieldFramingDirection:       "AI Framing Direction",
	domain.FieldLanguageIntensity:      "AI Language Intensity",
	domain.FieldSensationalismScore:    "AI Sensationalism",
	domain.FieldThreatSignal:           "AI Threat Signal",
	domain.FieldLexicalIntensityScore:  "AI Lexical Emotional Intensity",
}

// APIError is a non-2xx answer from the Airtable REST API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("airtable status %d: %s", e.StatusCode, e.Body)
}

// AirtableStore reads and patches records of one Airtable table.
type AirtableStore struct {
	client   *http.Client
	endpoint string
	token    string
	pageSize int
	columns  map[string]string
	limiter  *rate.Limiter
	logger   *slog.Logger
}

var (
	_ ports.RecordStore   = (*AirtableStore)(nil)
	_ ports.ArticleWriter = (*AirtableStore)(nil)
)

// NewAirtableStore builds a store for cfg.Table. Entries in cfg.Columns
// override DefaultAirtableColumns; an empty title unmaps the field.
func NewAirtableStore(client *http.Client, cfg config.AirtableConfig, pageSize int, logger *slog.Logger) (*AirtableStore, error) {
	if cfg.Token == "" || cfg.BaseID == "" || cfg.Table == "" {
		return nil, errors.New("airtable store: token, base id and table are required")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 100
	}

	columns := make(map[string]string, len(DefaultAirtableColumns))
	for k, v := range DefaultAirtableColumns {
		columns[k] = v
	}
	for k, v := range cfg.Columns {
		if v == "" {
			delete(columns, k)
			continue
		}
		columns[k] = v
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	return &AirtableStore{
		client:   client,
		endpoint: base + "/" + url.PathEscape(cfg.BaseID) + "/" + url.PathEscape(cfg.Table),
		token:    cfg.Token,
		pageSize: pageSize,
		columns:  columns,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger.With("component", "airtable", "table", cfg.Table),
	}, nil
}

type airtableRecord struct {
	ID     string         `json:"id,omitempty"`
	Fields map[string]any `json:"fields"`
}

type airtablePage struct {
	Records []airtableRecord `json:"records"`
	Offset  string           `json:"offset"`
}

// ListUnprocessed follows the offset cursor until every page is read.
func (s *AirtableStore) ListUnprocessed(ctx context.Context) ([]domain.Article, error) {
	filter := "NOT({" + s.column(domain.FieldProcessed) + "})"

	var (
		articles []domain.Article
		offset   string
	)
	for {
		q := url.Values{}
		q.Set("filterByFormula", filter)
		q.Set("pageSize", strconv.Itoa(s.pageSize))
		if offset != "" {
			q.Set("offset", offset)
		}

		var page airtablePage
		if err := s.do(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil, &page); err != nil {
			return nil, fmt.Errorf("list records: %w", err)
		}
		for _, rec := range page.Records {
			articles = append(articles, s.toArticle(rec))
		}
		if page.Offset == "" {
			break
		}
		offset = page.Offset
	}

	s.logger.Debug("listed unprocessed", "count", len(articles))
	return articles, nil
}

// UpdateFields patches the mapped fields of one record.
func (s *AirtableStore) UpdateFields(ctx context.Context, id string, fields domain.Fields) error {
	body := airtableRecord{Fields: s.toColumns(fields)}
	if len(body.Fields) == 0 {
		return nil
	}
	if err := s.do(ctx, http.MethodPatch, s.endpoint+"/"+url.PathEscape(id), body, nil); err != nil {
		return fmt.Errorf("update record %s: %w", id, err)
	}
	return nil
}

// URLExists asks for at most one record whose url column equals url.
func (s *AirtableStore) URLExists(ctx context.Context, link string) (bool, error) {
	q := url.Values{}
	q.Set("filterByFormula", "{"+s.column(ColumnURL)+"}='"+escapeFormula(link)+"'")
	q.Set("maxRecords", "1")

	var page airtablePage
	if err := s.do(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil, &page); err != nil {
		return false, fmt.Errorf("lookup url: %w", err)
	}
	return len(page.Records) > 0, nil
}

// Insert creates a record for a freshly ingested article.
func (s *AirtableStore) Insert(ctx context.Context, article domain.Article) error {
	fields := domain.Fields{
		ColumnHeadline:  article.Headline,
		ColumnContent:   article.Content,
		ColumnPublisher: article.Publisher,
		ColumnURL:       article.URL,
	}
	if article.Author != "" {
		fields[ColumnAuthor] = article.Author
	}
	if !article.PublishedAt.IsZero() {
		fields[ColumnPublishedAt] = article.PublishedAt.UTC().Format(time.RFC3339)
	}

	if err := s.do(ctx, http.MethodPost, s.endpoint, airtableRecord{Fields: s.toColumns(fields)}, nil); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (s *AirtableStore) column(name string) string {
	if c, ok := s.columns[name]; ok {
		return c
	}
	return name
}

func (s *AirtableStore) toColumns(fields domain.Fields) map[string]any {
	out := make(map[string]any, len(fields))
	for name, value := range fields {
		col, ok := s.columns[name]
		if !ok {
			continue
		}
		out[col] = value
	}
	return out
}

func (s *AirtableStore) toArticle(rec airtableRecord) domain.Article {
	str := func(name string) string {
		v, _ := rec.Fields[s.column(name)].(string)
		return strings.TrimSpace(v)
	}
	processed, _ := rec.Fields[s.column(domain.FieldProcessed)].(bool)

	return domain.Article{
		ID:          rec.ID,
		Headline:    str(ColumnHeadline),
		Content:     str(ColumnContent),
		Publisher:   str(ColumnPublisher),
		URL:         str(ColumnURL),
		Author:      str(ColumnAuthor),
		PublishedAt: parseTimestamp(str(ColumnPublishedAt)),
		Processed:   processed,
	}
}

func (s *AirtableStore) do(ctx context.Context, method, endpoint string, body, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// escapeFormula quotes a value for a single-quoted formula string literal.
func escapeFormula(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `'`, `\'`)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(v string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
