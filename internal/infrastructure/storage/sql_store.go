package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"NewsLens/internal/domain"
	"NewsLens/internal/ports"
)

// ErrRecordNotFound is returned when an update targets an unknown record id.
var ErrRecordNotFound = errors.New("record not found")

// Dialect captures what differs between the supported SQL databases.
type Dialect struct {
	Name          string
	Driver        string
	Placeholder   sq.PlaceholderFormat
	TimestampType string
}

var (
	// Postgres uses lib/pq.
	Postgres = Dialect{Name: "postgres", Driver: "postgres", Placeholder: sq.Dollar, TimestampType: "TIMESTAMPTZ"}
	// SQLite uses the pure Go modernc driver.
	SQLite = Dialect{Name: "sqlite", Driver: "sqlite", Placeholder: sq.Question, TimestampType: "TIMESTAMP"}
)

// DialectFor maps a store backend name to its dialect.
func DialectFor(backend string) (Dialect, error) {
	switch backend {
	case Postgres.Name:
		return Postgres, nil
	case SQLite.Name:
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported sql backend %q", backend)
	}
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, dialect Dialect, dsn string) (*sql.DB, error) {
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect.Name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect.Name, err)
	}
	return db, nil
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// resultColumns are the writable result columns, named after the canonical fields.
var resultColumns = map[string]string{
	domain.FieldCompositeIdeologyScore: "DOUBLE PRECISION",
	domain.FieldPoliticalLeaning:       "TEXT",
	domain.FieldSentiment:              "TEXT",
	domain.FieldTopic:                  "TEXT",
	domain.FieldBiasExplanation:        "TEXT",
	domain.FieldBehaviouralAnalysis:    "TEXT",
	domain.FieldProcessed:              "BOOLEAN",
	domain.FieldFramingDirection:       "DOUBLE PRECISION",
	domain.FieldLanguageIntensity:      "DOUBLE PRECISION",
	domain.FieldSensationalismScore:    "DOUBLE PRECISION",
	domain.FieldThreatSignal:           "DOUBLE PRECISION",
	domain.FieldLexicalIntensityScore:  "DOUBLE PRECISION",
	domain.FieldSentimentPolarity:      "DOUBLE PRECISION",
	domain.FieldEconomicRiskScore:      "DOUBLE PRECISION",
	domain.FieldScript:                 "TEXT",
	domain.FieldDetectedLanguage:       "TEXT",
}

// SQLStore keeps articles and their scores in a single Postgres or SQLite table.
type SQLStore struct {
	db       *sql.DB
	dialect  Dialect
	table    string
	pageSize uint64
	builder  sq.StatementBuilderType
	logger   *slog.Logger
}

var (
	_ ports.RecordStore   = (*SQLStore)(nil)
	_ ports.ArticleWriter = (*SQLStore)(nil)
)

// NewSQLStore wraps an open database. The table name must be a plain identifier.
func NewSQLStore(db *sql.DB, dialect Dialect, table string, pageSize int, logger *slog.Logger) (*SQLStore, error) {
	if db == nil {
		return nil, errors.New("sql store: nil database")
	}
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("sql store: invalid table name %q", table)
	}
	if pageSize <= 0 {
		pageSize = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLStore{
		db:       db,
		dialect:  dialect,
		table:    table,
		pageSize: uint64(pageSize),
		builder:  sq.StatementBuilder.PlaceholderFormat(dialect.Placeholder),
		logger:   logger.With("component", "sql_store", "table", table),
	}, nil
}

// EnsureSchema creates the article table and its url index when missing.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.createTable()); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	index := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_url_idx ON %s (url)", s.table, s.table)
	if _, err := s.db.ExecContext(ctx, index); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

func (s *SQLStore) createTable() string {
	names := make([]string, 0, len(resultColumns))
	for name := range resultColumns {
		if name != domain.FieldProcessed {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	ddl := "CREATE TABLE IF NOT EXISTS " + s.table + " (\n" +
		"\tid TEXT PRIMARY KEY,\n" +
		"\theadline TEXT NOT NULL DEFAULT '',\n" +
		"\tcontent TEXT NOT NULL DEFAULT '',\n" +
		"\tpublisher TEXT NOT NULL DEFAULT '',\n" +
		"\turl TEXT NOT NULL DEFAULT '',\n" +
		"\tauthor TEXT NOT NULL DEFAULT '',\n" +
		"\tpublished_at " + s.dialect.TimestampType + ",\n" +
		"\tprocessed BOOLEAN NOT NULL DEFAULT FALSE"
	for _, name := range names {
		ddl += ",\n\t" + name + " " + resultColumns[name]
	}
	return ddl + "\n)"
}

// ListUnprocessed pages through unprocessed rows ordered by id.
func (s *SQLStore) ListUnprocessed(ctx context.Context) ([]domain.Article, error) {
	var (
		articles []domain.Article
		after    string
	)
	for {
		page, err := s.listPage(ctx, after)
		if err != nil {
			return nil, err
		}
		articles = append(articles, page...)
		if uint64(len(page)) < s.pageSize {
			break
		}
		after = page[len(page)-1].ID
	}
	s.logger.Debug("listed unprocessed", "count", len(articles))
	return articles, nil
}

func (s *SQLStore) listPage(ctx context.Context, after string) ([]domain.Article, error) {
	query := s.builder.
		Select("id", "headline", "content", "publisher", "url", "author", "published_at", "processed").
		From(s.table).
		Where(sq.Eq{"processed": false}).
		OrderBy("id").
		Limit(s.pageSize)
	if after != "" {
		query = query.Where(sq.Gt{"id": after})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed: %w", err)
	}

	var page []domain.Article
	for rows.Next() {
		var (
			a         domain.Article
			published sql.NullTime
		)
		if err := rows.Scan(&a.ID, &a.Headline, &a.Content, &a.Publisher, &a.URL, &a.Author, &published, &a.Processed); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan article: %w", err)
		}
		if published.Valid {
			a.PublishedAt = published.Time
		}
		page = append(page, a)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return page, nil
}

// UpdateFields writes the known result columns of one row. Unknown field
// names are dropped.
func (s *SQLStore) UpdateFields(ctx context.Context, id string, fields domain.Fields) error {
	set := make(map[string]interface{}, len(fields))
	for name, value := range fields {
		if _, ok := resultColumns[name]; !ok {
			s.logger.Debug("dropping unknown field", "field", name)
			continue
		}
		set[name] = value
	}
	if len(set) == 0 {
		return nil
	}

	stmt, args, err := s.builder.Update(s.table).SetMap(set).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update record %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update record %s: %w", id, ErrRecordNotFound)
	}
	return nil
}

// URLExists reports whether any row already carries the url.
func (s *SQLStore) URLExists(ctx context.Context, url string) (bool, error) {
	stmt, args, err := s.builder.Select("1").From(s.table).Where(sq.Eq{"url": url}).Limit(1).ToSql()
	if err != nil {
		return false, fmt.Errorf("build url query: %w", err)
	}

	var one int
	err = s.db.QueryRowContext(ctx, stmt, args...).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("query url: %w", err)
	}
	return true, nil
}

// Insert adds an unprocessed article, assigning an id when it has none.
func (s *SQLStore) Insert(ctx context.Context, article domain.Article) error {
	if article.ID == "" {
		article.ID = uuid.NewString()
	}
	var published interface{}
	if !article.PublishedAt.IsZero() {
		published = article.PublishedAt.UTC().Truncate(time.Second)
	}

	stmt, args, err := s.builder.Insert(s.table).
		Columns("id", "headline", "content", "publisher", "url", "author", "published_at", "processed").
		Values(article.ID, article.Headline, article.Content, article.Publisher, article.URL, article.Author, published, false).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}
