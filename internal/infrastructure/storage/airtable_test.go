package storage

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsLens/internal/config"
	"NewsLens/internal/domain"
)

type capturedRequest struct {
	method string
	path   string
	query  map[string]string
	body   map[string]any
}

func newAirtable(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*AirtableStore, chan capturedRequest) {
	t.Helper()

	requests := make(chan capturedRequest, 16)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer pat-test", r.Header.Get("Authorization"))
		got := capturedRequest{method: r.Method, path: r.URL.Path, query: map[string]string{}}
		for k := range r.URL.Query() {
			got.query[k] = r.URL.Query().Get(k)
		}
		if r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			if len(raw) > 0 {
				assert.NoError(t, json.Unmarshal(raw, &got.body))
			}
		}
		requests <- got
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	store, err := NewAirtableStore(srv.Client(), config.AirtableConfig{
		BaseURL: srv.URL + "/v0",
		Token:   "pat-test",
		BaseID:  "appNews",
		Table:   "Data1",
		Columns: map[string]string{
			domain.FieldEconomicRiskScore: "Economic Risk",
			domain.FieldTopic:             "",
		},
	}, 2, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return store, requests
}

func TestAirtableListFollowsOffset(t *testing.T) {
	t.Parallel()

	pages := []string{
		`{"records":[{"id":"rec1","fields":{"Headline":" Budget passed ","Content":"Body","Publisher Name":"NDTV","URL":"https://n/1","Publication Date & Time":"2024-05-02T09:30:00.000Z"}}],"offset":"itr2"}`,
		`{"records":[{"id":"rec2","fields":{"Headline":"Rally","Processed":false}}]}`,
	}
	var calls atomic.Int32
	store, requests := newAirtable(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, pages[calls.Add(1)-1])
	})

	articles, err := store.ListUnprocessed(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 2)

	assert.Equal(t, "rec1", articles[0].ID)
	assert.Equal(t, "Budget passed", articles[0].Headline)
	assert.Equal(t, "NDTV", articles[0].Publisher)
	assert.Equal(t, time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC), articles[0].PublishedAt)
	assert.Equal(t, "rec2", articles[1].ID)

	first := <-requests
	assert.Equal(t, http.MethodGet, first.method)
	assert.Equal(t, "/v0/appNews/Data1", first.path)
	assert.Equal(t, "NOT({Processed})", first.query["filterByFormula"])
	assert.Equal(t, "2", first.query["pageSize"])
	assert.Empty(t, first.query["offset"])

	second := <-requests
	assert.Equal(t, "itr2", second.query["offset"])
}

func TestAirtableUpdateMapsColumns(t *testing.T) {
	t.Parallel()

	store, requests := newAirtable(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"rec1","fields":{}}`)
	})

	err := store.UpdateFields(context.Background(), "rec1", domain.Fields{
		domain.FieldCompositeIdeologyScore: 0.5,
		domain.FieldProcessed:              true,
		domain.FieldEconomicRiskScore:      0.1,
		domain.FieldTopic:                  "Budget",
		domain.FieldScript:                 "latin",
	})
	require.NoError(t, err)

	got := <-requests
	assert.Equal(t, http.MethodPatch, got.method)
	assert.Equal(t, "/v0/appNews/Data1/rec1", got.path)
	assert.Equal(t, map[string]any{
		"fields": map[string]any{
			"Composite Ideology Score": 0.5,
			"Processed":                true,
			"Economic Risk":            0.1,
		},
	}, got.body)
}

func TestAirtableURLExistsEscapesQuotes(t *testing.T) {
	t.Parallel()

	store, requests := newAirtable(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"records":[{"id":"rec9","fields":{}}]}`)
	})

	exists, err := store.URLExists(context.Background(), "https://n/it's")
	require.NoError(t, err)
	assert.True(t, exists)

	got := <-requests
	assert.Equal(t, `{URL}='https://n/it\'s'`, got.query["filterByFormula"])
	assert.Equal(t, "1", got.query["maxRecords"])
}

func TestAirtableInsertPostsFields(t *testing.T) {
	t.Parallel()

	store, requests := newAirtable(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"recNew","fields":{}}`)
	})

	err := store.Insert(context.Background(), domain.Article{
		Headline:    "Polls close",
		Content:     "Voting ended.",
		Publisher:   "The Hindu",
		URL:         "https://h/1",
		PublishedAt: time.Date(2024, 6, 4, 18, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	got := <-requests
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, map[string]any{
		"fields": map[string]any{
			"Headline":                "Polls close",
			"Content":                 "Voting ended.",
			"Publisher Name":          "The Hindu",
			"URL":                     "https://h/1",
			"Publication Date & Time": "2024-06-04T18:00:00Z",
		},
	}, got.body)
}

func TestAirtableSurfacesAPIErrors(t *testing.T) {
	t.Parallel()

	store, _ := newAirtable(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"error":{"type":"INVALID_VALUE_FOR_COLUMN"}}`)
	})

	err := store.UpdateFields(context.Background(), "rec1", domain.Fields{domain.FieldProcessed: true})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "INVALID_VALUE_FOR_COLUMN")
}

func TestNewAirtableStoreRequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewAirtableStore(nil, config.AirtableConfig{BaseID: "app", Table: "Data1"}, 10, nil)
	assert.Error(t, err)
}
