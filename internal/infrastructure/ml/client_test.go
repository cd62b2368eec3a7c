package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsLens/internal/domain"
	"NewsLens/internal/retry"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	payloads := make(chan map[string]string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/classify", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		var payload map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		payloads <- payload
		fmt.Fprint(w, `{"framing_direction": 0.4, "language_intensity": 0.5, "sensationalism_score": 0.1, "topic": "Elections"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret", time.Second)
	got, err := c.Classify(context.Background(), "Polls close", "Voting ended peacefully.")
	require.NoError(t, err)

	assert.Equal(t, 0.4, got.FramingDirection)
	assert.Equal(t, "Elections", got.Topic)
	assert.Equal(t, map[string]string{"headline": "Polls close", "text": "Voting ended peacefully."}, <-payloads)
}

func TestClassifyErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		body      string
		target    error
		permanent bool
	}{
		{name: "missing field", status: http.StatusOK, body: `{"framing_direction": 0.4}`, target: domain.ErrMissingFramingField},
		{name: "undecodable", status: http.StatusOK, body: `not json`, target: domain.ErrInvalidFraming},
		{name: "bad request", status: http.StatusBadRequest, body: "text too long", permanent: true},
		{name: "bad gateway", status: http.StatusBadGateway},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, "", time.Second).Classify(context.Background(), "h", "t")
			require.Error(t, err)
			if tc.target != nil {
				require.ErrorIs(t, err, tc.target)
			}
			assert.Equal(t, tc.permanent, retry.IsPermanent(err))
		})
	}
}

func TestClassifyWithoutEndpoint(t *testing.T) {
	t.Parallel()

	_, err := NewClient("", "", 0).Classify(context.Background(), "h", "t")
	require.ErrorIs(t, err, domain.ErrClassifierUnavailable)
}
