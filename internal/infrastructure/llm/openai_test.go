package llm

import (
	"context"
	"encoding/json"
	"errors"
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

func completionBody(content string) string {
	encoded, _ := json.Marshal(content)
	return fmt.Sprintf(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
"choices":[{"index":0,"message":{"role":"assistant","content":%s},"finish_reason":"stop"}],
"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`, encoded)
}

func TestOpenAIClassifierClassify(t *testing.T) {
	t.Parallel()

	requests := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		requests <- body
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionBody(fullReply))
	}))
	defer srv.Close()

	c := NewOpenAIClassifier(srv.URL+"/v1", "gpt-4o-mini", "sk-test", 0.2, 5*time.Second)

	framing, err := c.Classify(context.Background(), "Farmers march", "Thousands of farmers marched on the capital.")
	require.NoError(t, err)
	assert.Equal(t, -0.35, framing.FramingDirection)
	assert.Equal(t, "Farm laws", framing.Topic)

	got := <-requests
	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.InDelta(t, 0.2, got["temperature"], 1e-6)
	assert.Equal(t, map[string]any{"type": "json_object"}, got["response_format"])
	messages, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	user := messages[1].(map[string]any)
	assert.Contains(t, user["content"], "Headline: Farmers march")
}

func TestOpenAIClassifierErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		body      string
		permanent bool
		invalid   bool
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":{"message":"bad key","type":"invalid_request_error"}}`, permanent: true},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"error":{"message":"slow down","type":"rate_limit"}}`},
		{name: "server error", status: http.StatusServiceUnavailable, body: `{"error":{"message":"overloaded","type":"server_error"}}`},
		{name: "non json reply", status: http.StatusOK, body: completionBody("I think it leans left."), invalid: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			}))
			defer srv.Close()

			c := NewOpenAIClassifier(srv.URL, "m", "k", 0, time.Second)
			_, err := c.Classify(context.Background(), "h", "t")
			require.Error(t, err)
			assert.Equal(t, tc.permanent, retry.IsPermanent(err))
			assert.Equal(t, tc.invalid, errors.Is(err, domain.ErrInvalidFraming))
		})
	}
}
