package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

)

func TestPublishDigest(t *testing.T) {
	t.Parallel()

	forms := make(chan url.Values, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot123:abc/sendMessage", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		forms <- r.PostForm
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)

	n := NewNotifier(srv.URL+"/", "123:abc", "-100")
	require.NoError(t, n.PublishDigest(context.Background(), "A&B <Total: 1 scored>"))

	form := <-forms
	assert.Equal(t, "-100", form.Get("chat_id"))
	assert.Equal(t, "HTML", form.Get("parse_mode"))
	assert.Equal(t, "<pre>A&amp;B &lt;Total: 1 scored&gt;</pre>", form.Get("text"))
}

func TestPublishDigestErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false,"description":"chat not found"}`, http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	n := NewNotifier(srv.URL, "t", "c")
	err := n.PublishDigest(context.Background(), "digest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")

	unset := NewNotifier("", "", "")
	assert.Error(t, unset.PublishDigest(context.Background(), "digest"))
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", truncate("abc", 5))
	long := strings.Repeat("न", 10)
	assert.Equal(t, strings.Repeat("न", 3)+"…", truncate(long, 4))
}
