package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "test-cx", q.Get("cx"))
		assert.Equal(t, `"Soulardarity" Michigan`, q.Get("q"))
		assert.Equal(t, "10", q.Get("num"))
		assert.Equal(t, "date", q.Get("sort"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"title":"Solar co-op expands","link":"https://planetdetroit.org/story/1","snippet":"The Highland Park group...","displayLink":"planetdetroit.org"}
		]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", "test-cx", WithBaseURL(srv.URL), WithRateLimit(1000))
	results, err := client.Search(context.Background(), `"Soulardarity" Michigan`, 10)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://planetdetroit.org/story/1", results[0].Link)
	assert.Equal(t, "planetdetroit.org", results[0].DisplayLink)
}

func TestSearch_NoItems(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"searchInformation":{"totalResults":"0"}}`))
	}))
	defer srv.Close()

	client := NewClient("k", "cx", WithBaseURL(srv.URL), WithRateLimit(1000))
	results, err := client.Search(context.Background(), "q", 10)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_QuotaExceeded(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	client := NewClient("k", "cx", WithBaseURL(srv.URL), WithRateLimit(1000))
	_, err := client.Search(context.Background(), "q", 10)

	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrQuotaExceeded))
}

func TestSearch_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403}}`))
	}))
	defer srv.Close()

	client := NewClient("k", "cx", WithBaseURL(srv.URL), WithRateLimit(1000))
	_, err := client.Search(context.Background(), "q", 10)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSearch_CapsNum(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("num"))
		w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	client := NewClient("k", "cx", WithBaseURL(srv.URL), WithRateLimit(1000))
	_, err := client.Search(context.Background(), "q", 50)
	require.NoError(t, err)
}

func TestSearch_MalformedJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	client := NewClient("k", "cx", WithBaseURL(srv.URL), WithRateLimit(1000))
	_, err := client.Search(context.Background(), "q", 10)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}
