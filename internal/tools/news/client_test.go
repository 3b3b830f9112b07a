package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/soyeahso/toolchat/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClientTopHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/top-headlines", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.Contains(t, r.Header.Get("User-Agent"), "toolchat/")

		q := r.URL.Query()
		assert.Equal(t, "ai", q.Get("q"))
		assert.Equal(t, "us", q.Get("country"))
		assert.Equal(t, "technology", q.Get("category"))
		assert.False(t, q.Has("sources"))
		assert.Equal(t, "10", q.Get("pageSize"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"totalResults": 2,
			"articles": [
				{"source": {"id": null, "name": "Wire"}, "title": "First", "description": null,
				 "url": "https://example.com/1", "publishedAt": "2024-05-01T10:00:00Z"},
				{"source": {"id": "bbc-news", "name": "BBC News"}, "title": "Second", "description": "d",
				 "url": "https://example.com/2", "publishedAt": "2024-05-01T11:00:00Z"}
			]
		}`))
	}))
	defer srv.Close()

	c := NewAPIClient("test-key", srv.URL)
	articles, err := c.TopHeadlines(context.Background(), Params{
		Query: "ai", Country: "us", Category: "technology", PageSize: 10,
	})
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "First", articles[0].Title)
	assert.Equal(t, "Wire", articles[0].Source.Name)
	assert.Empty(t, articles[0].Description)
	assert.Equal(t, "bbc-news", articles[1].Source.ID)
}

func TestAPIClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid or incorrect."}`))
	}))
	defer srv.Close()

	c := NewAPIClient("bad", srv.URL)
	_, err := c.TopHeadlines(context.Background(), Params{Country: "us"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "apiKeyInvalid", apiErr.Code)
	assert.Equal(t, "newsapi: apiKeyInvalid: Your API key is invalid or incorrect.", err.Error())
}

func TestAPIClientNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewAPIClient("k", srv.URL)
	_, err := c.TopHeadlines(context.Background(), Params{Country: "us"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestAdapterOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","code":"parametersMissing","message":"Required parameters are missing."}`))
	}))
	defer srv.Close()

	a := NewAdapter(NewAPIClient("k", srv.URL), 10, silentLog())
	got := a.GetTopHeadlines(context.Background(), DefaultRequest())
	f, ok := got.(*tools.Failure)
	require.True(t, ok)
	assert.Contains(t, f.Error, "parametersMissing")
}
