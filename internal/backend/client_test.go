package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebiblio/internal/config"
	"ebiblio/internal/query"
	"ebiblio/internal/search"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.BackendConfig{
		URL:        srv.URL,
		Timeout:    2 * time.Second,
		RatePerSec: 100,
		RateBurst:  100,
	}, logrus.New())
}

func TestClientSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Dune", r.URL.Query().Get("q"))
		assert.Equal(t, "title", r.URL.Query().Get("mode"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"books": [{"id": "42", "title": "Dune", "author": "Frank Herbert", "created_at": "2021-06-01T12:00:00Z"}],
			"categories": [{"id": "c1", "title": "Sci-Fi"}]
		}`))
	})

	books, categories, err := c.Search(context.Background(), "Dune", query.ModeTitle)
	require.NoError(t, err)
	require.Len(t, books, 1)
	require.Len(t, categories, 1)
	assert.Equal(t, "42", books[0].ID)
	assert.Equal(t, "Frank Herbert", books[0].Author)
	assert.Equal(t, 2021, books[0].CreatedAt.Year())
	assert.Equal(t, "Sci-Fi", categories[0].Title)
}

func TestClientSanitizesHTML(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"books": [{"id": "1", "title": "<script>alert(1)</script>Dune"}],
			"categories": [{"id": "c1", "title": "Fiction", "description": "<b>bold</b> claims"}]
		}`))
	})

	books, categories, err := c.Search(context.Background(), "dune", query.ModeGeneral)
	require.NoError(t, err)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "bold claims", categories[0].Description)
}

func TestClientNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, _, err := c.Search(context.Background(), "nothing", query.ModeGeneral)
	require.Error(t, err)
	assert.True(t, search.IsNotFound(err))
}

func TestClientRejectsMalformedPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Missing categories key", `{"books": []}`},
		{"Book without id", `{"books": [{"title": "x"}], "categories": []}`},
		{"Not an object", `[1,2,3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			_, _, err := c.Search(context.Background(), "q", query.ModeGeneral)
			require.Error(t, err)
			assert.Equal(t, search.KindBadData, search.KindOf(err))
		})
	}
}

func TestClientUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, _, err := c.Search(context.Background(), "q", query.ModeGeneral)
	require.Error(t, err)
	assert.Equal(t, search.KindNetwork, search.KindOf(err))
}
