package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"ebiblio/internal/config"
	"ebiblio/internal/metrics"
	"ebiblio/internal/query"
	"ebiblio/internal/search"
)

// Client talks to the hosted document-database backend over HTTP. It is the
// live half of the search provider: the local catalog store supplies the
// cached half.
type Client struct {
	cfg      config.BackendConfig
	client   *http.Client
	limiter  *rate.Limiter
	sanitize *bluemonday.Policy
	logger   *logrus.Logger
}

func New(cfg config.BackendConfig, logger *logrus.Logger) *Client {
	return &Client{
		cfg:      cfg,
		client:   newHTTPClient(cfg),
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RateBurst),
		sanitize: bluemonday.StrictPolicy(),
		logger:   logger,
	}
}

func newHTTPClient(cfg config.BackendConfig) *http.Client {
	t := &http.Transport{
		MaxIdleConns:       100,
		IdleConnTimeout:    90 * time.Second,
		DisableCompression: false,
		ForceAttemptHTTP2:  true,
	}
	return &http.Client{Transport: t, Timeout: cfg.Timeout}
}

type searchPayload struct {
	Books []struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Author    string `json:"author"`
		CoverURL  string `json:"cover_url"`
		CreatedAt string `json:"created_at"`
	} `json:"books"`
	Categories []struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"categories"`
}

// Search runs a live query against the backend. The term arrives already
// stripped of mode syntax; the mode selects the backend query shape.
func (c *Client) Search(ctx context.Context, term string, mode query.Mode) ([]search.Book, []search.Category, error) {
	const op = "backend.search"

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, search.NewError(search.KindNetwork, op, "rate limiter interrupted", err)
	}

	q := url.Values{}
	q.Set("q", term)
	q.Set("mode", mode.String())
	data, status, err := c.get(ctx, "/v1/search?"+q.Encode())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(op, "error").Inc()
		return nil, nil, search.NewError(search.KindNetwork, op, "backend unreachable", err)
	}
	metrics.BackendRequestsTotal.WithLabelValues(op, strconv.Itoa(status)).Inc()

	if status == http.StatusNotFound {
		return nil, nil, search.NewError(search.KindNotFound, op, "no results for query", nil)
	}
	if status >= 300 {
		return nil, nil, search.NewError(search.KindNetwork, op, fmt.Sprintf("backend returned %d", status), nil)
	}

	if err := validateSearchPayload(data); err != nil {
		return nil, nil, search.NewError(search.KindBadData, op, "malformed backend response", err)
	}

	var payload searchPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, nil, search.NewError(search.KindBadData, op, "decode backend response", err)
	}

	books := make([]search.Book, 0, len(payload.Books))
	for _, b := range payload.Books {
		books = append(books, search.Book{
			ID:        b.ID,
			Title:     c.sanitize.Sanitize(b.Title),
			Author:    c.sanitize.Sanitize(b.Author),
			CoverURL:  b.CoverURL,
			CreatedAt: parseTime(b.CreatedAt),
		})
	}
	categories := make([]search.Category, 0, len(payload.Categories))
	for _, cat := range payload.Categories {
		categories = append(categories, search.Category{
			ID:          cat.ID,
			Title:       c.sanitize.Sanitize(cat.Title),
			Description: c.sanitize.Sanitize(cat.Description),
		})
	}
	return books, categories, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if c.logger.IsLevelEnabled(logrus.DebugLevel) {
		c.logger.WithField("url", req.URL.String()).Debug("backend.request")
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("upstream do: %w", err)
	}
	defer res.Body.Close()

	data, _ := io.ReadAll(res.Body)

	if c.logger.IsLevelEnabled(logrus.DebugLevel) {
		c.logger.WithFields(logrus.Fields{
			"status": res.StatusCode,
			"bytes":  len(data),
		}).Debug("backend.response")
	}
	return data, res.StatusCode, nil
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
