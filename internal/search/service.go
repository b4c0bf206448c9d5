package search

import (
	"context"
	"time"

	"ebiblio/internal/logger"
	"ebiblio/internal/metrics"
	"ebiblio/internal/query"
)

// Response is one fully aggregated answer to a search request.
type Response struct {
	Query   string    `json:"query"`
	Mode    string    `json:"mode"`
	Term    string    `json:"term"`
	Tab     Tab       `json:"tab"`
	Counts  TabCounts `json:"counts"`
	Results []Result  `json:"results"`
	// Warning carries a human-readable message when the live fetch failed
	// and only catalog results are shown.
	Warning string `json:"warning,omitempty"`
}

// Service glues classifier, provider and aggregator together for one query.
type Service struct {
	provider Provider
}

func New(provider Provider) *Service {
	return &Service{provider: provider}
}

// Search classifies the raw query, fetches live and catalog results, and
// aggregates them for the requested tab. A failed live fetch degrades to
// catalog-only results with a warning instead of an error; retries, if any,
// are the provider's business.
func (s *Service) Search(ctx context.Context, raw string, tab Tab) (*Response, error) {
	mode, term := query.Classify(raw)
	defer logger.Track(ctx, "search: "+mode.String())()
	start := time.Now()

	resp := &Response{Query: raw, Mode: mode.String(), Term: term, Tab: tab}

	liveBooks, categories, liveErr := s.provider.Search(ctx, term, mode)
	if liveErr != nil {
		// Partial results are kept; the failure is surfaced as a message
		// tied to this query.
		logger.For(ctx).WithError(liveErr).Warn("live search failed, degrading to catalog")
		resp.Warning = liveErr.Error()
	}

	catalogBooks, err := s.provider.ListCatalog(ctx, CatalogFilter{})
	if err != nil {
		if liveErr != nil {
			// Both sources down: nothing to aggregate.
			return nil, err
		}
		logger.For(ctx).WithError(err).Warn("catalog listing failed")
		catalogBooks = nil
	}

	resp.Results = Aggregate(liveBooks, catalogBooks, categories, tab)
	resp.Counts = Counts(liveBooks, catalogBooks, categories)

	metrics.SearchesTotal.WithLabelValues(mode.String()).Inc()
	metrics.SearchDuration.WithLabelValues(mode.String()).Observe(time.Since(start).Seconds())
	return resp, nil
}
