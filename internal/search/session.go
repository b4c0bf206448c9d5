package search

import (
	"sync"

	"ebiblio/internal/metrics"
	"ebiblio/internal/query"
)

// State is the reducer state driving one client's search screen.
type State struct {
	ActiveTab Tab
	Query     string
	Mode      query.Mode
	Term      string
	Results   []Result
	Counts    TabCounts

	// seq tags the latest issued fetch; results carrying an older token
	// are stale and must be ignored.
	seq uint64
}

// Session applies search actions to a State. All aggregation is synchronous
// and pure; the mutex only serializes action application against the
// interleaving of asynchronous fetch completions.
type Session struct {
	mu    sync.Mutex
	state State

	// Raw lists from the last accepted fetch, kept so a tab change
	// re-partitions locally without another fetch.
	liveBooks    []Book
	catalogBooks []Book
	categories   []Category
}

// NewSession starts on the all tab with an empty query.
func NewSession() *Session {
	return &Session{state: State{ActiveTab: TabAll}}
}

// QueryChanged classifies the new query, switches the active tab when the
// classification demands it, and issues a fetch token for the caller to tag
// the live fetch with. Issuing a new token logically cancels interest in any
// prior in-flight fetch; the fetch itself need not be aborted.
//
// Category mode forces the categories tab, title mode the books tab; general
// and phrase leave the tab alone. The switch fires once per classification,
// not per render, and is not reversed automatically.
func (s *Session) QueryChanged(raw string) (mode query.Mode, term string, token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mode, term = query.Classify(raw)
	s.state.Query = raw
	s.state.Mode = mode
	s.state.Term = term
	s.state.seq++

	switch mode {
	case query.ModeCategory:
		if s.state.ActiveTab != TabCategories {
			s.state.ActiveTab = TabCategories
			s.repartitionLocked()
			metrics.TabSwitchesTotal.WithLabelValues(string(TabCategories)).Inc()
		}
	case query.ModeTitle:
		if s.state.ActiveTab != TabBooks {
			s.state.ActiveTab = TabBooks
			s.repartitionLocked()
			metrics.TabSwitchesTotal.WithLabelValues(string(TabBooks)).Inc()
		}
	}

	return mode, term, s.state.seq
}

// TabSelected records an explicit tab choice by the user and re-partitions
// the last accepted results for it.
func (s *Session) TabSelected(tab Tab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.ActiveTab == tab {
		return
	}
	s.state.ActiveTab = tab
	s.repartitionLocked()
}

// ResultsArrived folds a completed fetch into the state. A fetch whose token
// does not match the latest issued one lost the race to a newer query: it is
// dropped and the method reports false (last query wins).
func (s *Session) ResultsArrived(token uint64, liveBooks, catalogBooks []Book, categories []Category) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.state.seq {
		metrics.StaleResultsDropped.Inc()
		return false
	}

	s.liveBooks, s.catalogBooks, s.categories = liveBooks, catalogBooks, categories
	s.repartitionLocked()
	return true
}

func (s *Session) repartitionLocked() {
	s.state.Results = Aggregate(s.liveBooks, s.catalogBooks, s.categories, s.state.ActiveTab)
	s.state.Counts = Counts(s.liveBooks, s.catalogBooks, s.categories)
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Results = append([]Result(nil), s.state.Results...)
	return st
}
