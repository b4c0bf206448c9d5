package search

import "time"

// Book is a catalog entry as seen by the aggregator. Immutable here; sourced
// from the backend or the local store.
type Book struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	CoverURL  string    `json:"cover_url,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Category groups books for browsing.
type Category struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Kind tags which variant a Result holds.
type Kind string

const (
	KindBook     Kind = "book"
	KindCategory Kind = "category"
)

// Source records which origin list a result came from. Display provenance
// only — identity is (Kind, ID).
type Source string

const (
	SourceLive    Source = "live"
	SourceCatalog Source = "catalog"
)

// Result is a tagged union over {Book, Category}.
type Result struct {
	Kind     Kind      `json:"kind"`
	Source   Source    `json:"source"`
	Book     *Book     `json:"book,omitempty"`
	Category *Category `json:"category,omitempty"`
}

// ID returns the identifier of whichever variant is set.
func (r Result) ID() string {
	if r.Kind == KindCategory && r.Category != nil {
		return r.Category.ID
	}
	if r.Book != nil {
		return r.Book.ID
	}
	return ""
}

// Tab is a partition (all/books/categories) over the aggregated result set.
type Tab string

const (
	TabAll        Tab = "all"
	TabBooks      Tab = "books"
	TabCategories Tab = "categories"
)

// ParseTab maps a raw tab name to a Tab, defaulting to TabAll.
func ParseTab(s string) Tab {
	switch Tab(s) {
	case TabBooks:
		return TabBooks
	case TabCategories:
		return TabCategories
	default:
		return TabAll
	}
}

// TabCounts holds the badge count each tab would show, independent of which
// tab is active.
type TabCounts struct {
	All        int `json:"all"`
	Books      int `json:"books"`
	Categories int `json:"categories"`
}
