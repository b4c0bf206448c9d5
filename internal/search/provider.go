package search

import (
	"context"
	"errors"
	"fmt"

	"ebiblio/internal/query"
)

// CatalogFilter narrows a catalog listing. Zero value lists everything
// (capped by the store's default limit).
type CatalogFilter struct {
	Author     string
	CategoryID string
	Limit      int
	Offset     int
}

// Provider is the external collaborator performing the actual fetches: the
// live half goes to the hosted backend, the catalog half to the local store.
type Provider interface {
	// Search runs a live query for the already-stripped term under the given
	// mode. May return partial results alongside an error.
	Search(ctx context.Context, term string, mode query.Mode) ([]Book, []Category, error)
	// ListCatalog returns the locally cached catalog listing.
	ListCatalog(ctx context.Context, filter CatalogFilter) ([]Book, error)
}

// ErrKind partitions provider failures for the delivery layer.
type ErrKind string

const (
	KindNetwork  ErrKind = "network"
	KindNotFound ErrKind = "not_found"
	KindBadData  ErrKind = "bad_data"
)

// ProviderError is the failure shape every collaborator maps onto.
type ProviderError struct {
	Kind    ErrKind
	Op      string
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewError builds a ProviderError wrapping err (err may be nil).
func NewError(kind ErrKind, op, message string, err error) *ProviderError {
	return &ProviderError{Kind: kind, Op: op, Message: message, Err: err}
}

// KindOf extracts the error kind, defaulting to network for unknown errors.
func KindOf(err error) ErrKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindNetwork
}

// IsNotFound reports whether err carries the not-found kind.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
