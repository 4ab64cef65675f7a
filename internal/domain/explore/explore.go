// internal/domain/explore/explore.go

package explore

import (
	"context"
	"errors"

	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/domain/location"
)

// ErrSessionNotFound is returned when no live session exists for an id.
var ErrSessionNotFound = errors.New("session not found")

// ErrTooManySessions is returned when the live session cap is reached.
var ErrTooManySessions = errors.New("too many sessions")

// Session is one client's explore state: the full-dataset load, the
// debounced viewport fetch surface, and the debounced search surface. All
// methods are safe for concurrent use and refresh the session's idle timer.
type Session interface {
	// ID returns the session's unique id.
	ID() string

	// ReportViewportChange records the latest map viewport and restarts the
	// debounce window. bbox is the wire form "west,south,east,north"; nil
	// means no spatial filter. Malformed input degrades to no filter.
	ReportViewportChange(bbox *string)

	// SuppressNextFetch arms a one-shot flag that swallows exactly one
	// debounce fire, for programmatic map moves that need no refetch.
	SuppressNextFetch()

	// UpdateSearch records the latest raw search input and restarts the
	// search debounce window.
	UpdateSearch(query, category string)

	// GlobalState returns a snapshot of the full-dataset load.
	GlobalState() location.FetchState

	// ViewportState returns a snapshot of the viewport fetch surface.
	ViewportState() location.FetchState

	// SearchState returns the committed query with its results and
	// suggestions.
	SearchState() location.SearchState

	// ActiveLocations returns the dataset the client should render: the
	// viewport dataset once a spatially filtered fetch has settled, the
	// global dataset otherwise.
	ActiveLocations() []location.Record

	// Categories returns the distinct categories derived from the active
	// dataset, ordered by key.
	Categories() []location.Category

	// RemoteCategories returns the directory's canonical category list,
	// fetched once per session and memoized.
	RemoteCategories(ctx context.Context) ([]location.Category, error)

	// Close cancels all in-flight work and releases the session.
	Close()
}

// Manager owns the live sessions of the explore service.
type Manager interface {
	// CreateSession creates a new session and starts its full-dataset load.
	CreateSession() (Session, error)

	// GetSession returns a live session by id.
	GetSession(id string) (Session, error)

	// CloseSession closes a live session and removes it.
	CloseSession(id string) error
}
