// internal/service/explore/session.go

package explore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/domain/explore"
	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/domain/location"
)

// Engine defaults, applied when a config value is left unset.
const (
	defaultViewportDebounce = 200 * time.Millisecond
	defaultSearchDebounce   = 350 * time.Millisecond
	defaultPageSize         = 1000
	defaultViewportLimit    = 500
	defaultSearchCacheSize  = 30
	defaultSuggestionLimit  = 8
)

// SessionConfig contains the tunables of a single explore session
type SessionConfig struct {
	ViewportDebounce time.Duration
	SearchDebounce   time.Duration
	PageSize         int
	ViewportLimit    int
	SearchCacheSize  int
	SuggestionLimit  int
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.ViewportDebounce <= 0 {
		c.ViewportDebounce = defaultViewportDebounce
	}
	if c.SearchDebounce <= 0 {
		c.SearchDebounce = defaultSearchDebounce
	}
	if c.PageSize < 1 {
		c.PageSize = defaultPageSize
	}
	if c.ViewportLimit < 1 {
		c.ViewportLimit = defaultViewportLimit
	}
	if c.SearchCacheSize < 1 {
		c.SearchCacheSize = defaultSearchCacheSize
	}
	if c.SuggestionLimit < 1 {
		c.SuggestionLimit = defaultSuggestionLimit
	}
	return c
}

// Session implements the explore.Session interface: one client's explore
// state. The global load, the viewport coordinator, and the search surface
// all run their transitions under a single mutex, mirroring the one event
// loop this engine replaces. Datasets are replaced wholesale, never mutated
// in place, so snapshot accessors can hand out the stored slices.
type Session struct {
	id     string
	source location.Source
	events *eventPublisher
	config SessionConfig

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu sync.Mutex

	// Global dataset surface. Grows once, via runGlobalLoad, until finalized.
	global        []location.Record
	globalLoading bool
	globalErr     string
	globalDone    bool

	// Viewport dataset surface.
	viewport        []location.Record
	viewportLoading bool
	viewportErr     string

	// Viewport coordinator state.
	viewportTimer *time.Timer
	viewportGen   uint64
	pending       *location.Viewport
	seq           uint64
	inflight      *viewportFetch
	settled       *location.Viewport
	hasSettled    bool
	suppressNext  bool

	// Search surface.
	searchTimer       *time.Timer
	searchGen         uint64
	rawQuery          string
	rawCategory       string
	committedQuery    string
	committedCategory string
	results           []location.Record
	suggestions       []string
	cache             *searchCache

	// Memoized canonical category list from the directory.
	remoteCategories []location.Category

	lastSeen time.Time
	closed   bool
}

var _ explore.Session = (*Session)(nil)

// newSession creates a session and starts its full-dataset load.
func newSession(id string, source location.Source, events *eventPublisher, config SessionConfig) *Session {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		id:       id,
		source:   source,
		events:   events,
		config:   config.withDefaults(),
		ctx:      ctx,
		cancel:   cancel,
		lastSeen: time.Now(),
	}
	s.cache = newSearchCache(s.config.SearchCacheSize)
	s.globalLoading = true

	s.wg.Add(1)
	go s.runGlobalLoad()

	return s
}

// ID returns the session's unique id.
func (s *Session) ID() string {
	return s.id
}

// Close cancels all in-flight work and waits for the session's goroutines.
// It is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.viewportTimer != nil {
		s.viewportTimer.Stop()
	}
	if s.searchTimer != nil {
		s.searchTimer.Stop()
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

// GlobalState returns a snapshot of the full-dataset load.
func (s *Session) GlobalState() location.FetchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	return s.globalStateLocked()
}

// ViewportState returns a snapshot of the viewport fetch surface.
func (s *Session) ViewportState() location.FetchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	return s.viewportStateLocked()
}

// SearchState returns the committed query with its results and suggestions.
func (s *Session) SearchState() location.SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	return s.searchStateLocked()
}

// ActiveLocations returns the dataset the client should render. The returned
// slice is replaced, never mutated, by the engine; callers must not modify
// it.
func (s *Session) ActiveLocations() []location.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	return s.activeLocked()
}

// Categories returns the distinct categories derived from the active dataset.
func (s *Session) Categories() []location.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	return DeriveCategories(s.activeLocked())
}

// RemoteCategories returns the directory's canonical category list, fetched
// once per session. Failed fetches are not memoized, so the next call
// retries.
func (s *Session) RemoteCategories(ctx context.Context) ([]location.Category, error) {
	s.mu.Lock()
	s.touchLocked()
	cached := s.remoteCategories
	s.mu.Unlock()

	if cached != nil {
		return cached, nil
	}

	categories, err := s.source.FetchCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}

	s.mu.Lock()
	s.remoteCategories = categories
	s.mu.Unlock()
	return categories, nil
}

// activeLocked returns the viewport dataset once a spatially filtered fetch
// has settled, the global dataset otherwise. Callers hold s.mu.
func (s *Session) activeLocked() []location.Record {
	if s.hasSettled && s.settled != nil {
		return s.viewport
	}
	return s.global
}

func (s *Session) globalStateLocked() location.FetchState {
	return location.FetchState{
		Locations: s.global,
		Loading:   s.globalLoading,
		Error:     s.globalErr,
	}
}

func (s *Session) viewportStateLocked() location.FetchState {
	return location.FetchState{
		Locations: s.viewport,
		Loading:   s.viewportLoading,
		Error:     s.viewportErr,
	}
}

func (s *Session) searchStateLocked() location.SearchState {
	return location.SearchState{
		DebouncedQuery: s.committedQuery,
		Filtered:       s.results,
		Suggestions:    s.suggestions,
	}
}

// touchLocked refreshes the idle timer. Callers hold s.mu.
func (s *Session) touchLocked() {
	s.lastSeen = time.Now()
}

func (s *Session) lastSeenTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) publishGlobal() {
	s.mu.Lock()
	state := s.globalStateLocked()
	s.mu.Unlock()

	s.events.publish(s.id, EventGlobal, stateEvent{
		Type:      "global_state",
		SessionID: s.id,
		Global:    &state,
		Time:      time.Now(),
	})
}

func (s *Session) publishViewport() {
	s.mu.Lock()
	state := s.viewportStateLocked()
	s.mu.Unlock()

	s.events.publish(s.id, EventViewport, stateEvent{
		Type:      "viewport_state",
		SessionID: s.id,
		Viewport:  &state,
		Time:      time.Now(),
	})
}

func (s *Session) publishSearch() {
	s.mu.Lock()
	state := s.searchStateLocked()
	s.mu.Unlock()

	s.events.publish(s.id, EventSearch, stateEvent{
		Type:      "search_state",
		SessionID: s.id,
		Search:    &state,
		Time:      time.Now(),
	})
}
