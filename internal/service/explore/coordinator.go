// internal/service/explore/coordinator.go

package explore

import (
	"context"
	"errors"
	"time"

	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/domain/location"
	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/logger"
)

// viewportFetch tracks one issued viewport fetch. Its seq decides
// canonicality: only the fetch whose seq is still current when it returns may
// touch session state.
type viewportFetch struct {
	seq    uint64
	vp     *location.Viewport
	cancel context.CancelFunc
}

// ReportViewportChange records the latest viewport descriptor and restarts
// the debounce window; only the descriptor present when the timer fires is
// acted on. bbox is the wire form "west,south,east,north"; nil means no
// spatial filter. Malformed input degrades to no filter.
func (s *Session) ReportViewportChange(bbox *string) {
	var vp *location.Viewport
	if bbox != nil {
		parsed, err := location.ParseViewport(*bbox)
		if err != nil {
			logger.L().Debug("viewport input degraded to unfiltered", "session_id", s.id, "bbox", *bbox, "err", err)
		} else {
			vp = parsed
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.touchLocked()

	s.pending = vp

	if s.viewportTimer != nil {
		s.viewportTimer.Stop()
	}
	s.viewportGen++
	gen := s.viewportGen
	s.viewportTimer = time.AfterFunc(s.config.ViewportDebounce, func() {
		s.fireViewport(gen)
	})
}

// SuppressNextFetch arms a one-shot flag consumed at exactly one debounce
// fire, for programmatic map moves that need no refetch.
func (s *Session) SuppressNextFetch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.touchLocked()
	s.suppressNext = true
}

// fireViewport runs once per debounce fire and decides whether the latest
// descriptor needs a fetch. A stopped timer can still fire once; the
// generation check drops those late fires.
func (s *Session) fireViewport(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.viewportGen {
		s.mu.Unlock()
		return
	}

	vp := s.pending

	if s.suppressNext {
		s.suppressNext = false
		s.mu.Unlock()
		return
	}

	// A fetch for this same descriptor is already on its way.
	if s.inflight != nil && vp.Equal(s.inflight.vp) {
		s.mu.Unlock()
		return
	}

	// The map is already showing exactly this data.
	if s.inflight == nil && s.hasSettled && vp.Equal(s.settled) {
		s.mu.Unlock()
		return
	}

	if s.inflight != nil {
		s.inflight.cancel()
	}

	s.seq++
	fetchCtx, cancel := context.WithCancel(s.ctx)
	fetch := &viewportFetch{seq: s.seq, vp: vp, cancel: cancel}
	s.inflight = fetch
	s.viewportLoading = true

	s.wg.Add(1)
	go s.runViewportFetch(fetchCtx, fetch)
	s.mu.Unlock()

	s.publishViewport()
}

// runViewportFetch performs one issued fetch and applies its outcome only if
// it is still canonical when it returns. A viewport fetch is a single bounded
// page; the null descriptor still fetches, just without a spatial filter.
func (s *Session) runViewportFetch(ctx context.Context, fetch *viewportFetch) {
	defer s.wg.Done()
	defer fetch.cancel()

	records, err := s.source.FetchLocations(ctx, fetch.vp, s.config.ViewportLimit, 0)

	s.mu.Lock()
	if s.closed || s.inflight == nil || s.inflight.seq != fetch.seq {
		// Superseded: a newer request owns the viewport now.
		s.mu.Unlock()
		return
	}
	s.inflight = nil

	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.mu.Unlock()
			return
		}
		s.viewportErr = err.Error()
		s.viewportLoading = false
		s.mu.Unlock()

		logger.L().Warn("viewport fetch failed", "session_id", s.id, "err", err)
		s.publishViewport()
		return
	}

	s.viewport = records
	s.viewportErr = ""
	s.viewportLoading = false
	s.settled = fetch.vp
	s.hasSettled = true
	s.invalidateSearchLocked()
	s.mu.Unlock()

	s.publishViewport()
	s.publishSearch()
}
