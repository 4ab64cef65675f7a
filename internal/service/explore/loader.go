// internal/service/explore/loader.go

package explore

import (
	"context"
	"errors"
	"fmt"

	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/domain/location"
	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/logger"
)

// DatasetLoader accumulates the full location dataset page by page.
type DatasetLoader struct {
	Source   location.Source
	PageSize int
}

// LoadAll fetches the total count, then sequential pages until the count is
// reached or a short page arrives. Short pages terminate cleanly; the count
// may drift while paging. On failure the records accumulated so far are
// returned together with the error so callers can keep the partial dataset.
// Cancellation returns the partial dataset with a nil error: tearing a
// session down mid-load is not a failure.
func (l *DatasetLoader) LoadAll(ctx context.Context) ([]location.Record, error) {
	pageSize := l.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	total, err := l.Source.FetchLocationCount(ctx, nil)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, nil
		}
		return nil, fmt.Errorf("count locations: %w", err)
	}

	records := make([]location.Record, 0, total)
	for len(records) < total {
		if errors.Is(ctx.Err(), context.Canceled) {
			return records, nil
		}

		page, err := l.Source.FetchLocations(ctx, nil, pageSize, len(records))
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return records, nil
			}
			return records, fmt.Errorf("load page at offset %d: %w", len(records), err)
		}

		records = append(records, page...)
		if len(page) < pageSize {
			break
		}
	}

	return records, nil
}

// runGlobalLoad drives the one full-dataset load a session performs. It runs
// on its own goroutine for the life of the load and finalizes the global
// dataset when done. A partial dataset is kept on error.
func (s *Session) runGlobalLoad() {
	defer s.wg.Done()

	loader := &DatasetLoader{Source: s.source, PageSize: s.config.PageSize}
	records, err := loader.LoadAll(s.ctx)

	// Session torn down mid-load; nobody is left to observe the result.
	if s.ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.global = records
	s.globalLoading = false
	if err != nil {
		s.globalErr = err.Error()
	} else {
		s.globalErr = ""
		s.globalDone = true
	}
	s.invalidateSearchLocked()
	s.mu.Unlock()

	if err != nil {
		logger.L().Warn("global load failed", "session_id", s.id, "loaded", len(records), "err", err)
	} else {
		logger.L().Debug("global load finished", "session_id", s.id, "loaded", len(records))
	}

	s.publishGlobal()
	s.publishSearch()
}
