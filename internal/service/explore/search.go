// internal/service/explore/search.go

package explore

import (
	"container/list"
	"strings"
	"time"

	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/domain/location"
)

// searchResult is one computed search outcome: the filtered records and the
// suggestions derived from them. Cached results are treated as immutable;
// callers must not modify the slices.
type searchResult struct {
	records     []location.Record
	suggestions []string
}

// cacheKey builds the cache key for a normalized query and category key.
func cacheKey(query, categoryKey string) string {
	return query + "\x00" + categoryKey
}

// searchCache memoizes committed search results keyed by normalized query and
// category. The least-recently-used entry is evicted beyond capacity; hits
// refresh recency. It is not safe for concurrent use; the owning session
// serializes access.
type searchCache struct {
	capacity int
	order    *list.List // front is most recently used
	entries  map[string]*list.Element
}

type cacheEntry struct {
	key    string
	result searchResult
}

func newSearchCache(capacity int) *searchCache {
	if capacity < 1 {
		capacity = defaultSearchCacheSize
	}
	return &searchCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

func (c *searchCache) get(key string) (searchResult, bool) {
	el, ok := c.entries[key]
	if !ok {
		return searchResult{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).result, true
}

func (c *searchCache) put(key string, result searchResult) {
	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).result = result
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, result: result})

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (c *searchCache) clear() {
	c.order.Init()
	c.entries = make(map[string]*list.Element)
}

func (c *searchCache) len() int {
	return c.order.Len()
}

// computeSearch scans the dataset for records whose normalized name or
// category label contains the normalized query, honoring the category filter.
// Suggestions come from matches in dataset order: the record name for a name
// match, the category label otherwise, de-duplicated by normalized form and
// capped at suggestionLimit.
func computeSearch(data []location.Record, query, categoryKey string, suggestionLimit int) searchResult {
	var result searchResult
	seen := make(map[string]struct{})

	for _, rec := range data {
		if categoryKey != "" && normalizeKey(rec.CategoryKey) != categoryKey {
			continue
		}

		nameMatch := strings.Contains(normalizeText(rec.Name), query)
		labelMatch := strings.Contains(normalizeText(rec.CategoryLabel), query)
		if !nameMatch && !labelMatch {
			continue
		}

		result.records = append(result.records, rec)

		if len(result.suggestions) >= suggestionLimit {
			continue
		}
		candidate := rec.Name
		if !nameMatch {
			candidate = rec.CategoryLabel
		}
		normalized := normalizeText(candidate)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		result.suggestions = append(result.suggestions, candidate)
	}

	return result
}

// filterByCategoryKey returns the records in the given category, or the
// dataset itself when no filter is set.
func filterByCategoryKey(data []location.Record, categoryKey string) []location.Record {
	if categoryKey == "" {
		return data
	}

	out := make([]location.Record, 0)
	for _, rec := range data {
		if normalizeKey(rec.CategoryKey) == categoryKey {
			out = append(out, rec)
		}
	}
	return out
}

// UpdateSearch records the latest raw input pair and restarts the search
// debounce window; only the pair present when the timer fires is committed.
func (s *Session) UpdateSearch(query, category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.touchLocked()

	s.rawQuery = query
	s.rawCategory = category

	if s.searchTimer != nil {
		s.searchTimer.Stop()
	}
	s.searchGen++
	gen := s.searchGen
	s.searchTimer = time.AfterFunc(s.config.SearchDebounce, func() {
		s.commitSearch(gen)
	})
}

// commitSearch commits the raw input pair captured when the debounce timer
// fires. A stopped timer can still fire once; the generation check drops
// those late fires.
func (s *Session) commitSearch(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.searchGen {
		s.mu.Unlock()
		return
	}

	s.committedQuery = strings.TrimSpace(s.rawQuery)
	s.committedCategory = s.rawCategory
	s.recomputeSearchLocked()
	s.mu.Unlock()

	s.publishSearch()
}

// recomputeSearchLocked evaluates the committed query against the active
// dataset, through the cache. Callers hold s.mu.
func (s *Session) recomputeSearchLocked() {
	result := s.searchLocked(s.committedQuery, s.committedCategory)
	s.results = result.records
	s.suggestions = result.suggestions
}

// searchLocked computes or recalls one search outcome. The empty query is
// just the category-filtered active dataset and bypasses the cache. Callers
// hold s.mu.
func (s *Session) searchLocked(rawQuery, rawCategory string) searchResult {
	query := normalizeText(rawQuery)
	categoryKey := normalizeKey(rawCategory)
	data := s.activeLocked()

	if query == "" {
		return searchResult{records: filterByCategoryKey(data, categoryKey)}
	}

	key := cacheKey(query, categoryKey)
	if hit, ok := s.cache.get(key); ok {
		return hit
	}

	result := computeSearch(data, query, categoryKey, s.config.SuggestionLimit)
	s.cache.put(key, result)
	return result
}

// invalidateSearchLocked drops every cached entry and recomputes the
// committed query, so search state never reflects a replaced dataset.
// Callers hold s.mu.
func (s *Session) invalidateSearchLocked() {
	s.cache.clear()
	s.recomputeSearchLocked()
}
