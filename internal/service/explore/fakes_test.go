// internal/service/explore/fakes_test.go

package explore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/domain/location"
)

// fakeSource is a location.Source backed by function fields, with call
// counters for asserting fetch behavior.
type fakeSource struct {
	countFn      func(ctx context.Context, vp *location.Viewport) (int, error)
	pageFn       func(ctx context.Context, vp *location.Viewport, limit, offset int) ([]location.Record, error)
	categoriesFn func(ctx context.Context) ([]location.Category, error)

	countCalls      int64
	pageCalls       int64
	categoriesCalls int64
}

func (f *fakeSource) FetchLocationCount(ctx context.Context, vp *location.Viewport) (int, error) {
	atomic.AddInt64(&f.countCalls, 1)
	if f.countFn == nil {
		return 0, nil
	}
	return f.countFn(ctx, vp)
}

func (f *fakeSource) FetchLocations(ctx context.Context, vp *location.Viewport, limit, offset int) ([]location.Record, error) {
	atomic.AddInt64(&f.pageCalls, 1)
	if f.pageFn == nil {
		return nil, nil
	}
	return f.pageFn(ctx, vp, limit, offset)
}

func (f *fakeSource) FetchCategories(ctx context.Context) ([]location.Category, error) {
	atomic.AddInt64(&f.categoriesCalls, 1)
	if f.categoriesFn == nil {
		return nil, nil
	}
	return f.categoriesFn(ctx)
}

func (f *fakeSource) pages() int {
	return int(atomic.LoadInt64(&f.pageCalls))
}

func (f *fakeSource) categoryFetches() int {
	return int(atomic.LoadInt64(&f.categoriesCalls))
}

// viewportSource records every viewport descriptor it is asked to fetch. It
// reports an empty directory, so page calls map one-to-one to viewport
// fetches.
type viewportSource struct {
	mu      sync.Mutex
	fetched []*location.Viewport
	serve   func(ctx context.Context, vp *location.Viewport) ([]location.Record, error)
}

func (v *viewportSource) FetchLocationCount(context.Context, *location.Viewport) (int, error) {
	return 0, nil
}

func (v *viewportSource) FetchLocations(ctx context.Context, vp *location.Viewport, limit, offset int) ([]location.Record, error) {
	v.mu.Lock()
	v.fetched = append(v.fetched, vp)
	v.mu.Unlock()

	if v.serve == nil {
		return nil, nil
	}
	return v.serve(ctx, vp)
}

func (v *viewportSource) FetchCategories(context.Context) ([]location.Category, error) {
	return nil, nil
}

func (v *viewportSource) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.fetched)
}

func (v *viewportSource) fetch(i int) *location.Viewport {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fetched[i]
}

// fakeBus records published events in order.
type fakeBus struct {
	mu     sync.Mutex
	err    error
	events []busEvent
}

type busEvent struct {
	subject string
	data    []byte
}

func (b *fakeBus) Publish(subject string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	b.events = append(b.events, busEvent{subject: subject, data: cp})
	return nil
}

func (b *fakeBus) countSubject(subject string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, ev := range b.events {
		if ev.subject == subject {
			n++
		}
	}
	return n
}

func (b *fakeBus) payloads(subject string) [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out [][]byte
	for _, ev := range b.events {
		if ev.subject == subject {
			out = append(out, ev.data)
		}
	}
	return out
}

// newTestSession builds a session with no event bus and closes it with the
// test.
func newTestSession(t *testing.T, source location.Source, config SessionConfig) *Session {
	t.Helper()
	s := newSession("sess-test", source, newEventPublisher(nil, ""), config)
	t.Cleanup(s.Close)
	return s
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func rec(id, name, categoryKey, categoryLabel string) location.Record {
	return location.Record{
		ID:            id,
		Name:          name,
		CategoryKey:   categoryKey,
		CategoryLabel: categoryLabel,
		Status:        location.StatusVerified,
	}
}

func makeRecords(n int) []location.Record {
	records := make([]location.Record, n)
	for i := range records {
		records[i] = rec(fmt.Sprintf("loc-%d", i), fmt.Sprintf("Location %d", i), "cafe", "Kafe")
	}
	return records
}

func pageOf(all []location.Record, limit, offset int) []location.Record {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
