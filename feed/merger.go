package feed

import (
	"context"
	"sort"
	"sync"
	"time"

	Logger "github.com/openhive/hivemux/utils/log"
	"github.com/pkg/errors"
)

// DefaultSourceTimeout bounds each source query so one slow store can not
// hold the whole page hostage.
const DefaultSourceTimeout = 3 * time.Second

// Page is one merged feed page. NextCursor is nil when every source is
// exhausted. Partial is true when at least one source was omitted because it
// failed; the page is still served from the sources that answered.
type Page struct {
	Items      []FeedItem `json:"items"`
	NextCursor *string    `json:"nextCursor"`
	Partial    bool       `json:"partial,omitempty"`
}

// Merger fans out one query per source adapter and merges the results into a
// single reverse-chronological page. There is no unified table behind the
// feed; this is a k-way merge over independently stored collections, so the
// page is only point-in-time consistent per source.
type Merger struct {
	adapters []SourceAdapter
	timeout  time.Duration
}

func NewMerger(timeout time.Duration, adapters ...SourceAdapter) *Merger {
	if timeout <= 0 {
		timeout = DefaultSourceTimeout
	}
	return &Merger{adapters: adapters, timeout: timeout}
}

type fetchResult struct {
	kind      Kind
	items     []FeedItem
	exhausted bool
	err       error
}

// MergePage asks every adapter for up to limit+1 candidates after cur,
// merges, sorts, and truncates to limit.
//
// Whether more pages exist is tracked per adapter, not from the merged page
// size: an adapter that returned a full page may have all of it trimmed out
// by truncation, and its remainder must still be reachable through
// NextCursor. Asking each adapter for one item beyond the page over-fetches,
// but it guarantees a full page can always be assembled without starving any
// source, and a source that ends exactly at the boundary reads as exhausted
// without an extra empty round trip.
func (m *Merger) MergePage(ctx context.Context, cur *Cursor, limit int) (*Page, error) {
	fetchLimit := limit + 1
	results := make([]fetchResult, len(m.adapters))
	var wg sync.WaitGroup
	for ind := range m.adapters {
		wg.Add(1)
		go func(ind int, a SourceAdapter) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, m.timeout)
			defer cancel()

			items, err := a.FetchPage(fetchCtx, cur, fetchLimit)
			if err != nil {
				Logger.Log.Errorf("feed source %s failed, omitting from page: %s", a.Kind(), err)
				// A failed source counts as exhausted so a persistently broken
				// store can not stall pagination; its tail resumes once it recovers.
				results[ind] = fetchResult{kind: a.Kind(), exhausted: true, err: err}
				return
			}
			results[ind] = fetchResult{kind: a.Kind(), items: items, exhausted: len(items) < fetchLimit}
		}(ind, m.adapters[ind])
	}
	wg.Wait()

	var (
		merged  = []FeedItem{}
		failed  int
		hasMore bool
	)
	for _, res := range results {
		if res.err != nil {
			failed++
			continue
		}
		merged = append(merged, res.items...)
		if !res.exhausted {
			hasMore = true
		}
	}
	if len(m.adapters) > 0 && failed == len(m.adapters) {
		return nil, errors.New("every feed source failed")
	}

	sort.Slice(merged, func(i, j int) bool { return Before(merged[i], merged[j]) })

	if len(merged) > limit {
		hasMore = true
		merged = merged[:limit]
	}

	page := &Page{Items: merged, Partial: failed > 0}
	if hasMore && len(merged) > 0 {
		token := merged[len(merged)-1].CursorAfter().Encode()
		page.NextCursor = &token
	}
	return page, nil
}
