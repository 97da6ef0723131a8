package feed

import (
	"time"
)

// Kind tags a feed item with the source collection it came from.
type Kind string

const (
	KindPost    Kind = "post"
	KindReview  Kind = "review"
	KindEvent   Kind = "event"
	KindCourse  Kind = "course"
	KindTour    Kind = "tour"
	KindChapter Kind = "chapter"
)

var knownKinds = map[Kind]bool{
	KindPost:    true,
	KindReview:  true,
	KindEvent:   true,
	KindCourse:  true,
	KindTour:    true,
	KindChapter: true,
}

// IsKnownKind reports whether k names one of the feed source kinds.
func IsKnownKind(k Kind) bool {
	return knownKinds[k]
}

/*

FeedItem is the envelope every source projects its native record into. It is
derived on each request and never persisted.

Id: identity inside the source collection
Kind: which source collection the item came from
CreatedAt: global ordering key, same epoch and precision across all sources
Payload: kind-specific projected fields for rendering, opaque to the merger

*/

type FeedItem struct {
	Id        string      `json:"id"`
	Kind      Kind        `json:"kind"`
	CreatedAt time.Time   `json:"createdAt"`
	Payload   interface{} `json:"payload"`
}

// Before reports whether a precedes b in global feed order: newest first,
// ties broken by (kind, id) ascending. The order is total, so repeated
// requests with an unchanged cursor return identical pages.
func Before(a, b FeedItem) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.Id < b.Id
}

// CursorAfter returns the boundary that excludes this item and everything
// before it.
func (i FeedItem) CursorAfter() Cursor {
	return Cursor{CreatedAt: i.CreatedAt, Kind: i.Kind, Id: i.Id}
}
