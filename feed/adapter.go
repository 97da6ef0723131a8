package feed

import (
	"context"

	"gorm.io/gorm"
)

// SourceAdapter reads one entity store. FetchPage returns up to limit items
// strictly after the cursor in global feed order, newest first. Adapters are
// read-only; the only filtering they apply is the store's own soft-delete,
// which is deterministic.
type SourceAdapter interface {
	Kind() Kind
	FetchPage(ctx context.Context, cur *Cursor, limit int) ([]FeedItem, error)
}

// cursorScope restricts rows of the given kind to those strictly after the
// cursor. Global order ties on equal timestamps resolve by (kind, id)
// ascending, so which rows qualify at exactly the boundary timestamp depends
// on how this adapter's kind compares to the cursor's kind.
func cursorScope(cur *Cursor, kind Kind) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if cur == nil {
			return db
		}
		switch {
		case cur.Kind == "":
			// timestamp-only boundary
			return db.Where("created_at < ?", cur.CreatedAt)
		case kind > cur.Kind:
			// every row of this kind sorts after the boundary at equal timestamps
			return db.Where("created_at <= ?", cur.CreatedAt)
		case kind == cur.Kind:
			return db.Where("created_at < ? OR (created_at = ? AND id > ?)",
				cur.CreatedAt, cur.CreatedAt, cur.Id)
		default:
			return db.Where("created_at < ?", cur.CreatedAt)
		}
	}
}
