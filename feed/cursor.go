package feed

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidCursor is returned by DecodeCursor on any malformed token.
var ErrInvalidCursor = errors.New("invalid feed cursor")

/*

Cursor is the exclusive pagination boundary of the merged feed: "give me items
strictly after this point in global feed order". Global order is createdAt
descending with ties broken by (kind, id) ascending, so the cursor carries all
three. A bare timestamp is not enough: two items sharing a timestamp exactly
at a page boundary would be skipped or duplicated without the tiebreak.

The encoded form is opaque to clients and stable across process restarts,
it is a pure serialization with no server side session behind it.

*/

type Cursor struct {
	CreatedAt time.Time
	Kind      Kind
	Id        string
}

// Encode serializes the cursor into an opaque URL-safe token.
func (c Cursor) Encode() string {
	raw := fmt.Sprintf("%d:%s:%s", c.CreatedAt.UnixNano(), c.Kind, c.Id)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token produced by Encode. It returns ErrInvalidCursor
// on garbage input, never a partially filled cursor.
func DecodeCursor(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}

	parts := strings.SplitN(string(raw), ":", 3)
	if len(parts) != 3 {
		return Cursor{}, ErrInvalidCursor
	}

	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}

	kind := Kind(parts[1])
	if kind != "" && !IsKnownKind(kind) {
		return Cursor{}, ErrInvalidCursor
	}

	return Cursor{
		CreatedAt: time.Unix(0, nanos).UTC(),
		Kind:      kind,
		Id:        parts[2],
	}, nil
}
