// internal/app/system/paging/paging.go
package paging

import (
	"maps"
	"net/http"
	"strconv"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageSize is the number of rows shown in keyset-paged lists
// (communities, user search).
const PageSize = 25

// FeedPageSize is the number of root threads per home feed page.
const FeedPageSize = 20

// ParsePage extracts the 1-based "page" query parameter used by the home feed.
// Returns 1 if not present or invalid.
func ParsePage(r *http.Request) int {
	n, err := strconv.Atoi(query.Get(r, "page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Skip returns the number of documents preceding page (1-based) at size.
func Skip(page, size int) int64 {
	if page < 1 {
		page = 1
	}
	return int64((page - 1) * size)
}

// TrimTo trims rows fetched with limit size+1 down to size and reports
// whether another page exists.
func TrimTo[T any](rows []T, size int) ([]T, bool) {
	if len(rows) > size {
		return rows[:size], true
	}
	return rows, false
}

// Keyset pages a collection ordered by (Field, _id) using opaque cursors.
// A non-empty before wins over after.
type Keyset struct {
	Field    string
	Size     int
	backward bool
	paged    bool
	cursor   *wafflemongo.Cursor
}

// NewKeyset decodes the cursors for one page of size PageSize.
// Undecodable cursors are treated as absent.
func NewKeyset(field, before, after string) Keyset {
	k := Keyset{Field: field, Size: PageSize}
	raw := after
	if before != "" {
		k.backward = true
		raw = before
	}
	if raw == "" {
		return k
	}
	k.paged = true
	if c, ok := wafflemongo.DecodeCursor(raw); ok {
		k.cursor = &c
	}
	return k
}

// FindOptions sorts in walking direction and fetches one look-ahead row.
func (k Keyset) FindOptions() *options.FindOptions {
	order := 1
	if k.backward {
		order = -1
	}
	return options.Find().
		SetSort(bson.D{{Key: k.Field, Value: order}, {Key: "_id", Value: order}}).
		SetLimit(int64(k.Size + 1))
}

// Filter returns base narrowed to the rows past the cursor. An "$or" in
// base is preserved by moving both conditions under "$and".
func (k Keyset) Filter(base bson.M) bson.M {
	f := maps.Clone(base)
	if k.cursor == nil {
		return f
	}
	dir := "gt"
	if k.backward {
		dir = "lt"
	}
	win := wafflemongo.KeysetWindow(k.Field, dir, k.cursor.CI, k.cursor.ID)
	if or, ok := f["$or"]; ok {
		delete(f, "$or")
		f["$and"] = []bson.M{{"$or": or}, win}
		return f
	}
	maps.Copy(f, win)
	return f
}

// Window describes the neighbours of a trimmed page.
type Window struct {
	HasPrev    bool
	HasNext    bool
	PrevCursor string
	NextCursor string
}

// Finish puts rows fetched with FindOptions into display order, drops the
// look-ahead row and builds cursors from the first and last survivors.
func Finish[T any](k Keyset, rows []T, key func(T) (string, primitive.ObjectID)) ([]T, Window) {
	var w Window
	more := len(rows) > k.Size
	if more {
		rows = rows[:k.Size]
	}
	if k.backward {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
		w.HasPrev = more
		w.HasNext = true
	} else {
		w.HasNext = more
		w.HasPrev = k.paged
	}
	if len(rows) > 0 {
		ci, id := key(rows[0])
		w.PrevCursor = wafflemongo.EncodeCursor(ci, id)
		ci, id = key(rows[len(rows)-1])
		w.NextCursor = wafflemongo.EncodeCursor(ci, id)
	}
	return rows, w
}
