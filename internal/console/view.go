package console

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/p-n-ai/pai-admin/internal/filter"
	"github.com/p-n-ai/pai-admin/internal/store"
	"github.com/p-n-ai/pai-admin/internal/table"
)

// collection is the read side of a store.
type collection[T, F any] interface {
	Fetch(ctx context.Context, f F) ([]T, error)
	Items() []T
}

// fetchCurrent fetches through src. A fetch superseded by a concurrent
// request or mutation falls back to the store's items, which already hold
// the newer result.
func fetchCurrent[T, F any](ctx context.Context, src collection[T, F], f F) ([]T, error) {
	items, err := src.Fetch(ctx, f)
	if errors.Is(err, store.ErrStale) {
		return src.Items(), nil
	}
	return items, err
}

type view[T any] struct {
	table *table.Table[T, int]
	chips []filter.Chip
}

type viewSpec[T any] struct {
	filters *filter.Engine[T]
	columns []table.Column[T]
	key     func(T) int
}

// buildView applies the request's filters, sort and page to rows. Every
// filter the engine knows is read from the query string by name.
func buildView[T any](r *http.Request, spec viewSpec[T], rows []T, pageSize int) (*view[T], error) {
	q := r.URL.Query()
	for _, name := range spec.filters.Names() {
		if err := spec.filters.Set(name, q.Get(name)); err != nil {
			return nil, badRequest(err.Error())
		}
	}

	tb := table.New(spec.columns, spec.key, pageSize)
	if key := q.Get("sort"); key != "" {
		if err := tb.SetSort(key, table.Direction(q.Get("dir"))); err != nil {
			return nil, badRequest(err.Error())
		}
	}
	if size, err := strconv.Atoi(q.Get("page_size")); err == nil {
		tb.SetPageSize(size)
	}
	tb.SetRows(spec.filters.Apply(rows))
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		tb.SetPage(page)
	}
	return &view[T]{table: tb, chips: spec.filters.Chips()}, nil
}

func writeView[T any](w http.ResponseWriter, v *view[T]) {
	key, dir := v.table.Sort()
	writeJSON(w, http.StatusOK, map[string]any{
		"rows":  v.table.Page(),
		"chips": v.chips,
		"page":  v.table.PageInfo(),
		"sort":  map[string]any{"key": key, "dir": dir},
	})
}
