// Package table sorts, paginates and selects rows of any type for the
// console's list views, and exports them to XLSX.
package table

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Column describes one table column. Value supplies the sort key and the
// default cell text; Render overrides the cell text.
type Column[T any] struct {
	Key      string
	Label    string
	Sortable bool
	Value    func(T) any
	Render   func(T) string
}

// Cell returns the display text of row in this column.
func (c Column[T]) Cell(row T) string {
	if c.Render != nil {
		return c.Render(row)
	}
	if c.Value == nil {
		return ""
	}
	v := c.Value(row)
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// PageInfo describes the current page.
type PageInfo struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalRows  int `json:"total_rows"`
	TotalPages int `json:"total_pages"`
}

// Table holds rows with one sort column, a page and a selection keyed by
// row identity. A Table is not safe for concurrent use.
type Table[T any, K comparable] struct {
	columns  []Column[T]
	key      func(T) K
	rows     []T
	sortKey  string
	dir      Direction
	page     int
	pageSize int
	selected map[K]struct{}
}

// New creates a table. key returns a row's identity for selection.
func New[T any, K comparable](columns []Column[T], key func(T) K, pageSize int) *Table[T, K] {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Table[T, K]{
		columns:  columns,
		key:      key,
		rows:     []T{},
		dir:      Asc,
		page:     1,
		pageSize: pageSize,
		selected: make(map[K]struct{}),
	}
}

// Columns returns the column definitions.
func (t *Table[T, K]) Columns() []Column[T] {
	return t.columns
}

// SetRows replaces the data, re-applies the sort and clamps the page.
// Selection is kept for rows that are still present.
func (t *Table[T, K]) SetRows(rows []T) {
	t.rows = slices.Clone(rows)
	if t.rows == nil {
		t.rows = []T{}
	}
	t.sort()

	present := make(map[K]struct{}, len(t.rows))
	for _, r := range t.rows {
		present[t.key(r)] = struct{}{}
	}
	for k := range t.selected {
		if _, ok := present[k]; !ok {
			delete(t.selected, k)
		}
	}
	t.clamp()
}

// SortBy sorts by key. Sorting by the current column toggles the direction;
// a new column starts ascending. Unknown or unsortable columns are rejected.
func (t *Table[T, K]) SortBy(key string) error {
	col, ok := t.column(key)
	if !ok || !col.Sortable {
		return fmt.Errorf("column %q is not sortable", key)
	}
	if t.sortKey == key {
		if t.dir == Asc {
			t.dir = Desc
		} else {
			t.dir = Asc
		}
	} else {
		t.sortKey = key
		t.dir = Asc
	}
	t.sort()
	return nil
}

// SetSort sets the sort column and direction explicitly.
func (t *Table[T, K]) SetSort(key string, dir Direction) error {
	col, ok := t.column(key)
	if !ok || !col.Sortable {
		return fmt.Errorf("column %q is not sortable", key)
	}
	if dir != Desc {
		dir = Asc
	}
	t.sortKey, t.dir = key, dir
	t.sort()
	return nil
}

// Sort returns the current sort column and direction.
func (t *Table[T, K]) Sort() (string, Direction) {
	return t.sortKey, t.dir
}

// Rows returns all rows in sort order.
func (t *Table[T, K]) Rows() []T {
	return slices.Clone(t.rows)
}

// SetPage moves to page, clamped to the valid range.
func (t *Table[T, K]) SetPage(page int) {
	t.page = page
	t.clamp()
}

// SetPageSize changes the page size and clamps the page.
func (t *Table[T, K]) SetPageSize(size int) {
	if size > 0 {
		t.pageSize = size
	}
	t.clamp()
}

// Page returns the rows of the current page.
func (t *Table[T, K]) Page() []T {
	start := (t.page - 1) * t.pageSize
	end := min(start+t.pageSize, len(t.rows))
	if start >= end {
		return []T{}
	}
	return slices.Clone(t.rows[start:end])
}

// PageInfo describes the current page.
func (t *Table[T, K]) PageInfo() PageInfo {
	return PageInfo{
		Page:       t.page,
		PageSize:   t.pageSize,
		TotalRows:  len(t.rows),
		TotalPages: t.totalPages(),
	}
}

// Toggle flips the selection of the row with key k.
func (t *Table[T, K]) Toggle(k K) {
	if _, ok := t.selected[k]; ok {
		delete(t.selected, k)
		return
	}
	t.selected[k] = struct{}{}
}

// IsSelected reports whether the row with key k is selected.
func (t *Table[T, K]) IsSelected(k K) bool {
	_, ok := t.selected[k]
	return ok
}

// SelectAllOnPage selects every row of the current page, or clears them when
// all are already selected.
func (t *Table[T, K]) SelectAllOnPage() {
	page := t.Page()
	all := len(page) > 0
	for _, r := range page {
		if !t.IsSelected(t.key(r)) {
			all = false
			break
		}
	}
	for _, r := range page {
		if all {
			delete(t.selected, t.key(r))
		} else {
			t.selected[t.key(r)] = struct{}{}
		}
	}
}

// ClearSelection deselects every row.
func (t *Table[T, K]) ClearSelection() {
	clear(t.selected)
}

// Selected returns the selected rows in sort order.
func (t *Table[T, K]) Selected() []T {
	out := []T{}
	for _, r := range t.rows {
		if t.IsSelected(t.key(r)) {
			out = append(out, r)
		}
	}
	return out
}

func (t *Table[T, K]) column(key string) (Column[T], bool) {
	for _, c := range t.columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column[T]{}, false
}

func (t *Table[T, K]) totalPages() int {
	if len(t.rows) == 0 {
		return 1
	}
	return (len(t.rows) + t.pageSize - 1) / t.pageSize
}

func (t *Table[T, K]) clamp() {
	t.page = max(1, min(t.page, t.totalPages()))
}

func (t *Table[T, K]) sort() {
	col, ok := t.column(t.sortKey)
	if !ok || col.Value == nil {
		return
	}
	coll := collate.New(language.Und, collate.IgnoreCase)
	slices.SortStableFunc(t.rows, func(a, b T) int {
		c := compare(coll, col.Value(a), col.Value(b))
		if t.dir == Desc {
			return -c
		}
		return c
	})
}

// compare orders nil first, then values of the same kind: numbers, collated
// strings, booleans and times. Mismatched kinds compare by their text.
func compare(coll *collate.Collator, a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			return cmp.Compare(fa, fb)
		}
	}
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return coll.CompareString(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	}
	return coll.CompareString(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
