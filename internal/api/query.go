package api

import (
	"net/url"
	"strconv"
	"strings"
)

// Query builds a query string from optional filter fields. Nil pointers and
// blank strings are omitted rather than sent empty.
type Query struct {
	values url.Values
}

// NewQuery returns an empty Query.
func NewQuery() *Query {
	return &Query{values: url.Values{}}
}

// Str adds key when v is set and not blank.
func (q *Query) Str(key string, v *string) *Query {
	if v != nil && strings.TrimSpace(*v) != "" {
		q.values.Set(key, strings.TrimSpace(*v))
	}
	return q
}

// Int adds key when v is set.
func (q *Query) Int(key string, v *int) *Query {
	if v != nil {
		q.values.Set(key, strconv.Itoa(*v))
	}
	return q
}

// Bool adds key when v is set.
func (q *Query) Bool(key string, v *bool) *Query {
	if v != nil {
		q.values.Set(key, strconv.FormatBool(*v))
	}
	return q
}

// PositiveInt adds key when v is greater than zero.
func (q *Query) PositiveInt(key string, v int) *Query {
	if v > 0 {
		q.values.Set(key, strconv.Itoa(v))
	}
	return q
}

// Values returns the accumulated values.
func (q *Query) Values() url.Values {
	return q.values
}
