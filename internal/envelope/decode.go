package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Page is one page of a paginated listing.
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// DecodeList normalizes raw and decodes the payload as a list. An empty reply
// yields an empty, non-nil slice.
func DecodeList[T any](d *Decoder, raw []byte) ([]T, error) {
	payload, err := d.Normalize(raw)
	if err != nil {
		return nil, err
	}
	if !isArray(payload) {
		return nil, fmt.Errorf("decode %s list: %w", d.keys.Plural, ErrShape)
	}

	items := []T{}
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", d.keys.Plural, err)
	}
	return items, nil
}

// DecodeOne normalizes raw and decodes the payload as a single entity.
// Empty replies, empty objects and empty lists return ErrEmpty.
func DecodeOne[T any](d *Decoder, raw []byte) (T, error) {
	var out T

	env, err := d.Decode(raw)
	if err != nil {
		return out, err
	}
	if _, ok := env.(Empty); ok {
		return out, fmt.Errorf("decode %s: %w", d.keys.Singular, ErrEmpty)
	}

	payload := bytes.TrimSpace(env.Payload())
	switch {
	case bytes.Equal(payload, []byte("{}")), bytes.Equal(payload, []byte("[]")):
		return out, fmt.Errorf("decode %s: %w", d.keys.Singular, ErrEmpty)
	case isArray(payload):
		return out, fmt.Errorf("decode %s: %w", d.keys.Singular, ErrShape)
	}

	if err := json.Unmarshal(payload, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", d.keys.Singular, err)
	}
	return out, nil
}

// DecodePage decodes a paginated listing. A reply without pagination fields
// is treated as a single full page.
func DecodePage[T any](d *Decoder, raw []byte) (Page[T], error) {
	env, err := d.Decode(raw)
	if err != nil {
		return Page[T]{}, err
	}

	items, err := DecodeList[T](d, raw)
	if err != nil {
		return Page[T]{}, err
	}

	page := Page[T]{Data: items}
	if meta := pageMeta(env); meta != nil {
		var fields struct {
			Total      int `json:"total"`
			Page       int `json:"page"`
			Limit      int `json:"limit"`
			TotalPages int `json:"totalPages"`
		}
		if err := json.Unmarshal(meta, &fields); err != nil {
			return Page[T]{}, fmt.Errorf("decode %s page: %w", d.keys.Plural, err)
		}
		page.Total = fields.Total
		page.Page = fields.Page
		page.Limit = fields.Limit
		page.TotalPages = fields.TotalPages
	}

	if page.Total == 0 {
		page.Total = len(items)
	}
	if page.Page == 0 {
		page.Page = 1
	}
	if page.Limit == 0 {
		page.Limit = len(items)
	}
	if page.TotalPages == 0 {
		page.TotalPages = 1
	}
	return page, nil
}

// pageMeta returns the innermost data wrapper whose payload is the list.
func pageMeta(env Envelope) json.RawMessage {
	dw, ok := env.(DataWrapped)
	if !ok {
		return nil
	}
	if inner := pageMeta(dw.Inner); inner != nil {
		return inner
	}
	return dw.Meta
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
