// Package envelope reconciles the backend's inconsistent reply shapes into one
// canonical payload per resource.
//
// A reply is classified into exactly one named variant. Each variant is
// described by a JSON Schema compiled once per resource; the first schema that
// validates wins, in the order array, data, plural key, singular key. Anything
// else is Plain and passes through unchanged, and a null or empty body is Empty.
package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// maxDataDepth bounds how many nested "data" wrappers are peeled.
const maxDataDepth = 2

// ErrEmpty is returned when a single entity was expected but the reply
// carried none.
var ErrEmpty = errors.New("empty response")

// ErrShape is returned when a list was expected but the payload is not one.
var ErrShape = errors.New("unexpected response shape")

var emptyList = json.RawMessage(`[]`)

// Envelope is one of Bare, DataWrapped, PluralWrapped, SingularWrapped, Plain
// or Empty.
type Envelope interface {
	// Payload returns the canonical value carried by the envelope.
	Payload() json.RawMessage
	variant() string
}

// Bare is a top-level JSON array.
type Bare struct {
	Items json.RawMessage
}

// DataWrapped is an object whose "data" field holds the payload.
// Meta is the wrapping object itself, used to read pagination fields.
type DataWrapped struct {
	Inner Envelope
	Meta  json.RawMessage
}

// PluralWrapped is an object carrying the list under the resource's plural
// name, e.g. {"courses": [...]}.
type PluralWrapped struct {
	Key   string
	Items json.RawMessage
}

// SingularWrapped is an object carrying one entity under the resource's
// singular name, e.g. {"course": {...}}.
type SingularWrapped struct {
	Key  string
	Item json.RawMessage
}

// Plain is a value already in canonical form.
type Plain struct {
	Value json.RawMessage
}

// Empty is a null or empty reply.
type Empty struct{}

func (e Bare) Payload() json.RawMessage            { return e.Items }
func (e DataWrapped) Payload() json.RawMessage     { return e.Inner.Payload() }
func (e PluralWrapped) Payload() json.RawMessage   { return e.Items }
func (e SingularWrapped) Payload() json.RawMessage { return e.Item }
func (e Plain) Payload() json.RawMessage           { return e.Value }
func (Empty) Payload() json.RawMessage             { return emptyList }

func (Bare) variant() string            { return "bare" }
func (DataWrapped) variant() string     { return "data" }
func (PluralWrapped) variant() string   { return "plural" }
func (SingularWrapped) variant() string { return "singular" }
func (Plain) variant() string           { return "plain" }
func (Empty) variant() string           { return "empty" }

// Name returns the variant name of e, for logging.
func Name(e Envelope) string {
	if e == nil {
		return "empty"
	}
	return e.variant()
}

// Keys names the resource-specific wrapper fields.
type Keys struct {
	Plural   string
	Singular string
}

// Decoder classifies replies for one resource.
type Decoder struct {
	keys     Keys
	bare     *gojsonschema.Schema
	data     *gojsonschema.Schema
	plural   *gojsonschema.Schema
	singular *gojsonschema.Schema
}

// NewDecoder compiles the variant schemas for a resource.
func NewDecoder(keys Keys) (*Decoder, error) {
	if keys.Plural == "" || keys.Singular == "" {
		return nil, fmt.Errorf("envelope keys require plural and singular names, got %+v", keys)
	}

	d := &Decoder{keys: keys}
	var err error
	if d.bare, err = compile(map[string]any{"type": "array"}); err != nil {
		return nil, fmt.Errorf("bare schema: %w", err)
	}
	if d.data, err = compile(wrapperSchema("data", map[string]any{})); err != nil {
		return nil, fmt.Errorf("data schema: %w", err)
	}
	if d.plural, err = compile(wrapperSchema(keys.Plural, map[string]any{"type": "array"})); err != nil {
		return nil, fmt.Errorf("plural schema: %w", err)
	}
	if d.singular, err = compile(wrapperSchema(keys.Singular, map[string]any{"type": "object"})); err != nil {
		return nil, fmt.Errorf("singular schema: %w", err)
	}
	return d, nil
}

// MustDecoder is NewDecoder for package-level resource declarations.
func MustDecoder(keys Keys) *Decoder {
	d, err := NewDecoder(keys)
	if err != nil {
		panic(err)
	}
	return d
}

// Keys returns the wrapper names this decoder recognizes.
func (d *Decoder) Keys() Keys {
	return d.keys
}

func wrapperSchema(field string, property map[string]any) map[string]any {
	return map[string]any{
		"type":       "object",
		"required":   []string{field},
		"properties": map[string]any{field: property},
	}
}

func compile(schema map[string]any) (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
}

// Decode classifies raw.
func (d *Decoder) Decode(raw []byte) (Envelope, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Empty{}, nil
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("decode %s envelope: invalid JSON", d.keys.Singular)
	}
	return d.classify(raw, 0)
}

func (d *Decoder) classify(raw json.RawMessage, depth int) (Envelope, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Empty{}, nil
	}
	loader := gojsonschema.NewBytesLoader(raw)

	ok, err := matches(d.bare, loader)
	if err != nil {
		return nil, err
	}
	if ok {
		return Bare{Items: raw}, nil
	}

	if depth < maxDataDepth {
		if ok, err = matches(d.data, loader); err != nil {
			return nil, err
		}
		if ok {
			inner, err := d.classify(field(raw, "data"), depth+1)
			if err != nil {
				return nil, err
			}
			return DataWrapped{Inner: inner, Meta: raw}, nil
		}
	}

	if ok, err = matches(d.plural, loader); err != nil {
		return nil, err
	}
	if ok {
		return PluralWrapped{Key: d.keys.Plural, Items: field(raw, d.keys.Plural)}, nil
	}

	if ok, err = matches(d.singular, loader); err != nil {
		return nil, err
	}
	if ok {
		return SingularWrapped{Key: d.keys.Singular, Item: field(raw, d.keys.Singular)}, nil
	}

	return Plain{Value: raw}, nil
}

func matches(schema *gojsonschema.Schema, doc gojsonschema.JSONLoader) (bool, error) {
	result, err := schema.Validate(doc)
	if err != nil {
		return false, fmt.Errorf("validate envelope: %w", err)
	}
	return result.Valid(), nil
}

// field extracts one member of a JSON object already known to contain it.
func field(raw json.RawMessage, name string) json.RawMessage {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj[name]
}

// Normalize returns the canonical payload of raw. A null or empty reply
// normalizes to an empty list.
func (d *Decoder) Normalize(raw []byte) (json.RawMessage, error) {
	env, err := d.Decode(raw)
	if err != nil {
		return nil, err
	}
	return env.Payload(), nil
}
