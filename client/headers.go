package client

import (
	"bytes"
	"strings"

	"httpc/util/rule"
	"httpc/wire"
)

// Headers is an ordered sequence of header fields. Field names are
// case-insensitive; duplicate names are permitted and keep their
// insertion order. The zero value is ready to use.
type Headers struct{ fields []wire.Field }

// HeadersFrom clones raw fields into an ordered header sequence.
func HeadersFrom(fields []wire.Field) Headers {
	clone := make([]wire.Field, 0, len(fields))
	for _, f := range fields {
		clone = append(clone, wire.Field{
			Name:  bytes.Clone(f.Name),
			Value: bytes.Clone(f.Value),
		})
	}
	return Headers{fields: clone}
}

func (h *Headers) Len() int { return len(h.fields) }

// Fields returns the fields in order, ready for the wire.
func (h *Headers) Fields() []wire.Field {
	clone := make([]wire.Field, 0, len(h.fields))
	for _, f := range h.fields {
		clone = append(clone, wire.Field{
			Name:  bytes.Clone(f.Name),
			Value: bytes.Clone(f.Value),
		})
	}
	return clone
}

// Get returns the value of the first field with the given name.
func (h *Headers) Get(key string) (value string, ok bool) {
	for _, f := range h.fields {
		if strings.EqualFold(string(f.Name), key) {
			return string(f.Value), true
		}
	}
	return "", false
}

func (h *Headers) Has(key string) bool {
	_, ok := h.Get(key)
	return ok
}

// Values collects every value of the given name, splitting list-based
// field values on commas.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.3-1
func (h *Headers) Values(key string) (values []string) {
	for _, f := range h.fields {
		if !strings.EqualFold(string(f.Name), key) {
			continue
		}
		values = append(values, tokenizeFieldValue(f.Value)...)
	}
	return values
}

// Add appends a field, keeping insertion order.
func (h *Headers) Add(key, value string) {
	h.fields = append(h.fields, wire.Field{
		Name:  []byte(canonicalFieldName(key)),
		Value: []byte(value),
	})
}

// Set replaces the first field with the given name and removes the
// others. A missing field is appended.
func (h *Headers) Set(key, value string) {
	replaced := false
	kept := h.fields[:0]
	for _, f := range h.fields {
		if strings.EqualFold(string(f.Name), key) {
			if replaced {
				continue
			}
			f.Value = []byte(value)
			replaced = true
		}
		kept = append(kept, f)
	}
	h.fields = kept

	if !replaced {
		h.Add(key, value)
	}
}

func (h *Headers) Del(key string) {
	kept := h.fields[:0]
	for _, f := range h.fields {
		if strings.EqualFold(string(f.Name), key) {
			continue
		}
		kept = append(kept, f)
	}
	h.fields = kept
}

func (h *Headers) Clone() Headers {
	return HeadersFrom(h.fields)
}

// canonicalFieldName only changes names that are valid tokens.
func canonicalFieldName(s string) string {
	if !rule.IsValidToken(s) {
		return s
	}

	const capitalDiff = 'a' - 'A'
	b := []byte(s)
	upper := true
	for i, c := range b {
		if upper && 'a' <= c && c <= 'z' {
			c -= capitalDiff
		} else if !upper && 'A' <= c && c <= 'Z' {
			c += capitalDiff
		}
		b[i] = c
		upper = c == '-'
	}
	return string(b)
}

func tokenizeFieldValue(fieldValue []byte) []string {
	tokens := make([]string, 0, 1)
	for _, part := range bytes.Split(fieldValue, []byte{','}) {
		part = bytes.TrimFunc(part, rule.IsWhitespace)
		part = rule.Unquote(part)
		if len(part) == 0 {
			// Don't append if it's empty.
			continue
		}
		tokens = append(tokens, string(part))
	}
	return tokens
}
