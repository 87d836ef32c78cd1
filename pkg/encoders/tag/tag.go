// Package tag implements the event Tag primitive: an ordered sequence of
// at least two strings (name, value, then zero or more parameters),
// wire-encoded as a flat JSON array.
package tag

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// T is a single tag. Name and Value are required; Parameters may be empty.
type T struct {
	Name       string
	Value      string
	Parameters []string
}

func New(name, value string, params ...string) T {
	return T{Name: name, Value: value, Parameters: params}
}

func (t T) MarshalJSON() ([]byte, error) {
	flat := make([]string, 0, 2+len(t.Parameters))
	flat = append(flat, t.Name, t.Value)
	flat = append(flat, t.Parameters...)
	// HTML escaping stays off so an encoder that disables it (the canonical
	// event form) sees '<', '>' and '&' verbatim.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(flat); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (t *T) UnmarshalJSON(b []byte) error {
	var flat []string
	if err := json.Unmarshal(b, &flat); err != nil {
		return err
	}
	if len(flat) < 2 {
		return fmt.Errorf("tag: must have at least 2 elements, got %d", len(flat))
	}
	t.Name = flat[0]
	t.Value = flat[1]
	if len(flat) > 2 {
		t.Parameters = flat[2:]
	} else {
		t.Parameters = nil
	}
	return nil
}

// Tags is an ordered list of tags attached to an event.
type Tags []T

// First returns the value of the first tag with the given name, and
// whether one was found.
func (ts Tags) First(name string) (value string, ok bool) {
	for _, t := range ts {
		if t.Name == name {
			return t.Value, true
		}
	}
	return "", false
}

// HasValue reports whether any tag with the given name has the given value.
func (ts Tags) HasValue(name, value string) bool {
	for _, t := range ts {
		if t.Name == name && t.Value == value {
			return true
		}
	}
	return false
}
