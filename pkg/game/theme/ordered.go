package theme

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Entry is one key/value pair of a JSON object.
type Entry[T any] struct {
	Key   string
	Value T
}

// Ordered is a JSON object decoded with its key order preserved. Theme files
// declare terrains in a meaningful order and generation iterates in it.
type Ordered[T any] []Entry[T]

// UnmarshalJSON decodes an object key by key. null decodes to an empty list.
func (o *Ordered[T]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*o = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("theme: expected object, got %v", tok)
	}

	var out Ordered[T]
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("theme: expected object key, got %v", tok)
		}

		var v T
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("theme: %q: %w", key, err)
		}
		out = append(out, Entry[T]{Key: key, Value: v})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*o = out
	return nil
}

// MarshalJSON writes the entries as an object in their stored order.
func (o Ordered[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Keys returns the keys in order.
func (o Ordered[T]) Keys() []string {
	keys := make([]string, len(o))
	for i, e := range o {
		keys[i] = e.Key
	}
	return keys
}

// Get returns the value stored under key.
func (o Ordered[T]) Get(key string) (T, bool) {
	for _, e := range o {
		if e.Key == key {
			return e.Value, true
		}
	}
	var zero T
	return zero, false
}
