package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Ordered is a string-keyed map that remembers insertion order.
// Slots and props are declared as mappings whose order is meaningful
// (error messages list slot names in declared order), so they decode into
// Ordered instead of a plain map.
type Ordered[T any] struct {
	keys   []string
	values map[string]T
}

// NewOrdered builds an Ordered from the given pairs, in order.
func NewOrdered[T any](pairs ...Pair[T]) Ordered[T] {
	var o Ordered[T]
	for _, p := range pairs {
		o.Set(p.Key, p.Value)
	}
	return o
}

// Pair is a single key/value entry of an Ordered map.
type Pair[T any] struct {
	Key   string
	Value T
}

// Set inserts or replaces a value. Replacing keeps the original position.
func (o *Ordered[T]) Set(key string, value T) {
	if o.values == nil {
		o.values = make(map[string]T)
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value stored under key.
func (o Ordered[T]) Get(key string) (T, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o Ordered[T]) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Keys returns the keys in declared order.
func (o Ordered[T]) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of entries.
func (o Ordered[T]) Len() int { return len(o.keys) }

// Each calls fn for every entry in declared order.
func (o Ordered[T]) Each(fn func(key string, value T)) {
	for _, k := range o.keys {
		fn(k, o.values[k])
	}
}

// MarshalJSON writes the entries as a JSON object in declared order.
func (o Ordered[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping the order of its keys.
func (o *Ordered[T]) UnmarshalJSON(data []byte) error {
	*o = Ordered[T]{}
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected string key, got %v", tok)
		}
		var value T
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("key %s: %w", key, err)
		}
		o.Set(key, value)
	}

	_, err = dec.Token()
	return err
}

// MarshalYAML writes the entries as a YAML mapping in declared order.
func (o Ordered[T]) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range o.keys {
		var valueNode yaml.Node
		if err := valueNode.Encode(o.values[k]); err != nil {
			return nil, fmt.Errorf("key %s: %w", k, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&valueNode,
		)
	}
	return node, nil
}

// UnmarshalYAML reads a YAML mapping keeping the order of its keys.
func (o *Ordered[T]) UnmarshalYAML(node *yaml.Node) error {
	*o = Ordered[T]{}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected mapping", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		var value T
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("key %s: %w", key, err)
		}
		o.Set(key, value)
	}
	return nil
}
