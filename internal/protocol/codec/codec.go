// Package codec serializes envelopes for a file channel.
package codec

import (
	"fmt"
	"sort"
)

// Codec marshals typed messages to bytes and back.
// Implementations must be deterministic: the worker compares file content
// byte for byte, so the same envelope has to encode the same way twice.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Registry maps codec names to codecs.
type Registry struct {
	byName map[string]Codec
}

// NewRegistry returns a registry preloaded with JSON and CBOR.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Codec)}
	r.Register(JSON())
	r.Register(CBOR())
	return r
}

// Register adds or replaces a codec.
func (r *Registry) Register(c Codec) { r.byName[c.Name()] = c }

// Get returns a codec by name.
func (r *Registry) Get(name string) (Codec, error) {
	c, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown codec %q (have %v)", name, r.Names())
	}
	return c, nil
}

// Names lists registered codec names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
