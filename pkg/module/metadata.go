package module

import (
	"fmt"
	"reflect"
)

// Mapping is per-request page metadata (title and friends), made available
// to every layout wrapping a page.
type Mapping map[string]any

// Get returns the value for key, or def when the key is absent or the
// mapping is nil.
func (m Mapping) Get(key string, def any) any {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}

// GetString returns the string value for key, or def when the key is
// absent or not a string.
func (m Mapping) GetString(key, def string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return def
}

// MetadataResolver normalizes a metadata declaration into one resolver
// shape: a function whose parameters are resolved per request and whose
// result is the Mapping (possibly pending).
//
//   - nil declaration: a resolver producing nil
//   - a Mapping (or plain map[string]any): a constant resolver
//   - a function: used directly
//
// Anything else is a configuration error.
func MetadataResolver(metadata any) (any, error) {
	switch m := metadata.(type) {
	case nil:
		return func() Mapping { return nil }, nil
	case Mapping:
		return func() Mapping { return m }, nil
	case map[string]any:
		return func() Mapping { return Mapping(m) }, nil
	}
	if reflect.ValueOf(metadata).Kind() == reflect.Func {
		return metadata, nil
	}
	return nil, fmt.Errorf("module: invalid metadata declaration %T: want a Mapping or a resolver function", metadata)
}
