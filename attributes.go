package helix

import (
	"fmt"
	"net/url"
	"sort"
)

// Attributes holds the fields the service returned for a resource.
type Attributes map[string]any

// Lookup returns the value stored under key.
func (a Attributes) Lookup(key string) (any, bool) {
	v, ok := a[key]
	return v, ok
}

// String returns the value under key formatted as a string, or "" when absent.
func (a Attributes) String(key string) string {
	v, ok := a[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Keys returns the attribute names in sorted order.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (a Attributes) clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// form encodes the attributes as flat form fields, or as prefix[key] when prefix is set.
func (a Attributes) form(prefix string) url.Values {
	values := make(url.Values, len(a))
	for k, v := range a {
		name := k
		if prefix != "" {
			name = prefix + "[" + k + "]"
		}
		values.Set(name, fmt.Sprint(v))
	}
	return values
}

// massageAttributes turns a raw single-resource response into attributes:
// an object is used as is (unwrapping a {kind: {...}} envelope), a list
// yields its first element, and anything empty yields false.
func massageAttributes(raw any, kind Kind) (Attributes, bool) {
	switch v := raw.(type) {
	case map[string]any:
		if len(v) == 0 {
			return nil, false
		}
		if inner, ok := v[kind.Name].(map[string]any); ok && len(v) == 1 {
			return Attributes(inner), true
		}
		return Attributes(v), true
	case []any:
		if len(v) == 0 {
			return nil, false
		}
		return massageAttributes(v[0], kind)
	default:
		return nil, false
	}
}
