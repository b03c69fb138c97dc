package kernel

import "strings"

// Fields is the plain-map substitute for the original implementation's
// metaclass-backed dotted-attribute object (spec.md §9 calls this out
// directly: "a plain struct for configuration plus a small helper that
// projects a mapping behind dotted-attribute access"). Message content
// arrives as map[string]interface{} off the wire; Fields gives call
// sites a dotted path instead of repeated type assertions.
type Fields map[string]interface{}

// Get walks a dotted path ("a.b.c") through nested Fields/map values.
func (f Fields) Get(path string) (interface{}, bool) {
	cur := interface{}(map[string]interface{}(f))
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		v, ok := m[part]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// Set writes a dotted path, creating intermediate maps as needed.
func (f Fields) Set(path string, value interface{}) {
	parts := strings.Split(path, ".")
	cur := map[string]interface{}(f)
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

// String fetches a dotted path as a string, returning "" when absent
// or of the wrong type.
func (f Fields) String(path string) string {
	v, ok := f.Get(path)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Bool fetches a dotted path as a bool.
func (f Fields) Bool(path string) bool {
	v, ok := f.Get(path)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Int fetches a dotted path as an int; wire content decodes numbers as
// float64, so this accepts both.
func (f Fields) Int(path string) int {
	v, ok := f.Get(path)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case Fields:
		return map[string]interface{}(m), true
	default:
		return nil, false
	}
}

// ContentOf coerces a decoded message's Content into Fields. Wire
// content unmarshals to map[string]interface{}; anything else (should
// not happen for well-formed requests) yields an empty Fields.
func ContentOf(content interface{}) Fields {
	if m, ok := content.(map[string]interface{}); ok {
		return Fields(m)
	}
	return Fields{}
}
