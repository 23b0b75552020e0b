package zapconfig

// Small accessor helpers for walking the loosely-typed map[string]interface{}
// a YAML document decodes into (gopkg.in/yaml.v3 decodes mappings into
// map[string]interface{} and sequences into []interface{}).

func asMap(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

func asSlice(v interface{}) ([]interface{}, bool) {
	s, ok := v.([]interface{})
	return s, ok
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getBool(m map[string]interface{}, key string) bool {
	if v, ok := m[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

func getStringSlice(m map[string]interface{}, key string) []string {
	raw, ok := m[key]
	if !ok {
		return nil
	}
	return toStringSlice(raw)
}

func toStringSlice(raw interface{}) []string {
	items, ok := asSlice(raw)
	if !ok {
		// A lone scalar is accepted as a single-element list; this is a
		// common YAML author slip (profiles: dev instead of profiles:
		// [dev]) and costs nothing to tolerate.
		if s, ok := raw.(string); ok {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// asInt handles both int and the float64 that some YAML decoders produce
// for bare numeric scalars.
func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
