package lawapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// The JSON targets wrap their item list in a response envelope whose key
// names differ per target.  firstObjectList walks the decoded document and
// returns the first list of objects it finds, the same shallow traversal
// the search envelopes require.

func firstObjectList(data []byte) ([]map[string]any, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if list := findObjectList(doc); list != nil {
		return list, nil
	}
	return nil, fmt.Errorf("no object list in response")
}

func findObjectList(v any) []map[string]any {
	switch val := v.(type) {
	case map[string]any:
		for _, child := range val {
			if list, ok := asObjectList(child); ok {
				return list
			}
		}
		for _, child := range val {
			if nested, ok := child.(map[string]any); ok {
				if list := findObjectList(nested); list != nil {
					return list
				}
			}
		}
	case []any:
		for _, child := range val {
			if list := findObjectList(child); list != nil {
				return list
			}
		}
	}
	return nil
}

func asObjectList(v any) ([]map[string]any, bool) {
	raw, ok := v.([]any)
	if !ok || len(raw) == 0 {
		return nil, false
	}
	if _, ok := raw[0].(map[string]any); !ok {
		return nil, false
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out, true
}

// pickString returns the first non-empty value among the aliased keys,
// stringified and trimmed.
func pickString(item map[string]any, keys ...string) string {
	for _, key := range keys {
		val, ok := item[key]
		if !ok || val == nil {
			continue
		}
		var s string
		switch v := val.(type) {
		case string:
			s = v
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			s = fmt.Sprint(v)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}
