// Package template implements the {{dotted.path}} interpolation used by
// agent prompt templates and output transform templates.
package template

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([\w.-]+)\s*\}\}`)

// Interpolate replaces every {{dotted.path}} occurrence in s by walking
// the path through the given sources in order; later sources win on
// conflict. Unresolved paths are left as the literal placeholder text so
// template bugs surface in the output instead of vanishing. Resolved
// composite values are serialized as pretty-printed JSON; nil becomes
// the empty string.
func Interpolate(s string, sources ...map[string]any) string {
	return placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
		path := placeholderRe.FindStringSubmatch(match)[1]
		for i := len(sources) - 1; i >= 0; i-- {
			if v, ok := Lookup(sources[i], path); ok {
				return render(v)
			}
		}
		return match
	})
}

// Lookup walks a dotted path through nested maps. The second return
// value reports whether the full path resolved.
func Lookup(source map[string]any, path string) (any, bool) {
	if source == nil {
		return nil, false
	}
	parts := strings.Split(path, ".")
	var cur any = source
	for _, part := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// render converts a resolved value to its textual form.
func render(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(out)
	}
}
