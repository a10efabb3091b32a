package translate

import (
	"encoding/json"
	"strings"
)

// RecoverJSON attempts a best-effort extraction of the first complete JSON
// object or array from text (spec §4.7). It is deliberately not
// string/escape-aware: braces inside string literals will confuse the
// brace walk. This is a known simplification (spec §9, Open Question 3)
// and must not be "fixed" without an accompanying test pinning the new
// behavior.
//
// Returns the parsed value and true on success, or (nil, false) when no
// balanced, parseable candidate is found.
func RecoverJSON(text string) (any, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, false
	}

	if isBracketed(trimmed, '{', '}') || isBracketed(trimmed, '[', ']') {
		if v, ok := unmarshalAny(trimmed); ok {
			return v, true
		}
	}

	braceIdx := strings.IndexByte(trimmed, '{')
	bracketIdx := strings.IndexByte(trimmed, '[')
	start := -1
	var open, close byte
	switch {
	case braceIdx == -1 && bracketIdx == -1:
		return nil, false
	case braceIdx == -1:
		start, open, close = bracketIdx, '[', ']'
	case bracketIdx == -1:
		start, open, close = braceIdx, '{', '}'
	case braceIdx < bracketIdx:
		start, open, close = braceIdx, '{', '}'
	default:
		start, open, close = bracketIdx, '[', ']'
	}

	depth := 0
	for i := start; i < len(trimmed); i++ {
		switch trimmed[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				candidate := trimmed[start : i+1]
				if v, ok := unmarshalAny(candidate); ok {
					return v, true
				}
				return nil, false
			}
		}
	}
	return nil, false
}

func isBracketed(s string, open, close byte) bool {
	return len(s) >= 2 && s[0] == open && s[len(s)-1] == close
}

func unmarshalAny(s string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}

// marshalCanonical re-serializes a value recovered by RecoverJSON into its
// canonical (whitespace-free) JSON form.
func marshalCanonical(v any) ([]byte, error) {
	return json.Marshal(v)
}
