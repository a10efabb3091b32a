package translate

import (
	"encoding/json"
	"math"
)

// FormatEchoContent renders the assistant's "answer" in echo mode: the
// caller's own request, serialized back at them for offline testing when
// no upstream is configured (spec §1, §8 scenarios 1-2). A plain string
// `input` field is returned unchanged; a `messages` array is returned as
// its original, byte-exact JSON (field order and all), since that is what
// the scenarios pin against. Everything else falls back to the raw body.
func FormatEchoContent(req Request) string {
	if len(req.RawBody) == 0 {
		return ""
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(req.RawBody, &fields); err != nil {
		return string(req.RawBody)
	}
	if raw, ok := fields["input"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	if raw, ok := fields["messages"]; ok {
		return string(raw)
	}
	return string(req.RawBody)
}

// EstimateTokens is a rough, advisory-only token estimate (spec §9, Open
// Question 2): it double-counts punctuation relative to a real tokenizer
// because FormatEchoContent has already JSON-stringified non-string
// inputs by the time this runs. Never treat the result as authoritative.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	n := int(math.Ceil(float64(len(text)) / 4))
	if n < 1 {
		n = 1
	}
	return n
}
