package translate

import (
	"encoding/json"
)

// AssembleBuffered extracts the same shape as AssembleSSE (C4, spec §4.4)
// from a single non-streaming Chat Completions JSON response body.
func AssembleBuffered(body []byte, requestedModel string) (Result, error) {
	var chunk chatCompletionChunk
	if err := json.Unmarshal(body, &chunk); err != nil {
		return Result{}, UpstreamShapeError("upstream response is not a parseable Chat Completions object")
	}
	acc := newAccumulator(requestedModel)
	acc.apply(chunk)
	return acc.result(), nil
}
