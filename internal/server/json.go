package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeJSON writes a JSON response with the given status code.
// Logs encoding failures internally using the provided context.
func writeJSON(ctx context.Context, w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	// Headers and status are written before encoding to avoid buffering.
	// If encoding fails, the client may receive a partial response.
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.ErrorContext(ctx, "failed to encode JSON response", "error", err)
	}
}

// openAIError writes the OpenAI-shaped `{error:{message}}` error envelope.
func openAIError(ctx context.Context, w http.ResponseWriter, message string, status int) {
	writeJSON(ctx, w, map[string]any{
		"error": map[string]any{"message": message},
	}, status)
}

// anthropicError writes Anthropic's `{type:"error", error:{type, message}}`
// error envelope (spec §6, §7).
func anthropicError(ctx context.Context, w http.ResponseWriter, errType, message string, status int) {
	writeJSON(ctx, w, map[string]any{
		"type": "error",
		"error": map[string]any{
			"type":    errType,
			"message": message,
		},
	}, status)
}
