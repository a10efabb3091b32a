package server

import (
	"net/http"
	"strings"
)

// requireProxyKey enforces x-proxy-key on the two OpenAI-shaped endpoints
// when cfg.ProxyKey is configured (spec §6). On mismatch it writes the
// OpenAI-shaped `{error:{message:"Unauthorized"}}` 401 envelope.
func requireProxyKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if r.Header.Get("x-proxy-key") != key {
				openAIError(r.Context(), w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAnthropicKey enforces x-api-key or `Authorization: Bearer` on
// /v1/messages when cfg.ProxyKey is configured (spec §6). On mismatch it
// writes Anthropic's `{type:"error", error:{type:"authentication_error"}}`
// 401 envelope.
func requireAnthropicKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if r.Header.Get("x-api-key") == key || bearerMatches(r.Header.Get("Authorization"), key) {
				next.ServeHTTP(w, r)
				return
			}
			anthropicError(r.Context(), w, "authentication_error", "Invalid API key", http.StatusUnauthorized)
		})
	}
}

func bearerMatches(header, key string) bool {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	return strings.TrimPrefix(header, prefix) == key
}
