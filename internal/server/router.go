package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/florianilch/llm-openai-proxy/internal/translate"
)

// New builds the chi router exposing the eight routes of spec §6: CORS
// wraps everything, request logging and panic recovery wrap every route,
// and the auth middleware gates only the three POST endpoints, with the
// key check of each endpoint's dialect.
func New(cfg Config, client translate.Client, clock translate.Clock, ids translate.IDGenerator, logger *slog.Logger) http.Handler {
	h := NewHandlers(cfg, client, clock, ids)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin", "x-proxy-key"},
		AllowCredentials: false,
	}))
	r.Use(Logging(logger))
	r.Use(Recovery)

	r.Get("/", h.Root)
	r.Head("/", h.Root)
	r.Get("/v1", h.Root)
	r.Head("/v1", h.Root)
	r.Get("/health", h.Health)
	r.Get("/v1/models", h.Models)

	r.Group(func(r chi.Router) {
		r.Use(requireProxyKey(cfg.ProxyKey))
		r.Post("/v1/responses", h.Responses)
		r.Post("/v1/chat/completions", h.ChatCompletions)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAnthropicKey(cfg.ProxyKey))
		r.Post("/v1/messages", h.Messages)
	})

	return r
}
