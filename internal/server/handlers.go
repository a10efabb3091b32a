package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/florianilch/llm-openai-proxy/internal/translate"
)

// Handlers holds the dependencies the eight routes of spec §6 need: the
// static config, the upstream HTTP capability, and the clock/id seams C5
// threads through its builders.
type Handlers struct {
	cfg    Config
	client translate.Client
	clock  translate.Clock
	ids    translate.IDGenerator
}

// NewHandlers wires a Handlers from its dependencies.
func NewHandlers(cfg Config, client translate.Client, clock translate.Clock, ids translate.IDGenerator) *Handlers {
	return &Handlers{cfg: cfg, client: client, clock: clock, ids: ids}
}

// Root serves `GET /` and `GET /v1` (and their HEAD forms) with the
// status envelope of spec §6.
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(r.Context(), w, map[string]any{
		"status":  "ok",
		"service": h.cfg.ServiceName,
		"version": h.cfg.ServiceVersion,
	}, http.StatusOK)
}

// Health serves `GET /health`.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, map[string]any{
		"ok":      true,
		"service": h.cfg.ServiceName,
	}, http.StatusOK)
}

// Models serves `GET /v1/models`: a passthrough to the upstream listing in
// normal mode, or the configured static model list in echo mode (spec §6).
func (h *Handlers) Models(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if translate.EchoMode(h.cfg.UpstreamBaseURL) {
		data := make([]map[string]any, 0, len(h.cfg.Models))
		now := h.clock.Now().Unix()
		for _, id := range h.cfg.Models {
			data = append(data, map[string]any{
				"id":       id,
				"object":   "model",
				"created":  now,
				"owned_by": h.cfg.ServiceName,
			})
		}
		writeJSON(ctx, w, map[string]any{"object": "list", "data": data}, http.StatusOK)
		return
	}

	endpoint := translate.Endpoint(h.cfg.UpstreamBaseURL, translate.PathModels)
	header := headerFromMap(translate.AuthHeaders(h.cfg.UpstreamKey))
	resp, err := h.client.Get(ctx, endpoint, header)
	if err != nil {
		writeTranslateError(ctx, w, translate.TransportError("upstream models request failed", err), dialectOpenAI)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		writeTranslateError(ctx, w, translate.TransportError("reading upstream models response", err), dialectOpenAI)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(body)
}

// Responses serves `POST /v1/responses`: Responses dialect in, Responses
// dialect out, always non-streaming (spec §6).
func (h *Handlers) Responses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeTranslateError(ctx, w, translate.InvalidRequest("failed to read request body"), dialectOpenAI)
		return
	}
	req, err := translate.NormalizeResponses(body)
	if err != nil {
		writeTranslateError(ctx, w, err, dialectOpenAI)
		return
	}

	result, err := h.roundTripBuffered(ctx, req)
	if err != nil {
		writeTranslateError(ctx, w, err, dialectOpenAI)
		return
	}

	out := translate.ResponsesOutput(req, result, h.clock, h.ids)
	writeJSON(ctx, w, out, http.StatusOK)
}

// ChatCompletions serves `POST /v1/chat/completions`: Chat Completions in
// and out, with a live SSE passthrough when the caller asked for
// `stream:true` against a real upstream (spec §6).
func (h *Handlers) ChatCompletions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeTranslateError(ctx, w, translate.InvalidRequest("failed to read request body"), dialectOpenAI)
		return
	}
	req, err := translate.NormalizeChatCompletions(body)
	if err != nil {
		writeTranslateError(ctx, w, err, dialectOpenAI)
		return
	}

	if req.Stream && !translate.EchoMode(h.cfg.UpstreamBaseURL) {
		h.streamChatCompletions(ctx, w, req)
		return
	}

	result, err := h.roundTripBuffered(ctx, req)
	if err != nil {
		writeTranslateError(ctx, w, err, dialectOpenAI)
		return
	}
	out := translate.ChatCompletionsOutput(result, h.clock, h.ids)
	writeJSON(ctx, w, out, http.StatusOK)
}

// Messages serves `POST /v1/messages`: Anthropic Messages in and out, with
// live SSE projection when the caller asked for `stream:true` (spec §6).
func (h *Handlers) Messages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeTranslateError(ctx, w, translate.InvalidRequest("failed to read request body"), dialectAnthropic)
		return
	}
	req, err := translate.NormalizeAnthropic(body)
	if err != nil {
		writeTranslateError(ctx, w, err, dialectAnthropic)
		return
	}

	if req.Stream {
		h.streamMessages(ctx, w, req)
		return
	}

	result, err := h.roundTripBuffered(ctx, req)
	if err != nil {
		writeTranslateError(ctx, w, err, dialectAnthropic)
		return
	}
	out := translate.AnthropicOutput(result, h.ids)
	writeJSON(ctx, w, out, http.StatusOK)
}

// roundTripBuffered performs the non-streaming core data flow of spec §2:
// echo mode synthesizes a result directly; otherwise an upstream POST is
// made with stream=true and the response is assembled to completion
// regardless of content-type (SSE via C3, a bare JSON body via C4).
func (h *Handlers) roundTripBuffered(ctx context.Context, req translate.Request) (translate.Result, error) {
	if translate.EchoMode(h.cfg.UpstreamBaseURL) {
		return echoResult(req), nil
	}

	resp, err := h.postUpstream(ctx, req)
	if err != nil {
		return translate.Result{}, err
	}
	defer resp.Body.Close()

	if err := checkUpstreamStatus(resp); err != nil {
		return translate.Result{}, err
	}
	if isEventStream(resp.Header) {
		return translate.AssembleSSE(resp.Body, req.Model)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return translate.Result{}, translate.TransportError("reading upstream body", err)
	}
	return translate.AssembleBuffered(body, req.Model)
}

// streamChatCompletions passes the upstream Chat Completions SSE through
// live, rewriting only the top-level `id` field (spec §6).
func (h *Handlers) streamChatCompletions(ctx context.Context, w http.ResponseWriter, req translate.Request) {
	resp, err := h.postUpstream(ctx, req)
	if err != nil {
		writeTranslateError(ctx, w, err, dialectOpenAI)
		return
	}
	defer resp.Body.Close()

	if err := checkUpstreamStatus(resp); err != nil {
		writeTranslateError(ctx, w, err, dialectOpenAI)
		return
	}
	if !isEventStream(resp.Header) {
		writeTranslateError(ctx, w, translate.UpstreamShapeError("upstream did not return an event stream"), dialectOpenAI)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		writeTranslateError(ctx, w, translate.Internal("response writer does not support flushing", err), dialectOpenAI)
		return
	}

	id := "chatcmpl-" + h.ids.NewID()
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			_ = sse.WriteRaw("[DONE]")
			return
		}
		var chunk map[string]any
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		chunk["id"] = id
		if err := sse.WriteData(chunk); err != nil {
			return
		}
	}
	// A transport failure mid-stream ends the SSE with no further events
	// (spec §7); scanner.Err() is deliberately not surfaced to the client.
}

// streamMessages live-projects the upstream Chat Completions SSE into
// Anthropic's event stream (C6). In echo mode there is no upstream byte
// stream to read, so a single synthetic Chat Completions delta carrying
// the whole echoed answer is fed through the same projector, keeping one
// code path for both modes.
func (h *Handlers) streamMessages(ctx context.Context, w http.ResponseWriter, req translate.Request) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		writeTranslateError(ctx, w, translate.Internal("response writer does not support flushing", err), dialectAnthropic)
		return
	}
	emit := func(evt translate.AnthropicEvent) error {
		return sse.WriteEvent(evt.Name, evt.Data)
	}
	msgID := "msg_" + h.ids.NewID()

	if translate.EchoMode(h.cfg.UpstreamBaseURL) {
		result := echoResult(req)
		scanner := bufio.NewScanner(syntheticChatCompletionsStream(result))
		if err := translate.ProjectAnthropicSSE(scanner, req.Model, msgID, emit); err != nil {
			slog.ErrorContext(ctx, "echo stream projection failed", "error", err)
		}
		return
	}

	resp, err := h.postUpstream(ctx, req)
	if err != nil {
		writeTranslateError(ctx, w, err, dialectAnthropic)
		return
	}
	defer resp.Body.Close()

	if err := checkUpstreamStatus(resp); err != nil {
		writeTranslateError(ctx, w, err, dialectAnthropic)
		return
	}
	if !isEventStream(resp.Header) {
		writeTranslateError(ctx, w, translate.UpstreamShapeError("upstream did not return an event stream"), dialectAnthropic)
		return
	}

	scanner := bufio.NewScanner(resp.Body)
	if err := translate.ProjectAnthropicSSE(scanner, req.Model, msgID, emit); err != nil {
		slog.ErrorContext(ctx, "stream projection failed", "error", err)
	}
}

// syntheticChatCompletionsStream renders a single assembled Result back
// into the SSE shape the projector reads (one content delta, one
// finish_reason "stop" event, then [DONE]), so echo mode can reuse C6
// instead of duplicating its event sequencing.
func syntheticChatCompletionsStream(result translate.Result) io.Reader {
	delta := map[string]any{
		"choices": []map[string]any{
			{
				"delta":         map[string]any{"content": result.AssistantText},
				"finish_reason": nil,
			},
		},
	}
	final := map[string]any{
		"choices": []map[string]any{
			{
				"delta":         map[string]any{},
				"finish_reason": "stop",
			},
		},
	}
	deltaJSON, _ := json.Marshal(delta)
	finalJSON, _ := json.Marshal(final)
	return strings.NewReader("data: " + string(deltaJSON) + "\n\ndata: " + string(finalJSON) + "\n\ndata: [DONE]\n\n")
}

// echoResult synthesizes an assembled Result directly from the request
// when no upstream is configured (spec §1, §4.1). Usage is reported in
// Responses-style input/output/total token fields (spec §9 Open Question
// 2: advisory only).
func echoResult(req translate.Request) translate.Result {
	text := translate.FormatEchoContent(req)
	tokens := translate.EstimateTokens(text)
	return translate.Result{
		AssistantText: text,
		Model:         req.Model,
		FinishReason:  "stop",
		Usage: map[string]any{
			"input_tokens":  0,
			"output_tokens": tokens,
			"total_tokens":  tokens,
		},
	}
}

func (h *Handlers) postUpstream(ctx context.Context, req translate.Request) (*translate.UpstreamResponse, error) {
	body, err := translate.BuildUpstreamRequest(req)
	if err != nil {
		return nil, translate.Internal("building upstream request", err)
	}
	endpoint := translate.Endpoint(h.cfg.UpstreamBaseURL, translate.PathChatCompletions)
	header := headerFromMap(translate.AuthHeaders(h.cfg.UpstreamKey))
	resp, err := h.client.Post(ctx, endpoint, header, body)
	if err != nil {
		return nil, translate.TransportError("upstream request failed", err)
	}
	return resp, nil
}

func checkUpstreamStatus(resp *translate.UpstreamResponse) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	return translate.UpstreamError(resp.StatusCode, "upstream returned an error status", string(body))
}

func isEventStream(header http.Header) bool {
	return strings.Contains(header.Get("Content-Type"), "text/event-stream")
}

func headerFromMap(m map[string]string) http.Header {
	h := make(http.Header, len(m))
	for k, v := range m {
		h.Set(k, v)
	}
	return h
}

// dialect selects which error envelope writeTranslateError renders.
type dialect int

const (
	dialectOpenAI dialect = iota
	dialectAnthropic
)

// writeTranslateError renders a *translate.Error in the caller's dialect
// (spec §7).
func writeTranslateError(ctx context.Context, w http.ResponseWriter, err error, d dialect) {
	terr, ok := err.(*translate.Error)
	if !ok {
		terr = translate.Internal("unexpected error", err)
	}
	if terr.Kind == translate.KindInternal || terr.Kind == translate.KindTransportError {
		slog.ErrorContext(ctx, "request failed", "kind", terr.Kind.String(), "error", terr)
	}

	status := terr.HTTPStatus()
	if d == dialectAnthropic {
		anthropicError(ctx, w, anthropicErrorType(terr.Kind), terr.Message, status)
		return
	}
	openAIError(ctx, w, terr.Message, status)
}

func anthropicErrorType(kind translate.Kind) string {
	if kind == translate.KindInvalidRequest {
		return "invalid_request_error"
	}
	return "api_error"
}
