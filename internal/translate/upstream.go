package translate

import (
	"encoding/json"
	"net/url"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// PathChatCompletions and PathModels are the two upstream pathnames C1
// derives endpoints for.
const (
	PathChatCompletions = "/v1/chat/completions"
	PathModels          = "/v1/models"
)

// EchoMode reports whether baseURL signals echo mode: missing, empty, or
// unparseable. When true, the core must not perform upstream I/O (spec
// §4.1).
func EchoMode(baseURL string) bool {
	if baseURL == "" {
		return true
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return true
	}
	return u.Scheme == "" || u.Host == ""
}

// Endpoint derives the upstream endpoint for pathname from baseURL. If
// baseURL already carries a non-trivial path and pathname is
// /v1/chat/completions, baseURL is used unchanged (it is already a full
// endpoint, e.g. an Azure-style deployment URL); otherwise the endpoint is
// baseURL's origin joined with pathname.
func Endpoint(baseURL, pathname string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	if pathname == PathChatCompletions && u.Path != "" && u.Path != "/" {
		return baseURL
	}
	origin := &url.URL{Scheme: u.Scheme, Host: u.Host}
	return origin.String() + pathname
}

// AuthHeaders builds the headers the core sends upstream: content-type is
// always present; authorization is added only when key is non-empty.
func AuthHeaders(key string) map[string]string {
	h := map[string]string{"content-type": "application/json"}
	if key != "" {
		h["authorization"] = "Bearer " + key
	}
	return h
}

// BuildUpstreamRequest marshals the canonical pivot into the Chat
// Completions request body sent upstream, built with go-openai's request
// types rather than a hand-rolled map so the wire shape matches a real
// Chat Completions client (spec §3: "stream: boolean (always true when
// calling upstream)").
func BuildUpstreamRequest(req Request) ([]byte, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCalls:  convertToolCallsUpstream(m.ToolCalls),
			ToolCallID: m.ToolCallID,
		})
	}

	out := openai.ChatCompletionRequest{
		Model:             req.Model,
		Messages:          messages,
		Stream:            true,
		Stop:              req.Stop,
		ParallelToolCalls: req.ParallelToolCalls,
	}
	if req.Temperature != nil {
		t := float32(*req.Temperature)
		out.Temperature = t
	}
	if req.TopP != nil {
		out.TopP = float32(*req.TopP)
	}
	if req.MaxTokens != nil {
		out.MaxTokens = *req.MaxTokens
	}
	if len(req.Tools) > 0 {
		out.Tools = convertToolsUpstream(req.Tools)
	}
	if !req.ToolChoice.IsZero() {
		if req.ToolChoice.IsFunction() {
			out.ToolChoice = openai.ToolChoice{
				Type:     openai.ToolTypeFunction,
				Function: openai.ToolFunction{Name: req.ToolChoice.Function},
			}
		} else {
			out.ToolChoice = req.ToolChoice.Mode
		}
	}
	if req.ResponseFormat != nil {
		out.ResponseFormat = convertResponseFormatUpstream(req.ResponseFormat)
	}

	return json.Marshal(out)
}

func convertToolCallsUpstream(calls []ToolCall) []openai.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]openai.ToolCall, 0, len(calls))
	for _, tc := range calls {
		out = append(out, openai.ToolCall{
			ID:   tc.ID,
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return out
}

func convertToolsUpstream(tools []Tool) []openai.Tool {
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters:  t.Function.Parameters,
			},
		})
	}
	return out
}

func convertResponseFormatUpstream(rf *ResponseFormat) *openai.ChatCompletionResponseFormat {
	out := &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatType(rf.Type)}
	if rf.JSONSchema != nil {
		out.JSONSchema = &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   rf.JSONSchema.Name,
			Strict: rf.JSONSchema.Strict,
			Schema: rf.JSONSchema.Schema,
		}
	}
	return out
}
