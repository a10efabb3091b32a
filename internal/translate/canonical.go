// Package translate implements the protocol translation core: normalizing
// OpenAI Responses, Anthropic Messages, and OpenAI Chat Completions requests
// into a single canonical Chat Completions pivot, assembling upstream
// responses (streamed or buffered) into a dialect-neutral result, and
// building each dialect's output envelope from that result.
package translate

import "encoding/json"

// Message is one entry in a canonical chat request.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a request, made by the model, to invoke a named function.
// Arguments is an opaque accumulated JSON string; it is never re-parsed
// except where a dialect builder explicitly demands a structured value.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function ToolCallFunc `json:"function"`
}

type ToolCallFunc struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool is a canonical function-tool declaration. Non-function tool types
// (web search, computer use, MCP, ...) are dropped during normalization.
type Tool struct {
	Type     string           `json:"type"`
	Function ToolFunctionSpec `json:"function"`
}

type ToolFunctionSpec struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters,omitempty"`
}

// ToolChoice is either a bare string ("none"|"auto"|"required") or a
// function-selection object. Exactly one of Function / Mode is meaningful.
type ToolChoice struct {
	Mode     string `json:"-"` // "none" | "auto" | "required" | "" (function form)
	Function string `json:"-"` // function name, when Mode == ""
}

// IsFunction reports whether this choice names a specific function.
func (c ToolChoice) IsFunction() bool { return c.Mode == "" && c.Function != "" }

// IsZero reports the absence of any tool_choice in the original request.
func (c ToolChoice) IsZero() bool { return c.Mode == "" && c.Function == "" }

// ResponseFormat mirrors the `response_format` field of a Chat Completions
// request.
type ResponseFormat struct {
	Type       string          `json:"type"`
	JSONSchema *JSONSchemaSpec `json:"json_schema,omitempty"`
}

type JSONSchemaSpec struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

// Request is the canonical pivot: every inbound dialect normalizes down to
// this shape before an upstream call is made.
type Request struct {
	Model             string
	Messages          []Message
	Stream            bool
	Temperature       *float64
	TopP              *float64
	MaxTokens         *int
	ParallelToolCalls *bool
	Stop              []string
	Tools             []Tool
	ToolChoice        ToolChoice
	ResponseFormat    *ResponseFormat

	// RawBody is the original request body, byte-for-byte, retained only
	// for echo-mode formatting (spec §1, §8 scenarios 1-2) and for
	// recovering dialect-specific passthrough fields (e.g. Responses'
	// `instructions`) the canonical pivot does not itself carry. The
	// upstream path never reads it.
	RawBody []byte
}

// Result is what the SSE assembler (C3) and buffered parser (C4) produce:
// a dialect-neutral snapshot of an upstream Chat Completions response.
type Result struct {
	AssistantText string
	ReasoningText string
	ToolCalls     []ToolCall
	Model         string
	Usage         any
	FinishReason  string
}
