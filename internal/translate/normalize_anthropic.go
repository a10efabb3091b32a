package translate

import "encoding/json"

type anthropicRequestWire struct {
	Model       string              `json:"model"`
	System      json.RawMessage     `json:"system"`
	Messages    []anthropicMsgWire  `json:"messages"`
	MaxTokens   *int                `json:"max_tokens"`
	Stream      bool                `json:"stream"`
	Temperature *float64            `json:"temperature"`
	TopP        *float64            `json:"top_p"`
	StopSeqs    []string            `json:"stop_sequences"`
	Tools       []anthropicToolWire `json:"tools"`
	ToolChoice  *anthropicToolChoiceWire `json:"tool_choice"`
}

type anthropicMsgWire struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type anthropicBlockWire struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	ToolUseID string          `json:"tool_use_id"`
	Content   json.RawMessage `json:"content"`
}

type anthropicToolWire struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema any    `json:"input_schema"`
}

type anthropicToolChoiceWire struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// NormalizeAnthropic converts a raw Anthropic Messages request body into
// the canonical pivot (spec §4.2 "Anthropic → canonical").
func NormalizeAnthropic(body []byte) (Request, error) {
	var wire anthropicRequestWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return Request{}, InvalidRequest("request body is not valid JSON")
	}
	if wire.Model == "" {
		return Request{}, InvalidRequest("model is required")
	}
	if len(wire.Messages) == 0 {
		return Request{}, InvalidRequest("messages is required")
	}
	if wire.MaxTokens == nil {
		return Request{}, InvalidRequest("max_tokens is required")
	}

	var messages []Message
	if sys := anthropicSystemToString(wire.System); sys != "" {
		messages = append(messages, Message{Role: "system", Content: sys})
	}
	for _, m := range wire.Messages {
		messages = append(messages, anthropicMessageToCanonical(m)...)
	}

	req := Request{
		Model:       wire.Model,
		Messages:    messages,
		Stream:      wire.Stream,
		Temperature: wire.Temperature,
		TopP:        wire.TopP,
		MaxTokens:   wire.MaxTokens,
		Stop:        wire.StopSeqs,
		Tools:       convertAnthropicTools(wire.Tools),
		ToolChoice:  convertAnthropicToolChoice(wire.ToolChoice),
		RawBody:     body,
	}
	return req, nil
}

func anthropicSystemToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var blocks []anthropicBlockWire
	if err := json.Unmarshal(raw, &blocks); err == nil {
		var out string
		for _, b := range blocks {
			if b.Type == "text" || b.Type == "" {
				out += b.Text
			}
		}
		return out
	}
	return ""
}

// anthropicMessageToCanonical expands one Anthropic message into zero or
// more canonical messages: a string-content message maps 1:1, but a
// content-block list can produce a tool-call assistant message and/or a
// tool-result message interleaved with ordinary text (spec §4.2).
func anthropicMessageToCanonical(m anthropicMsgWire) []Message {
	var s string
	if err := json.Unmarshal(m.Content, &s); err == nil {
		return []Message{{Role: m.Role, Content: s}}
	}

	var blocks []anthropicBlockWire
	if err := json.Unmarshal(m.Content, &blocks); err != nil {
		return nil
	}

	var out []Message
	for _, b := range blocks {
		switch b.Type {
		case "text":
			out = append(out, Message{Role: m.Role, Content: b.Text})
		case "tool_use":
			out = append(out, Message{
				Role:    "assistant",
				Content: "",
				ToolCalls: []ToolCall{{
					ID:   b.ID,
					Type: "function",
					Function: ToolCallFunc{
						Name:      b.Name,
						Arguments: toolUseInputToArguments(b.Input),
					},
				}},
			})
		case "tool_result":
			out = append(out, Message{
				Role:       "tool",
				ToolCallID: b.ToolUseID,
				Content:    toolResultContentToString(b.Content),
			})
		}
	}
	return out
}

// toolUseInputToArguments stringifies a tool_use block's `input` field
// unless it arrives already as a JSON string (spec §4.2).
func toolUseInputToArguments(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func toolResultContentToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var blocks []anthropicBlockWire
	if err := json.Unmarshal(raw, &blocks); err == nil {
		var out string
		for _, b := range blocks {
			if b.Type == "text" || b.Type == "" {
				out += b.Text
			}
		}
		return out
	}
	return string(raw)
}

func convertAnthropicTools(wire []anthropicToolWire) []Tool {
	if len(wire) == 0 {
		return nil
	}
	out := make([]Tool, 0, len(wire))
	for _, t := range wire {
		out = append(out, Tool{
			Type: "function",
			Function: ToolFunctionSpec{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.InputSchema,
			},
		})
	}
	return out
}

func convertAnthropicToolChoice(wire *anthropicToolChoiceWire) ToolChoice {
	if wire == nil {
		return ToolChoice{}
	}
	switch wire.Type {
	case "auto":
		return ToolChoice{Mode: "auto"}
	case "any":
		return ToolChoice{Mode: "required"}
	case "tool":
		return ToolChoice{Function: wire.Name}
	default:
		return ToolChoice{}
	}
}
