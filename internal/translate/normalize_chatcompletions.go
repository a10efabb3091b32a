package translate

import "encoding/json"

// chatCompletionsRequestWire is the inbound shape accepted at
// /v1/chat/completions, loose enough to accept both plain string content
// and the content-parts array form.
type chatCompletionsRequestWire struct {
	Model             string          `json:"model"`
	Messages          []chatMsgWire   `json:"messages"`
	Stream            bool            `json:"stream"`
	Temperature       *float64        `json:"temperature"`
	TopP              *float64        `json:"top_p"`
	MaxTokens         *int            `json:"max_tokens"`
	ParallelToolCalls *bool           `json:"parallel_tool_calls"`
	Stop              json.RawMessage `json:"stop"`
	Tools             []toolWire      `json:"tools"`
	ToolChoice        json.RawMessage `json:"tool_choice"`
	ResponseFormat    *responseFormatWire `json:"response_format"`
}

type chatMsgWire struct {
	Role       string          `json:"role"`
	Content    json.RawMessage `json:"content"`
	ToolCalls  []toolCallWire  `json:"tool_calls"`
	ToolCallID string          `json:"tool_call_id"`
}

type toolCallWire struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type toolWire struct {
	Type     string `json:"type"`
	Function struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Parameters  any    `json:"parameters"`
	} `json:"function"`
}

type responseFormatWire struct {
	Type       string `json:"type"`
	JSONSchema *struct {
		Name   string          `json:"name"`
		Strict *bool           `json:"strict"`
		Schema json.RawMessage `json:"schema"`
	} `json:"json_schema"`
}

type contentPartWire struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NormalizeChatCompletions converts a raw Chat Completions request body
// into the canonical pivot (spec §4.2 "Chat Completions → canonical").
func NormalizeChatCompletions(body []byte) (Request, error) {
	var wire chatCompletionsRequestWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return Request{}, InvalidRequest("request body is not valid JSON")
	}
	if wire.Model == "" {
		return Request{}, InvalidRequest("model is required")
	}
	if len(wire.Messages) == 0 {
		return Request{}, InvalidRequest("messages is required")
	}

	messages := make([]Message, 0, len(wire.Messages))
	for _, m := range wire.Messages {
		messages = append(messages, Message{
			Role:       m.Role,
			Content:    flattenContent(m.Content),
			ToolCalls:  convertToolCallsWire(m.ToolCalls),
			ToolCallID: m.ToolCallID,
		})
	}

	req := Request{
		Model:             wire.Model,
		Messages:          messages,
		Stream:            wire.Stream,
		Temperature:       wire.Temperature,
		TopP:              wire.TopP,
		MaxTokens:         wire.MaxTokens,
		ParallelToolCalls: wire.ParallelToolCalls,
		Stop:              decodeStop(wire.Stop),
		Tools:             convertToolsWire(wire.Tools),
		ToolChoice:        decodeToolChoice(wire.ToolChoice),
		ResponseFormat:    convertResponseFormatWire(wire.ResponseFormat),
		RawBody:           body,
	}
	return req, nil
}

// flattenContent accepts either a JSON string or an array of
// {type,text} content parts, concatenating the text of parts whose
// type === "text" (spec §4.2).
func flattenContent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var parts []contentPartWire
	if err := json.Unmarshal(raw, &parts); err == nil {
		var out string
		for _, p := range parts {
			if p.Type == "text" {
				out += p.Text
			}
		}
		return out
	}
	return ""
}

func convertToolCallsWire(wire []toolCallWire) []ToolCall {
	if len(wire) == 0 {
		return nil
	}
	out := make([]ToolCall, 0, len(wire))
	for _, tc := range wire {
		out = append(out, ToolCall{
			ID:   tc.ID,
			Type: "function",
			Function: ToolCallFunc{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return out
}

// convertToolsWire drops any tool whose type is not "function" (spec
// §4.2).
func convertToolsWire(wire []toolWire) []Tool {
	var out []Tool
	for _, t := range wire {
		if t.Type != "function" {
			continue
		}
		out = append(out, Tool{
			Type: "function",
			Function: ToolFunctionSpec{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters:  t.Function.Parameters,
			},
		})
	}
	return out
}

func convertResponseFormatWire(w *responseFormatWire) *ResponseFormat {
	if w == nil || w.Type == "" {
		return nil
	}
	rf := &ResponseFormat{Type: w.Type}
	if w.JSONSchema != nil {
		strict := true
		if w.JSONSchema.Strict != nil {
			strict = *w.JSONSchema.Strict
		}
		name := w.JSONSchema.Name
		if name == "" {
			name = "schema"
		}
		rf.JSONSchema = &JSONSchemaSpec{Name: name, Strict: strict, Schema: w.JSONSchema.Schema}
	}
	return rf
}

func decodeStop(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return nil
		}
		return []string{s}
	}
	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr
	}
	return nil
}

// decodeToolChoice normalizes a bare string, a {type:"function",name:"X"}
// shorthand, and the canonical {type:"function",function:{name:"X"}} shape
// into ToolChoice (spec §4.2 "Chat Completions → canonical").
func decodeToolChoice(raw json.RawMessage) ToolChoice {
	if len(raw) == 0 {
		return ToolChoice{}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ToolChoice{Mode: s}
	}
	var obj struct {
		Type     string `json:"type"`
		Name     string `json:"name"`
		Function *struct {
			Name string `json:"name"`
		} `json:"function"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Function != nil && obj.Function.Name != "" {
			return ToolChoice{Function: obj.Function.Name}
		}
		if obj.Name != "" {
			return ToolChoice{Function: obj.Name}
		}
	}
	return ToolChoice{}
}
