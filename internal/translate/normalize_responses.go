package translate

import (
	"encoding/json"
	"fmt"
)

type responsesRequestWire struct {
	Model        string          `json:"model"`
	Input        json.RawMessage `json:"input"`
	Instructions string          `json:"instructions"`
	Stream       bool            `json:"stream"`
	Temperature  *float64        `json:"temperature"`
	TopP         *float64        `json:"top_p"`
	MaxTokens    *int            `json:"max_output_tokens"`
	ParallelToolCalls *bool      `json:"parallel_tool_calls"`
	Tools        []toolWire      `json:"tools"`
	ToolChoice   json.RawMessage `json:"tool_choice"`
	Text         *struct {
		Format *struct {
			Type   string          `json:"type"`
			Name   string          `json:"name"`
			Strict *bool           `json:"strict"`
			Schema json.RawMessage `json:"schema"`
		} `json:"format"`
	} `json:"text"`
}

// responsesInputItem is the polymorphic per-item shape accepted inside an
// `input` array (spec §4.2 "Responses → canonical").
type responsesInputItem struct {
	Type    string          `json:"type"`
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
	CallID  string          `json:"call_id"`
	Name    string          `json:"name"`
	Arguments string        `json:"arguments"`
	Output  json.RawMessage `json:"output"`
}

// NormalizeResponses converts a raw Responses request body into the
// canonical pivot (spec §4.2 "Responses → canonical").
func NormalizeResponses(body []byte) (Request, error) {
	var wire responsesRequestWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return Request{}, InvalidRequest("request body is not valid JSON")
	}
	if wire.Model == "" {
		return Request{}, InvalidRequest("model is required")
	}
	if len(wire.Input) == 0 {
		return Request{}, InvalidRequest("input is required")
	}

	messages, err := responsesInputToMessages(wire.Input)
	if err != nil {
		return Request{}, err
	}
	if len(messages) == 0 {
		return Request{}, InvalidRequest("input is required")
	}

	if wire.Instructions != "" {
		messages = append([]Message{{Role: "system", Content: wire.Instructions}}, messages...)
	}

	req := Request{
		Model:             wire.Model,
		Messages:          messages,
		Stream:            wire.Stream,
		Temperature:       wire.Temperature,
		TopP:              wire.TopP,
		MaxTokens:         wire.MaxTokens,
		ParallelToolCalls: wire.ParallelToolCalls,
		Tools:             convertToolsWire(wire.Tools),
		ToolChoice:        decodeToolChoice(wire.ToolChoice),
		RawBody:           body,
	}
	if wire.Text != nil && wire.Text.Format != nil {
		switch wire.Text.Format.Type {
		case "json_object":
			req.ResponseFormat = &ResponseFormat{Type: "json_object"}
		case "json_schema":
			name := wire.Text.Format.Name
			if name == "" {
				name = "schema"
			}
			strict := true
			if wire.Text.Format.Strict != nil {
				strict = *wire.Text.Format.Strict
			}
			req.ResponseFormat = &ResponseFormat{
				Type:       "json_schema",
				JSONSchema: &JSONSchemaSpec{Name: name, Strict: strict, Schema: wire.Text.Format.Schema},
			}
		}
	}
	return req, nil
}

func responsesInputToMessages(raw json.RawMessage) ([]Message, error) {
	// input: a plain string is a single user message.
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []Message{{Role: "user", Content: s}}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		// Something else entirely: stringify as a user message.
		var any any
		_ = json.Unmarshal(raw, &any)
		return []Message{{Role: "user", Content: fmt.Sprint(any)}}, nil
	}

	var messages []Message
	for _, itemRaw := range items {
		var item responsesInputItem
		if err := json.Unmarshal(itemRaw, &item); err != nil {
			continue
		}
		switch item.Type {
		case "function_call":
			messages = append(messages, Message{
				Role:    "assistant",
				Content: "",
				ToolCalls: []ToolCall{{
					ID:   item.CallID,
					Type: "function",
					Function: ToolCallFunc{
						Name:      item.Name,
						Arguments: item.Arguments,
					},
				}},
			})
		case "function_call_output":
			messages = append(messages, Message{
				Role:       "tool",
				ToolCallID: item.CallID,
				Content:    outputToString(item.Output),
			})
		default:
			role := item.Role
			if role == "" {
				role = "user"
			}
			if len(item.Content) > 0 {
				messages = append(messages, Message{Role: role, Content: responsesContentToString(item.Content)})
			} else {
				var whole any
				_ = json.Unmarshal(itemRaw, &whole)
				messages = append(messages, Message{Role: role, Content: fmt.Sprint(whole)})
			}
		}
	}
	return messages, nil
}

// responsesContentToString handles a string content field, an array of
// typed parts (concatenating input_text/text/output_text parts in order),
// or any other shape (stringified).
func responsesContentToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parts); err == nil {
		var out string
		for _, p := range parts {
			switch p.Type {
			case "input_text", "text", "output_text":
				out += p.Text
			}
		}
		return out
	}
	var any any
	_ = json.Unmarshal(raw, &any)
	return fmt.Sprint(any)
}

func outputToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
