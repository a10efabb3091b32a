package translate

import (
	"encoding/json"

	anthropic "github.com/liushuangls/go-anthropic/v2"
)

// AnthropicOutput builds the Anthropic Messages non-streaming envelope
// from an assembled result (C5, spec §4.5 "Anthropic non-streaming
// output"). Content blocks are built with go-anthropic's own constructors
// so the emitted JSON matches the wire shape the SDK itself sends/receives.
func AnthropicOutput(result Result, ids IDGenerator) map[string]any {
	var content []anthropic.MessageContent
	if result.AssistantText != "" {
		content = append(content, anthropic.NewTextMessageContent(result.AssistantText))
	}
	for _, tc := range result.ToolCalls {
		content = append(content, anthropic.NewToolUseMessageContent(tc.ID, tc.Function.Name, toolUseInput(tc.Function.Arguments)))
	}
	if content == nil {
		content = []anthropic.MessageContent{}
	}

	return map[string]any{
		"id":            "msg_" + ids.NewID(),
		"type":          "message",
		"role":          "assistant",
		"content":       content,
		"model":         result.Model,
		"stop_reason":   mapStopReason(result.FinishReason),
		"stop_sequence": nil,
		"usage":         anthropicUsage(result.Usage),
	}
}

// mapStopReason maps a Chat Completions finish_reason to an Anthropic
// stop_reason (spec §4.5): length -> max_tokens, tool_calls -> tool_use,
// anything else (including "stop") -> end_turn.
func mapStopReason(finishReason string) string {
	switch finishReason {
	case "length":
		return "max_tokens"
	case "tool_calls":
		return "tool_use"
	default:
		return "end_turn"
	}
}

// toolUseInput parses a tool call's accumulated argument string into a
// JSON value for the `input` field. An argument string that does not parse
// is emitted as a JSON string holding the raw text; an empty one becomes {}.
func toolUseInput(arguments string) json.RawMessage {
	if arguments == "" {
		return json.RawMessage("{}")
	}
	var v any
	if err := json.Unmarshal([]byte(arguments), &v); err != nil {
		b, _ := json.Marshal(arguments)
		return json.RawMessage(b)
	}
	return json.RawMessage(arguments)
}

// anthropicUsage reads a Result.Usage map into Anthropic's input_tokens/
// output_tokens shape. Usage normally carries the upstream Chat Completions
// keys (prompt_tokens/completion_tokens) decoded from JSON as float64, but
// echo mode (no upstream call, no JSON round trip) fabricates the
// Responses-shaped input_tokens/output_tokens directly as plain ints, so
// both key names and both numeric representations are accepted here.
func anthropicUsage(usage any) map[string]any {
	input, output := 0, 0
	if m, ok := usage.(map[string]any); ok {
		if v, ok := usageInt(m["prompt_tokens"]); ok {
			input = v
		} else if v, ok := usageInt(m["input_tokens"]); ok {
			input = v
		}
		if v, ok := usageInt(m["completion_tokens"]); ok {
			output = v
		} else if v, ok := usageInt(m["output_tokens"]); ok {
			output = v
		}
	}
	return map[string]any{"input_tokens": input, "output_tokens": output}
}

// usageInt reads a usage field that is either a JSON-decoded float64 or a
// plain int constructed in-process (spec §9 Open Question 2).
func usageInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
