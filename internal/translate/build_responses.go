package translate

import "encoding/json"

// ResponsesOutput builds the Responses non-streaming envelope from an
// assembled result and the original canonical request (C5, spec §4.5
// "Responses output"). When req.ResponseFormat asks for json_object, C7
// is applied to assistantText; on success the recovered value's canonical
// stringification replaces assistantText, otherwise it passes through
// unchanged.
func ResponsesOutput(req Request, result Result, clock Clock, ids IDGenerator) map[string]any {
	assistantText := result.AssistantText
	if req.ResponseFormat != nil && req.ResponseFormat.Type == "json_object" {
		if v, ok := RecoverJSON(assistantText); ok {
			if b, err := marshalCanonical(v); err == nil {
				assistantText = string(b)
			}
		}
	}

	msgID := "msg-" + ids.NewID()
	content := []map[string]any{}
	if assistantText != "" {
		content = append(content, map[string]any{
			"type":        "output_text",
			"text":        assistantText,
			"annotations": []any{},
		})
	}

	output := []map[string]any{
		{
			"type":    "message",
			"id":      msgID,
			"status":  "completed",
			"role":    "assistant",
			"content": content,
		},
	}
	for _, tc := range result.ToolCalls {
		output = append(output, map[string]any{
			"type":      "function_call",
			"call_id":   tc.ID,
			"name":      tc.Function.Name,
			"arguments": tc.Function.Arguments,
		})
	}

	temperature := 1.0
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	topP := 1.0
	if req.TopP != nil {
		topP = *req.TopP
	}
	parallelToolCalls := true
	if req.ParallelToolCalls != nil {
		parallelToolCalls = *req.ParallelToolCalls
	}
	toolChoice := "auto"
	if req.ToolChoice.IsFunction() {
		toolChoice = req.ToolChoice.Function
	} else if req.ToolChoice.Mode != "" {
		toolChoice = req.ToolChoice.Mode
	}

	var usage any
	if result.Usage != nil {
		usage = result.Usage
	}

	return map[string]any{
		"id":                  "resp-" + ids.NewID(),
		"object":              "response",
		"created_at":          clock.Now().Unix(),
		"status":              "completed",
		"error":               nil,
		"incomplete_details":  nil,
		"instructions":        instructionsOf(req),
		"max_output_tokens":   req.MaxTokens,
		"model":               result.Model,
		"parallel_tool_calls": parallelToolCalls,
		"previous_response_id": nil,
		"reasoning":           map[string]any{"effort": nil, "summary": nil},
		"store":               true,
		"temperature":         temperature,
		"text":                map[string]any{"format": map[string]any{"type": "text"}},
		"tool_choice":         toolChoice,
		"tools":               req.Tools,
		"top_p":               topP,
		"truncation":          "disabled",
		"usage":               usage,
		"user":                nil,
		"metadata":            map[string]any{},
		"output":              output,
		"output_text":         assistantText,
	}
}

// instructionsOf recovers the original `instructions` field from the raw
// request body, if any was supplied (it was folded into a leading system
// message during normalization and is not retained on Request itself).
func instructionsOf(req Request) any {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(req.RawBody, &fields); err != nil {
		return nil
	}
	raw, ok := fields["instructions"]
	if !ok {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return s
}
