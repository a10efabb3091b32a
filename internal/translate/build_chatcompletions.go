package translate

// ChatCompletionsOutput builds the Chat Completions non-streaming envelope
// from an assembled result (C5, spec §4.5 "Chat Completions output").
func ChatCompletionsOutput(result Result, clock Clock, ids IDGenerator) map[string]any {
	finish := result.FinishReason
	if finish == "" {
		finish = "stop"
	}

	message := map[string]any{
		"role":    "assistant",
		"content": result.AssistantText,
	}
	if result.ReasoningText != "" {
		message["reasoning_content"] = result.ReasoningText
	}
	if len(result.ToolCalls) > 0 {
		message["tool_calls"] = result.ToolCalls
	}

	var usage any
	if result.Usage != nil {
		usage = result.Usage
	}

	return map[string]any{
		"id":      "chatcmpl-" + ids.NewID(),
		"object":  "chat.completion",
		"created": clock.Now().Unix(),
		"model":   result.Model,
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       message,
				"finish_reason": finish,
			},
		},
		"usage": usage,
	}
}
