package translate

import "testing"

func TestNormalizeChatCompletions_FlattenContentParts(t *testing.T) {
	t.Parallel()
	body := []byte(`{"model":"m","messages":[{"role":"user","content":[{"type":"text","text":"a"},{"type":"image_url","image_url":"x"},{"type":"text","text":"b"}]}]}`)
	req, err := NormalizeChatCompletions(body)
	if err != nil {
		t.Fatalf("NormalizeChatCompletions: %v", err)
	}
	if req.Messages[0].Content != "ab" {
		t.Fatalf("Content = %q, want %q", req.Messages[0].Content, "ab")
	}
}

func TestNormalizeChatCompletions_MissingModel(t *testing.T) {
	t.Parallel()
	_, err := NormalizeChatCompletions([]byte(`{"messages":[{"role":"user","content":"hi"}]}`))
	assertInvalidRequest(t, err)
}

func TestNormalizeChatCompletions_MissingMessages(t *testing.T) {
	t.Parallel()
	_, err := NormalizeChatCompletions([]byte(`{"model":"m"}`))
	assertInvalidRequest(t, err)
}

func TestNormalizeChatCompletions_DropsNonFunctionTools(t *testing.T) {
	t.Parallel()
	body := []byte(`{"model":"m","messages":[{"role":"user","content":"hi"}],"tools":[{"type":"function","function":{"name":"f"}},{"type":"web_search"}]}`)
	req, err := NormalizeChatCompletions(body)
	if err != nil {
		t.Fatalf("NormalizeChatCompletions: %v", err)
	}
	if len(req.Tools) != 1 || req.Tools[0].Function.Name != "f" {
		t.Fatalf("Tools = %+v", req.Tools)
	}
}

func TestNormalizeChatCompletions_ToolChoiceShorthand(t *testing.T) {
	t.Parallel()
	body := []byte(`{"model":"m","messages":[{"role":"user","content":"hi"}],"tool_choice":{"type":"function","name":"X"}}`)
	req, err := NormalizeChatCompletions(body)
	if err != nil {
		t.Fatalf("NormalizeChatCompletions: %v", err)
	}
	if !req.ToolChoice.IsFunction() || req.ToolChoice.Function != "X" {
		t.Fatalf("ToolChoice = %+v", req.ToolChoice)
	}
}

func TestNormalizeResponses_StringInput(t *testing.T) {
	t.Parallel()
	req, err := NormalizeResponses([]byte(`{"model":"m","input":"hi"}`))
	if err != nil {
		t.Fatalf("NormalizeResponses: %v", err)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" || req.Messages[0].Content != "hi" {
		t.Fatalf("Messages = %+v", req.Messages)
	}
}

func TestNormalizeResponses_MissingInput(t *testing.T) {
	t.Parallel()
	_, err := NormalizeResponses([]byte(`{"model":"m"}`))
	assertInvalidRequest(t, err)
}

func TestNormalizeResponses_FunctionCallItems(t *testing.T) {
	t.Parallel()
	body := []byte(`{"model":"m","input":[
		{"type":"function_call","call_id":"c1","name":"add","arguments":"{\"a\":1}"},
		{"type":"function_call_output","call_id":"c1","output":"3"}
	]}`)
	req, err := NormalizeResponses(body)
	if err != nil {
		t.Fatalf("NormalizeResponses: %v", err)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("Messages = %+v", req.Messages)
	}
	if req.Messages[0].Role != "assistant" || len(req.Messages[0].ToolCalls) != 1 {
		t.Fatalf("Messages[0] = %+v", req.Messages[0])
	}
	if req.Messages[1].Role != "tool" || req.Messages[1].ToolCallID != "c1" || req.Messages[1].Content != "3" {
		t.Fatalf("Messages[1] = %+v", req.Messages[1])
	}
}

func TestNormalizeResponses_Instructions(t *testing.T) {
	t.Parallel()
	req, err := NormalizeResponses([]byte(`{"model":"m","input":"hi","instructions":"be terse"}`))
	if err != nil {
		t.Fatalf("NormalizeResponses: %v", err)
	}
	if req.Messages[0].Role != "system" || req.Messages[0].Content != "be terse" {
		t.Fatalf("Messages[0] = %+v", req.Messages[0])
	}
}

func TestNormalizeResponses_JSONSchemaFormat(t *testing.T) {
	t.Parallel()
	body := []byte(`{"model":"m","input":"hi","text":{"format":{"type":"json_schema","name":"out","schema":{"type":"object"}}}}`)
	req, err := NormalizeResponses(body)
	if err != nil {
		t.Fatalf("NormalizeResponses: %v", err)
	}
	if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_schema" || req.ResponseFormat.JSONSchema.Name != "out" || !req.ResponseFormat.JSONSchema.Strict {
		t.Fatalf("ResponseFormat = %+v", req.ResponseFormat)
	}
}

func TestNormalizeAnthropic_TextAndToolUse(t *testing.T) {
	t.Parallel()
	body := []byte(`{"model":"m","max_tokens":100,"system":"be terse","messages":[
		{"role":"user","content":"hi"},
		{"role":"assistant","content":[{"type":"text","text":"ok"},{"type":"tool_use","id":"t1","name":"f","input":{"a":1}}]},
		{"role":"user","content":[{"type":"tool_result","tool_use_id":"t1","content":"3"}]}
	]}`)
	req, err := NormalizeAnthropic(body)
	if err != nil {
		t.Fatalf("NormalizeAnthropic: %v", err)
	}
	if req.Messages[0].Role != "system" || req.Messages[0].Content != "be terse" {
		t.Fatalf("Messages[0] = %+v", req.Messages[0])
	}
	if req.Messages[1].Role != "user" || req.Messages[1].Content != "hi" {
		t.Fatalf("Messages[1] = %+v", req.Messages[1])
	}
	if req.Messages[2].Content != "ok" {
		t.Fatalf("Messages[2] = %+v", req.Messages[2])
	}
	toolMsg := req.Messages[3]
	if len(toolMsg.ToolCalls) != 1 || toolMsg.ToolCalls[0].Function.Name != "f" {
		t.Fatalf("Messages[3] = %+v", toolMsg)
	}
	resultMsg := req.Messages[4]
	if resultMsg.Role != "tool" || resultMsg.ToolCallID != "t1" || resultMsg.Content != "3" {
		t.Fatalf("Messages[4] = %+v", resultMsg)
	}
}

func TestNormalizeAnthropic_MissingMaxTokens(t *testing.T) {
	t.Parallel()
	body := []byte(`{"model":"m","messages":[{"role":"user","content":"hi"}]}`)
	_, err := NormalizeAnthropic(body)
	assertInvalidRequest(t, err)
}

func TestNormalizeAnthropic_ToolChoiceMapping(t *testing.T) {
	t.Parallel()
	body := []byte(`{"model":"m","max_tokens":10,"messages":[{"role":"user","content":"hi"}],"tool_choice":{"type":"any"}}`)
	req, err := NormalizeAnthropic(body)
	if err != nil {
		t.Fatalf("NormalizeAnthropic: %v", err)
	}
	if req.ToolChoice.Mode != "required" {
		t.Fatalf("ToolChoice = %+v", req.ToolChoice)
	}
}

func assertInvalidRequest(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an InvalidRequest error")
	}
	tErr, ok := err.(*Error)
	if !ok || tErr.Kind != KindInvalidRequest {
		t.Fatalf("err = %v, want KindInvalidRequest", err)
	}
}
