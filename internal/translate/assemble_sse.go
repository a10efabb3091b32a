package translate

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
)

// chatCompletionChunk is the wire shape of one upstream Chat Completions
// SSE event, decoded loosely enough to absorb both the delta form and the
// rare full-message form some providers emit (spec §4.3).
type chatCompletionChunk struct {
	Model   string `json:"model"`
	Usage   any    `json:"usage"`
	Choices []struct {
		Message *struct {
			Content   string              `json:"content"`
			ToolCalls []toolCallDeltaWire `json:"tool_calls"`
		} `json:"message"`
		Delta struct {
			Content         string              `json:"content"`
			Text            string              `json:"text"`
			ReasoningContent string             `json:"reasoning_content"`
			ToolCalls       []toolCallDeltaWire `json:"tool_calls"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

type toolCallDeltaWire struct {
	Index    *int   `json:"index"`
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// accumulator is the explicit per-request state record C3 threads through
// its step function, mirroring the teacher's StreamingResponseContext
// idiom (an explicit record, not a hidden closure).
type accumulator struct {
	assistantText string
	reasoningText string
	model         string
	usage         any
	finishReason  string
	toolSlots     map[int]*ToolCall
	toolOrder     []int
}

func newAccumulator(requestedModel string) *accumulator {
	return &accumulator{model: requestedModel, toolSlots: map[int]*ToolCall{}}
}

// apply folds one decoded chunk into the accumulator. It reports whether
// assembly is complete: the rare full-message shape (spec §4.3) is adopted
// and ends the stream immediately, so the caller must stop scanning rather
// than let a later delta.content append onto the adopted message.
func (a *accumulator) apply(chunk chatCompletionChunk) (done bool) {
	if chunk.Model != "" {
		a.model = chunk.Model
	}
	if chunk.Usage != nil {
		a.usage = chunk.Usage
	}
	if len(chunk.Choices) == 0 {
		return false
	}
	choice := chunk.Choices[0]

	if choice.Message != nil {
		a.assistantText = choice.Message.Content
		if choice.Message.ToolCalls != nil {
			a.adoptToolCalls(choice.Message.ToolCalls)
		}
		if choice.FinishReason != nil {
			a.finishReason = *choice.FinishReason
		}
		return true
	}

	if choice.Delta.Content != "" {
		a.assistantText += choice.Delta.Content
	}
	if choice.Delta.Text != "" {
		a.assistantText += choice.Delta.Text
	}
	if choice.Delta.ReasoningContent != "" {
		a.reasoningText += choice.Delta.ReasoningContent
	}
	for _, tc := range choice.Delta.ToolCalls {
		a.applyToolCallDelta(tc)
	}
	if choice.FinishReason != nil {
		a.finishReason = *choice.FinishReason
	}
	return false
}

// adoptToolCalls is used for the rare non-delta full-message shape (spec
// §4.3: "adopt it and return immediately").
func (a *accumulator) adoptToolCalls(wire []toolCallDeltaWire) {
	for i, tc := range wire {
		idx := i
		if tc.Index != nil {
			idx = *tc.Index
		}
		a.ensureSlot(idx, tc.ID, tc.Type, tc.Function.Name)
		if tc.Function.Arguments != "" {
			a.toolSlots[idx].Function.Arguments += tc.Function.Arguments
		}
	}
}

func (a *accumulator) applyToolCallDelta(tc toolCallDeltaWire) {
	idx := 0
	if tc.Index != nil {
		idx = *tc.Index
	}
	if _, ok := a.toolSlots[idx]; !ok {
		a.ensureSlot(idx, tc.ID, tc.Type, tc.Function.Name)
	}
	if tc.Function.Arguments != "" {
		a.toolSlots[idx].Function.Arguments += tc.Function.Arguments
	}
}

func (a *accumulator) ensureSlot(idx int, id, typ, name string) {
	if typ == "" {
		typ = "function"
	}
	a.toolSlots[idx] = &ToolCall{ID: id, Type: typ, Function: ToolCallFunc{Name: name}}
	a.toolOrder = append(a.toolOrder, idx)
}

func (a *accumulator) result() Result {
	toolCalls := make([]ToolCall, 0, len(a.toolOrder))
	seen := map[int]bool{}
	for _, idx := range a.toolOrder {
		if seen[idx] {
			continue
		}
		seen[idx] = true
		if tc := a.toolSlots[idx]; tc != nil {
			toolCalls = append(toolCalls, *tc)
		}
	}
	return Result{
		AssistantText: a.assistantText,
		ReasoningText: a.reasoningText,
		ToolCalls:     toolCalls,
		Model:         a.model,
		Usage:         a.usage,
		FinishReason:  a.finishReason,
	}
}

// AssembleSSE reads an upstream Chat Completions SSE byte stream to
// completion and returns the assembled result (C3, spec §4.3). An
// unterminated stream (EOF without [DONE]) is not an error: whatever has
// been accumulated is returned.
func AssembleSSE(body io.Reader, requestedModel string) (Result, error) {
	acc := newAccumulator(requestedModel)
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		data, ok := bytes.CutPrefix(line, []byte("data:"))
		if !ok {
			continue
		}
		data = bytes.TrimSpace(data)
		if len(data) == 0 {
			continue
		}
		if string(data) == "[DONE]" {
			return acc.result(), nil
		}
		var chunk chatCompletionChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			continue
		}
		if done := acc.apply(chunk); done {
			return acc.result(), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return acc.result(), TransportError("reading upstream stream", err)
	}
	return acc.result(), nil
}
