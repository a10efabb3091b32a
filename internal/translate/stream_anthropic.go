package translate

import (
	"bufio"
	"bytes"
	"encoding/json"
	"sort"

	anthropic "github.com/liushuangls/go-anthropic/v2"
)

// AnthropicEvent is one event of the outbound Anthropic SSE stream: the
// event name and its JSON-encodable payload (spec §6 "SSE framing").
type AnthropicEvent struct {
	Name string
	Data any
}

type projectorStreamChunk struct {
	Model   *string `json:"model"`
	Usage   any     `json:"usage"`
	Choices []struct {
		Delta struct {
			Content          *string             `json:"content"`
			Text             *string             `json:"text"`
			ReasoningContent *string             `json:"reasoning_content"`
			ToolCalls        []toolCallDeltaWire `json:"tool_calls"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// anthropicStreamState is the explicit per-request state record C6
// threads through its step function (spec §3 "Anthropic stream state"),
// mirroring the teacher's StreamingResponseContext idiom.
type anthropicStreamState struct {
	sentMessageStart bool
	textBlockOpen    bool
	textBlockClosed  bool
	toolOrder        []int
	toolBlocks       map[int]*toolBlockState
	msgID            string
	model            string
	finished         bool
}

type toolBlockState struct {
	id, name string
	started  bool
	closed   bool
}

func newAnthropicStreamState(msgID, model string) *anthropicStreamState {
	return &anthropicStreamState{msgID: msgID, model: model, toolBlocks: map[int]*toolBlockState{}}
}

// ProjectAnthropicSSE runs the live Anthropic stream projector (C6, spec
// §4.6): it reads the upstream Chat Completions SSE byte stream and calls
// emit for every Anthropic event, in order, as soon as each is known. It
// returns once the downstream stream has been closed (finish_reason seen,
// or upstream EOF) or emit returns an error.
func ProjectAnthropicSSE(body *bufio.Scanner, requestedModel, msgID string, emit func(AnthropicEvent) error) error {
	st := newAnthropicStreamState(msgID, requestedModel)
	body.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for body.Scan() {
		line := body.Bytes()
		data, ok := bytes.CutPrefix(line, []byte("data:"))
		if !ok {
			continue
		}
		data = bytes.TrimSpace(data)
		if len(data) == 0 {
			continue
		}
		if string(data) == "[DONE]" {
			return st.finish(emit, "end_turn")
		}
		var chunk projectorStreamChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			continue
		}
		if err := st.step(chunk, emit); err != nil {
			return err
		}
		if st.finished {
			return nil
		}
	}
	if err := body.Err(); err != nil {
		return TransportError("reading upstream stream", err)
	}
	return st.finish(emit, "end_turn")
}

func (st *anthropicStreamState) step(chunk projectorStreamChunk, emit func(AnthropicEvent) error) error {
	if chunk.Model != nil && *chunk.Model != "" {
		st.model = *chunk.Model
	}
	if !st.sentMessageStart {
		if err := emit(AnthropicEvent{Name: "message_start", Data: map[string]any{
			"type": "message_start",
			"message": map[string]any{
				"id":            st.msgID,
				"type":          "message",
				"role":          "assistant",
				"content":       []any{},
				"model":         st.model,
				"stop_reason":   nil,
				"stop_sequence": nil,
				"usage":         map[string]any{"input_tokens": 0, "output_tokens": 0},
			},
		}}); err != nil {
			return err
		}
		st.sentMessageStart = true
	}
	if len(chunk.Choices) == 0 {
		return nil
	}
	choice := chunk.Choices[0]

	if choice.Delta.Content != nil || choice.Delta.Text != nil || choice.Delta.ReasoningContent != nil {
		if err := st.emitText(choice.Delta.Content, emit); err != nil {
			return err
		}
		if err := st.emitText(choice.Delta.Text, emit); err != nil {
			return err
		}
		if err := st.emitText(choice.Delta.ReasoningContent, emit); err != nil {
			return err
		}
	}

	for _, tc := range choice.Delta.ToolCalls {
		if err := st.applyToolDelta(tc, emit); err != nil {
			return err
		}
	}

	if choice.FinishReason != nil {
		return st.finish(emit, mapStopReason(*choice.FinishReason))
	}
	return nil
}

func (st *anthropicStreamState) emitText(text *string, emit func(AnthropicEvent) error) error {
	if text == nil {
		return nil
	}
	if !st.textBlockOpen {
		if err := emit(AnthropicEvent{Name: "content_block_start", Data: map[string]any{
			"type":          "content_block_start",
			"index":         0,
			"content_block": anthropic.NewTextMessageContent(""),
		}}); err != nil {
			return err
		}
		st.textBlockOpen = true
	}
	if *text == "" {
		return nil
	}
	return emit(AnthropicEvent{Name: "content_block_delta", Data: map[string]any{
		"type":  "content_block_delta",
		"index": 0,
		"delta": map[string]any{"type": "text_delta", "text": *text},
	}})
}

func (st *anthropicStreamState) closeTextBlock(emit func(AnthropicEvent) error) error {
	if st.textBlockOpen && !st.textBlockClosed {
		if err := emit(AnthropicEvent{Name: "content_block_stop", Data: map[string]any{
			"type":  "content_block_stop",
			"index": 0,
		}}); err != nil {
			return err
		}
		st.textBlockClosed = true
	}
	return nil
}

func (st *anthropicStreamState) applyToolDelta(tc toolCallDeltaWire, emit func(AnthropicEvent) error) error {
	idx := 0
	if tc.Index != nil {
		idx = *tc.Index
	}
	tb, ok := st.toolBlocks[idx]
	if !ok {
		if err := st.closeTextBlock(emit); err != nil {
			return err
		}
		tb = &toolBlockState{id: tc.ID, name: tc.Function.Name}
		st.toolBlocks[idx] = tb
		st.toolOrder = append(st.toolOrder, idx)
		if err := emit(AnthropicEvent{Name: "content_block_start", Data: map[string]any{
			"type":          "content_block_start",
			"index":         idx + 1,
			"content_block": anthropic.NewToolUseMessageContent(tc.ID, tc.Function.Name, json.RawMessage("{}")),
		}}); err != nil {
			return err
		}
		tb.started = true
	}
	if tc.Function.Arguments != "" {
		if err := emit(AnthropicEvent{Name: "content_block_delta", Data: map[string]any{
			"type":  "content_block_delta",
			"index": idx + 1,
			"delta": map[string]any{"type": "input_json_delta", "partial_json": tc.Function.Arguments},
		}}); err != nil {
			return err
		}
	}
	return nil
}

func (st *anthropicStreamState) finish(emit func(AnthropicEvent) error, stopReason string) error {
	if st.finished {
		return nil
	}
	if err := st.closeTextBlock(emit); err != nil {
		return err
	}
	sortedIdx := append([]int(nil), st.toolOrder...)
	sort.Ints(sortedIdx)
	seen := map[int]bool{}
	for _, idx := range sortedIdx {
		if seen[idx] {
			continue
		}
		seen[idx] = true
		tb := st.toolBlocks[idx]
		if tb == nil || tb.closed {
			continue
		}
		if err := emit(AnthropicEvent{Name: "content_block_stop", Data: map[string]any{
			"type":  "content_block_stop",
			"index": idx + 1,
		}}); err != nil {
			return err
		}
		tb.closed = true
	}
	if err := emit(AnthropicEvent{Name: "message_delta", Data: map[string]any{
		"type":  "message_delta",
		"delta": map[string]any{"stop_reason": stopReason, "stop_sequence": nil},
	}}); err != nil {
		return err
	}
	if err := emit(AnthropicEvent{Name: "message_stop", Data: map[string]any{
		"type": "message_stop",
	}}); err != nil {
		return err
	}
	st.finished = true
	return nil
}
