package translate

import (
	"bufio"
	"strings"
	"testing"
)

// TestProjectAnthropicSSE_TextThenToolCall covers spec §8 scenario 5
// exactly: text then a tool call, verifying emitted event order.
func TestProjectAnthropicSSE_TextThenToolCall(t *testing.T) {
	t.Parallel()
	stream := `data: {"choices":[{"delta":{"content":"hi"}}]}

data: {"choices":[{"delta":{"tool_calls":[{"index":0,"id":"t1","function":{"name":"f"}}]}}]}

data: {"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"x\""}}]}}]}

data: {"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":":1}"}}]}}]}

data: {"choices":[{"delta":{},"finish_reason":"tool_calls"}]}

`
	var names []string
	var indices []int
	err := ProjectAnthropicSSE(bufio.NewScanner(strings.NewReader(stream)), "m", "msg_1", func(ev AnthropicEvent) error {
		names = append(names, ev.Name)
		if m, ok := ev.Data.(map[string]any); ok {
			if idx, ok := m["index"].(int); ok {
				indices = append(indices, idx)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ProjectAnthropicSSE: %v", err)
	}

	want := []string{
		"message_start",
		"content_block_start", // index 0, text
		"content_block_delta", // index 0, "hi"
		"content_block_stop",  // index 0
		"content_block_start", // index 1, tool_use
		"content_block_delta", // index 1, "{\"x\""
		"content_block_delta", // index 1, ":1}"
		"content_block_stop",  // index 1
		"message_delta",
		"message_stop",
	}
	if len(names) != len(want) {
		t.Fatalf("event names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("event[%d] = %q, want %q (full: %v)", i, names[i], want[i], names)
		}
	}
}

// TestProjectAnthropicSSE_Invariant_BlockOrdering covers spec §8
// invariant 1: a valid sequence starts with message_start, balances every
// content_block_start/stop pair, and ends with message_delta, message_stop.
func TestProjectAnthropicSSE_Invariant_BlockOrdering(t *testing.T) {
	t.Parallel()
	stream := `data: {"choices":[{"delta":{"content":"a"}}]}

data: {"choices":[{"delta":{"tool_calls":[{"index":0,"id":"t1","function":{"name":"f","arguments":"{}"}}]}}]}

data: {"choices":[{"delta":{},"finish_reason":"stop"}]}

`
	openCounts := map[int]int{}
	var sawMessageStart, sawMessageDelta, sawMessageStop bool
	var order []string
	err := ProjectAnthropicSSE(bufio.NewScanner(strings.NewReader(stream)), "m", "msg_1", func(ev AnthropicEvent) error {
		order = append(order, ev.Name)
		m, _ := ev.Data.(map[string]any)
		switch ev.Name {
		case "message_start":
			sawMessageStart = true
		case "content_block_start":
			openCounts[m["index"].(int)]++
		case "content_block_stop":
			openCounts[m["index"].(int)]--
		case "message_delta":
			sawMessageDelta = true
		case "message_stop":
			sawMessageStop = true
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ProjectAnthropicSSE: %v", err)
	}
	if !sawMessageStart || !sawMessageDelta || !sawMessageStop {
		t.Fatalf("missing envelope events: %v", order)
	}
	if order[0] != "message_start" {
		t.Fatalf("first event = %q, want message_start", order[0])
	}
	if order[len(order)-1] != "message_stop" {
		t.Fatalf("last event = %q, want message_stop", order[len(order)-1])
	}
	for idx, count := range openCounts {
		if count != 0 {
			t.Fatalf("content block %d unbalanced: %d opens unmatched", idx, count)
		}
	}
}
