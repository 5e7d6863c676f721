package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/clarencejohnson126/angebotsagent/internal/llm"
)

func chatResponse(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
		"usage": map[string]any{"prompt_tokens": 120, "completion_tokens": 40, "total_tokens": 160},
	})
	return string(b)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: server.URL}, nil)
}

func TestExtractPositionsSuccess(t *testing.T) {
	var payload map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("unmarshal body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatResponse(`{"positions":[{"position_number":"01.02.0010","title":"Mauerwerk","quantity":125.5,"unit":"m²","page":1}]}`)))
	})

	ext, raw, err := client.ExtractPositions(context.Background(), llm.ExtractRequest{
		Pages: [][]string{{"01.02.0010 Mauerwerk", "Menge: 125,50 m²"}},
	})
	if err != nil {
		t.Fatalf("ExtractPositions() error = %v", err)
	}
	if len(raw) == 0 || len(ext.Positions) != 1 || ext.Positions[0].PositionNumber != "01.02.0010" {
		t.Fatalf("ext = %+v", ext)
	}
	if got, _ := payload["model"].(string); got != "gpt-4o-mini" {
		t.Errorf("model = %q", got)
	}
	msgs, _ := payload["messages"].([]any)
	if len(msgs) != 3 {
		t.Fatalf("messages = %d", len(msgs))
	}
	user, _ := msgs[1].(map[string]any)
	if content, _ := user["content"].(string); !strings.Contains(content, "Seite 1") {
		t.Errorf("user message = %v", user["content"])
	}
	if client.ModelName() != "gpt-4o-mini" {
		t.Errorf("model name = %s", client.ModelName())
	}
}

func TestExtractPositionsSanitizes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatResponse("```json\n" + `{"positions":[{"oz":"1.","kurztext":"Baustelle","menge":"1,000","einheit":"pauschal"}]}` + "\n```")))
	})

	ext, _, err := client.ExtractPositions(context.Background(), llm.ExtractRequest{Pages: [][]string{{"1. Baustelle"}}})
	if err != nil {
		t.Fatalf("ExtractPositions() error = %v", err)
	}
	if len(ext.Positions) != 1 {
		t.Fatalf("ext = %+v", ext)
	}
	p := ext.Positions[0]
	if p.PositionNumber != "1." || p.Unit != "psch" || p.Quantity == nil || *p.Quantity != 1 {
		t.Errorf("p = %+v", p)
	}
}

func TestExtractPositionsAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad model","type":"invalid_request_error","param":"","code":"model_not_found"}}`))
	})

	_, _, err := client.ExtractPositions(context.Background(), llm.ExtractRequest{Pages: [][]string{{"x"}}})
	if err == nil || !strings.Contains(err.Error(), "status 400") {
		t.Fatalf("err = %v", err)
	}
}

func TestStripFence(t *testing.T) {
	if got := stripFence("```json\n{}\n```"); got != "{}" {
		t.Errorf("stripFence = %q", got)
	}
	if got := stripFence(" {} "); got != "{}" {
		t.Errorf("stripFence = %q", got)
	}
}
