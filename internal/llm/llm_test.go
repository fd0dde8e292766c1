package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	intconfig "familytrip/internal/config"
	"familytrip/internal/domain"
	"familytrip/internal/domain/models"
)

func collect(t *testing.T, s Stream) string {
	t.Helper()
	var b strings.Builder
	for s.Next() {
		b.WriteString(s.Text())
	}
	if err := s.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}
	_ = s.Close()
	return b.String()
}

func TestAnthropicStreamsTextDeltas(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "secret" || r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing auth headers: %v", r.Header)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: message_start\ndata: {\"type\":\"message_start\",\"message\":{\"id\":\"m1\",\"type\":\"message\",\"role\":\"assistant\",\"content\":[],\"model\":\"claude\"}}\n\n")
		fmt.Fprint(w, "event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"type\":\"text_delta\",\"text\":\"Hallo \"}}\n\n")
		fmt.Fprint(w, "event: ping\ndata: {\"type\":\"ping\"}\n\n")
		fmt.Fprint(w, "event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"type\":\"text_delta\",\"text\":\"familie!\"}}\n\n")
		fmt.Fprint(w, "event: message_stop\ndata: {\"type\":\"message_stop\"}\n\n")
	}))
	defer srv.Close()

	c := NewAnthropicClient("secret", srv.URL+"/", "")
	s, err := c.Stream(context.Background(), Request{
		System:      "sys",
		Messages:    []models.ChatMessage{{Role: models.RoleUser, Content: "hoi"}},
		MaxTokens:   1000,
		Temperature: 0,
	})
	if err != nil {
		t.Fatalf("Stream error: %v", err)
	}
	if text := collect(t, s); text != "Hallo familie!" {
		t.Fatalf("text = %q", text)
	}

	if got["stream"] != true || got["model"] != anthropicDefaultModel || got["max_tokens"] != float64(1000) {
		t.Fatalf("unexpected request body %v", got)
	}
	if temp, ok := got["temperature"]; !ok || temp != float64(0) {
		t.Fatalf("explicit zero temperature should be sent, got %v", got["temperature"])
	}
	system, _ := got["system"].([]any)
	if len(system) != 1 || system[0].(map[string]any)["text"] != "sys" {
		t.Fatalf("unexpected system blocks %v", got["system"])
	}
	msgs, _ := got["messages"].([]any)
	if len(msgs) != 1 || msgs[0].(map[string]any)["role"] != "user" {
		t.Fatalf("unexpected messages %v", got["messages"])
	}
}

func TestAnthropicNon2xxIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	}))
	defer srv.Close()

	s, err := NewAnthropicClient("bad", srv.URL+"/", "").Stream(context.Background(), Request{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "hoi"}},
	})
	if err != nil {
		t.Fatalf("Stream error: %v", err)
	}
	_, err = Prefetch(s)
	var ue domain.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.Status != http.StatusUnauthorized || ue.Provider != "anthropic" {
		t.Fatalf("unexpected upstream error %+v", ue)
	}
}

func TestAnthropicErrorEventStopsStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: error\ndata: {\"type\":\"error\",\"error\":{\"type\":\"overloaded_error\",\"message\":\"Overloaded\"}}\n\n")
	}))
	defer srv.Close()

	s, err := NewAnthropicClient("k", srv.URL+"/", "").Stream(context.Background(), Request{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "hoi"}},
	})
	if err != nil {
		t.Fatalf("Stream error: %v", err)
	}
	_, err = Prefetch(s)
	if !domain.IsUpstream(err) || !strings.Contains(err.Error(), "overloaded_error") {
		t.Fatalf("expected overloaded upstream error, got %v", err)
	}
}

func TestStreamingHTTPClientHasNoBodyDeadline(t *testing.T) {
	c := streamingHTTPClient()
	if c.Timeout != 0 {
		t.Fatalf("client timeout would cut off long streams: %v", c.Timeout)
	}
	tr, ok := c.Transport.(*http.Transport)
	if !ok || tr.ResponseHeaderTimeout != responseHeaderTimeout {
		t.Fatalf("expected header timeout on transport, got %+v", c.Transport)
	}
}

func TestSlowStreamOutlivesHeaderTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		for _, part := range []string{"lang", "zaam"} {
			time.Sleep(150 * time.Millisecond)
			fmt.Fprintf(w, "event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"type\":\"text_delta\",\"text\":%q}}\n\n", part)
			w.(http.Flusher).Flush()
		}
		fmt.Fprint(w, "event: message_stop\ndata: {\"type\":\"message_stop\"}\n\n")
	}))
	defer srv.Close()

	c := NewAnthropicClient("k", srv.URL+"/", "")
	tr := c.httpClient.Transport.(*http.Transport)
	tr.ResponseHeaderTimeout = 100 * time.Millisecond

	s, err := c.Stream(context.Background(), Request{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "hoi"}},
	})
	if err != nil {
		t.Fatalf("Stream error: %v", err)
	}
	if text := collect(t, s); text != "langzaam" {
		t.Fatalf("text = %q", text)
	}
}

func TestOpenAIStreamsChunks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{"Naar ", "Texel"} {
			fmt.Fprintf(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"m\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", part)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	c := NewOpenAIClient("k", srv.URL+"/", "m")
	s, err := c.Stream(context.Background(), Request{
		System:    "sys",
		Messages:  []models.ChatMessage{{Role: models.RoleUser, Content: "hoi"}},
		MaxTokens: 10,
	})
	if err != nil {
		t.Fatalf("Stream error: %v", err)
	}
	if text := collect(t, s); text != "Naar Texel" {
		t.Fatalf("text = %q", text)
	}
}

type fakeStream struct {
	parts []string
	i     int
	err   error
}

func (f *fakeStream) Next() bool {
	if f.i >= len(f.parts) {
		return false
	}
	f.i++
	return true
}
func (f *fakeStream) Text() string { return f.parts[f.i-1] }
func (f *fakeStream) Err() error   { return f.err }
func (f *fakeStream) Close() error { return nil }

func TestPrefetchReplaysFirstDelta(t *testing.T) {
	s, err := Prefetch(&fakeStream{parts: []string{"a", "b", "c"}})
	if err != nil {
		t.Fatalf("Prefetch error: %v", err)
	}
	if text := collect(t, s); text != "abc" {
		t.Fatalf("text = %q", text)
	}
}

func TestPrefetchEmptyStreamIsNotAnError(t *testing.T) {
	s, err := Prefetch(&fakeStream{})
	if err != nil {
		t.Fatalf("Prefetch error: %v", err)
	}
	if text := collect(t, s); text != "" {
		t.Fatalf("text = %q", text)
	}
}

func TestNewRequiresKeyAndKnownProvider(t *testing.T) {
	if _, err := New(intconfig.Env{LLMProvider: intconfig.ProviderAnthropic}); err == nil {
		t.Fatalf("expected error without API key")
	}
	if _, err := New(intconfig.Env{LLMProvider: "mistral", LLMAPIKey: "k"}); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
	p, err := New(intconfig.Env{LLMProvider: intconfig.ProviderOpenAI, LLMAPIKey: "k"})
	if err != nil || p.Name() != "openai" {
		t.Fatalf("New openai = %v, %v", p, err)
	}

	_, err = Unavailable{Reason: errors.New("no key")}.Stream(context.Background(), Request{})
	if !domain.IsUpstream(err) {
		t.Fatalf("Unavailable should return UpstreamError, got %v", err)
	}
}
