package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// ════════════════════════════════════════════════════════════════════
// provider.go: types and helpers
// ════════════════════════════════════════════════════════════════════

func TestMessageConstructors(t *testing.T) {
	if m := SystemMessage("sys"); m.Role != RoleSystem || m.Content != "sys" {
		t.Fatalf("unexpected system message: %+v", m)
	}
	if m := UserMessage("hi"); m.Role != RoleUser || m.Content != "hi" {
		t.Fatalf("unexpected user message: %+v", m)
	}
}

func TestResponseString(t *testing.T) {
	r := &Response{
		Content:  strings.Repeat("x", 150),
		Provider: "gemini",
		Model:    "gemini-1.5-flash",
		Latency:  1500 * time.Millisecond,
	}
	s := r.String()
	if !strings.Contains(s, "[gemini/gemini-1.5-flash]") || !strings.Contains(s, "...") {
		t.Fatalf("unexpected String(): %s", s)
	}
}

type stubProvider struct {
	resp *Response
	err  error
	got  []Message
}

func (s *stubProvider) Name() string                 { return "stub" }
func (s *stubProvider) Ping(ctx context.Context) error { return nil }
func (s *stubProvider) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	s.got = messages
	return s.resp, s.err
}

func TestPrompt(t *testing.T) {
	p := &stubProvider{resp: &Response{Content: "Label: positive"}}
	out, err := Prompt(context.Background(), p, "classify", nil)
	if err != nil {
		t.Fatal(err)
	}
	if out != "Label: positive" {
		t.Fatalf("unexpected output: %q", out)
	}
	if len(p.got) != 1 || p.got[0].Role != RoleUser || p.got[0].Content != "classify" {
		t.Fatalf("unexpected messages: %+v", p.got)
	}
}

func TestPromptEmptyAndBlocked(t *testing.T) {
	_, err := Prompt(context.Background(), &stubProvider{resp: &Response{}}, "x", nil)
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	_, err = Prompt(context.Background(), &stubProvider{resp: &Response{FinishReason: FinishSafety}}, "x", nil)
	if !errors.Is(err, ErrContentBlocked) {
		t.Fatalf("expected ErrContentBlocked, got %v", err)
	}
	_, err = Prompt(context.Background(), &stubProvider{err: ErrRateLimit}, "x", nil)
	if !errors.Is(err, ErrRateLimit) {
		t.Fatalf("expected ErrRateLimit, got %v", err)
	}
}

// ════════════════════════════════════════════════════════════════════
// gemini.go
// ════════════════════════════════════════════════════════════════════

func TestGeminiProviderNew(t *testing.T) {
	_, err := NewGeminiProvider("")
	if err != ErrNoAPIKey {
		t.Fatalf("expected ErrNoAPIKey, got: %v", err)
	}

	p, err := NewGeminiProvider("test-key", WithGeminiModel("gemini-1.5-pro"), WithGeminiBaseURL("http://x/"))
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "gemini" || p.model != "gemini-1.5-pro" || p.baseURL != "http://x" {
		t.Fatalf("unexpected config: %+v", p)
	}

	p, _ = NewGeminiProvider("test-key", WithGeminiModel(""))
	if p.model != "gemini-1.5-flash" {
		t.Fatalf("empty model should keep default, got %q", p.model)
	}
}

func TestGeminiChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-1.5-flash:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "gem-key" {
			t.Error("missing API key in query")
		}

		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "How is Acme perceived?" {
			t.Errorf("unexpected contents: %+v", req.Contents)
		}
		if req.SystemInstruction == nil || req.GenerationConfig == nil || req.GenerationConfig.Temperature != 0.2 {
			t.Errorf("unexpected request: %+v", req)
		}

		resp := geminiResponse{
			Candidates: []geminiCandidate{{
				Content: geminiContent{
					Role:  "model",
					Parts: []geminiPart{{Text: "Mostly "}, {Text: "positive."}},
				},
				FinishReason: "STOP",
			}},
			UsageMetadata: geminiUsageMetadata{
				PromptTokenCount:     10,
				CandidatesTokenCount: 8,
				TotalTokenCount:      18,
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p, _ := NewGeminiProvider("gem-key", WithGeminiBaseURL(server.URL))

	resp, err := p.Chat(context.Background(),
		[]Message{SystemMessage("Analyst"), UserMessage("How is Acme perceived?")},
		&ChatOptions{Temperature: 0.2})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "Mostly positive." {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if resp.Provider != "gemini" || resp.Usage.TotalTokens != 18 || resp.FinishReason != FinishStop {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestGeminiChatModelOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.0-flash:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]},"finishReason":"STOP"}]}`))
	}))
	defer server.Close()

	p, _ := NewGeminiProvider("gem-key", WithGeminiBaseURL(server.URL))
	if _, err := p.Chat(context.Background(), []Message{UserMessage("x")}, &ChatOptions{Model: "gemini-2.0-flash"}); err != nil {
		t.Fatal(err)
	}
}

func TestGeminiErrorHandling(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"forbidden", http.StatusForbidden, `{"error":{"code":403,"message":"API key not valid"}}`, ErrNoAPIKey},
		{"rate limit", http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota"}}`, ErrRateLimit},
		{"bad model", http.StatusNotFound, `{"error":{"code":404,"message":"model not found"}}`, ErrInvalidModel},
		{"server down", http.StatusBadGateway, `<html>bad gateway</html>`, ErrProviderDown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			p, _ := NewGeminiProvider("gem-key", WithGeminiBaseURL(server.URL))
			_, err := p.Chat(context.Background(), []Message{UserMessage("x")}, nil)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestGeminiSafetyFinish(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[]},"finishReason":"SAFETY"}]}`))
	}))
	defer server.Close()

	p, _ := NewGeminiProvider("gem-key", WithGeminiBaseURL(server.URL))
	_, err := Prompt(context.Background(), p, "x", nil)
	if !errors.Is(err, ErrContentBlocked) {
		t.Fatalf("expected ErrContentBlocked, got %v", err)
	}
}

func TestGeminiPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/models") {
			w.Write([]byte(`{"models":[]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p, _ := NewGeminiProvider("gem-key", WithGeminiBaseURL(server.URL))
	if err := p.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}

func TestGeminiPingInvalidKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	p, _ := NewGeminiProvider("gem-key", WithGeminiBaseURL(server.URL))
	if err := p.Ping(context.Background()); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
}
