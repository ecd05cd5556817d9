package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"mdchat/internal/agent"
	"mdchat/internal/logger"
)

func silenceRootLogger(t *testing.T) {
	t.Helper()
	root := logger.Root()
	prev := root.Out
	root.SetOutput(io.Discard)
	t.Cleanup(func() {
		root.SetOutput(prev)
	})
}

const chatOK = `{
  "id": "chatcmpl-test",
  "object": "chat.completion",
  "created": 0,
  "model": "gpt-4o",
  "choices": [
    {
      "index": 0,
      "finish_reason": "stop",
      "logprobs": null,
      "message": {"role": "assistant", "content": "# ok", "refusal": null}
    }
  ]
}`

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := New(Options{APIKey: "test", BaseURL: baseURL, Model: "gpt-4o"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return client
}

func TestComplete_ChatCompletions(t *testing.T) {
	silenceRootLogger(t)

	type testCase struct {
		name       string
		statusCode int
		body       string
		wantText   string
		wantErr    bool
		wantMarker string
	}

	cases := []testCase{
		{name: "success", statusCode: http.StatusOK, body: chatOK, wantText: "# ok"},
		{
			name:       "no choices",
			statusCode: http.StatusOK,
			body:       `{"id":"x","object":"chat.completion","created":0,"model":"gpt-4o","choices":[]}`,
			wantErr:    true,
			wantMarker: "no completion choices",
		},
		{
			name:       "http_400 keeps raw body",
			statusCode: http.StatusBadRequest,
			body:       `{"message":"bad request from proxy"}`,
			wantErr:    true,
			wantMarker: `bad request from proxy`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var calls atomic.Int64
			var payload map[string]any

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/chat/completions" {
					http.NotFound(w, r)
					return
				}
				calls.Add(1)
				body, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(body, &payload)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.statusCode)
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(srv.Close)

			client := newTestClient(t, srv.URL+"/v1")
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			t.Cleanup(cancel)

			got, err := client.Complete(ctx, []agent.Message{
				agent.SystemMessage(agent.DefaultSystemPrompt),
				agent.UserMessage("hi"),
			}, "gpt-4.1")
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Complete() expected error")
				}
				if !strings.Contains(err.Error(), tc.wantMarker) {
					t.Fatalf("Complete() error = %q, want it to include %q", err.Error(), tc.wantMarker)
				}
			} else {
				if err != nil {
					t.Fatalf("Complete() error: %v", err)
				}
				if got != tc.wantText {
					t.Fatalf("Complete() = %q, want %q", got, tc.wantText)
				}
			}

			// 失败也不重试
			if calls.Load() != 1 {
				t.Fatalf("calls = %d, want 1", calls.Load())
			}
			if payload["model"] != "gpt-4.1" {
				t.Fatalf("model = %v", payload["model"])
			}
			if payload["temperature"] != 0.7 {
				t.Fatalf("temperature = %v", payload["temperature"])
			}
			msgs, _ := payload["messages"].([]any)
			if len(msgs) != 2 {
				t.Fatalf("messages = %v", payload["messages"])
			}
			first, _ := msgs[0].(map[string]any)
			if first["role"] != "system" {
				t.Fatalf("first message = %v", first)
			}
		})
	}
}

func TestComplete_ServerErrorNotRetried(t *testing.T) {
	silenceRootLogger(t)

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv.URL)
	_, err := client.Complete(context.Background(), []agent.Message{agent.UserMessage("hi")}, "")
	if err == nil || !strings.Contains(err.Error(), "http_503") {
		t.Fatalf("Complete() error = %v, want http_503", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestComplete_ErrorKeepsResponseBody(t *testing.T) {
	silenceRootLogger(t)

	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{
			name:   "proxy json",
			status: http.StatusBadRequest,
			body:   `{"message":"bad request from proxy"}`,
			want:   `http_400: {"message":"bad request from proxy"}`,
		},
		{
			name:   "plain text gateway",
			status: http.StatusBadGateway,
			body:   "upstream timeout\n",
			want:   "http_502: upstream timeout",
		},
		{
			name:   "openai error object",
			status: http.StatusUnauthorized,
			body:   `{"error":{"message":"bad key","type":"invalid_request_error"}}`,
			want:   `http_401: {"error":{"message":"bad key","type":"invalid_request_error"}}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(srv.Close)

			_, err := newTestClient(t, srv.URL).Complete(context.Background(), []agent.Message{agent.UserMessage("hi")}, "")
			if err == nil {
				t.Fatalf("Complete() expected error")
			}
			if err.Error() != tc.want {
				t.Fatalf("Complete() error = %q, want %q", err.Error(), tc.want)
			}
		})
	}
}

func TestNew_BaseURLWithoutV1UsesV1Path(t *testing.T) {
	silenceRootLogger(t)

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatOK))
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv.URL)
	if _, err := client.Complete(context.Background(), []agent.Message{agent.UserMessage("hi")}, ""); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("hits = %d", hits.Load())
	}
}

func TestNew_MissingKey(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("New() expected error for missing key")
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	cases := map[string]string{
		"https://api.openai.com":                     "https://api.openai.com/v1",
		"https://api.openai.com/":                    "https://api.openai.com/v1",
		"https://api.openai.com/v1":                  "https://api.openai.com/v1",
		"https://proxy.test/v1/chat/completions":     "https://proxy.test/v1",
		"https://proxy.test/openai/chat/completions": "https://proxy.test/openai/v1",
		"https://proxy.test/v1/v1":                   "https://proxy.test/v1",
		"":                                           "",
	}
	for in, want := range cases {
		if got := normalizeBaseURL(in); got != want {
			t.Fatalf("normalizeBaseURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCompletionsURL(t *testing.T) {
	if got := CompletionsURL("https://api.openai.com"); got != "https://api.openai.com/v1/chat/completions" {
		t.Fatalf("CompletionsURL = %q", got)
	}
	if got := CompletionsURL(" "); got != "" {
		t.Fatalf("CompletionsURL(empty) = %q", got)
	}
}
