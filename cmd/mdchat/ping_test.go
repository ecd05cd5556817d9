package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mdchat/internal/config"
	"mdchat/internal/logger"
)

const pongResponse = `{
  "id": "chatcmpl-ping",
  "object": "chat.completion",
  "created": 0,
  "model": "gpt-4o",
  "choices": [
    {
      "index": 0,
      "finish_reason": "stop",
      "logprobs": null,
      "message": {"role": "assistant", "content": "pong", "refusal": null}
    }
  ]
}`

func silenceRootLogger(t *testing.T) {
	t.Helper()
	root := logger.Root()
	prev := root.Out
	root.SetOutput(io.Discard)
	t.Cleanup(func() {
		root.SetOutput(prev)
	})
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_BASE_URL", "")
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRunPingRoundTrip(t *testing.T) {
	silenceRootLogger(t)

	var gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if got := strings.TrimSpace(r.Header.Get("Authorization")); got != "Bearer test-key" {
			http.Error(w, "missing auth", http.StatusUnauthorized)
			return
		}
		var payload struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if n := len(payload.Messages); n > 0 {
			gotUser = payload.Messages[n-1].Content
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(pongResponse))
	}))
	t.Cleanup(srv.Close)

	cfgPath := writeConfig(t, `
url = "`+srv.URL+`"
token = "test-key"
models = ["gpt-4o", "gpt-4o-mini"]
`)

	var out bytes.Buffer
	if err := runPing(rootArgs{}, []string{"--config", cfgPath}, &out); err != nil {
		t.Fatalf("runPing: %v", err)
	}
	if !strings.Contains(out.String(), "pong") || !strings.Contains(out.String(), "ok (gpt-4o via ") {
		t.Fatalf("ping output = %q", out.String())
	}
	if gotUser != "ping" {
		t.Fatalf("user message = %q, want ping", gotUser)
	}
}

func TestRunPingRequiresToken(t *testing.T) {
	silenceRootLogger(t)
	cfgPath := writeConfig(t, `url = "http://127.0.0.1:1"`+"\n")

	err := runPing(rootArgs{}, []string{"--config", cfgPath}, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "missing token") {
		t.Fatalf("expected missing token error, got %v", err)
	}
}

func TestRunHistoryFromURL(t *testing.T) {
	silenceRootLogger(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"role":"user","content":"hi"},{"role":"assistant","content":"**hello**"}]`))
	}))
	t.Cleanup(srv.Close)
	cfgPath := writeConfig(t, `token = ""`+"\n")

	var out bytes.Buffer
	if err := runHistory(rootArgs{}, []string{"--config", cfgPath, "--url", srv.URL}, &out); err != nil {
		t.Fatalf("runHistory: %v", err)
	}
	want := "[user] hi\n[assistant] **hello**\n"
	if out.String() != want {
		t.Fatalf("history output = %q, want %q", out.String(), want)
	}
}

func TestRunHistoryFromFileWithLimit(t *testing.T) {
	silenceRootLogger(t)
	file := filepath.Join(t.TempDir(), "history.jsonl")
	lines := `{"role":"user","content":"one"}
{"role":"assistant","content":"two"}
{"role":"user","content":"three"}
`
	if err := os.WriteFile(file, []byte(lines), 0o644); err != nil {
		t.Fatalf("write history: %v", err)
	}
	cfgPath := writeConfig(t, `history_file = "`+filepath.ToSlash(file)+`"`+"\n")

	var out bytes.Buffer
	if err := runHistory(rootArgs{overrides: []string{"history_limit=2"}}, []string{"--config", cfgPath}, &out); err != nil {
		t.Fatalf("runHistory: %v", err)
	}
	want := "[assistant] two\n[user] three\n"
	if out.String() != want {
		t.Fatalf("history output = %q, want %q", out.String(), want)
	}
}

func TestSelectModel(t *testing.T) {
	cfg := config.Config{Models: []string{"gpt-4.1", "gpt-4o"}}
	cases := map[string]string{
		"":          "gpt-4.1",
		"GPT-4O":    "gpt-4o",
		"brand-new": "brand-new",
	}
	for query, want := range cases {
		if got := selectModel(cfg, query); got != want {
			t.Fatalf("selectModel(%q) = %q, want %q", query, got, want)
		}
	}
}
