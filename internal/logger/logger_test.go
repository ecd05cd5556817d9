package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestPlainFormatter_ComponentAndFieldOrdering(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	cases := []struct {
		name    string
		data    logrus.Fields
		message string
		want    string
	}{
		{
			name: "with component",
			data: logrus.Fields{
				"component": "dispatch",
				"caller":    "x.go:1",
				"pending":   2,
				"model":     "gpt-4o",
			},
			message: "request queued",
			want:    "x.go:1 [2025-01-02T03:04:05Z] [INFO] [dispatch] request queued model=gpt-4o pending=2\n",
		},
		{
			name: "without component",
			data: logrus.Fields{
				"caller": "x.go:1",
				"foo":    "bar",
			},
			message: "hello",
			want:    "x.go:1 [2025-01-02T03:04:05Z] [INFO] hello foo=bar\n",
		},
		{
			name:    "bare message",
			data:    logrus.Fields{},
			message: "hi",
			want:    "[2025-01-02T03:04:05Z] [INFO] hi\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry := &logrus.Entry{
				Logger:  logrus.New(),
				Time:    ts,
				Level:   logrus.InfoLevel,
				Message: tc.message,
				Data:    tc.data,
			}
			out, err := (PlainFormatter{}).Format(entry)
			if err != nil {
				t.Fatalf("Format() error: %v", err)
			}
			if got := string(out); got != tc.want {
				t.Fatalf("unexpected format:\nwant: %q\ngot:  %q", tc.want, got)
			}
		})
	}
}

func TestShortenFilePath(t *testing.T) {
	cases := map[string]string{
		"/home/u/src/mdchat/internal/chat/state.go": "internal/chat/state.go",
		"/home/u/src/mdchat/cmd/mdchat/main.go":     "cmd/mdchat/main.go",
		"/tmp/other.go":                             "other.go",
	}
	for in, want := range cases {
		if got := shortenFilePath(in); got != want {
			t.Fatalf("shortenFilePath(%q)=%q want %q", in, got, want)
		}
	}
}

func TestSetupFileCreatesParentDir(t *testing.T) {
	prev := Root()
	l := logrus.New()
	SetRoot(l)
	t.Cleanup(func() { SetRoot(prev) })

	path := filepath.Join(t.TempDir(), "nested", "app.log")
	closer, resolved, err := SetupFile(path)
	if err != nil {
		t.Fatalf("SetupFile: %v", err)
	}
	defer closer.Close()
	if resolved != path {
		t.Fatalf("resolved=%q want %q", resolved, path)
	}
	Named("test").Info("written")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "written") {
		t.Fatalf("log file missing entry: %q", data)
	}
}

func TestExchangeLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(PlainFormatter{})
	l.SetLevel(logrus.InfoLevel)

	ex := NewExchangeLogger(l)
	ex.Request("gpt-4o", []ExchangeMessage{{Role: "user", Content: "line1\nline2"}})
	ex.Response("gpt-4o", "ok", 1500*time.Millisecond)
	ex.Error("gpt-4o", errors.New("boom"), time.Second)

	out := buf.String()
	if !strings.Contains(out, "-> request model=gpt-4o messages=1") {
		t.Fatalf("missing request line: %q", out)
	}
	if strings.Contains(out, "line1") {
		t.Fatalf("message content should only be logged at debug level: %q", out)
	}
	if !strings.Contains(out, "elapsed=1.5s") {
		t.Fatalf("missing elapsed: %q", out)
	}
	if !strings.Contains(out, "err=boom") || !strings.Contains(out, "[exchange]") {
		t.Fatalf("missing error line: %q", out)
	}
}

func TestSanitizeEscapesNewlines(t *testing.T) {
	if got := sanitize("a\nb\rc"); got != `a\nb\rc` {
		t.Fatalf("sanitize=%q", got)
	}
}

func TestConfigureReadsLevelFromEnv(t *testing.T) {
	prev := Root()
	l := logrus.New()
	SetRoot(l)
	t.Cleanup(func() { SetRoot(prev) })

	t.Setenv(LevelEnv, "debug")
	Configure()
	if l.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level=%v want debug", l.GetLevel())
	}
	if _, ok := l.Formatter.(PlainFormatter); !ok {
		t.Fatalf("formatter=%T want PlainFormatter", l.Formatter)
	}

	t.Setenv(LevelEnv, "nonsense")
	l.SetLevel(logrus.WarnLevel)
	Configure()
	if l.GetLevel() != logrus.WarnLevel {
		t.Fatalf("invalid level should be ignored, got %v", l.GetLevel())
	}
}
