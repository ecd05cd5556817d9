package logger

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ExchangeMessage 表示一次请求中的对话消息。
type ExchangeMessage struct {
	Role    string
	Content string
}

// ExchangeLogger 记录与远端服务（模型、历史源）的请求、回复与失败。
type ExchangeLogger interface {
	Request(model string, messages []ExchangeMessage)
	Response(model string, content string, elapsed time.Duration)
	Error(model string, err error, elapsed time.Duration)
}

// Exchanges 是全局共享的交互日志器。
var Exchanges ExchangeLogger = NewExchangeLogger(nil)

// StdExchangeLogger 使用 logrus 输出。
type StdExchangeLogger struct {
	entry *logrus.Entry
}

// NewExchangeLogger 构造默认的交互日志器；l 为 nil 时使用全局 logger。
func NewExchangeLogger(l *Logger) *StdExchangeLogger {
	if l == nil {
		l = Root()
	}
	return &StdExchangeLogger{entry: logrus.NewEntry(l).WithField(fieldComponent, "exchange")}
}

func (l *StdExchangeLogger) Request(model string, messages []ExchangeMessage) {
	l.printf(logrus.InfoLevel, "-> request model=%s messages=%d", model, len(messages))
	for i, msg := range messages {
		l.printf(logrus.DebugLevel, "-> message[%d] role=%s content=%s", i, msg.Role, sanitize(msg.Content))
	}
}

func (l *StdExchangeLogger) Response(model string, content string, elapsed time.Duration) {
	l.printf(logrus.InfoLevel, "<- response model=%s elapsed=%s chars=%d", model, elapsed.Round(time.Millisecond), len(content))
	l.printf(logrus.DebugLevel, "<- text=%s", sanitize(content))
}

func (l *StdExchangeLogger) Error(model string, err error, elapsed time.Duration) {
	l.printf(logrus.ErrorLevel, "!! error model=%s elapsed=%s err=%v", model, elapsed.Round(time.Millisecond), err)
}

// NoopExchangeLogger 忽略所有输出。
type NoopExchangeLogger struct{}

func (NoopExchangeLogger) Request(string, []ExchangeMessage)      {}
func (NoopExchangeLogger) Response(string, string, time.Duration) {}
func (NoopExchangeLogger) Error(string, error, time.Duration)     {}

func (l *StdExchangeLogger) printf(level logrus.Level, format string, args ...any) {
	if l == nil || l.entry == nil {
		return
	}
	if !l.entry.Logger.IsLevelEnabled(level) {
		return
	}
	entry := l.entry
	if caller := findCaller(); caller != "" {
		entry = entry.WithField(fieldCaller, caller)
	}
	entry.Log(level, fmt.Sprintf(format, args...))
}

func sanitize(text string) string {
	text = strings.ReplaceAll(text, "\n", `\n`)
	text = strings.ReplaceAll(text, "\r", `\r`)
	return text
}

// findCaller 跳过本文件的栈帧，定位真正的调用点。
func findCaller() string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.File != "" && !strings.HasSuffix(frame.File, "exchange.go") {
			return fmt.Sprintf("%s:%d", shortenFilePath(frame.File), frame.Line)
		}
		if !more {
			break
		}
	}
	return ""
}
