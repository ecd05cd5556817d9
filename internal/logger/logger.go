package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type (
	Logger   = logrus.Logger
	LogEntry = logrus.Entry
	Fields   = logrus.Fields
)

// DefaultLogPath 是未指定路径时的日志文件。界面占用终端，日志不写 stderr。
const DefaultLogPath = "logs/mdchat.log"

// LevelEnv 可覆盖日志级别，例如 MDCHAT_LOG_LEVEL=debug。
const LevelEnv = "MDCHAT_LOG_LEVEL"

const (
	fieldComponent = "component"
	fieldCaller    = "caller"
)

var shared = logrus.StandardLogger()

// Configure 安装统一格式，并按环境变量调整级别。
func Configure() {
	l := Root()
	l.SetReportCaller(true)
	l.SetFormatter(PlainFormatter{})
	if raw := strings.TrimSpace(os.Getenv(LevelEnv)); raw != "" {
		if lvl, err := logrus.ParseLevel(raw); err == nil {
			l.SetLevel(lvl)
		}
	}
}

// SetupFile 把全局输出切到 path（空值使用 DefaultLogPath），父目录不存在时创建。
func SetupFile(path string) (io.Closer, string, error) {
	if path == "" {
		path = DefaultLogPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, "", fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, "", fmt.Errorf("open log file: %w", err)
	}
	Root().SetOutput(f)
	return f, path, nil
}

func Root() *Logger {
	if shared == nil {
		shared = logrus.StandardLogger()
	}
	return shared
}

// SetRoot 替换全局 logger；nil 恢复为标准 logger。
func SetRoot(l *Logger) {
	shared = l
}

func Entry() *LogEntry {
	return logrus.NewEntry(Root())
}

// Named 返回带 component 字段的入口。
func Named(component string) *LogEntry {
	if component == "" {
		return Entry()
	}
	return Entry().WithField(fieldComponent, component)
}

// Discard 返回一个什么都不写的入口。
func Discard() *LogEntry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// PlainFormatter 输出单行文本：
//
//	caller [timestamp] [LEVEL] [component] message k=v ...
//
// 附加字段按 key 排序。
type PlainFormatter struct{}

func (PlainFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry == nil {
		return nil, nil
	}
	var b bytes.Buffer
	if c := callerOf(entry); c != "" {
		b.WriteString(c)
		b.WriteByte(' ')
	}
	bracket(&b, entry.Time.UTC().Format(time.RFC3339Nano))
	bracket(&b, strings.ToUpper(entry.Level.String()))
	if comp, _ := entry.Data[fieldComponent].(string); comp != "" {
		bracket(&b, comp)
	}
	b.WriteString(entry.Message)
	for _, k := range extraKeys(entry.Data) {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func bracket(b *bytes.Buffer, s string) {
	b.WriteByte('[')
	b.WriteString(s)
	b.WriteString("] ")
}

// callerOf 优先使用显式的 caller 字段，交互日志借此跳过包装层。
func callerOf(entry *logrus.Entry) string {
	if s, _ := entry.Data[fieldCaller].(string); s != "" {
		return s
	}
	if entry.HasCaller() {
		return fmt.Sprintf("%s:%d", shortenFilePath(entry.Caller.File), entry.Caller.Line)
	}
	return ""
}

func extraKeys(data logrus.Fields) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		if k != fieldComponent && k != fieldCaller {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// shortenFilePath 保留 internal/ 或 cmd/ 之后的路径，其余只留文件名。
func shortenFilePath(file string) string {
	file = filepath.ToSlash(file)
	for _, marker := range []string{"/internal/", "/cmd/"} {
		if i := strings.Index(file, marker); i >= 0 {
			return file[i+1:]
		}
	}
	return filepath.Base(file)
}
