package history

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mdchat/internal/agent"
)

type journalEntry struct {
	Role    agent.Role `json:"role"`
	Content string     `json:"content"`
	TS      time.Time  `json:"ts"`
}

// Journal 是按行追加的 JSONL 对话日志。
type Journal struct {
	Path string
}

func (j *Journal) ensureDir() error {
	if j == nil || strings.TrimSpace(j.Path) == "" {
		return errors.New("history journal path is empty")
	}
	return os.MkdirAll(filepath.Dir(j.Path), 0o755)
}

// Append 追加消息，每条一行。
func (j *Journal) Append(msgs ...agent.Message) error {
	if j == nil {
		return errors.New("history journal is nil")
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := j.ensureDir(); err != nil {
		return err
	}
	f, err := os.OpenFile(j.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	now := time.Now()
	for _, m := range msgs {
		data, err := json.Marshal(journalEntry{Role: m.Role, Content: m.Content, TS: now})
		if err != nil {
			return err
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Load 读取全部消息；无法解析的行直接跳过，文件不存在视为空。
func (j *Journal) Load() ([]agent.Message, error) {
	if j == nil {
		return nil, errors.New("history journal is nil")
	}
	if strings.TrimSpace(j.Path) == "" {
		return nil, errors.New("history journal path is empty")
	}
	f, err := os.Open(j.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 4*1024*1024)

	var out []agent.Message
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e journalEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		if !e.Role.Valid() {
			continue
		}
		out = append(out, agent.Message{Role: e.Role, Content: e.Content})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FileSource 从 Journal 读取历史，保留最后 Limit 条（0 表示全部）。
type FileSource struct {
	Journal *Journal
	Limit   int
}

func (s FileSource) Fetch(context.Context) ([]agent.Message, error) {
	msgs, err := s.Journal.Load()
	if err != nil {
		return nil, err
	}
	if s.Limit > 0 && len(msgs) > s.Limit {
		msgs = msgs[len(msgs)-s.Limit:]
	}
	return msgs, nil
}
