package session

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"mdchat/internal/agent"

	"github.com/google/uuid"
)

var (
	// ErrNoSessions 表示还没有任何可读的会话记录。
	ErrNoSessions = errors.New("no sessions found")

	errNoDir     = errors.New("session store dir is empty")
	errInvalidID = errors.New("invalid session id")
)

const recordExt = ".json"

// Record 是一次退出时落盘的完整对话（含 system 提示词）。
type Record struct {
	ID       string          `json:"id"`
	Model    string          `json:"model,omitempty"`
	Messages []agent.Message `json:"messages"`
	Updated  time.Time       `json:"updated"`
}

// Store 把每个会话写成 Dir 下的一个 JSON 文件，文件名即 id。
type Store struct {
	Dir string
}

// NewDefault 使用 ~/.mdchat/sessions。
func NewDefault() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("session dir: %w", err)
	}
	return &Store{Dir: filepath.Join(home, ".mdchat", "sessions")}, nil
}

func (s *Store) path(id string) (string, error) {
	if s == nil || strings.TrimSpace(s.Dir) == "" {
		return "", errNoDir
	}
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("%w: %q", errInvalidID, id)
	}
	return filepath.Join(s.Dir, id+recordExt), nil
}

// Save 落盘一条记录，id 为空时分配 uuid，返回实际 id。
func (s *Store) Save(id, model string, messages []agent.Message) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	target, err := s.path(id)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(Record{
		ID:       id,
		Model:    model,
		Messages: messages,
		Updated:  time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return id, nil
}

func (s *Store) Load(id string) (Record, error) {
	var rec Record
	p, err := s.path(id)
	if err != nil {
		return rec, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return rec, nil
}

// List 返回能解析的全部记录，最近更新的在前；损坏文件跳过。
func (s *Store) List() ([]Record, error) {
	if s == nil || strings.TrimSpace(s.Dir) == "" {
		return nil, errNoDir
	}
	files, err := filepath.Glob(filepath.Join(s.Dir, "*"+recordExt))
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(files))
	for _, f := range files {
		rec, err := s.Load(strings.TrimSuffix(filepath.Base(f), recordExt))
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	slices.SortStableFunc(records, func(a, b Record) int {
		return cmp.Compare(b.Updated.UnixNano(), a.Updated.UnixNano())
	})
	return records, nil
}

// Last 返回最近一次保存的会话。
func (s *Store) Last() (Record, error) {
	records, err := s.List()
	if err != nil {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, ErrNoSessions
	}
	return records[0], nil
}
