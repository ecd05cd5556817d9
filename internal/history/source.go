package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"mdchat/internal/agent"
	"mdchat/internal/session"
)

// HTTPSource 通过 GET 拉取 JSON 数组形式的消息列表：[{"role":"user","content":"..."}]。
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s HTTPSource) Fetch(ctx context.Context) ([]agent.Message, error) {
	url := strings.TrimSpace(s.URL)
	if url == "" {
		return nil, errors.New("history url is empty")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http_%d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return decodeMessages(body)
}

func decodeMessages(body []byte) ([]agent.Message, error) {
	var msgs []agent.Message
	if err := json.Unmarshal(body, &msgs); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	for i, m := range msgs {
		if !m.Role.Valid() {
			return nil, fmt.Errorf("decode history: message %d has unknown role %q", i, m.Role)
		}
	}
	return msgs, nil
}

// StoreSource 读取最近一次保存的会话；还没有会话时返回空历史。
type StoreSource struct {
	Store *session.Store
}

func (s StoreSource) Fetch(context.Context) ([]agent.Message, error) {
	rec, err := s.Store.Last()
	if err != nil {
		if errors.Is(err, session.ErrNoSessions) {
			return nil, nil
		}
		return nil, err
	}
	return rec.Messages, nil
}

// NopSource 总是返回空历史。
type NopSource struct{}

func (NopSource) Fetch(context.Context) ([]agent.Message, error) { return nil, nil }

// NewSource 按优先级选择来源：history_url > history_file > 本地会话记录。
func NewSource(url, file string, store *session.Store) Source {
	switch {
	case strings.TrimSpace(url) != "":
		return HTTPSource{URL: url}
	case strings.TrimSpace(file) != "":
		return FileSource{Journal: &Journal{Path: file}}
	case store != nil:
		return StoreSource{Store: store}
	default:
		return NopSource{}
	}
}
