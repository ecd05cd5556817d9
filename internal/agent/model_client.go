package agent

import (
	"context"
	"errors"

	"mdchat/internal/logger"
)

// ModelClient 把完整对话发给模型，返回助手回复文本。
type ModelClient interface {
	Complete(ctx context.Context, messages []Message, model string) (string, error)
}

// EchoClient 在没有 API key 时使用：原样回显最近一条用户消息。
type EchoClient struct {
	Prefix string
}

func (c EchoClient) Complete(ctx context.Context, messages []Message, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return c.Prefix + messages[i].Content, nil
		}
	}
	return "", errors.New("echo: no user message")
}

func exchangeView(msgs []Message) []logger.ExchangeMessage {
	view := make([]logger.ExchangeMessage, len(msgs))
	for i, m := range msgs {
		view[i] = logger.ExchangeMessage{Role: string(m.Role), Content: m.Content}
	}
	return view
}
