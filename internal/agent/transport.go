package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"mdchat/internal/logger"
)

// DefaultSystemPrompt 每次请求前置的系统提示。
const DefaultSystemPrompt = "You are a helpful assistant. You can use markdown formatting in your responses."

// ChatTransport 把单条用户输入包装成 [system, user] 两条消息发给模型。
// 不携带历史上下文，每次请求独立。
type ChatTransport struct {
	Client ModelClient
	System string
	Log    logger.ExchangeLogger
}

// NewChatTransport 使用默认系统提示构造 transport。
func NewChatTransport(client ModelClient) *ChatTransport {
	return &ChatTransport{Client: client, System: DefaultSystemPrompt}
}

// Send 发起一次补全请求；阻塞直到模型返回或失败。
func (t *ChatTransport) Send(ctx context.Context, content string, model string) (string, error) {
	if t == nil || t.Client == nil {
		return "", errors.New("chat transport has no model client")
	}
	msgs := make([]Message, 0, 2)
	if sys := strings.TrimSpace(t.System); sys != "" {
		msgs = append(msgs, SystemMessage(sys))
	}
	msgs = append(msgs, UserMessage(content))

	log := t.Log
	if log == nil {
		log = logger.Exchanges
	}
	log.Request(model, exchangeView(msgs))
	start := time.Now()
	text, err := t.Client.Complete(ctx, msgs, model)
	if err != nil {
		log.Error(model, err, time.Since(start))
		return "", err
	}
	log.Response(model, text, time.Since(start))
	return text, nil
}
