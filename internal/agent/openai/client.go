package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"mdchat/internal/agent"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

// DefaultTemperature 是未配置温度时的采样温度。
const DefaultTemperature = 0.7

var errNoChoices = errors.New("no completion choices returned")

type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
}

// Client 调用 /v1/chat/completions，一次请求一次回复，不做流式。
type Client struct {
	api         openai.Client
	model       string
	temperature float64
}

var _ agent.ModelClient = (*Client)(nil)

// New 构造客户端。SDK 自带的重试关闭：失败直接作为错误消息展示给用户。
func New(opts Options) (*Client, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return nil, errors.New("missing OPENAI_API_KEY")
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
		option.WithHeader("User-Agent", "mdchat"),
	}
	if root := normalizeBaseURL(opts.BaseURL); root != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(root))
	}
	c := &Client{
		api:         openai.NewClient(reqOpts...),
		model:       opts.Model,
		temperature: opts.Temperature,
	}
	if c.temperature <= 0 {
		c.temperature = DefaultTemperature
	}
	return c, nil
}

// Complete 发送整段对话；model 为空时使用构造时的默认模型。
func (c *Client) Complete(ctx context.Context, messages []agent.Message, model string) (string, error) {
	if strings.TrimSpace(model) == "" {
		model = c.model
	}
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(model),
		Messages:    chatParams(messages),
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return "", describeError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

func chatParams(msgs []agent.Message) []openai.ChatCompletionMessageParamUnion {
	params := make([]openai.ChatCompletionMessageParamUnion, len(msgs))
	for i, m := range msgs {
		switch m.Role {
		case agent.RoleSystem:
			params[i] = openai.SystemMessage(m.Content)
		case agent.RoleAssistant:
			params[i] = openai.AssistantMessage(m.Content)
		default:
			params[i] = openai.UserMessage(m.Content)
		}
	}
	return params
}

// describeError 把 API 错误压成 http_<status>: <body>。优先用原始响应体，
// 代理返回的非 OpenAI 格式错误也能原样看到；拿不到时退回解析后的 error 对象。
func describeError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	body := responseBody(apiErr.Response)
	if body == "" {
		body = strings.TrimSpace(apiErr.RawJSON())
	}
	if body == "" {
		body = err.Error()
	}
	return fmt.Errorf("http_%d: %s", apiErr.StatusCode, body)
}

// responseBody 读出响应体后放回，保证 DumpResponse 之类的调试工具仍可用。
func responseBody(resp *http.Response) string {
	if resp == nil || resp.Body == nil {
		return ""
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
