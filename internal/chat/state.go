package chat

import (
	"context"
	"fmt"
	"strings"

	"mdchat/internal/agent"
	"mdchat/internal/dispatch"
	"mdchat/internal/history"
	"mdchat/internal/logger"
)

var log = logger.Named("chat")

// Dispatcher 是 State 使用的调度器子集。
type Dispatcher interface {
	Submit(req dispatch.Request) error
	Poll() (dispatch.Result, bool)
}

// HistoryLoader 是 State 使用的历史加载器子集。
type HistoryLoader interface {
	Start(ctx context.Context) bool
	Poll() (history.Result, bool)
}

type Options struct {
	Context      context.Context
	Dispatcher   Dispatcher
	History      HistoryLoader
	Models       []string
	Model        string
	SystemPrompt string
}

// State 是会话状态：对话记录、当前阶段与模型选择。只由帧循环读写。
type State struct {
	ctx        context.Context
	dispatcher Dispatcher
	history    HistoryLoader

	transcript []agent.Message
	phase      Phase
	initial    bool
	// loaded 是最近一次历史替换后记录的长度。
	loaded int

	models []string
	model  string
}

// Outcome 描述一次 Tick 中发生的变化。
type Outcome struct {
	HistoryApplied bool
	HistoryErr     error
	Replied        bool
	ReplyErr       error
	ScrollToBottom bool
}

// Changed 报告对话记录是否有变化。
func (o Outcome) Changed() bool {
	return o.HistoryApplied || o.HistoryErr != nil || o.Replied || o.ReplyErr != nil
}

func New(opts Options) *State {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	s := &State{
		ctx:        ctx,
		dispatcher: opts.Dispatcher,
		history:    opts.History,
		models:     dedupe(opts.Models),
	}
	if prompt := strings.TrimSpace(opts.SystemPrompt); prompt != "" {
		s.transcript = append(s.transcript, agent.SystemMessage(prompt))
	}
	s.model = strings.TrimSpace(opts.Model)
	if s.model == "" && len(s.models) > 0 {
		s.model = s.models[0]
	}
	if s.model != "" && indexOf(s.models, s.model) < 0 {
		s.models = append(s.models, s.model)
	}
	s.loaded = len(s.transcript)
	return s
}

// Transcript 返回对话记录的副本。
func (s *State) Transcript() []agent.Message {
	return append([]agent.Message(nil), s.transcript...)
}

func (s *State) Len() int     { return len(s.transcript) }
func (s *State) Phase() Phase { return s.phase }
func (s *State) Busy() bool   { return s.phase != PhaseIdle }

// Model 返回当前选中的模型。
func (s *State) Model() string { return s.model }

// Models 返回可选模型列表的副本。
func (s *State) Models() []string { return append([]string(nil), s.models...) }

// Send 追加用户消息并提交请求。输入为空白或正忙时什么都不做，返回 false。
// 提交失败时追加错误提示，阶段保持空闲。
func (s *State) Send(input string) bool {
	if strings.TrimSpace(input) == "" || s.Busy() {
		return false
	}
	s.transcript = append(s.transcript, agent.UserMessage(input))
	if s.dispatcher == nil {
		s.appendError(fmt.Errorf("no dispatcher configured"))
		return true
	}
	if err := s.dispatcher.Submit(dispatch.Request{Content: input, Model: s.model}); err != nil {
		log.WithError(err).Warn("submit failed")
		s.appendError(err)
		return true
	}
	s.phase = PhaseAwaitingChat
	return true
}

// LoadInitial 在启动时异步加载历史；失败只记录日志，不打扰对话记录。
func (s *State) LoadInitial() bool {
	if !s.RefreshHistory() {
		return false
	}
	s.initial = true
	return true
}

// RefreshHistory 发起一次历史刷新；正忙或没有加载器时返回 false。
func (s *State) RefreshHistory() bool {
	if s.Busy() || s.history == nil {
		return false
	}
	if !s.history.Start(s.ctx) {
		return false
	}
	s.phase = PhaseAwaitingHistory
	s.initial = false
	return true
}

// Tick 在每帧输入处理之后调用：先取历史结果，再取聊天结果，各至多一个。
func (s *State) Tick() Outcome {
	var out Outcome
	if s.history != nil {
		if res, ok := s.history.Poll(); ok {
			s.applyHistory(res, &out)
		}
	}
	if s.dispatcher != nil {
		if res, ok := s.dispatcher.Poll(); ok {
			s.applyReply(res, &out)
		}
	}
	return out
}

func (s *State) applyHistory(res history.Result, out *Outcome) {
	initial := s.initial
	s.initial = false
	if s.phase == PhaseAwaitingHistory {
		s.phase = PhaseIdle
	}
	if res.Err != nil {
		if initial {
			log.WithError(res.Err).Warn("initial history load failed")
			return
		}
		out.HistoryErr = res.Err
		s.transcript = append(s.transcript, agent.SystemMessage("Error fetching history: "+res.Err.Error()))
		return
	}
	if len(s.transcript) > 0 {
		s.transcript = s.transcript[:1:1]
	}
	s.transcript = append(s.transcript, res.Messages...)
	s.loaded = len(s.transcript)
	out.HistoryApplied = true
	if initial {
		out.ScrollToBottom = true
	}
}

func (s *State) applyReply(res dispatch.Result, out *Outcome) {
	if s.phase == PhaseAwaitingChat {
		s.phase = PhaseIdle
	}
	if res.Err != nil {
		out.ReplyErr = res.Err
		s.appendError(res.Err)
		return
	}
	out.Replied = true
	out.ScrollToBottom = true
	s.transcript = append(s.transcript, agent.AssistantMessage(res.Text))
}

func (s *State) appendError(err error) {
	s.transcript = append(s.transcript, agent.SystemMessage("Error: "+err.Error()))
}

// Notify 追加一条系统提示。
func (s *State) Notify(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	s.transcript = append(s.transcript, agent.SystemMessage(text))
}

// LastAssistant 返回最近一条助手回复。
func (s *State) LastAssistant() (string, bool) {
	for i := len(s.transcript) - 1; i >= 0; i-- {
		if s.transcript[i].Role == agent.RoleAssistant {
			return s.transcript[i].Content, true
		}
	}
	return "", false
}

// Conversation 返回去掉首条系统提示后的记录，用于保存会话。
func (s *State) Conversation() []agent.Message {
	msgs := s.transcript
	if len(msgs) > 0 && msgs[0].Role == agent.RoleSystem {
		msgs = msgs[1:]
	}
	return append([]agent.Message(nil), msgs...)
}

// Fresh 返回最近一次历史替换之后追加的用户与助手消息。
func (s *State) Fresh() []agent.Message {
	var out []agent.Message
	for _, m := range s.transcript[s.loaded:] {
		if m.Role == agent.RoleUser || m.Role == agent.RoleAssistant {
			out = append(out, m)
		}
	}
	return out
}
