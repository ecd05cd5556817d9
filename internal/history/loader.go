package history

import (
	"context"
	"errors"
	"time"

	"mdchat/internal/agent"
	"mdchat/internal/logger"
)

// ErrNoSource 表示 Loader 没有配置历史来源。
var ErrNoSource = errors.New("history: no source configured")

// Source 拉取一份完整的对话历史。
type Source interface {
	Fetch(ctx context.Context) ([]agent.Message, error)
}

// SourceFunc 让函数实现 Source。
type SourceFunc func(ctx context.Context) ([]agent.Message, error)

func (f SourceFunc) Fetch(ctx context.Context) ([]agent.Message, error) { return f(ctx) }

// Result 是一次拉取的结果，只产出一次。
type Result struct {
	Messages []agent.Message
	Err      error
}

// Loader 每次 Start 启动一个一次性的 goroutine，结果放入单槽通道，由帧循环 Poll 取走。
// 所有方法只应在帧循环中调用。
type Loader struct {
	source Source
	ch     chan Result
	log    *logger.LogEntry
}

func NewLoader(source Source, log *logger.LogEntry) *Loader {
	if log == nil {
		log = logger.Named("history")
	}
	return &Loader{source: source, log: log}
}

// Start 发起一次拉取；已有拉取未被取走时不做任何事并返回 false。
func (l *Loader) Start(ctx context.Context) bool {
	if l.inFlight() {
		return false
	}
	ch := make(chan Result, 1)
	l.ch = ch
	source := l.source
	log := l.log
	go func() {
		start := time.Now()
		var res Result
		if source == nil {
			res.Err = ErrNoSource
		} else {
			res.Messages, res.Err = source.Fetch(ctx)
		}
		entry := log.WithField("elapsed", time.Since(start).Round(time.Millisecond))
		if res.Err != nil {
			entry.WithError(res.Err).Warn("history fetch failed")
		} else {
			entry.WithField("messages", len(res.Messages)).Info("history fetched")
		}
		ch <- res
	}()
	return true
}

// Poll 非阻塞地检查结果；取到后通道被丢弃，可以再次 Start。
func (l *Loader) Poll() (Result, bool) {
	if l.ch == nil {
		return Result{}, false
	}
	select {
	case res := <-l.ch:
		l.ch = nil
		return res, true
	default:
		return Result{}, false
	}
}

func (l *Loader) inFlight() bool {
	return l.ch != nil
}
