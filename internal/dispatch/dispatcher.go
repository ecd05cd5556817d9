package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"mdchat/internal/logger"

	"github.com/google/uuid"
)

// Request 是一次待发送的对话请求。
type Request struct {
	ID      string
	Content string
	Model   string
}

// Result 与 Request 一一对应，按提交顺序产出。
type Result struct {
	RequestID string
	Text      string
	Err       error
	Elapsed   time.Duration
}

// Transport 执行一次阻塞的补全调用。
type Transport interface {
	Send(ctx context.Context, content string, model string) (string, error)
}

// TransportFunc 让函数实现 Transport。
type TransportFunc func(ctx context.Context, content string, model string) (string, error)

func (f TransportFunc) Send(ctx context.Context, content string, model string) (string, error) {
	return f(ctx, content, model)
}

type Options struct {
	Logger *logger.LogEntry
}

// Dispatcher 用单个常驻 worker 串行执行请求，渲染循环只做非阻塞的 Submit/Poll。
type Dispatcher struct {
	transport Transport
	inbox     *Queue[Request]
	outbox    *Queue[Result]
	pending   atomic.Int64

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	done      chan struct{}

	log *logger.LogEntry
}

func New(transport Transport, opts Options) *Dispatcher {
	log := opts.Logger
	if log == nil {
		log = logger.Named("dispatch")
	}
	return &Dispatcher{
		transport: transport,
		inbox:     NewQueue[Request](),
		outbox:    NewQueue[Result](),
		done:      make(chan struct{}),
		log:       log,
	}
}

// Start 启动后台 worker，重复调用无效果。
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		runCtx, cancel := context.WithCancel(ctx)
		d.cancel = cancel
		d.wg.Add(1)
		go d.worker(runCtx)
		go func() {
			d.wg.Wait()
			close(d.done)
		}()
	})
}

// Submit 将请求放入 inbox，不阻塞。
func (d *Dispatcher) Submit(req Request) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if err := d.inbox.Push(req); err != nil {
		return err
	}
	n := d.pending.Add(1)
	d.log.WithFields(logger.Fields{
		"request_id": req.ID,
		"model":      req.Model,
		"pending":    n,
	}).Info("request queued")
	return nil
}

// Poll 非阻塞地取出一个已完成的结果。
func (d *Dispatcher) Poll() (Result, bool) {
	res, ok := d.outbox.TryPop()
	if ok {
		d.pending.Add(-1)
	}
	return res, ok
}

// Pending 返回已提交但尚未被 Poll 取走的请求数。
func (d *Dispatcher) Pending() int {
	return int(d.pending.Load())
}

// Close 停止接收请求，取消进行中的调用并等待 worker 退出。
func (d *Dispatcher) Close() {
	d.stopOnce.Do(func() {
		d.inbox.Close()
		if d.cancel != nil {
			d.cancel()
		}
		d.wg.Wait()
	})
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		req, err := d.inbox.Pop(ctx)
		if err != nil {
			if !errors.Is(err, ErrClosed) && !errors.Is(err, context.Canceled) {
				d.log.WithError(err).Warn("worker stopped")
			}
			return
		}
		_ = d.outbox.Push(d.run(ctx, req))
	}
}

func (d *Dispatcher) run(ctx context.Context, req Request) Result {
	start := time.Now()
	res := Result{RequestID: req.ID}
	if d.transport == nil {
		res.Err = errors.New("dispatch: no transport configured")
	} else {
		res.Text, res.Err = d.transport.Send(ctx, req.Content, req.Model)
	}
	res.Elapsed = time.Since(start)

	entry := d.log.WithFields(logger.Fields{
		"request_id": req.ID,
		"elapsed":    res.Elapsed.Round(time.Millisecond),
	})
	if res.Err != nil {
		entry.WithError(res.Err).Warn("request failed")
	} else {
		entry.Info("request completed")
	}
	return res
}
