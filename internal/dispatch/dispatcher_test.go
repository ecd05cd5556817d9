package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"mdchat/internal/logger"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestDispatcher(t *testing.T, tr Transport) *Dispatcher {
	t.Helper()
	d := New(tr, Options{Logger: logger.Discard()})
	d.Start(context.Background())
	t.Cleanup(d.Close)
	return d
}

func waitResult(t *testing.T, d *Dispatcher) Result {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if res, ok := d.Poll(); ok {
			return res
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timeout waiting for result")
	return Result{}
}

func TestDispatcherDeliversResultsInSubmitOrder(t *testing.T) {
	d := newTestDispatcher(t, TransportFunc(func(_ context.Context, content, model string) (string, error) {
		return model + ":" + content, nil
	}))

	for i := 0; i < 5; i++ {
		if err := d.Submit(Request{ID: fmt.Sprint(i), Content: fmt.Sprint("msg", i), Model: "m"}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	for i := 0; i < 5; i++ {
		res := waitResult(t, d)
		if res.RequestID != fmt.Sprint(i) || res.Text != fmt.Sprint("m:msg", i) || res.Err != nil {
			t.Fatalf("result %d = %+v", i, res)
		}
	}
	if d.Pending() != 0 {
		t.Fatalf("Pending() = %d", d.Pending())
	}
}

func TestDispatcherErrorsAreResults(t *testing.T) {
	boom := errors.New("connection refused")
	d := newTestDispatcher(t, TransportFunc(func(_ context.Context, content, _ string) (string, error) {
		if content == "bad" {
			return "", boom
		}
		return "ok", nil
	}))

	_ = d.Submit(Request{Content: "bad"})
	_ = d.Submit(Request{Content: "good"})

	first := waitResult(t, d)
	if !errors.Is(first.Err, boom) {
		t.Fatalf("first result err = %v", first.Err)
	}
	second := waitResult(t, d)
	if second.Err != nil || second.Text != "ok" {
		t.Fatalf("worker should survive a failure, got %+v", second)
	}
}

func TestDispatcherExactlyOneCallPerSubmission(t *testing.T) {
	var calls atomic.Int64
	d := newTestDispatcher(t, TransportFunc(func(context.Context, string, string) (string, error) {
		calls.Add(1)
		return "", errors.New("fail")
	}))
	for i := 0; i < 3; i++ {
		_ = d.Submit(Request{Content: "x"})
	}
	for i := 0; i < 3; i++ {
		waitResult(t, d)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
	if _, ok := d.Poll(); ok {
		t.Fatalf("unexpected extra result")
	}
}

func TestDispatcherSubmitNeverBlocks(t *testing.T) {
	release := make(chan struct{})
	d := newTestDispatcher(t, TransportFunc(func(ctx context.Context, _, _ string) (string, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return "done", nil
	}))

	start := time.Now()
	for i := 0; i < 1000; i++ {
		if err := d.Submit(Request{Content: "x"}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	if time.Since(start) > time.Second {
		t.Fatalf("Submit blocked")
	}
	if _, ok := d.Poll(); ok {
		t.Fatalf("Poll should report nothing while the transport is blocked")
	}
	if d.Pending() != 1000 {
		t.Fatalf("Pending() = %d", d.Pending())
	}
	close(release)
	res := waitResult(t, d)
	if res.Text != "done" {
		t.Fatalf("result = %+v", res)
	}
}

func TestDispatcherSubmitAfterClose(t *testing.T) {
	d := New(TransportFunc(func(context.Context, string, string) (string, error) { return "", nil }), Options{Logger: logger.Discard()})
	d.Start(context.Background())
	d.Close()
	if err := d.Submit(Request{Content: "x"}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Submit after Close = %v", err)
	}
	select {
	case <-d.done:
	case <-time.After(time.Second):
		t.Fatal("worker still running after Close")
	}
	d.Close()
}

func TestDispatcherNilTransport(t *testing.T) {
	d := newTestDispatcher(t, nil)
	_ = d.Submit(Request{Content: "x"})
	if res := waitResult(t, d); res.Err == nil {
		t.Fatalf("expected error without transport")
	}
}

func TestDispatcherSubmitBeforeStart(t *testing.T) {
	d := New(TransportFunc(func(_ context.Context, c, _ string) (string, error) { return c, nil }), Options{Logger: logger.Discard()})
	_ = d.Submit(Request{Content: "early"})
	d.Start(context.Background())
	t.Cleanup(d.Close)
	if res := waitResult(t, d); res.Text != "early" {
		t.Fatalf("result = %+v", res)
	}
}
