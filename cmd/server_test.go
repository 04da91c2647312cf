package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"talento/internal/scheduler"
)

// 确保收到取消信号时会触发服务器优雅关闭。
func TestRunServer_ShutdownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := newStubCancelScheduler()
	srv := newStubServer()

	done := make(chan error, 1)
	go func() {
		done <- runServer(ctx, srv, sched, 500*time.Millisecond)
	}()

	srv.waitStarted(t)

	cancel()

	srv.waitShutdown(t)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runServer returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("runServer did not return after cancel")
	}

	if sched.canceled.Load() == 0 {
		t.Fatalf("scheduler did not observe context cancellation")
	}
}

// 端口被占用时监听错误经 errgroup 返回，并取消调度器。
func TestRunServer_ListenErrorStopsScheduler(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	defer ln.Close()

	sched := newStubCancelScheduler()
	srv := &http.Server{Addr: ln.Addr().String(), Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() {
		done <- runServer(context.Background(), srv, sched, 500*time.Millisecond)
	}()

	select {
	case err := <-done:
		if err == nil || !strings.HasPrefix(err.Error(), "listen:") {
			t.Fatalf("expected listen error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runServer did not return after listen failure")
	}
	if sched.canceled.Load() == 0 {
		t.Fatalf("scheduler kept running after listen failure")
	}
}

// 调度器失败时关闭 HTTP 服务并返回调度器错误。
func TestRunServer_SchedulerErrorShutsDownServer(t *testing.T) {
	srv := newStubServer()
	boom := errors.New("database is locked")

	done := make(chan error, 1)
	go func() {
		done <- runServer(context.Background(), srv, failingScheduler{err: boom}, 500*time.Millisecond)
	}()

	srv.waitShutdown(t)
	select {
	case err := <-done:
		if !errors.Is(err, boom) {
			t.Fatalf("expected scheduler error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("runServer did not return after scheduler failure")
	}
}

type failingScheduler struct{ err error }

func (s failingScheduler) Start(context.Context) error { return s.err }

func (s failingScheduler) RunOnce(context.Context) (scheduler.Report, error) {
	return scheduler.Report{}, s.err
}

type stubServer struct {
	started        chan struct{}
	shutdownCalled chan struct{}
	closed         atomic.Bool
}

func newStubServer() *stubServer {
	return &stubServer{
		started:        make(chan struct{}),
		shutdownCalled: make(chan struct{}),
	}
}

func (s *stubServer) ListenAndServe() error {
	close(s.started)
	<-s.shutdownCalled
	return http.ErrServerClosed
}

func (s *stubServer) Shutdown(context.Context) error {
	if s.closed.Swap(true) {
		return nil
	}
	close(s.shutdownCalled)
	return nil
}

func (s *stubServer) waitStarted(t *testing.T) {
	t.Helper()
	select {
	case <-s.started:
	case <-time.After(time.Second):
		t.Fatal("server did not start")
	}
}

func (s *stubServer) waitShutdown(t *testing.T) {
	t.Helper()
	select {
	case <-s.shutdownCalled:
	case <-time.After(time.Second):
		t.Fatal("server shutdown was not called")
	}
}

type stubCancelScheduler struct {
	canceled atomic.Int32
}

func newStubCancelScheduler() *stubCancelScheduler {
	return &stubCancelScheduler{}
}

func (s *stubCancelScheduler) Start(ctx context.Context) error {
	<-ctx.Done()
	s.canceled.Add(1)
	return ctx.Err()
}

func (s *stubCancelScheduler) RunOnce(context.Context) (scheduler.Report, error) {
	return scheduler.Report{}, nil
}
