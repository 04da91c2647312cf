package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSchedulerRunOnce(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC)
	s := &stubStore{expired: 2, deleted: 5}
	d := &stubEvictor{n: 3}

	sched := NewScheduler(s, d, zerolog.New(io.Discard), Config{Interval: "1h", Timeout: "5s", NotificationRetention: "48h"})
	sched.now = func() time.Time { return now }

	rep, err := sched.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce error: %v", err)
	}
	want := Report{ExpiredContracts: 2, DeletedNotifications: 5, EvictedDedup: 3}
	if rep != want {
		t.Fatalf("expected %+v, got %+v", want, rep)
	}
	if !s.expireAt.Equal(now) {
		t.Fatalf("expected contracts expired at %v, got %v", now, s.expireAt)
	}
	if cutoff := now.Add(-48 * time.Hour); !s.deleteBefore.Equal(cutoff) {
		t.Fatalf("expected notifications deleted before %v, got %v", cutoff, s.deleteBefore)
	}
}

func TestSchedulerRunOnceStopsOnStoreError(t *testing.T) {
	t.Parallel()

	s := &stubStore{err: errors.New("db locked")}
	d := &stubEvictor{}
	sched := NewScheduler(s, d, zerolog.New(io.Discard), Config{})

	if _, err := sched.RunOnce(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if d.calls.Load() != 0 {
		t.Fatalf("expected dedup untouched after failure, got %d calls", d.calls.Load())
	}
}

func TestSchedulerDefaults(t *testing.T) {
	t.Parallel()

	sched := NewScheduler(&stubStore{}, nil, zerolog.New(io.Discard), Config{Interval: "bogus", Timeout: "-1s"})
	if sched.interval != time.Hour {
		t.Fatalf("expected default interval 1h, got %v", sched.interval)
	}
	if sched.timeout != 30*time.Second {
		t.Fatalf("expected default timeout 30s, got %v", sched.timeout)
	}
	if sched.retention != 30*24*time.Hour {
		t.Fatalf("expected default retention 30d, got %v", sched.retention)
	}

	cronSched := NewScheduler(&stubStore{}, nil, zerolog.New(io.Discard), Config{Interval: "0 3 * * *"})
	if cronSched.cron == nil || cronSched.cronSpec != "0 3 * * *" {
		t.Fatalf("expected cron schedule to be parsed")
	}
}

func TestSchedulerNoOverlap(t *testing.T) {
	t.Parallel()

	tickCh := make(chan time.Time, 4)
	st := &stubTicker{ch: tickCh}
	s := &stubStore{block: make(chan struct{})}

	sched := NewScheduler(s, nil, zerolog.New(io.Discard), Config{Interval: "100ms", Timeout: "5s"})
	sched.newTicker = func(d time.Duration) ticker { return st }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = sched.Start(ctx)
	}()

	// First tick blocks inside the store until released.
	tickCh <- time.Now()
	time.Sleep(20 * time.Millisecond)

	// Second tick arrives while the first run is still in progress.
	tickCh <- time.Now()
	close(s.block)

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	if s.calls.Load() != 1 {
		t.Fatalf("expected store called once due to overlap prevention, got %d", s.calls.Load())
	}
}

func TestSchedulerKeepsRunningAfterFailure(t *testing.T) {
	t.Parallel()

	tickCh := make(chan time.Time, 1)
	s := &stubStore{err: errors.New("boom")}
	sched := NewScheduler(s, nil, zerolog.New(io.Discard), Config{Interval: "1h"})
	sched.newTicker = func(d time.Duration) ticker { return &stubTicker{ch: tickCh} }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Start(ctx) }()

	tickCh <- time.Now()
	time.Sleep(20 * time.Millisecond)
	tickCh <- time.Now()
	time.Sleep(20 * time.Millisecond)
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if s.calls.Load() != 2 {
		t.Fatalf("expected two runs, got %d", s.calls.Load())
	}
}

func TestCronNext(t *testing.T) {
	t.Parallel()

	c, err := parseCronSpec("30 */6 * * 1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	// 2024-06-01 is a Saturday; next Monday 00:30.
	got, err := c.next(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	want := time.Date(2024, 6, 3, 0, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	for _, bad := range []string{"* * * *", "61 * * * *", "*/0 * * * *", "a b c d e"} {
		if _, err := parseCronSpec(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

// --- stubs ---

type stubStore struct {
	calls        atomic.Int32
	expired      int64
	deleted      int64
	err          error
	block        chan struct{}
	expireAt     time.Time
	deleteBefore time.Time
}

func (s *stubStore) ExpireContracts(ctx context.Context, now time.Time) (int64, error) {
	s.calls.Add(1)
	if s.block != nil {
		<-s.block
	}
	s.expireAt = now
	return s.expired, s.err
}

func (s *stubStore) DeleteReadNotificationsBefore(ctx context.Context, before time.Time) (int64, error) {
	s.deleteBefore = before
	return s.deleted, nil
}

type stubEvictor struct {
	n     int
	calls atomic.Int32
}

func (s *stubEvictor) Evict() int {
	s.calls.Add(1)
	return s.n
}

type stubTicker struct {
	ch chan time.Time
}

func (s *stubTicker) C() <-chan time.Time { return s.ch }
func (s *stubTicker) Stop()               {}
