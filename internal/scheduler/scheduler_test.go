package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRefresher struct {
	calls chan time.Duration
}

func (f *fakeRefresher) RefreshAll(_ context.Context, perLocation time.Duration) (int, error) {
	select {
	case f.calls <- perLocation:
	default:
	}
	return 1, nil
}

func TestSchedulerRunsImmediately(t *testing.T) {
	f := &fakeRefresher{calls: make(chan time.Duration, 1)}
	s := New(f, time.Hour, 3*time.Second)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	select {
	case got := <-f.calls:
		if got != 3*time.Second {
			t.Fatalf("per-location timeout = %s, want 3s", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("refresh job did not run")
	}
}

func TestSchedulerRejectsZeroInterval(t *testing.T) {
	s := New(&fakeRefresher{calls: make(chan time.Duration, 1)}, 0, time.Second)
	if err := s.Start(); err == nil {
		s.Stop()
		t.Fatal("expected an error for a zero interval")
	}
}

type blockingRefresher struct {
	started   chan struct{}
	cancelled chan error
}

func (b *blockingRefresher) RefreshAll(ctx context.Context, _ time.Duration) (int, error) {
	close(b.started)
	<-ctx.Done()
	b.cancelled <- ctx.Err()
	return 0, ctx.Err()
}

func TestStopCancelsInFlightRefresh(t *testing.T) {
	b := &blockingRefresher{started: make(chan struct{}), cancelled: make(chan error, 1)}
	s := New(b, time.Hour, time.Second)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case <-b.started:
	case <-time.After(2 * time.Second):
		s.Stop()
		t.Fatal("refresh job did not run")
	}

	s.Stop()
	select {
	case err := <-b.cancelled:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("refresh context error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not cancel the running refresh")
	}
}
