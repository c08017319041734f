package smoke

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testPoller(timeout, step time.Duration) Poller {
	return Poller{
		Timeout: timeout,
		Step:    step,
		Logger:  NewStdoutLogger(false, false),
	}
}

func TestPollerImmediateSuccess(t *testing.T) {
	p := testPoller(time.Second, 10*time.Millisecond)

	calls := 0
	err := p.Wait(context.Background(), "immediate", func(ctx context.Context) (bool, error) {
		calls++
		return true, nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single evaluation, got %d", calls)
	}
}

func TestPollerEventualSuccess(t *testing.T) {
	p := testPoller(time.Second, 5*time.Millisecond)

	calls := 0
	err := p.Wait(context.Background(), "eventual", func(ctx context.Context) (bool, error) {
		calls++
		return calls >= 3, nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 evaluations, got %d", calls)
	}
}

func TestPollerTimeout(t *testing.T) {
	p := testPoller(50*time.Millisecond, 10*time.Millisecond)

	start := time.Now()
	err := p.Wait(context.Background(), "never-true", func(ctx context.Context) (bool, error) {
		return false, nil
	})
	elapsed := time.Since(start)

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if timeoutErr.Label != "never-true" {
		t.Errorf("expected label in error, got %q", timeoutErr.Label)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("wait overshot its timeout: %v", elapsed)
	}
}

func TestPollerConditionError(t *testing.T) {
	p := testPoller(time.Second, 10*time.Millisecond)

	boom := errors.New("observation failed")
	err := p.Wait(context.Background(), "erroring", func(ctx context.Context) (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected condition error to propagate, got %v", err)
	}
}

func TestPollerContextCancel(t *testing.T) {
	p := testPoller(time.Minute, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	err := p.Wait(ctx, "canceled", func(ctx context.Context) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
