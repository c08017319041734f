package smoke

import (
	"context"
	"time"

	"github.com/briandowns/spinner"
)

// Condition is one observation of the platform. It returns true once
// the awaited state holds; a non-nil error aborts the wait immediately.
type Condition func(ctx context.Context) (bool, error)

// Poller repeatedly evaluates eventually-consistent conditions with a
// fixed cadence and an overall deadline.
type Poller struct {
	Timeout time.Duration
	Step    time.Duration
	Logger  Logger
	// Spin enables an interactive progress indicator during the wait.
	Spin bool
}

// Wait blocks until cond holds, the timeout expires, or the context is
// canceled. The label names the awaited state in timeout errors and
// progress output.
func (p Poller) Wait(ctx context.Context, label string, cond Condition) error {
	waitCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	if p.Spin {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " Waiting for " + label + "..."
		s.Start()
		defer s.Stop()
	}

	ticker := time.NewTicker(p.Step)
	defer ticker.Stop()

	for {
		ok, err := cond(waitCtx)
		if err != nil {
			return err
		}
		if ok {
			p.Logger.Debug("condition %s satisfied\n", label)
			return nil
		}

		select {
		case <-waitCtx.Done():
			// Distinguish an expired wait from an aborted run.
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &TimeoutError{Label: label}
		case <-ticker.C:
		}
	}
}
