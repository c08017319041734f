package smoke

import "fmt"

// TransportError indicates a network-level failure reaching the platform
// or a stub: connection refused, DNS failure, client-side timeout.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// RemoteError indicates the platform answered with a non-2xx status.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// TimeoutError indicates a bounded wait expired before its condition held.
type TimeoutError struct {
	Label string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout waiting for %s", e.Label)
}

// AssertionError indicates an observed value did not match the
// scenario's expectation.
type AssertionError struct {
	Msg string
}

func (e *AssertionError) Error() string { return e.Msg }

// Assertf builds an AssertionError from a format string.
func Assertf(format string, args ...interface{}) error {
	return &AssertionError{Msg: fmt.Sprintf(format, args...)}
}

// SetupError marks a failure before or outside scenario execution: the
// admin login failed, a required seed resource was missing, or the stub
// set could not start. It is fatal to the whole run and reported
// distinctly from scenario failures.
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup failed: %v", e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }
