package smoke

// Suite selects a scenario group to execute.
type Suite string

const (
	// SuiteFast covers resource CRUD round-trips; it completes in seconds.
	SuiteFast Suite = "fast"
	// SuiteSlow covers time-delayed alert lifecycles; it waits out the
	// platform's evaluation and SLA windows.
	SuiteSlow Suite = "slow"
)

// CheckStatus is the final status of one scenario.
type CheckStatus string

const (
	// StatusOK indicates the scenario completed without error.
	StatusOK CheckStatus = "ok"
	// StatusFail indicates the scenario returned or panicked with an error.
	StatusFail CheckStatus = "fail"
)

// CheckOutcome records the result of one named scenario. Outcomes are
// immutable once recorded and collected in execution order.
type CheckOutcome struct {
	Name   string
	Status CheckStatus
	// Detail carries the error text for failed scenarios.
	Detail string
}

// AlertSnapshot is a transient projection of one alert-history row,
// captured once a firing alert is observed. Downstream correlation and
// escalation scenarios key off it.
type AlertSnapshot struct {
	ID          string
	RuleID      string
	Fingerprint string
	Status      string
}

// Logger provides centralized logging for suite execution
type Logger interface {
	// Debug logs debug-level messages (only shown when debug=true)
	Debug(format string, args ...interface{})
	// Info logs info-level messages (shown when verbose=true or debug=true)
	Info(format string, args ...interface{})
	// Error logs error-level messages (always shown)
	Error(format string, args ...interface{})
	// IsDebugEnabled returns whether debug logging is enabled
	IsDebugEnabled() bool
	// IsVerboseEnabled returns whether verbose logging is enabled
	IsVerboseEnabled() bool
}
