package lifecycle

import (
	"fmt"

	"github.com/rohmanhakim/shell-cache/pkg/failure"
)

type LifecycleErrorCause string

const (
	ErrCauseInstallAborted    = "install aborted"
	ErrCauseNotInstalled      = "not installed"
	ErrCauseInvalidTransition = "invalid transition"
)

type LifecycleError struct {
	Message   string
	Retryable bool
	Cause     LifecycleErrorCause
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("lifecycle error: %s, %s", e.Cause, e.Message)
}

func (e *LifecycleError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *LifecycleError) IsRetryable() bool {
	return e.Retryable
}
