package replay

import (
	"fmt"

	"github.com/rohmanhakim/shell-cache/pkg/failure"
)

type ReplayErrorCause string

const (
	ErrCauseQueueFull    = "queue full"
	ErrCauseFlushFailure = "flush failure"
)

type ReplayError struct {
	Message   string
	Retryable bool
	Cause     ReplayErrorCause
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("replay error: %s, %s", e.Cause, e.Message)
}

func (e *ReplayError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *ReplayError) IsRetryable() bool {
	return e.Retryable
}
