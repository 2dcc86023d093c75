package manager

import (
	"fmt"

	"github.com/rohmanhakim/shell-cache/pkg/failure"
)

type ManagerErrorCause string

const (
	ErrCauseNotActive    = "not active"
	ErrCauseStoreError   = "store error"
	ErrCauseInvalidParam = "invalid param"
)

type ManagerError struct {
	Message   string
	Retryable bool
	Cause     ManagerErrorCause
}

func (e *ManagerError) Error() string {
	return fmt.Sprintf("manager error: %s, %s", e.Cause, e.Message)
}

func (e *ManagerError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *ManagerError) IsRetryable() bool {
	return e.Retryable
}
