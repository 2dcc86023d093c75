package partition

import (
	"fmt"

	"github.com/rohmanhakim/shell-cache/pkg/failure"
)

type PartitionErrorCause string

const (
	ErrCauseOpenFailure   PartitionErrorCause = "failed to open partition"
	ErrCauseReadFailure   PartitionErrorCause = "failed to read entry"
	ErrCauseWriteFailure  PartitionErrorCause = "failed to write entry"
	ErrCauseDeleteFailure PartitionErrorCause = "failed to delete partition"
	ErrCauseCorruptEntry  PartitionErrorCause = "corrupt entry"
)

type PartitionError struct {
	Message   string
	Retryable bool
	Cause     PartitionErrorCause
}

func (e *PartitionError) Error() string {
	return fmt.Sprintf("partition error: %s", e.Cause)
}

func (e *PartitionError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *PartitionError) IsRetryable() bool {
	return e.Retryable
}
