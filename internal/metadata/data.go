package metadata

type ErrorCause string

// Canonical error-cause table for recorded events. Package-local error
// semantics are mapped onto this table at the recording site.
const (
	CauseNetworkFailure  ErrorCause = "network failure"
	CausePartitionError  ErrorCause = "partition error"
	CauseInstallAborted  ErrorCause = "install aborted"
	CauseSweepFailure    ErrorCause = "sweep failure"
	CauseRefreshFailure  ErrorCause = "refresh failure"
	CausePayloadInvalid  ErrorCause = "payload invalid"
	CauseReplayExhausted ErrorCause = "replay exhausted"
	CauseUnknown         ErrorCause = "unknown"
)

type AttrKey string

const (
	AttrURL       AttrKey = "url"
	AttrKeyHash   AttrKey = "key"
	AttrPartition AttrKey = "partition"
	AttrStrategy  AttrKey = "strategy"
	AttrState     AttrKey = "state"
	AttrMessage   AttrKey = "message"
)

type Attribute struct {
	Key   AttrKey
	Value string
}

func NewAttr(key AttrKey, value string) Attribute {
	return Attribute{Key: key, Value: value}
}
