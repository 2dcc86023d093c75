package metadata

import (
	"time"

	"go.uber.org/zap"
)

/*
Metadata Collected
- Fetch timestamps and durations
- HTTP status codes
- Strategy decisions
- Partition reads, writes and deletions
- Lifecycle transitions

Logging Goals
- Debuggable interception behavior
- Post-incident auditability
- Failure diagnostics

Structured logging is preferred.

Determinism guarantees:
 - Metadata does not affect control flow
 - A failed record never fails the operation that produced it

Metadata is write-only.
No component may read metadata to influence caching decisions.
*/
type EventSink interface {
	RecordFetch(url string, httpStatus int, duration time.Duration)
	RecordStrategy(url string, strategy string)
	RecordCacheRead(partition string, url string, hit bool)
	RecordCacheWrite(partition string, url string)
	RecordTransition(from string, to string)
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		errorString string,
		attrs []Attribute,
	)
}

// ZapSink records events as structured log lines.
type ZapSink struct {
	logger *zap.Logger
}

func NewZapSink(logger *zap.Logger) *ZapSink {
	return &ZapSink{logger: logger}
}

func (s *ZapSink) RecordFetch(url string, httpStatus int, duration time.Duration) {
	s.logger.Debug("fetch",
		zap.String("url", url),
		zap.Int("status", httpStatus),
		zap.Duration("duration", duration),
	)
}

func (s *ZapSink) RecordStrategy(url string, strategy string) {
	s.logger.Debug("strategy decision",
		zap.String("url", url),
		zap.String("strategy", strategy),
	)
}

func (s *ZapSink) RecordCacheRead(partition string, url string, hit bool) {
	s.logger.Debug("cache read",
		zap.String("partition", partition),
		zap.String("url", url),
		zap.Bool("hit", hit),
	)
}

func (s *ZapSink) RecordCacheWrite(partition string, url string) {
	s.logger.Debug("cache write",
		zap.String("partition", partition),
		zap.String("url", url),
	)
}

func (s *ZapSink) RecordTransition(from string, to string) {
	s.logger.Info("lifecycle transition",
		zap.String("from", from),
		zap.String("to", to),
	)
}

func (s *ZapSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
	fields := []zap.Field{
		zap.Time("observed_at", observedAt),
		zap.String("package", packageName),
		zap.String("action", action),
		zap.String("cause", string(cause)),
		zap.String("error", errorString),
	}
	for _, attr := range attrs {
		fields = append(fields, zap.String(string(attr.Key), attr.Value))
	}
	s.logger.Warn("recorded error", fields...)
}

// NoopSink discards every event. Used in tests and as a safe default.
type NoopSink struct{}

func (s *NoopSink) RecordFetch(string, int, time.Duration) {}

func (s *NoopSink) RecordStrategy(string, string) {}

func (s *NoopSink) RecordCacheRead(string, string, bool) {}

func (s *NoopSink) RecordCacheWrite(string, string) {}

func (s *NoopSink) RecordTransition(string, string) {}

func (s *NoopSink) RecordError(time.Time, string, string, ErrorCause, string, []Attribute) {}
