package replay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rohmanhakim/shell-cache/internal/fetcher"
	"github.com/rohmanhakim/shell-cache/internal/metadata"
	"github.com/rohmanhakim/shell-cache/pkg/failure"
	"github.com/rohmanhakim/shell-cache/pkg/retry"
)

/*
Responsibilities

- Hold mutations that could not reach the origin, in arrival order
- Replay them once connectivity returns, oldest first
- Keep actions that still cannot be delivered for the next flush

Replay Semantics

- Delivery means the origin answered, whatever the status; a rejection is
  the origin's verdict and is never retried
- Only transport failures retry, with exponential backoff per action
- A flush stops at the first undeliverable action; everything behind it
  stays queued so ordering is preserved
*/

type Queue struct {
	mu      sync.Mutex
	actions []Action

	maxQueued  int
	fetch      fetcher.Fetcher
	retryParam retry.RetryParam

	metadataSink metadata.EventSink
	logger       *zap.Logger
}

func NewQueue(
	maxQueued int,
	fetch fetcher.Fetcher,
	retryParam retry.RetryParam,
	metadataSink metadata.EventSink,
	logger *zap.Logger,
) *Queue {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		maxQueued:    maxQueued,
		fetch:        fetch,
		retryParam:   retryParam,
		metadataSink: metadataSink,
		logger:       logger,
	}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.actions)
}

// Record appends action for a later flush. A full queue rejects the action;
// silently dropping a mutation would lose user work.
func (q *Queue) Record(action Action) failure.ClassifiedError {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.maxQueued > 0 && len(q.actions) >= q.maxQueued {
		return &ReplayError{
			Message:   fmt.Sprintf("%d actions pending", len(q.actions)),
			Retryable: true,
			Cause:     ErrCauseQueueFull,
		}
	}
	q.actions = append(q.actions, action)
	q.logger.Debug("recorded deferred action",
		zap.String("method", action.method),
		zap.String("url", action.target.String()),
	)
	return nil
}

// Flush replays queued actions oldest first and returns how many were
// delivered. The first action that exhausts its attempts stops the flush and
// stays at the head of the queue.
func (q *Queue) Flush(ctx context.Context) (int, failure.ClassifiedError) {
	delivered := 0
	for {
		action, ok := q.peek()
		if !ok {
			return delivered, nil
		}

		if err := q.deliver(ctx, action); err != nil {
			q.metadataSink.RecordError(
				time.Now(),
				"replay",
				"Queue.Flush",
				metadata.CauseReplayExhausted,
				err.Error(),
				[]metadata.Attribute{
					metadata.NewAttr(metadata.AttrURL, action.target.String()),
				},
			)
			return delivered, &ReplayError{
				Message:   fmt.Sprintf("delivered %d, stuck on %s: %v", delivered, action.target.String(), err),
				Retryable: true,
				Cause:     ErrCauseFlushFailure,
			}
		}

		q.pop()
		delivered++
	}
}

func (q *Queue) deliver(ctx context.Context, action Action) failure.ClassifiedError {
	param := fetcher.NewFetchParam(action.method, action.target, action.header, action.body)

	result, err := retry.Retry(q.retryParam, func() (fetcher.FetchResult, failure.ClassifiedError) {
		return q.fetch.Fetch(ctx, param)
	})
	if err != nil {
		return err
	}

	// The origin answered; a non-success status is its final word
	q.logger.Info("replayed deferred action",
		zap.String("method", action.method),
		zap.String("url", action.target.String()),
		zap.Int("status", result.Code()),
		zap.Duration("deferred_for", time.Since(action.recordedAt)),
	)
	return nil
}

func (q *Queue) peek() (Action, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.actions) == 0 {
		return Action{}, false
	}
	return q.actions[0], true
}

func (q *Queue) pop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.actions) > 0 {
		q.actions = q.actions[1:]
	}
}
