package manager

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/rohmanhakim/shell-cache/internal/config"
	"github.com/rohmanhakim/shell-cache/internal/fetcher"
	"github.com/rohmanhakim/shell-cache/internal/lifecycle"
	"github.com/rohmanhakim/shell-cache/internal/metadata"
	"github.com/rohmanhakim/shell-cache/internal/notify"
	"github.com/rohmanhakim/shell-cache/internal/partition"
	"github.com/rohmanhakim/shell-cache/internal/replay"
	"github.com/rohmanhakim/shell-cache/internal/strategy"
	"github.com/rohmanhakim/shell-cache/pkg/failure"
	"github.com/rohmanhakim/shell-cache/pkg/limiter"
	"github.com/rohmanhakim/shell-cache/pkg/retry"
)

/*
Responsibilities

- Assemble the partition store, origin fetcher, classifier, executor,
  lifecycle manager, replay queue and push handler from one config
- Expose the three operations the interception layer is built around:
  Install, Activate, Handle
- Queue mutations that could not reach the origin and flush them on demand
- Record every strategy decision before it executes

Handle Semantics

- Requests are only intercepted while the manager is active; before that
  every request is refused so the caller can forward it directly
- Classification is pure; the executor owns every side effect
- A mutation lost to a transport failure still fails for the caller, but it
  lands in the replay queue for the next connectivity-restored flush
*/

// Backoff curve for replaying deferred actions.
const (
	replayJitter       = 100 * time.Millisecond
	replayInitialDelay = 500 * time.Millisecond
	replayMaxDelay     = 5 * time.Second
)

type CacheManager struct {
	classifier  strategy.Classifier
	executor    *strategy.Executor
	lifecycle   *lifecycle.Manager
	replayQueue *replay.Queue
	pushHandler *notify.Handler
	origin      url.URL

	metadataSink metadata.EventSink
	logger       *zap.Logger
}

// NewCacheManager wires explicitly injected collaborators. Most callers want
// FromConfig instead.
func NewCacheManager(
	cfg config.Config,
	store partition.Store,
	fetch fetcher.Fetcher,
	clients lifecycle.ClientRegistry,
	metadataSink metadata.EventSink,
	logger *zap.Logger,
) *CacheManager {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	staticName := partition.StaticName(cfg.AppName(), cfg.VersionTag())
	dynamicName := partition.DynamicName(cfg.AppName(), cfg.VersionTag())

	replayRetry := retry.NewRetryParam(
		replayJitter,
		cfg.RandomSeed(),
		cfg.ReplayMaxAttempts(),
		retry.NewBackoffParam(replayInitialDelay, 2.0, replayMaxDelay),
	)

	return &CacheManager{
		classifier: strategy.NewClassifier(cfg.Origin(), cfg.APIPrefix()),
		executor: strategy.NewExecutor(
			store,
			fetch,
			staticName,
			dynamicName,
			cfg.Origin(),
			cfg.OfflineImagePath(),
			metadataSink,
			logger,
			limiter.NewRevalidationLimiter(cfg.RevalidateInterval()),
		),
		lifecycle: lifecycle.NewManager(
			store,
			fetch,
			cfg.Origin(),
			staticName,
			dynamicName,
			cfg.StaticAssets(),
			clients,
			metadataSink,
			logger,
		),
		replayQueue: replay.NewQueue(
			cfg.MaxQueuedActions(),
			fetch,
			replayRetry,
			metadataSink,
			logger,
		),
		pushHandler: notify.NewHandler(
			cfg.Origin(),
			notify.NewLogNotifier(logger),
			notify.NoopWindows{},
			metadataSink,
			logger,
		),
		origin:       cfg.Origin(),
		metadataSink: metadataSink,
		logger:       logger,
	}
}

// FromConfig builds the full stack from config alone: a disk-backed store
// when a cache directory is set, memory otherwise, and an origin fetcher
// honoring the configured timeout.
func FromConfig(
	cfg config.Config,
	clients lifecycle.ClientRegistry,
	metadataSink metadata.EventSink,
	logger *zap.Logger,
) (*CacheManager, failure.ClassifiedError) {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}

	var store partition.Store
	if cfg.CacheDir() != "" {
		diskStore, err := partition.NewDiskStore(cfg.CacheDir())
		if err != nil {
			return nil, &ManagerError{
				Message:   err.Error(),
				Retryable: false,
				Cause:     ErrCauseStoreError,
			}
		}
		store = diskStore
	} else {
		store = partition.NewMemoryStore()
	}

	fetch := fetcher.NewOriginFetcher(metadataSink, &http.Client{Timeout: cfg.FetchTimeout()})

	return NewCacheManager(cfg, store, &fetch, clients, metadataSink, logger), nil
}

// Install precaches the static asset manifest.
func (m *CacheManager) Install(ctx context.Context) failure.ClassifiedError {
	return m.lifecycle.Install(ctx)
}

// Activate sweeps orphaned partitions and claims clients.
func (m *CacheManager) Activate(ctx context.Context) failure.ClassifiedError {
	return m.lifecycle.Activate(ctx)
}

func (m *CacheManager) State() lifecycle.State {
	return m.lifecycle.State()
}

// Handle classifies req and executes the matching strategy. It refuses
// requests until the manager has activated. A mutation that fails on
// transport is queued for replay before the failure is returned.
func (m *CacheManager) Handle(ctx context.Context, req *http.Request) (strategy.Result, failure.ClassifiedError) {
	if req == nil || req.URL == nil {
		return strategy.Result{}, &ManagerError{
			Message:   "request without target",
			Retryable: false,
			Cause:     ErrCauseInvalidParam,
		}
	}
	if state := m.lifecycle.State(); state != lifecycle.StateActive {
		return strategy.Result{}, &ManagerError{
			Message:   "in state " + state.String(),
			Retryable: true,
			Cause:     ErrCauseNotActive,
		}
	}

	picked := m.classifier.Classify(req.Method, *req.URL)
	m.metadataSink.RecordStrategy(req.URL.String(), picked.String())

	// Buffer mutation bodies so a failed delivery can still be queued after
	// the executor has consumed the request
	var mutationBody []byte
	if isMutation(req.Method) && req.Body != nil {
		mutationBody, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(mutationBody))
	}

	startTime := time.Now()
	result, err := m.executor.Execute(ctx, picked, req)
	if err != nil {
		if isMutation(req.Method) && isTransportFailure(err) {
			m.queueForReplay(req, mutationBody)
		}
		return strategy.Result{}, err
	}

	m.logger.Debug("handled request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("strategy", picked.String()),
		zap.String("source", result.Source.String()),
		zap.Duration("duration", time.Since(startTime)),
	)
	return result, nil
}

// HandlePush parses a push payload and surfaces it as a notification.
func (m *CacheManager) HandlePush(ctx context.Context, payload []byte) failure.ClassifiedError {
	return m.pushHandler.HandlePush(ctx, payload)
}

// FlushReplay replays queued mutations oldest first, returning how many were
// delivered. Meant to fire when connectivity returns.
func (m *CacheManager) FlushReplay(ctx context.Context) (int, failure.ClassifiedError) {
	return m.replayQueue.Flush(ctx)
}

// ReplayBacklog reports how many deferred mutations await the next flush.
func (m *CacheManager) ReplayBacklog() int {
	return m.replayQueue.Len()
}

func (m *CacheManager) queueForReplay(req *http.Request, body []byte) {
	target := *req.URL
	if target.Host == "" {
		target.Host = m.origin.Host
	}
	if target.Scheme == "" {
		target.Scheme = m.origin.Scheme
	}

	action := replay.NewAction(req.Method, target, req.Header, body, time.Now())
	if err := m.replayQueue.Record(action); err != nil {
		m.logger.Warn("could not queue mutation for replay",
			zap.String("method", req.Method),
			zap.String("url", target.String()),
			zap.Error(err),
		)
		return
	}
	m.logger.Info("queued mutation for replay",
		zap.String("method", req.Method),
		zap.String("url", target.String()),
	)
}

// isMutation reports whether the method changes origin state. Safe reads
// (GET, HEAD) are never replayed.
func isMutation(method string) bool {
	return method != http.MethodGet && method != http.MethodHead
}

func isTransportFailure(err failure.ClassifiedError) bool {
	var fetchErr *fetcher.FetchError
	return errors.As(err, &fetchErr) && fetchErr.IsRetryable()
}
