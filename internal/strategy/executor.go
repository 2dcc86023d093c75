package strategy

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rohmanhakim/shell-cache/internal/fetcher"
	"github.com/rohmanhakim/shell-cache/internal/metadata"
	"github.com/rohmanhakim/shell-cache/internal/partition"
	"github.com/rohmanhakim/shell-cache/pkg/failure"
	"github.com/rohmanhakim/shell-cache/pkg/limiter"
)

/*
Responsibilities

- Execute the strategy the classifier picked, against partitions and origin
- Write response copies into the right partition (static vs dynamic)
- Run Stale-While-Revalidate refreshes detached from the caller

Execution Semantics

- Only success-status responses are ever stored
- Stored entries are copies; the caller always gets its own copy
- Partition write failures never fail the response they accompany
- Background refresh failures are swallowed; they can only cost freshness,
  never correctness
*/

// Result pairs the response snapshot with where it came from.
type Result struct {
	Entry  partition.Entry
	Source Source
}

type Executor struct {
	store            partition.Store
	fetch            fetcher.Fetcher
	staticName       string
	dynamicName      string
	origin           url.URL
	offlineImagePath string
	metadataSink     metadata.EventSink
	logger           *zap.Logger
	flight           singleflight.Group
	throttle         *limiter.RevalidationLimiter
}

func NewExecutor(
	store partition.Store,
	fetch fetcher.Fetcher,
	staticName string,
	dynamicName string,
	origin url.URL,
	offlineImagePath string,
	metadataSink metadata.EventSink,
	logger *zap.Logger,
	throttle *limiter.RevalidationLimiter,
) *Executor {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if throttle == nil {
		throttle = limiter.NewRevalidationLimiter(0)
	}
	return &Executor{
		store:            store,
		fetch:            fetch,
		staticName:       staticName,
		dynamicName:      dynamicName,
		origin:           origin,
		offlineImagePath: offlineImagePath,
		metadataSink:     metadataSink,
		logger:           logger,
		throttle:         throttle,
	}
}

func (e *Executor) Execute(ctx context.Context, s Strategy, req *http.Request) (Result, failure.ClassifiedError) {
	switch s {
	case CacheFirst:
		return e.cacheFirst(ctx, req)
	case NetworkFirst:
		return e.networkFirst(ctx, req)
	case StaleWhileRevalidate:
		return e.staleWhileRevalidate(ctx, req)
	default:
		return e.passThrough(ctx, req)
	}
}

// passThrough forwards the request untouched. It never opens a partition.
func (e *Executor) passThrough(ctx context.Context, req *http.Request) (Result, failure.ClassifiedError) {
	result, err := e.fetch.Fetch(ctx, e.fetchParamFor(req))
	if err != nil {
		return Result{}, err
	}
	return Result{Entry: entryFromResult(result), Source: SourceNetwork}, nil
}

func (e *Executor) cacheFirst(ctx context.Context, req *http.Request) (Result, failure.ClassifiedError) {
	target := e.resolve(*req.URL)
	key := partition.Key(req.Method, target)

	cached, hit := e.lookup(key, target)
	if hit {
		return Result{Entry: cached, Source: SourceCache}, nil
	}

	result, err := e.fetch.Fetch(ctx, e.fetchParamFor(req))
	if err != nil {
		if IsImage(req.Header, target) {
			if placeholder, ok := e.lookupOfflineImage(); ok {
				return Result{Entry: placeholder, Source: SourceFallback}, nil
			}
		}
		return Result{}, err
	}

	entry := entryFromResult(result)
	if entry.Ok() {
		e.storeEntry(e.staticName, key, target, entry)
	}
	return Result{Entry: entry, Source: SourceNetwork}, nil
}

func (e *Executor) networkFirst(ctx context.Context, req *http.Request) (Result, failure.ClassifiedError) {
	target := e.resolve(*req.URL)
	key := partition.Key(req.Method, target)

	result, err := e.fetch.Fetch(ctx, e.fetchParamFor(req))
	if err != nil {
		cached, hit := e.lookup(key, target)
		if hit {
			return Result{Entry: cached, Source: SourceFallback}, nil
		}
		return Result{}, err
	}

	entry := entryFromResult(result)
	if entry.Ok() {
		e.storeEntry(e.dynamicName, key, target, entry)
	}
	return Result{Entry: entry, Source: SourceNetwork}, nil
}

func (e *Executor) staleWhileRevalidate(ctx context.Context, req *http.Request) (Result, failure.ClassifiedError) {
	target := e.resolve(*req.URL)
	key := partition.Key(req.Method, target)

	cached, hit := e.lookup(key, target)
	if hit {
		e.refreshInBackground(key, target, e.fetchParamFor(req))
		return Result{Entry: cached, Source: SourceCache}, nil
	}

	result, err := e.fetch.Fetch(ctx, e.fetchParamFor(req))
	if err != nil {
		return Result{}, err
	}

	entry := entryFromResult(result)
	if entry.Ok() {
		e.storeEntry(e.dynamicName, key, target, entry)
	}
	return Result{Entry: entry, Source: SourceNetwork}, nil
}

// refreshInBackground refreshes key from the origin without the caller ever
// observing the outcome. Concurrent refreshes for the same key collapse into
// one flight, and a per-key throttle keeps repeat navigations from hammering
// the origin. The request context is not used: the caller has already been
// answered by the time this runs.
func (e *Executor) refreshInBackground(key string, target url.URL, param fetcher.FetchParam) {
	if !e.throttle.Allow(key) {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Debug("background refresh panicked", zap.Any("panic", r))
			}
		}()

		_, _, _ = e.flight.Do(key, func() (interface{}, error) {
			result, err := e.fetch.Fetch(context.Background(), param)
			if err != nil {
				e.metadataSink.RecordError(
					time.Now(),
					"strategy",
					"Executor.refreshInBackground",
					metadata.CauseRefreshFailure,
					err.Error(),
					[]metadata.Attribute{
						metadata.NewAttr(metadata.AttrURL, target.String()),
					},
				)
				// re-arm so the next request may retry the refresh
				e.throttle.Forget(key)
				return nil, nil
			}

			entry := entryFromResult(result)
			if entry.Ok() {
				e.storeEntry(e.dynamicName, key, target, entry)
			}
			return nil, nil
		})
	}()
}

// lookup searches every partition for key. Partition errors are recorded and
// reported as a miss so the network path still gets its chance.
func (e *Executor) lookup(key string, target url.URL) (partition.Entry, bool) {
	entry, ok, err := partition.MatchAny(e.store, key)
	if err != nil {
		e.recordPartitionError("Executor.lookup", target, err)
		return partition.Entry{}, false
	}
	e.metadataSink.RecordCacheRead("any", target.String(), ok)
	return entry, ok
}

func (e *Executor) lookupOfflineImage() (partition.Entry, bool) {
	if e.offlineImagePath == "" {
		return partition.Entry{}, false
	}
	target := e.resolve(url.URL{Path: e.offlineImagePath})
	key := partition.Key(http.MethodGet, target)

	entry, ok, err := partition.MatchAny(e.store, key)
	if err != nil || !ok {
		return partition.Entry{}, false
	}
	return entry, true
}

// storeEntry writes a copy of entry into the named partition. A write failure
// is recorded but never fails the response that produced it.
func (e *Executor) storeEntry(partitionName string, key string, target url.URL, entry partition.Entry) {
	p, err := e.store.Open(partitionName)
	if err != nil {
		e.recordPartitionError("Executor.storeEntry", target, err)
		return
	}
	if err := p.Put(key, entry); err != nil {
		e.recordPartitionError("Executor.storeEntry", target, err)
		return
	}
	e.metadataSink.RecordCacheWrite(partitionName, target.String())
}

func (e *Executor) recordPartitionError(action string, target url.URL, err failure.ClassifiedError) {
	e.metadataSink.RecordError(
		time.Now(),
		"strategy",
		action,
		metadata.CausePartitionError,
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, target.String()),
		},
	)
}

// resolve fills in scheme and host for relative request targets, which is how
// same-origin requests arrive at a server-side interception point.
func (e *Executor) resolve(target url.URL) url.URL {
	if target.Host == "" {
		target.Host = e.origin.Host
	}
	if target.Scheme == "" {
		target.Scheme = e.origin.Scheme
	}
	return target
}

func (e *Executor) fetchParamFor(req *http.Request) fetcher.FetchParam {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}
	return fetcher.NewFetchParam(req.Method, e.resolve(*req.URL), req.Header, body)
}

func entryFromResult(result fetcher.FetchResult) partition.Entry {
	return partition.NewEntry(result.Code(), result.Header(), result.Body(), time.Now())
}
