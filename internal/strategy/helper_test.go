package strategy_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rohmanhakim/shell-cache/internal/fetcher"
	"github.com/rohmanhakim/shell-cache/internal/metadata"
	"github.com/rohmanhakim/shell-cache/internal/partition"
	"github.com/rohmanhakim/shell-cache/internal/strategy"
	"github.com/rohmanhakim/shell-cache/pkg/failure"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

const (
	testStaticName  = "lexsim-static-v1"
	testDynamicName = "lexsim-dynamic-v1"
	testOrigin      = "https://app.example.com"
	offlineImage    = "/images/offline.png"
)

// fetcherMock is a testify mock for the Fetcher
type fetcherMock struct {
	mock.Mock
}

func (f *fetcherMock) Fetch(
	ctx context.Context,
	fetchParam fetcher.FetchParam,
) (fetcher.FetchResult, failure.ClassifiedError) {
	args := f.Called(ctx, fetchParam)
	result := args.Get(0).(fetcher.FetchResult)
	var err failure.ClassifiedError
	if args.Get(1) != nil {
		err = args.Get(1).(failure.ClassifiedError)
	}
	return result, err
}

func networkDown() *fetcher.FetchError {
	return &fetcher.FetchError{
		Message:   "connection refused",
		Retryable: true,
		Cause:     fetcher.ErrCauseNetworkFailure,
	}
}

func okResult(t *testing.T, rawURL string, body string) fetcher.FetchResult {
	t.Helper()
	return fetcher.NewFetchResultForTest(
		mustParse(t, rawURL),
		[]byte(body),
		200,
		http.Header{"Content-Type": []string{"text/html"}},
	)
}

func statusResult(t *testing.T, rawURL string, status int, body string) fetcher.FetchResult {
	t.Helper()
	return fetcher.NewFetchResultForTest(
		mustParse(t, rawURL),
		[]byte(body),
		status,
		http.Header{},
	)
}

// newExecutorForTest wires an executor over a fresh memory store and the
// given fetcher mock, with observability disabled.
func newExecutorForTest(t *testing.T, fetch fetcher.Fetcher) (*strategy.Executor, *partition.MemoryStore) {
	t.Helper()
	store := partition.NewMemoryStore()
	executor := strategy.NewExecutor(
		store,
		fetch,
		testStaticName,
		testDynamicName,
		mustParse(t, testOrigin),
		offlineImage,
		&metadata.NoopSink{},
		zap.NewNop(),
		nil,
	)
	return executor, store
}

func getRequest(t *testing.T, rawURL string) *http.Request {
	t.Helper()
	u := mustParse(t, rawURL)
	return &http.Request{Method: http.MethodGet, URL: &u, Header: http.Header{}}
}

// seed stores body under the request identity of (GET, rawURL) in the named
// partition.
func seed(t *testing.T, store partition.Store, partitionName string, rawURL string, body string) {
	t.Helper()
	p, err := store.Open(partitionName)
	if err != nil {
		t.Fatalf("open partition: %v", err)
	}
	u := mustParse(t, rawURL)
	entry := partition.NewEntry(200, http.Header{"Content-Type": []string{"text/html"}}, []byte(body), time.Now())
	if err := p.Put(partition.Key(http.MethodGet, u), entry); err != nil {
		t.Fatalf("seed put: %v", err)
	}
}

// readBack fetches the entry stored under (GET, rawURL) from the named
// partition, if any.
func readBack(t *testing.T, store partition.Store, partitionName string, rawURL string) (partition.Entry, bool) {
	t.Helper()
	p, err := store.Open(partitionName)
	if err != nil {
		t.Fatalf("open partition: %v", err)
	}
	u := mustParse(t, rawURL)
	entry, ok, matchErr := p.Match(partition.Key(http.MethodGet, u))
	if matchErr != nil {
		t.Fatalf("match: %v", matchErr)
	}
	return entry, ok
}

func countEntries(t *testing.T, store partition.Store, partitionName string) int {
	t.Helper()
	p, err := store.Open(partitionName)
	if err != nil {
		t.Fatalf("open partition: %v", err)
	}
	keys, keysErr := p.Keys()
	if keysErr != nil {
		t.Fatalf("keys: %v", keysErr)
	}
	return len(keys)
}
