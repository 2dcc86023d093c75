package lifecycle_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/rohmanhakim/shell-cache/internal/fetcher"
	"github.com/rohmanhakim/shell-cache/internal/partition"
	"github.com/rohmanhakim/shell-cache/pkg/failure"
	"github.com/stretchr/testify/require"
)

const testOrigin = "https://app.example.com"

var testManifest = []string{
	"/",
	"/index.html",
	"/manifest.json",
	"/favicon.ico",
	"/apple-touch-icon.png",
	"/icons/icon-192.png",
	"/icons/icon-512.png",
}

func mustParse(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func entryTime() time.Time {
	return time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
}

// assetServer is a hand-rolled fetcher that serves any path with a success
// response, except the paths listed in failing.
type assetServer struct {
	failing map[string]bool
	calls   []string
}

func (s *assetServer) Fetch(
	_ context.Context,
	fetchParam fetcher.FetchParam,
) (fetcher.FetchResult, failure.ClassifiedError) {
	u := fetchParam.URL()
	s.calls = append(s.calls, u.Path)
	if s.failing[u.Path] {
		return fetcher.FetchResult{}, &fetcher.FetchError{
			Message:   "unreachable",
			Retryable: true,
			Cause:     fetcher.ErrCauseNetworkFailure,
		}
	}
	return fetcher.NewFetchResultForTest(
		u,
		[]byte("asset:"+u.Path),
		200,
		http.Header{"Content-Type": []string{"application/octet-stream"}},
	), nil
}

// claimRecorder records whether Claim ran.
type claimRecorder struct {
	claimed bool
}

func (c *claimRecorder) Claim(context.Context) error {
	c.claimed = true
	return nil
}

// failingDeleteStore wraps a Store and fails deletion of the named partitions.
type failingDeleteStore struct {
	partition.Store
	failOn map[string]bool
}

func (s *failingDeleteStore) Delete(name string) failure.ClassifiedError {
	if s.failOn[name] {
		return &partition.PartitionError{
			Message:   "locked",
			Retryable: true,
			Cause:     partition.ErrCauseDeleteFailure,
		}
	}
	return s.Store.Delete(name)
}
