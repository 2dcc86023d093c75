package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rohmanhakim/shell-cache/internal/metadata"
	"github.com/rohmanhakim/shell-cache/pkg/failure"
)

/*
Responsibilities

- Perform HTTP requests against the origin server
- Forward method, headers and body unchanged
- Capture the full response (status, headers, body) as a value

Fetch Semantics

- A non-success status is a valid result, not an error; strategies decide
  what to do with it
- The only error paths are transport failures: request build, connection,
  body read
- No retry and no timeout beyond what the injected client enforces; the
  strategy layer owns every fallback

The fetcher never interprets content; it only returns bytes and metadata.
*/

type OriginFetcher struct {
	metadataSink metadata.EventSink
	httpClient   *http.Client
}

func NewOriginFetcher(
	metadataSink metadata.EventSink,
	httpClient *http.Client,
) OriginFetcher {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return OriginFetcher{
		metadataSink: metadataSink,
		httpClient:   httpClient,
	}
}

func (f *OriginFetcher) Fetch(
	ctx context.Context,
	fetchParam FetchParam,
) (FetchResult, failure.ClassifiedError) {
	callerMethod := "OriginFetcher.Fetch"
	startTime := time.Now()

	result, err := f.performFetch(ctx, fetchParam)

	duration := time.Since(startTime)

	var statusCode int
	if err == nil {
		statusCode = result.Code()
	}
	f.metadataSink.RecordFetch(fetchParam.fetchUrl.String(), statusCode, duration)

	if err != nil {
		f.recordFetchError(callerMethod, fetchParam.fetchUrl, err)
		return FetchResult{}, err
	}
	return result, nil
}

func (f *OriginFetcher) recordFetchError(callerMethod string, fetchUrl url.URL, err failure.ClassifiedError) {
	var fetchError *FetchError
	if errors.As(err, &fetchError) {
		f.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			mapFetchErrorToMetadataCause(fetchError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
			},
		)
	}
}

func (f *OriginFetcher) performFetch(ctx context.Context, fetchParam FetchParam) (FetchResult, failure.ClassifiedError) {
	var reqBody io.Reader
	if len(fetchParam.body) > 0 {
		reqBody = bytes.NewReader(fetchParam.body)
	}

	req, err := http.NewRequestWithContext(ctx, fetchParam.method, fetchParam.fetchUrl.String(), reqBody)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseRequestBuildError,
		}
	}

	for key, values := range fetchParam.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		// Network/transport errors surface to the strategy's fallback path
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: true,
			Cause:     ErrCauseNetworkFailure,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("failed to read response body: %v", err),
			Retryable: true,
			Cause:     ErrCauseReadResponseBodyError,
		}
	}

	return FetchResult{
		url:  fetchParam.fetchUrl,
		body: body,
		meta: ResponseMeta{
			statusCode:     resp.StatusCode,
			responseHeader: resp.Header.Clone(),
		},
	}, nil
}
