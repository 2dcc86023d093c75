package fetcher

import (
	"net/http"
	"net/url"
)

// HTTP boundary

type FetchParam struct {
	method   string
	fetchUrl url.URL
	header   http.Header
	body     []byte
}

func NewFetchParam(method string, fetchUrl url.URL, header http.Header, body []byte) FetchParam {
	return FetchParam{
		method:   method,
		fetchUrl: fetchUrl,
		header:   header,
		body:     body,
	}
}

func (p *FetchParam) Method() string {
	return p.method
}

func (p *FetchParam) URL() url.URL {
	return p.fetchUrl
}

type FetchResult struct {
	url  url.URL
	body []byte
	meta ResponseMeta
}

func (f *FetchResult) URL() url.URL {
	return f.url
}

func (f *FetchResult) Body() []byte {
	return f.body
}

func (f *FetchResult) Code() int {
	return f.meta.statusCode
}

func (f *FetchResult) Header() http.Header {
	return f.meta.responseHeader
}

// Ok reports whether the origin answered with a success status. Strategies
// only ever cache responses for which this holds.
func (f *FetchResult) Ok() bool {
	return f.meta.statusCode >= http.StatusOK && f.meta.statusCode < http.StatusMultipleChoices
}

type ResponseMeta struct {
	statusCode     int
	responseHeader http.Header
}

// NewFetchResultForTest creates a FetchResult for testing purposes.
// This allows test packages to construct FetchResult values without
// accessing unexported fields directly.
func NewFetchResultForTest(
	url url.URL,
	body []byte,
	statusCode int,
	responseHeader http.Header,
) FetchResult {
	return FetchResult{
		url:  url,
		body: body,
		meta: ResponseMeta{
			statusCode:     statusCode,
			responseHeader: responseHeader,
		},
	}
}
