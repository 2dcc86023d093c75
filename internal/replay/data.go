package replay

import (
	"net/http"
	"net/url"
	"time"
)

// Action is one deferred request, captured while the origin was unreachable
// and replayed once connectivity returns.
type Action struct {
	method     string
	target     url.URL
	header     http.Header
	body       []byte
	recordedAt time.Time
}

func NewAction(
	method string,
	target url.URL,
	header http.Header,
	body []byte,
	recordedAt time.Time,
) Action {
	headerCopy := make(http.Header, len(header))
	for key, values := range header {
		headerCopy[key] = append([]string(nil), values...)
	}
	bodyCopy := make([]byte, len(body))
	copy(bodyCopy, body)

	return Action{
		method:     method,
		target:     target,
		header:     headerCopy,
		body:       bodyCopy,
		recordedAt: recordedAt,
	}
}

func (a Action) Method() string {
	return a.method
}

func (a Action) Target() url.URL {
	return a.target
}

func (a Action) RecordedAt() time.Time {
	return a.recordedAt
}
