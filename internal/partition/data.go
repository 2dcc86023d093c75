package partition

import (
	"net/http"
	"net/url"
	"time"

	"github.com/rohmanhakim/shell-cache/pkg/hashutil"
	"github.com/rohmanhakim/shell-cache/pkg/urlutil"
)

// Cache partition boundary

// Entry is an immutable snapshot of a captured response. Both construction and
// accessors copy the header and body, so a stored entry can never be mutated
// through a response handed to a consumer.
type Entry struct {
	statusCode int
	header     http.Header
	body       []byte
	storedAt   time.Time
}

func NewEntry(statusCode int, header http.Header, body []byte, storedAt time.Time) Entry {
	return Entry{
		statusCode: statusCode,
		header:     cloneHeader(header),
		body:       append([]byte(nil), body...),
		storedAt:   storedAt,
	}
}

func (e *Entry) StatusCode() int {
	return e.statusCode
}

func (e *Entry) Header() http.Header {
	return cloneHeader(e.header)
}

func (e *Entry) Body() []byte {
	return append([]byte(nil), e.body...)
}

func (e *Entry) StoredAt() time.Time {
	return e.storedAt
}

// Ok reports whether the snapshot carries a success status. Only such
// snapshots may ever be written to a partition.
func (e *Entry) Ok() bool {
	return e.statusCode >= http.StatusOK && e.statusCode < http.StatusMultipleChoices
}

func cloneHeader(h http.Header) http.Header {
	if h == nil {
		return http.Header{}
	}
	return h.Clone()
}

// Key derives the request identity used as a partition key: the method plus
// the normalized URL, hashed so keys stay bounded and filesystem-safe.
// Fragments never reach the cache; query strings are identity-relevant.
func Key(method string, target url.URL) string {
	normalized := urlutil.Normalize(target)
	identity := method + ":" + normalized.String()

	// blake3 never fails on supported algos; fall back to the raw identity
	// rather than guessing on the error path.
	digest, err := hashutil.HashBytes([]byte(identity), hashutil.HashAlgoBLAKE3)
	if err != nil {
		return identity
	}
	return digest
}

// StaticName returns the versioned name of the static (app-shell) partition.
func StaticName(appName string, version string) string {
	return appName + "-static-" + version
}

// DynamicName returns the versioned name of the dynamic (runtime) partition.
func DynamicName(appName string, version string) string {
	return appName + "-dynamic-" + version
}
