package strategy

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rohmanhakim/shell-cache/pkg/fileutil"
	"github.com/rohmanhakim/shell-cache/pkg/urlutil"
)

/*
Responsibilities

- Decide which caching strategy governs an intercepted request
- Stay pure: no I/O, no clock, no partition access

Dispatch rules, evaluated in order, first match wins:

 1. Non-GET methods pass through; mutations must always reach the origin
 2. Cross-origin targets pass through
 3. Paths under the API prefix are Network-First
 4. Paths with a known static-asset extension are Cache-First
 5. Everything else (HTML navigations) is Stale-While-Revalidate
*/

type Classifier struct {
	origin    url.URL
	apiPrefix string
}

func NewClassifier(origin url.URL, apiPrefix string) Classifier {
	return Classifier{
		origin:    origin,
		apiPrefix: apiPrefix,
	}
}

func (c *Classifier) Classify(method string, target url.URL) Strategy {
	if method != http.MethodGet {
		return PassThrough
	}

	if !urlutil.SameOrigin(target, c.origin) {
		return PassThrough
	}

	if c.apiPrefix != "" && underAPIPrefix(target.Path, c.apiPrefix) {
		return NetworkFirst
	}

	if _, ok := staticExtensions[fileutil.GetFileExtension(target.Path)]; ok {
		return CacheFirst
	}

	return StaleWhileRevalidate
}

// IsImage reports whether the request targets an image resource, using the
// Sec-Fetch-Dest hint when present and the path extension otherwise.
func IsImage(header http.Header, target url.URL) bool {
	if dest := header.Get("Sec-Fetch-Dest"); dest != "" {
		return dest == "image"
	}
	_, ok := imageExtensions[fileutil.GetFileExtension(target.Path)]
	return ok
}

// underAPIPrefix matches paths under prefix. A bare path equal to the prefix
// minus its trailing slash counts too, so "/api" routes like "/api/".
func underAPIPrefix(path string, prefix string) bool {
	if strings.HasPrefix(path, prefix) {
		return true
	}
	return path == strings.TrimSuffix(prefix, "/")
}
