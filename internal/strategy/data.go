package strategy

// Strategy is the tagged decision of the dispatcher: which caching behavior
// governs an intercepted request.
type Strategy int

const (
	// PassThrough forwards the request untouched: no lookup, no store.
	PassThrough Strategy = iota
	// NetworkFirst prefers the origin, falling back to the cache on failure.
	NetworkFirst
	// CacheFirst prefers the cache, hitting the origin only on a miss.
	CacheFirst
	// StaleWhileRevalidate serves from cache immediately and refreshes the
	// entry in the background for the next request.
	StaleWhileRevalidate
)

func (s Strategy) String() string {
	switch s {
	case PassThrough:
		return "pass-through"
	case NetworkFirst:
		return "network-first"
	case CacheFirst:
		return "cache-first"
	case StaleWhileRevalidate:
		return "stale-while-revalidate"
	default:
		return "unknown"
	}
}

// Source says where the bytes of a Result came from.
type Source int

const (
	SourceNetwork Source = iota
	SourceCache
	SourceFallback
)

func (s Source) String() string {
	switch s {
	case SourceNetwork:
		return "network"
	case SourceCache:
		return "cache"
	case SourceFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// staticExtensions is the set of path extensions treated as app-shell assets.
// script, stylesheet, image formats, icon, font formats.
var staticExtensions = map[string]struct{}{
	"js":    {},
	"css":   {},
	"png":   {},
	"jpg":   {},
	"jpeg":  {},
	"gif":   {},
	"svg":   {},
	"webp":  {},
	"ico":   {},
	"woff":  {},
	"woff2": {},
	"ttf":   {},
	"otf":   {},
	"eot":   {},
}

// imageExtensions identifies image resources for the offline placeholder
// fallback under Cache-First.
var imageExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
	"svg":  {},
	"webp": {},
	"ico":  {},
}
