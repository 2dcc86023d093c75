package urlutil

import "net/url"

// Normalize applies a deterministic normalization to a URL, producing the form
// used for request identity.
//
// The normalization follows these rules:
//   - Scheme and host are lowercased
//   - Fragments are removed
//   - Default ports are omitted (e.g., :80 for http, :443 for https)
//
// Query parameters and the path are kept as-is: two requests that differ only
// in their query string are distinct cache identities.
//
// Properties:
//   - Pure: no state, no memory
//   - Deterministic: same input always produces same output
//   - Idempotent: Normalize(Normalize(url)) == Normalize(url)
func Normalize(sourceUrl url.URL) url.URL {
	// Create a copy to avoid mutating the original
	normalized := sourceUrl

	// Lowercase scheme and host
	normalized.Scheme = lowerASCII(normalized.Scheme)
	normalized.Host = lowerASCII(normalized.Host)

	// Remove default port if present
	if host, port := normalized.Hostname(), normalized.Port(); port != "" {
		if (normalized.Scheme == "http" && port == "80") ||
			(normalized.Scheme == "https" && port == "443") {
			normalized.Host = host
		}
	}

	// Remove fragment (anchor)
	normalized.Fragment = ""
	normalized.RawFragment = ""

	return normalized
}

// SameOrigin reports whether two URLs share scheme and host after normalization.
// A URL with an empty host (a relative request target) is treated as belonging
// to the reference origin.
func SameOrigin(target url.URL, origin url.URL) bool {
	t := Normalize(target)
	o := Normalize(origin)

	if t.Host == "" {
		return true
	}
	if t.Scheme != "" && t.Scheme != o.Scheme {
		return false
	}
	return t.Host == o.Host
}

// lowerASCII converts ASCII characters to lowercase without allocating.
// This is faster than strings.ToLower for ASCII-only strings.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
