package urlutil_test

import (
	"net/url"
	"testing"

	"github.com/rohmanhakim/shell-cache/pkg/urlutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercases scheme and host",
			input: "HTTPS://Example.COM/Path",
			want:  "https://example.com/Path",
		},
		{
			name:  "strips default http port",
			input: "http://example.com:80/index.html",
			want:  "http://example.com/index.html",
		},
		{
			name:  "strips default https port",
			input: "https://example.com:443/",
			want:  "https://example.com/",
		},
		{
			name:  "keeps non-default port",
			input: "http://example.com:8080/app",
			want:  "http://example.com:8080/app",
		},
		{
			name:  "removes fragment",
			input: "https://example.com/page#section-2",
			want:  "https://example.com/page",
		},
		{
			name:  "keeps query string",
			input: "https://example.com/api/orders?status=open&page=2",
			want:  "https://example.com/api/orders?status=open&page=2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := urlutil.Normalize(mustParse(t, tt.input))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	u := mustParse(t, "HTTP://Example.com:80/docs/page?q=1#frag")

	once := urlutil.Normalize(u)
	twice := urlutil.Normalize(once)

	assert.Equal(t, once, twice)
}

func TestSameOrigin(t *testing.T) {
	origin := mustParse(t, "https://app.example.com")

	tests := []struct {
		name   string
		target string
		want   bool
	}{
		{"same host and scheme", "https://app.example.com/cases", true},
		{"host case differs", "https://APP.Example.com/cases", true},
		{"different host", "https://cdn.example.com/app.js", false},
		{"different scheme", "http://app.example.com/cases", false},
		{"relative target", "/cases/42", true},
		{"default port matches", "https://app.example.com:443/cases", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := urlutil.SameOrigin(mustParse(t, tt.target), origin)
			assert.Equal(t, tt.want, got)
		})
	}
}
