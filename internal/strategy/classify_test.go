package strategy_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/rohmanhakim/shell-cache/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func TestClassifier_Classify(t *testing.T) {
	origin := mustParse(t, "https://app.example.com")
	c := strategy.NewClassifier(origin, "/api/")

	tests := []struct {
		name   string
		method string
		target string
		want   strategy.Strategy
	}{
		{
			name:   "POST passes through",
			method: http.MethodPost,
			target: "https://app.example.com/api/cases",
			want:   strategy.PassThrough,
		},
		{
			name:   "PUT passes through",
			method: http.MethodPut,
			target: "https://app.example.com/api/cases/42",
			want:   strategy.PassThrough,
		},
		{
			name:   "DELETE passes through",
			method: http.MethodDelete,
			target: "https://app.example.com/api/cases/42",
			want:   strategy.PassThrough,
		},
		{
			name:   "HEAD passes through",
			method: http.MethodHead,
			target: "https://app.example.com/cases",
			want:   strategy.PassThrough,
		},
		{
			name:   "cross-origin GET passes through",
			method: http.MethodGet,
			target: "https://cdn.other.com/lib.js",
			want:   strategy.PassThrough,
		},
		{
			name:   "API GET is network-first",
			method: http.MethodGet,
			target: "https://app.example.com/api/orders",
			want:   strategy.NetworkFirst,
		},
		{
			name:   "API GET with query is network-first",
			method: http.MethodGet,
			target: "https://app.example.com/api/orders?page=2",
			want:   strategy.NetworkFirst,
		},
		{
			name:   "bare API root is network-first",
			method: http.MethodGet,
			target: "https://app.example.com/api",
			want:   strategy.NetworkFirst,
		},
		{
			name:   "API lookalike path is stale-while-revalidate",
			method: http.MethodGet,
			target: "https://app.example.com/apiary",
			want:   strategy.StaleWhileRevalidate,
		},
		{
			name:   "script is cache-first",
			method: http.MethodGet,
			target: "https://app.example.com/static/js/app.js",
			want:   strategy.CacheFirst,
		},
		{
			name:   "stylesheet is cache-first",
			method: http.MethodGet,
			target: "https://app.example.com/static/css/main.css",
			want:   strategy.CacheFirst,
		},
		{
			name:   "image is cache-first",
			method: http.MethodGet,
			target: "https://app.example.com/images/logo.png",
			want:   strategy.CacheFirst,
		},
		{
			name:   "font is cache-first",
			method: http.MethodGet,
			target: "https://app.example.com/fonts/inter.woff2",
			want:   strategy.CacheFirst,
		},
		{
			name:   "favicon is cache-first",
			method: http.MethodGet,
			target: "https://app.example.com/favicon.ico",
			want:   strategy.CacheFirst,
		},
		{
			name:   "navigation is stale-while-revalidate",
			method: http.MethodGet,
			target: "https://app.example.com/cases/42",
			want:   strategy.StaleWhileRevalidate,
		},
		{
			name:   "root navigation is stale-while-revalidate",
			method: http.MethodGet,
			target: "https://app.example.com/",
			want:   strategy.StaleWhileRevalidate,
		},
		{
			name:   "relative navigation is same-origin",
			method: http.MethodGet,
			target: "/dashboard",
			want:   strategy.StaleWhileRevalidate,
		},
		{
			name:   "api rule wins over extension rule",
			method: http.MethodGet,
			target: "https://app.example.com/api/export.css",
			want:   strategy.NetworkFirst,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.method, mustParse(t, tt.target))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsImage(t *testing.T) {
	tests := []struct {
		name   string
		dest   string
		target string
		want   bool
	}{
		{"sec-fetch-dest image", "image", "/avatar", true},
		{"sec-fetch-dest document", "document", "/photo.png", false},
		{"no hint with image extension", "", "/photo.png", true},
		{"no hint without image extension", "", "/cases/42", false},
		{"no hint with script extension", "", "/app.js", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.dest != "" {
				header.Set("Sec-Fetch-Dest", tt.dest)
			}
			assert.Equal(t, tt.want, strategy.IsImage(header, mustParse(t, tt.target)))
		})
	}
}

func TestStrategy_String(t *testing.T) {
	assert.Equal(t, "pass-through", strategy.PassThrough.String())
	assert.Equal(t, "network-first", strategy.NetworkFirst.String())
	assert.Equal(t, "cache-first", strategy.CacheFirst.String())
	assert.Equal(t, "stale-while-revalidate", strategy.StaleWhileRevalidate.String())
}
