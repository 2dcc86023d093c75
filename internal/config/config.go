package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	//===============
	//  Identity
	//===============
	// Application name embedded in partition names
	appName string
	// Deploy version tag embedded in partition names; bumping it orphans
	// the previous generation's partitions
	versionTag string

	//===============
	// Interception scope
	//===============
	// Origin server whose traffic is intercepted. Anything cross-origin
	// passes through untouched
	origin url.URL
	// Address the interception layer listens on
	listenAddr string
	// Path prefix routed with the network-first strategy
	apiPrefix string

	//===============
	// App shell
	//===============
	// Fixed asset manifest precached during install, all-or-nothing
	staticAssets []string
	// Placeholder served for failed image requests under cache-first
	offlineImagePath string

	//===============
	// Storage
	//===============
	// Directory for the disk-backed partition store; empty keeps
	// partitions in memory
	cacheDir string

	//===============
	// Fetch
	//===============
	// Per-request timeout for origin fetches; zero disables the timeout
	fetchTimeout time.Duration

	//===============
	// Revalidation
	//===============
	// Minimum interval between background refreshes of the same entry;
	// zero disables throttling
	revalidateInterval time.Duration

	//===============
	// Replay
	//===============
	// Maximum number of offline-recorded actions held for replay
	maxQueuedActions int
	// Maximum attempts when flushing a queued action
	replayMaxAttempts int
	// Controls the jitter applied between replay attempts
	randomSeed int64
}

// envConfig is the environment surface, parsed with caarlos0/env and then
// folded into Config.
type envConfig struct {
	AppName            string        `env:"SHELLCACHE_APP_NAME"`
	VersionTag         string        `env:"SHELLCACHE_VERSION_TAG"`
	Origin             string        `env:"SHELLCACHE_ORIGIN"`
	ListenAddr         string        `env:"SHELLCACHE_LISTEN_ADDR"`
	APIPrefix          string        `env:"SHELLCACHE_API_PREFIX"`
	CacheDir           string        `env:"SHELLCACHE_CACHE_DIR"`
	FetchTimeout       time.Duration `env:"SHELLCACHE_FETCH_TIMEOUT"`
	RevalidateInterval time.Duration `env:"SHELLCACHE_REVALIDATE_INTERVAL"`
}

// fileConfig is the JSON config-file surface.
type fileConfig struct {
	AppName            string   `json:"appName"`
	VersionTag         string   `json:"versionTag"`
	Origin             string   `json:"origin"`
	ListenAddr         string   `json:"listenAddr"`
	APIPrefix          string   `json:"apiPrefix"`
	StaticAssets       []string `json:"staticAssets"`
	OfflineImagePath   string   `json:"offlineImagePath"`
	CacheDir           string   `json:"cacheDir"`
	FetchTimeout       string   `json:"fetchTimeout"`
	RevalidateInterval string   `json:"revalidateInterval"`
	MaxQueuedActions   int      `json:"maxQueuedActions"`
	ReplayMaxAttempts  int      `json:"replayMaxAttempts"`
	RandomSeed         int64    `json:"randomSeed"`
}

// DefaultStaticAssets is the app-shell manifest: root document, index
// document, web manifest, favicon, touch icon, the two sized app icons, and
// the offline image placeholder.
var DefaultStaticAssets = []string{
	"/",
	"/index.html",
	"/manifest.json",
	"/favicon.ico",
	"/apple-touch-icon.png",
	"/icons/icon-192.png",
	"/icons/icon-512.png",
	"/images/offline.png",
}

// WithDefault builds a config with sensible defaults for the given origin.
func WithDefault(origin url.URL) Config {
	return Config{
		appName:            "lexsim",
		versionTag:         "v1",
		origin:             origin,
		listenAddr:         ":8787",
		apiPrefix:          "/api/",
		staticAssets:       append([]string(nil), DefaultStaticAssets...),
		offlineImagePath:   "/images/offline.png",
		cacheDir:           "",
		fetchTimeout:       0,
		revalidateInterval: 0,
		maxQueuedActions:   64,
		replayMaxAttempts:  3,
		randomSeed:         0,
	}
}

// WithEnv overlays environment variables onto the config.
func (c Config) WithEnv() (Config, error) {
	var parsed envConfig
	if err := env.Parse(&parsed); err != nil {
		return c, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if parsed.AppName != "" {
		c.appName = parsed.AppName
	}
	if parsed.VersionTag != "" {
		c.versionTag = parsed.VersionTag
	}
	if parsed.Origin != "" {
		originURL, err := url.Parse(parsed.Origin)
		if err != nil {
			return c, fmt.Errorf("%w: origin: %v", ErrInvalidConfig, err)
		}
		c.origin = *originURL
	}
	if parsed.ListenAddr != "" {
		c.listenAddr = parsed.ListenAddr
	}
	if parsed.APIPrefix != "" {
		c.apiPrefix = parsed.APIPrefix
	}
	if parsed.CacheDir != "" {
		c.cacheDir = parsed.CacheDir
	}
	if parsed.FetchTimeout > 0 {
		c.fetchTimeout = parsed.FetchTimeout
	}
	if parsed.RevalidateInterval > 0 {
		c.revalidateInterval = parsed.RevalidateInterval
	}
	return c, nil
}

// WithConfigFile reads a JSON config file, starting from defaults.
func WithConfigFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: read %s: %v", ErrInvalidConfig, path, err)
	}

	var parsed fileConfig
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Config{}, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
	}
	if parsed.Origin == "" {
		return Config{}, fmt.Errorf("%w: origin is required", ErrInvalidConfig)
	}
	originURL, err := url.Parse(parsed.Origin)
	if err != nil {
		return Config{}, fmt.Errorf("%w: origin: %v", ErrInvalidConfig, err)
	}

	cfg := WithDefault(*originURL)
	if parsed.AppName != "" {
		cfg.appName = parsed.AppName
	}
	if parsed.VersionTag != "" {
		cfg.versionTag = parsed.VersionTag
	}
	if parsed.ListenAddr != "" {
		cfg.listenAddr = parsed.ListenAddr
	}
	if parsed.APIPrefix != "" {
		cfg.apiPrefix = parsed.APIPrefix
	}
	if len(parsed.StaticAssets) > 0 {
		cfg.staticAssets = parsed.StaticAssets
	}
	if parsed.OfflineImagePath != "" {
		cfg.offlineImagePath = parsed.OfflineImagePath
	}
	if parsed.CacheDir != "" {
		cfg.cacheDir = parsed.CacheDir
	}
	if parsed.FetchTimeout != "" {
		d, err := time.ParseDuration(parsed.FetchTimeout)
		if err != nil {
			return Config{}, fmt.Errorf("%w: fetchTimeout: %v", ErrInvalidConfig, err)
		}
		cfg.fetchTimeout = d
	}
	if parsed.RevalidateInterval != "" {
		d, err := time.ParseDuration(parsed.RevalidateInterval)
		if err != nil {
			return Config{}, fmt.Errorf("%w: revalidateInterval: %v", ErrInvalidConfig, err)
		}
		cfg.revalidateInterval = d
	}
	if parsed.MaxQueuedActions > 0 {
		cfg.maxQueuedActions = parsed.MaxQueuedActions
	}
	if parsed.ReplayMaxAttempts > 0 {
		cfg.replayMaxAttempts = parsed.ReplayMaxAttempts
	}
	if parsed.RandomSeed != 0 {
		cfg.randomSeed = parsed.RandomSeed
	}
	return cfg, nil
}
