package config

import (
	"net/url"
	"time"
)

func (c Config) AppName() string {
	return c.appName
}

func (c Config) VersionTag() string {
	return c.versionTag
}

func (c Config) Origin() url.URL {
	return c.origin
}

func (c Config) ListenAddr() string {
	return c.listenAddr
}

func (c Config) APIPrefix() string {
	return c.apiPrefix
}

func (c Config) StaticAssets() []string {
	return append([]string(nil), c.staticAssets...)
}

func (c Config) OfflineImagePath() string {
	return c.offlineImagePath
}

func (c Config) CacheDir() string {
	return c.cacheDir
}

func (c Config) FetchTimeout() time.Duration {
	return c.fetchTimeout
}

func (c Config) RevalidateInterval() time.Duration {
	return c.revalidateInterval
}

func (c Config) MaxQueuedActions() int {
	return c.maxQueuedActions
}

func (c Config) ReplayMaxAttempts() int {
	return c.replayMaxAttempts
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

//===============
// Builders
//===============

func (c Config) WithAppName(appName string) Config {
	c.appName = appName
	return c
}

func (c Config) WithVersionTag(versionTag string) Config {
	c.versionTag = versionTag
	return c
}

func (c Config) WithListenAddr(listenAddr string) Config {
	c.listenAddr = listenAddr
	return c
}

func (c Config) WithAPIPrefix(apiPrefix string) Config {
	c.apiPrefix = apiPrefix
	return c
}

func (c Config) WithStaticAssets(staticAssets []string) Config {
	c.staticAssets = append([]string(nil), staticAssets...)
	return c
}

func (c Config) WithOfflineImagePath(offlineImagePath string) Config {
	c.offlineImagePath = offlineImagePath
	return c
}

func (c Config) WithCacheDir(cacheDir string) Config {
	c.cacheDir = cacheDir
	return c
}

func (c Config) WithFetchTimeout(fetchTimeout time.Duration) Config {
	c.fetchTimeout = fetchTimeout
	return c
}

func (c Config) WithRevalidateInterval(revalidateInterval time.Duration) Config {
	c.revalidateInterval = revalidateInterval
	return c
}

func (c Config) WithMaxQueuedActions(maxQueuedActions int) Config {
	c.maxQueuedActions = maxQueuedActions
	return c
}

func (c Config) WithReplayMaxAttempts(replayMaxAttempts int) Config {
	c.replayMaxAttempts = replayMaxAttempts
	return c
}

func (c Config) WithRandomSeed(randomSeed int64) Config {
	c.randomSeed = randomSeed
	return c
}
