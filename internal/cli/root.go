package cmd

import (
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rohmanhakim/shell-cache/internal/build"
	"github.com/rohmanhakim/shell-cache/internal/config"
	"github.com/rohmanhakim/shell-cache/internal/manager"
	"github.com/rohmanhakim/shell-cache/internal/metadata"
	"github.com/rohmanhakim/shell-cache/internal/server"
)

var (
	cfgFile            string
	originURL          string
	appName            string
	versionTag         string
	listenAddr         string
	apiPrefix          string
	staticAssets       []string
	offlineImagePath   string
	cacheDir           string
	fetchTimeout       time.Duration
	revalidateInterval time.Duration
	verbose            bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "swcached",
	Version: build.FullVersion(),
	Short:   "An interception caching layer for the LexSim app shell.",
	Long: `swcached sits between clients and the LexSim origin server and applies
per-request caching strategies: API reads are network-first with a cache
fallback, static assets are cache-first, and navigations are served stale
while a background refresh keeps them warm.

On startup it precaches the app-shell asset manifest as one atomic batch and
sweeps cache partitions left behind by previous deploy versions.

Mutations that fail while the origin is unreachable are queued; POST /-/replay/flush
replays them once connectivity returns. POST /-/push delivers a push payload
to the notification handler.`,
	Run: func(cmd *cobra.Command, args []string) {
		if originURL == "" && cfgFile == "" {
			fmt.Fprintf(os.Stderr, "Error: --origin is required. Please provide the origin server to intercept.\n")
			cmd.Usage()
			os.Exit(1)
		}

		cfg := InitConfig()

		logger, err := newLogger()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		defer logger.Sync()

		m, buildErr := manager.FromConfig(cfg, nil, metadata.NewZapSink(logger), logger)
		if buildErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", buildErr)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := server.Run(ctx, m, cfg.ListenAddr(), logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	rootCmd.PersistentFlags().StringVar(&originURL, "origin", "", "origin server whose traffic is intercepted")
	rootCmd.PersistentFlags().StringVar(&appName, "app-name", "", "application name embedded in partition names")
	rootCmd.PersistentFlags().StringVar(&versionTag, "version-tag", "", "deploy version tag; bumping it orphans older partitions")
	rootCmd.PersistentFlags().StringVar(&listenAddr, "listen-addr", "", "address to listen on")
	rootCmd.PersistentFlags().StringVar(&apiPrefix, "api-prefix", "", "path prefix routed network-first")
	rootCmd.PersistentFlags().StringArrayVar(&staticAssets, "static-asset", []string{}, "app-shell asset path to precache (can be repeated)")
	rootCmd.PersistentFlags().StringVar(&offlineImagePath, "offline-image", "", "placeholder path served for failed image requests")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "directory for disk-backed partitions (empty for in-memory)")
	rootCmd.PersistentFlags().DurationVar(&fetchTimeout, "fetch-timeout", 0, "timeout for origin fetches (0 for none)")
	rootCmd.PersistentFlags().DurationVar(&revalidateInterval, "revalidate-interval", 0, "minimum interval between background refreshes of the same entry")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug-level logging")
}

// InitConfig reads in config file and ENV variables if set.
func InitConfig() config.Config {
	cfg, err := InitConfigWithError()
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

// InitConfigWithError reads in config file and ENV variables if set, returning
// any errors. This makes it easier to test error cases.
func InitConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg.WithEnv()
	}

	if originURL == "" {
		return config.Config{}, fmt.Errorf("%w: origin cannot be empty", config.ErrInvalidConfig)
	}
	parsedOrigin, err := url.Parse(originURL)
	if err != nil {
		return config.Config{}, fmt.Errorf("%w: origin: %v", config.ErrInvalidConfig, err)
	}

	// Start with the default config and apply flag overrides using method chaining
	configBuilder := config.WithDefault(*parsedOrigin)

	if appName != "" {
		configBuilder = configBuilder.WithAppName(appName)
	}

	if versionTag != "" {
		configBuilder = configBuilder.WithVersionTag(versionTag)
	}

	if listenAddr != "" {
		configBuilder = configBuilder.WithListenAddr(listenAddr)
	}

	if apiPrefix != "" {
		configBuilder = configBuilder.WithAPIPrefix(apiPrefix)
	}

	if len(staticAssets) > 0 {
		configBuilder = configBuilder.WithStaticAssets(staticAssets)
	}

	if offlineImagePath != "" {
		configBuilder = configBuilder.WithOfflineImagePath(offlineImagePath)
	}

	if cacheDir != "" {
		configBuilder = configBuilder.WithCacheDir(cacheDir)
	}

	if fetchTimeout > 0 {
		configBuilder = configBuilder.WithFetchTimeout(fetchTimeout)
	}

	if revalidateInterval > 0 {
		configBuilder = configBuilder.WithRevalidateInterval(revalidateInterval)
	}

	return configBuilder.WithEnv()
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func ResetFlags() {
	cfgFile = ""
	originURL = ""
	appName = ""
	versionTag = ""
	listenAddr = ""
	apiPrefix = ""
	staticAssets = []string{}
	offlineImagePath = ""
	cacheDir = ""
	fetchTimeout = 0
	revalidateInterval = 0
	verbose = false
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetOriginForTest(origin string) {
	originURL = origin
}

func SetAppNameForTest(name string) {
	appName = name
}

func SetVersionTagForTest(tag string) {
	versionTag = tag
}

func SetListenAddrForTest(addr string) {
	listenAddr = addr
}

func SetAPIPrefixForTest(prefix string) {
	apiPrefix = prefix
}

func SetStaticAssetsForTest(assets []string) {
	staticAssets = assets
}

func SetOfflineImageForTest(path string) {
	offlineImagePath = path
}

func SetCacheDirForTest(dir string) {
	cacheDir = dir
}

func SetFetchTimeoutForTest(t time.Duration) {
	fetchTimeout = t
}

func SetRevalidateIntervalForTest(interval time.Duration) {
	revalidateInterval = interval
}
