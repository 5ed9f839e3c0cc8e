package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Content source
	ContentURL  string `long:"content-url" env:"CONTENT_URL" description:"GraphQL endpoint of the content source"`
	AccessToken string `long:"access-token" env:"CONTENT_ACCESS_TOKEN" description:"Access token for the content source"`
	SourceFile  string `long:"source-file" env:"SOURCE_FILE" description:"Read content from a JSON dump instead of the remote source"`
	ProfilePath string `long:"profile" env:"PROFILE" description:"Pipeline profile YAML file (built-in profile when empty)"`

	// Fetching
	FetchPageSize int           `long:"fetch-page-size" env:"FETCH_PAGE_SIZE" default:"1000" description:"Records requested per collection and page"`
	FetchDelay    time.Duration `long:"fetch-delay" env:"FETCH_DELAY" default:"100ms" description:"Delay between page requests"`

	// Output
	OutputDir string `long:"output-dir" env:"OUTPUT_DIR" default:"./data" description:"Directory receiving the generated artifacts"`
	Format    string `long:"format" env:"OUTPUT_FORMAT" default:"json" choice:"json" choice:"yaml" description:"Artifact encoding"`

	// Cache
	CacheBackend string        `long:"cache" env:"CACHE_BACKEND" default:"memory" choice:"none" choice:"memory" choice:"sqlite" choice:"redis" description:"Content snapshot cache backend"`
	CachePath    string        `long:"cache-path" env:"CACHE_PATH" default:"./tmp/cache.db" description:"SQLite cache database path"`
	RedisAddr    string        `long:"redis-addr" env:"REDIS_ADDR" default:"localhost:6379" description:"Redis address for the redis cache backend"`
	CacheTTL     time.Duration `long:"cache-ttl" env:"CACHE_TTL" default:"5m" description:"Lifetime of the cached content snapshot"`

	// Serve mode
	Serve           bool          `long:"serve" env:"SERVE" description:"Keep running and serve artifacts over HTTP"`
	Port            string        `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey    string        `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	RebuildInterval time.Duration `long:"rebuild-interval" env:"REBUILD_INTERVAL" default:"0s" description:"Periodic rebuild interval in serve mode (0 disables)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Kona/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone used for date-partitioned paths (e.g., UTC, America/Denver)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load reads .env (when present), environment variables and command-line flags.
// It returns nil, nil when help was requested.
func Load() (*Cfg, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return Parse(os.Args[1:])
}

func Parse(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		ContentURL:      raw.ContentURL,
		AccessToken:     raw.AccessToken,
		SourceFile:      raw.SourceFile,
		ProfilePath:     raw.ProfilePath,
		FetchPageSize:   raw.FetchPageSize,
		FetchDelay:      raw.FetchDelay,
		OutputDir:       raw.OutputDir,
		Format:          raw.Format,
		CacheBackend:    raw.CacheBackend,
		CachePath:       raw.CachePath,
		RedisAddr:       raw.RedisAddr,
		CacheTTL:        raw.CacheTTL,
		Serve:           raw.Serve,
		Port:            raw.Port,
		APIAccessKey:    raw.APIAccessKey,
		RebuildInterval: raw.RebuildInterval,
		UserAgent:       raw.UserAgent,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	cfg.Location = loadLocation(cfg.Timezone)

	return cfg, nil
}

func validate(cfg *Cfg) error {
	if cfg.ContentURL == "" && cfg.SourceFile == "" {
		return fmt.Errorf("either --content-url or --source-file is required")
	}
	if cfg.FetchPageSize <= 0 {
		return fmt.Errorf("fetch page size must be positive, got %d", cfg.FetchPageSize)
	}
	if cfg.FetchDelay < 0 {
		return fmt.Errorf("fetch delay must be non-negative")
	}
	if cfg.CacheBackend != "none" && cfg.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %v (use --cache=none to disable caching)", cfg.CacheTTL)
	}
	if cfg.RebuildInterval < 0 {
		return fmt.Errorf("rebuild interval must be non-negative")
	}
	return nil
}

func loadLocation(timezone string) *time.Location {
	if timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		slog.Warn("Invalid timezone, using UTC", "timezone", timezone, "error", err)
		return time.UTC
	}
	return loc
}
