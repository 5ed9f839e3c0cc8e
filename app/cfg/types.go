package cfg

import "time"

type Cfg struct {
	// Content source
	ContentURL  string
	AccessToken string
	SourceFile  string
	ProfilePath string

	// Fetching
	FetchPageSize int
	FetchDelay    time.Duration

	// Output
	OutputDir string
	Format    string

	// Cache
	CacheBackend string
	CachePath    string
	RedisAddr    string
	CacheTTL     time.Duration

	// Serve mode
	Serve           bool
	Port            string
	APIAccessKey    string
	RebuildInterval time.Duration

	// Application metadata
	UserAgent string
	Timezone  string
	Location  *time.Location
	Debug     bool
	Version   string
}
