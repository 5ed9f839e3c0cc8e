package profile

// Collection selects whether a source collection is fetched and which
// GraphQL fields are queried for it.
type Collection struct {
	Enabled bool     `yaml:"enabled"`
	Fields  []string `yaml:"fields"`
}

// Profile parameterizes one pipeline: what to fetch, how strictly to build
// and which artifacts to emit under which file names.
type Profile struct {
	Name     string `yaml:"name"`
	Strict   bool   `yaml:"strict"`
	Preview  bool   `yaml:"preview"`
	FeedSize int    `yaml:"feed_size"`

	Collections map[string]Collection `yaml:"collections"`
	// Artifacts maps an artifact name (entries, pages, listing, tags, site,
	// redirects, assets, events, feed) to its output file name without
	// extension. An empty file name disables the artifact.
	Artifacts map[string]string `yaml:"artifacts"`
}
