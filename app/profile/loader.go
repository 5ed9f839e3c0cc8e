package profile

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gesteves/kona/app/sink"
	"github.com/gesteves/kona/app/source"
)

const DefaultFeedSize = 20

var entryFields = []string{
	"title", "slug", "intro", "body", "summary", "published",
	"author { name email url }", "indexInSearchEngines",
}

// Default returns the built-in profile covering a standard site.
func Default() *Profile {
	artifacts := make(map[string]string, len(sink.ArtifactNames))
	for _, name := range sink.ArtifactNames {
		artifacts[name] = name
	}

	return &Profile{
		Name:     "default",
		Preview:  true,
		FeedSize: DefaultFeedSize,
		Collections: map[string]Collection{
			string(source.Articles): {Enabled: true, Fields: entryFields},
			string(source.Pages):    {Enabled: true, Fields: append(append([]string{}, entryFields...), "isHomePage")},
			string(source.Assets): {Enabled: true, Fields: []string{
				"title", "description", "url", "contentType", "width", "height",
			}},
			string(source.Redirects): {Enabled: true, Fields: []string{"from", "to", "status"}},
			string(source.Events): {Enabled: true, Fields: []string{
				"title", "date", "location", "url",
			}},
			string(source.Sites): {Enabled: true, Fields: []string{
				"title", "metaTitle", "metaDescription", "url", "entriesPerPage",
				"author { name email url }",
				"logo { sys { id } title url contentType width height }",
				"openGraphImage { sys { id } title url contentType width height }",
				"navigationCollection { items { title url } }",
				"footerCollection { items { title url } }",
				"socialCollection { items { title url icon } }",
			}},
		},
		Artifacts: artifacts,
	}
}

// Load reads a YAML profile from path on top of the defaults: keys the file
// omits keep their default value. An empty path returns the defaults.
func Load(path string) (*Profile, error) {
	p := Default()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	p.fillFields(Default())

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", path, err)
	}

	slog.Info("Loaded profile", "name", p.Name, "path", path)
	return p, nil
}

// fillFields restores the default field selection of collections the
// profile lists without fields.
func (p *Profile) fillFields(defaults *Profile) {
	for name, c := range p.Collections {
		if len(c.Fields) == 0 {
			c.Fields = defaults.Collections[name].Fields
			p.Collections[name] = c
		}
	}
}

// Validate checks collection and artifact names and file names.
func (p *Profile) Validate() error {
	for name := range p.Collections {
		if !source.Collection(name).Valid() {
			return fmt.Errorf("unknown collection %q", name)
		}
	}
	if site, ok := p.Collections[string(source.Sites)]; !ok || !site.Enabled {
		return fmt.Errorf("the %s collection must be enabled", source.Sites)
	}

	known := make(map[string]bool, len(sink.ArtifactNames))
	for _, name := range sink.ArtifactNames {
		known[name] = true
	}
	for name, file := range p.Artifacts {
		if !known[name] {
			return fmt.Errorf("unknown artifact %q", name)
		}
		if strings.ContainsAny(file, `/\`) || file == "." || file == ".." {
			return fmt.Errorf("artifact %s: invalid file name %q", name, file)
		}
	}

	if p.FeedSize < 0 {
		return fmt.Errorf("feed size must be non-negative")
	}
	return nil
}

// EnabledCollections returns the enabled collections in fetch order.
func (p *Profile) EnabledCollections() []source.Collection {
	var out []source.Collection
	for _, c := range source.AllCollections {
		if p.Collections[string(c)].Enabled {
			out = append(out, c)
		}
	}
	return out
}

// Fields returns the query field selection per enabled collection.
func (p *Profile) Fields() map[source.Collection][]string {
	out := make(map[source.Collection][]string, len(p.Collections))
	for _, c := range p.EnabledCollections() {
		out[c] = p.Collections[string(c)].Fields
	}
	return out
}
