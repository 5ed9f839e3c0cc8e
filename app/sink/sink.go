package sink

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/gesteves/kona/app/content"
	"github.com/gesteves/kona/app/metrics"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ArtifactNames lists every artifact the sink can produce, in write order.
var ArtifactNames = []string{"entries", "pages", "listing", "tags", "site", "redirects", "assets", "events", "feed"}

// WriteError reports the artifacts that could not be written. Artifacts not
// listed were written successfully.
type WriteError struct {
	Failed []string
	Errs   map[string]error
}

func (e *WriteError) Error() string {
	parts := make([]string, 0, len(e.Failed))
	for _, name := range e.Failed {
		parts = append(parts, fmt.Sprintf("%s: %v", name, e.Errs[name]))
	}
	return fmt.Sprintf("failed to write %d artifact(s): %s", len(e.Failed), strings.Join(parts, "; "))
}

type Options struct {
	Dir    string
	Format string
	// Artifacts maps artifact names to file names without extension; names
	// missing or mapped to "" are not written.
	Artifacts map[string]string
	Feed      *FeedGenerator
	Recorder  metrics.Recorder
}

// Sink is the only writer of the output directory.
type Sink struct {
	dir       string
	format    string
	artifacts map[string]string
	feed      *FeedGenerator
	recorder  metrics.Recorder
}

func New(opts Options) (*Sink, error) {
	switch opts.Format {
	case FormatJSON, FormatYAML:
	case "":
		opts.Format = FormatJSON
	default:
		return nil, fmt.Errorf("unsupported output format %q", opts.Format)
	}
	if opts.Dir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	feed := opts.Feed
	if feed == nil {
		feed = NewFeedGenerator(20, "Kona")
	}
	return &Sink{
		dir:       opts.Dir,
		format:    opts.Format,
		artifacts: opts.Artifacts,
		feed:      feed,
		recorder:  metrics.OrNoop(opts.Recorder),
	}, nil
}

// Write serializes each enabled artifact and atomically replaces its file.
// A failing artifact does not stop the others; the failures are returned as
// a *WriteError.
func (s *Sink) Write(ctx context.Context, c *content.Content) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to write artifacts: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	werr := &WriteError{Errs: map[string]error{}}
	written := 0
	for _, name := range ArtifactNames {
		file := s.artifacts[name]
		if file == "" {
			continue
		}

		path, err := s.writeArtifact(c, name, file)
		s.recorder.IncArtifactWrite(name, err == nil)
		if err != nil {
			slog.Error("Failed to write artifact", "artifact", name, "error", err)
			werr.Failed = append(werr.Failed, name)
			werr.Errs[name] = err
			continue
		}
		written++
		slog.Debug("Wrote artifact", "artifact", name, "path", path)
	}

	slog.Info("Artifacts written", "dir", s.dir, "written", written, "failed", len(werr.Failed))
	if len(werr.Failed) > 0 {
		return werr
	}
	return nil
}

// Path returns the file an artifact is written to, or "" when disabled.
func (s *Sink) Path(name string) string {
	file := s.artifacts[name]
	if file == "" {
		return ""
	}
	return filepath.Join(s.dir, file+s.extension(name))
}

func (s *Sink) Format() string {
	return s.format
}

func (s *Sink) writeArtifact(c *content.Content, name, file string) (string, error) {
	data, err := s.encode(c, name)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, file+s.extension(name))
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Sink) extension(name string) string {
	if name == "feed" {
		return ".xml"
	}
	if s.format == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

func (s *Sink) encode(c *content.Content, name string) ([]byte, error) {
	if name == "feed" {
		return s.feed.Run(c), nil
	}

	v, ok := Collection(c, name)
	if !ok {
		return nil, fmt.Errorf("unknown artifact %q", name)
	}

	var (
		data []byte
		err  error
	)
	if s.format == FormatYAML {
		data, err = yaml.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return data, nil
}

// Collection returns the top-level collection of c that backs the named
// artifact.
func Collection(c *content.Content, name string) (any, bool) {
	switch name {
	case "entries":
		return c.Entries, true
	case "pages":
		return c.Pages, true
	case "listing":
		return c.Listing, true
	case "tags":
		return c.Tags, true
	case "site":
		return c.Site, true
	case "redirects":
		return c.Redirects, true
	case "assets":
		return c.Assets, true
	case "events":
		return c.Events, true
	}
	return nil, false
}

// writeFileAtomic writes data to a temp file in the target directory,
// syncs it and renames it over path, so readers see the old or the new
// file and never a partial one.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	tmpName = ""
	return nil
}
