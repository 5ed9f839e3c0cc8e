package sink

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/gesteves/kona/app/content"
)

func allArtifacts() map[string]string {
	m := map[string]string{}
	for _, name := range ArtifactNames {
		m[name] = name
	}
	return m
}

func sampleContent() *content.Content {
	published := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	v := 3
	entry := content.Entry{
		ID:               "1",
		Title:            "Hello & welcome",
		Slug:             "x",
		Summary:          "First post",
		Tags:             []content.TagRef{{ID: "go", Name: "Go"}},
		PublishedVersion: &v,
		Kind:             content.KindArticle,
		PublishedAt:      published,
		UpdatedAt:        published,
		Path:             "/2024/01/01/x/index.html",
		Template:         content.TemplateArticle,
	}
	draft := content.Entry{
		ID:       "2",
		Title:    "Draft",
		Kind:     content.KindShort,
		IsDraft:  true,
		Path:     "/id/2/index.html",
		Template: content.TemplateShort,
	}
	return &content.Content{
		Entries: []content.Entry{entry, draft},
		Pages:   []content.Entry{},
		Listing: []content.ListingPage{{
			CurrentPage: 1, Items: []content.Entry{entry}, Path: "/blog/index.html",
			Template: content.TemplateListing, IndexInSearchEngines: true,
		}},
		Tags: []content.Tag{{ID: "go", Name: "Go", Items: []content.Entry{entry}, Path: "/tagged/go/index.html", Template: content.TemplateListing}},
		Site: content.Site{
			Title: "Kona", URL: "https://example.com", EntriesPerPage: 10,
			Author: &content.Author{Name: "Guillermo", Email: "g@example.com"},
		},
		Redirects:   []content.Redirect{{From: "/old", To: "/new", Status: 301}},
		Assets:      []content.Asset{},
		Events:      []content.Event{},
		GeneratedAt: published,
	}
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	s, err := New(Options{Dir: dir, Format: FormatJSON, Artifacts: allArtifacts()})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Write(context.Background(), sampleContent()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	for _, name := range ArtifactNames {
		if _, err := os.Stat(s.Path(name)); err != nil {
			t.Errorf("Expected artifact %s to exist: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "entries.json"))
	if err != nil {
		t.Fatal(err)
	}
	var entries []content.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("Expected valid JSON, got: %v", err)
	}
	if len(entries) != 2 || entries[0].Path != "/2024/01/01/x/index.html" {
		t.Errorf("Unexpected entries artifact: %+v", entries)
	}

	var listing []map[string]any
	data, _ = os.ReadFile(filepath.Join(dir, "listing.json"))
	if err := json.Unmarshal(data, &listing); err != nil {
		t.Fatal(err)
	}
	if listing[0]["previous_page"] != nil || listing[0]["next_page"] != nil {
		t.Errorf("Expected null previous/next on a single page, got %v", listing[0])
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, ".*.tmp"))
	if len(leftovers) > 0 {
		t.Errorf("Expected no temp files left behind, got %v", leftovers)
	}
}

func TestWriteYAML(t *testing.T) {
	dir := t.TempDir()
	s, err := New(Options{Dir: dir, Format: FormatYAML, Artifacts: map[string]string{"site": "site", "redirects": "redirects"}})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Write(context.Background(), sampleContent()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "site.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var site content.Site
	if err := yaml.Unmarshal(data, &site); err != nil {
		t.Fatalf("Expected valid YAML, got: %v", err)
	}
	if site.Title != "Kona" || site.EntriesPerPage != 10 {
		t.Errorf("Unexpected site artifact: %+v", site)
	}

	if _, err := os.Stat(filepath.Join(dir, "entries.yaml")); !os.IsNotExist(err) {
		t.Error("Expected disabled artifact not to be written")
	}
}

func TestWriteOverwritesWithoutMerge(t *testing.T) {
	dir := t.TempDir()
	s, _ := New(Options{Dir: dir, Artifacts: map[string]string{"redirects": "redirects"}})
	c := sampleContent()

	if err := s.Write(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	c.Redirects = []content.Redirect{}
	if err := s.Write(context.Background(), c); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "redirects.json"))
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("Expected redirects to be replaced, got %s", data)
	}
}

func TestWritePartialFailure(t *testing.T) {
	dir := t.TempDir()
	// A non-empty directory in place of the artifact makes the rename fail.
	blocker := filepath.Join(dir, "tags.json")
	if err := os.MkdirAll(filepath.Join(blocker, "keep"), 0755); err != nil {
		t.Fatal(err)
	}

	s, _ := New(Options{Dir: dir, Artifacts: allArtifacts()})
	err := s.Write(context.Background(), sampleContent())

	var werr *WriteError
	if !errors.As(err, &werr) {
		t.Fatalf("Expected WriteError, got %v", err)
	}
	if len(werr.Failed) != 1 || werr.Failed[0] != "tags" {
		t.Errorf("Expected only tags to fail, got %v", werr.Failed)
	}
	for _, name := range []string{"entries", "site", "events", "feed"} {
		if _, err := os.Stat(s.Path(name)); err != nil {
			t.Errorf("Expected %s to be written despite the failure: %v", name, err)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Dir: t.TempDir(), Format: "toml"}); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestFeedArtifact(t *testing.T) {
	dir := t.TempDir()
	s, _ := New(Options{
		Dir:       dir,
		Artifacts: map[string]string{"feed": "feed"},
		Feed:      NewFeedGenerator(10, "Kona/test"),
	})
	if err := s.Write(context.Background(), sampleContent()); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "feed.xml"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	feed, err := gofeed.NewParser().Parse(f)
	if err != nil {
		t.Fatalf("Expected a parseable feed, got: %v", err)
	}
	if feed.Title != "Kona" || feed.Generator != "Kona/test" {
		t.Errorf("Unexpected channel: title=%q generator=%q", feed.Title, feed.Generator)
	}
	if len(feed.Items) != 1 {
		t.Fatalf("Expected only the published entry, got %d items", len(feed.Items))
	}

	item := feed.Items[0]
	if item.Title != "Hello & welcome" {
		t.Errorf("Expected unescaped title, got %q", item.Title)
	}
	if item.Link != "https://example.com/2024/01/01/x/" {
		t.Errorf("Unexpected item link %q", item.Link)
	}
	if item.Description != "First post" {
		t.Errorf("Expected summary as description, got %q", item.Description)
	}
	if len(item.Categories) != 1 || item.Categories[0] != "Go" {
		t.Errorf("Expected Go category, got %v", item.Categories)
	}
	if item.PublishedParsed == nil || !item.PublishedParsed.Equal(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected pubDate %v", item.PublishedParsed)
	}
}

func TestFeedSizeLimit(t *testing.T) {
	c := sampleContent()
	for i := 0; i < 5; i++ {
		c.Entries = append(c.Entries, c.Entries[0])
	}

	feed, err := gofeed.NewParser().ParseString(string(NewFeedGenerator(3, "Kona").Run(c)))
	if err != nil {
		t.Fatal(err)
	}
	if len(feed.Items) != 3 {
		t.Errorf("Expected 3 items, got %d", len(feed.Items))
	}
}
