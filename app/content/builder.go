package content

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gesteves/kona/app/metrics"
	"github.com/gesteves/kona/app/source"
)

var (
	ErrMissingSite       = errors.New("no site record found")
	ErrMultipleHomePages = errors.New("more than one published home page")
)

type Options struct {
	// Strict makes unclassifiable entries fail the build instead of being
	// skipped.
	Strict   bool
	Location *time.Location
	Now      func() time.Time
	Recorder metrics.Recorder
}

// Builder turns one fetched snapshot of raw records into the site graph.
type Builder struct {
	strict     bool
	now        func() time.Time
	recorder   metrics.Recorder
	classifier *Classifier
	resolver   *Resolver
}

func NewBuilder(opts Options) *Builder {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	recorder := metrics.OrNoop(opts.Recorder)
	return &Builder{
		strict:     opts.Strict,
		now:        now,
		recorder:   recorder,
		classifier: NewClassifier(now, recorder),
		resolver:   NewResolver(opts.Location),
	}
}

func (b *Builder) Build(raw *source.Page) (*Content, error) {
	if raw == nil {
		raw = &source.Page{}
	}

	entries, err := b.entries(raw.Articles, KindUnset)
	if err != nil {
		return nil, err
	}
	pages, err := b.entries(raw.Pages, KindPage)
	if err != nil {
		return nil, err
	}
	if err := checkHomePage(pages); err != nil {
		return nil, err
	}

	if len(raw.Sites) == 0 {
		return nil, ErrMissingSite
	}
	if len(raw.Sites) > 1 {
		slog.Warn("Multiple site records found, using the first", "count", len(raw.Sites), "id", raw.Sites[0].Sys.ID)
	}
	site := normalizeSite(raw.Sites[0])

	entries = SortEntries(entries)
	pages = SortEntries(pages)

	listing, err := Paginate(entries, site.EntriesPerPage)
	if err != nil {
		return nil, fmt.Errorf("failed to paginate entries: %w", err)
	}

	c := &Content{
		Entries:     entries,
		Pages:       pages,
		Listing:     listing,
		Tags:        AggregateTags(entries),
		Site:        site,
		Redirects:   normalizeRedirects(raw.Redirects),
		Assets:      normalizeAssets(raw.Assets),
		Events:      normalizeEvents(raw.Events),
		GeneratedAt: b.now().UTC(),
	}

	slog.Info("Content built",
		"entries", len(c.Entries),
		"pages", len(c.Pages),
		"listing_pages", len(c.Listing),
		"tags", len(c.Tags))

	return c, nil
}

func (b *Builder) entries(raw []source.RawEntry, forced Kind) ([]Entry, error) {
	out := make([]Entry, 0, len(raw))
	for _, r := range raw {
		e := Summarize(b.classifier.Classify(r, forced))
		e, err := b.resolver.Resolve(e)
		if err != nil {
			var ue *UnclassifiableError
			if b.strict || !errors.As(err, &ue) {
				return nil, err
			}
			b.recorder.IncRejectedEntry("unclassifiable")
			slog.Warn("Skipping entry", "id", ue.ID, "error", err)
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func checkHomePage(pages []Entry) error {
	var ids []string
	for _, p := range pages {
		if p.IsHomePage && !p.IsDraft {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) > 1 {
		return fmt.Errorf("%w: %s", ErrMultipleHomePages, strings.Join(ids, ", "))
	}
	return nil
}
