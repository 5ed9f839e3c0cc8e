package content

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gesteves/kona/app/metrics"
	"github.com/gesteves/kona/app/source"
)

// Classifier turns raw source records into entries with kind, draft state
// and timestamps set. It never fails.
type Classifier struct {
	now      func() time.Time
	recorder metrics.Recorder
}

func NewClassifier(now func() time.Time, recorder metrics.Recorder) *Classifier {
	if now == nil {
		now = time.Now
	}
	return &Classifier{now: now, recorder: metrics.OrNoop(recorder)}
}

// Classify copies the source attributes of raw into a new Entry and derives
// its kind, draft flag and timestamps. A non-empty forced kind wins over the
// intro/body rule; without it an entry with neither an intro nor a body is
// left with KindUnset for the resolver to reject.
func (c *Classifier) Classify(raw source.RawEntry, forced Kind) Entry {
	e := Entry{
		ID:                   raw.Sys.ID,
		Title:                raw.Title,
		Slug:                 raw.Slug,
		Intro:                raw.Intro,
		Body:                 raw.Body,
		Summary:              raw.Summary,
		Tags:                 tagRefs(raw.Metadata.Tags),
		FirstPublishedAt:     utc(raw.Sys.FirstPublishedAt.Time),
		LastPublishedAt:      utc(raw.Sys.PublishedAt.Time),
		PublishedVersion:     copyInt(raw.Sys.PublishedVersion),
		IndexInSearchEngines: raw.IndexInSearchEngines,
		IsHomePage:           raw.IsHomePage,
	}
	if raw.Author != nil {
		e.Author = &Author{Name: raw.Author.Name, Email: raw.Author.Email, URL: raw.Author.URL}
	}

	e.Kind = kindOf(raw, forced)

	e.IsDraft = e.PublishedVersion == nil
	if e.IsDraft {
		e.IndexInSearchEngines = false
	}

	now := c.now().UTC()
	switch {
	case !raw.Published.IsZero():
		e.PublishedAt = utc(raw.Published.Time)
	case !e.FirstPublishedAt.IsZero():
		e.PublishedAt = e.FirstPublishedAt
	default:
		e.PublishedAt = now
		c.fallback(e.ID, "published_at")
	}
	if !e.LastPublishedAt.IsZero() {
		e.UpdatedAt = e.LastPublishedAt
	} else {
		e.UpdatedAt = now
		c.fallback(e.ID, "updated_at")
	}

	return e
}

func (c *Classifier) fallback(id, field string) {
	c.recorder.IncTimestampFallback(field)
	slog.Warn("Entry timestamp missing, using build time", "id", id, "field", field)
}

func kindOf(raw source.RawEntry, forced Kind) Kind {
	if forced != KindUnset {
		return forced
	}
	hasIntro := strings.TrimSpace(raw.Intro) != ""
	hasBody := strings.TrimSpace(raw.Body) != ""
	switch {
	case hasIntro && hasBody:
		return KindArticle
	case hasIntro:
		return KindShort
	default:
		return KindUnset
	}
}

func tagRefs(tags []source.Tag) []TagRef {
	refs := make([]TagRef, 0, len(tags))
	for _, t := range tags {
		refs = append(refs, TagRef{ID: t.ID, Name: t.Name})
	}
	return refs
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

func utc(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC()
}
