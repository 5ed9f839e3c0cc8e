package content

import (
	"errors"
	"fmt"
	"time"
)

var ErrUnclassifiable = errors.New("unclassifiable entry")

// UnclassifiableError is returned for entries that reached path resolution
// without a kind.
type UnclassifiableError struct {
	ID string
}

func (e *UnclassifiableError) Error() string {
	return fmt.Sprintf("entry %s: %s", e.ID, ErrUnclassifiable)
}

func (e *UnclassifiableError) Unwrap() error {
	return ErrUnclassifiable
}

// Resolver assigns canonical paths and templates. Date partitions are
// computed in loc.
type Resolver struct {
	loc *time.Location
}

func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{loc: loc}
}

// Resolve returns a copy of e with Path and Template set. Timestamps are
// moved into the resolver's location so published_at shows the same
// calendar date as the path.
func (r *Resolver) Resolve(e Entry) (Entry, error) {
	e.PublishedAt = e.PublishedAt.In(r.loc)
	e.UpdatedAt = e.UpdatedAt.In(r.loc)

	switch e.Kind {
	case KindArticle:
		e.Path = r.datedPath(e)
		e.Template = TemplateArticle
	case KindShort:
		e.Path = r.datedPath(e)
		e.Template = TemplateShort
	case KindPage:
		switch {
		case e.IsDraft:
			e.Path = draftPath(e.ID)
		case e.IsHomePage:
			e.Path = "/index.html"
		default:
			e.Path = fmt.Sprintf("/%s/index.html", e.Slug)
		}
		e.Template = TemplatePage
		if e.IsHomePage {
			e.Template = TemplateHome
		}
	default:
		return e, &UnclassifiableError{ID: e.ID}
	}
	return e, nil
}

func (r *Resolver) datedPath(e Entry) string {
	if e.IsDraft {
		return draftPath(e.ID)
	}
	t := e.PublishedAt
	return fmt.Sprintf("/%04d/%02d/%02d/%s/index.html", t.Year(), int(t.Month()), t.Day(), e.Slug)
}

func draftPath(id string) string {
	return fmt.Sprintf("/id/%s/index.html", id)
}

func TagPath(id string) string {
	return fmt.Sprintf("/tagged/%s/index.html", id)
}

// ListingPath returns the path of the 1-based listing page n.
func ListingPath(n int) string {
	if n <= 1 {
		return "/blog/index.html"
	}
	return fmt.Sprintf("/blog/page/%d/index.html", n)
}
