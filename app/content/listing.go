package content

import (
	"errors"
	"fmt"
)

var ErrInvalidPageSize = errors.New("page size must be at least 1")

// Paginate slices the non-draft entries, in their given order, into listing
// pages of pageSize items. No published entries yields an empty listing.
func Paginate(entries []Entry, pageSize int) ([]ListingPage, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPageSize, pageSize)
	}

	published := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !e.IsDraft {
			published = append(published, e)
		}
	}

	total := (len(published) + pageSize - 1) / pageSize
	pages := make([]ListingPage, 0, total)
	for i := 0; i < total; i++ {
		end := min((i+1)*pageSize, len(published))
		page := ListingPage{
			CurrentPage:          i + 1,
			Items:                published[i*pageSize : end : end],
			Path:                 ListingPath(i + 1),
			Template:             TemplateListing,
			IndexInSearchEngines: true,
		}
		if i > 0 {
			prev := i
			page.PreviousPage = &prev
		}
		if i < total-1 {
			next := i + 2
			page.NextPage = &next
		}
		pages = append(pages, page)
	}
	return pages, nil
}
