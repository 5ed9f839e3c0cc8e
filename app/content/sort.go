package content

import (
	"sort"
)

// SortEntries returns a copy of entries ordered newest first. Entries
// published at the same instant are ordered by ID so builds are reproducible.
func SortEntries(entries []Entry) []Entry {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		return a.ID < b.ID
	})
	return sorted
}
