package content

import (
	"sort"
)

// AggregateTags builds the public tag index. Tags referenced only by drafts
// are dropped; items keep the order of entries. Output is sorted by tag ID.
func AggregateTags(entries []Entry) []Tag {
	var order []string
	byID := make(map[string]*Tag)

	for _, e := range entries {
		for _, ref := range e.Tags {
			tag, ok := byID[ref.ID]
			if !ok {
				tag = &Tag{
					ID:       ref.ID,
					Name:     ref.Name,
					Path:     TagPath(ref.ID),
					Template: TemplateListing,
				}
				byID[ref.ID] = tag
				order = append(order, ref.ID)
			}
			if !e.IsDraft && !containsEntry(tag.Items, e.ID) {
				tag.Items = append(tag.Items, e)
			}
		}
	}

	tags := make([]Tag, 0, len(order))
	for _, id := range order {
		if tag := byID[id]; len(tag.Items) > 0 {
			tags = append(tags, *tag)
		}
	}
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].ID < tags[j].ID
	})
	return tags
}

func containsEntry(items []Entry, id string) bool {
	for _, e := range items {
		if e.ID == id {
			return true
		}
	}
	return false
}
