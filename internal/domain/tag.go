package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tag represents a label that can be applied to posts and used to narrow a
// latest-entries selector. Tags are global, not owned by any post.
// Identity is determined by Slug, which is always lowercase and hyphenated.
// Name preserves the original casing supplied by the first user to create the tag.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// TagIDs returns the IDs of tags in order.
func TagIDs(tags []Tag) []uuid.UUID {
	ids := make([]uuid.UUID, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	return ids
}
