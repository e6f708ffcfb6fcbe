// Package domain contains the core data types for the blog backend.
// This package has no dependencies beyond uuid and is imported by every other
// internal package (repo, service, handler).
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ContentSlot is the placeholder slot name of a post's body content.
const ContentSlot = "blog_post_content"

// Post is a single blog entry.
//
// Language is nil when the post is shown in every language. ContentID points
// at the placeholder owning the post body; the placeholder is created with the
// post and removed with it. PublicationEnd is nil for posts that never expire.
type Post struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	Language         *string    `json:"language,omitempty"`
	KeyVisual        *string    `json:"key_visual,omitempty"`
	LeadIn           string     `json:"lead_in"`
	ContentID        *uuid.UUID `json:"content_id,omitempty"`
	AuthorID         uuid.UUID  `json:"author_id"`
	PublicationStart time.Time  `json:"publication_start"`
	PublicationEnd   *time.Time `json:"publication_end,omitempty"`
	Tags             []Tag      `json:"tags"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// IsPublishedAt reports whether t falls inside the publication window.
// Both bounds are inclusive.
func (p Post) IsPublishedAt(t time.Time) bool {
	if p.PublicationStart.After(t) {
		return false
	}
	return p.PublicationEnd == nil || !p.PublicationEnd.Before(t)
}

// MatchesLanguage reports whether the post is visible for lang.
// A post without a language matches every language.
func (p Post) MatchesLanguage(lang string) bool {
	return p.Language == nil || *p.Language == lang
}

// URL returns the public detail path of the post. The date segments come from
// PublicationStart, so changing it changes the URL.
func (p Post) URL() string {
	y, m, d := p.PublicationStart.UTC().Date()
	return fmt.Sprintf("/blog/%04d/%02d/%02d/%s/", y, int(m), d, p.Slug)
}

func (p Post) String() string {
	return p.Title
}
