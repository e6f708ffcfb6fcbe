package domain

import "time"

// ExportRow is a single row in the full-data export: one row per post,
// regardless of language or publication window.
//
// Language is empty for posts shown in every language.
// Tags is a slice of slugs for the post, ordered alphabetically.
// Callers that need a joined string (e.g. CSV) should join with "|".
type ExportRow struct {
	PostID           string
	Title            string
	Slug             string
	Language         string
	Author           string
	PublicationStart time.Time
	PublicationEnd   *time.Time
	URL              string
	Tags             []string
}
