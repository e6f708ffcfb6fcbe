// Package handler: export.go implements GET /admin/export.
// Returns every post as a flat table, ignoring language and publication window.
// Supports content negotiation via ?format=csv (CSV) or default (JSON).
package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/blog/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"post_id", "title", "slug", "language", "author",
	"publication_start", "publication_end", "url", "tags",
}

// ExportRow is one row of the JSON export.
// Fields that are empty become absent (omitempty).
type ExportRow struct {
	PostID           openapi_types.UUID `json:"post_id"`
	Title            string             `json:"title"`
	Slug             string             `json:"slug"`
	Language         *string            `json:"language,omitempty"`
	Author           string             `json:"author"`
	PublicationStart time.Time          `json:"publication_start"`
	PublicationEnd   *time.Time         `json:"publication_end,omitempty"`
	URL              string             `json:"url"`
	Tags             []string           `json:"tags"`
}

// GetExport implements GET /admin/export.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	var format *string
	if !queryParam(w, r, "format", &format) {
		return
	}
	f := derefString(format)
	if f != "" && f != "csv" && f != "json" {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("format must be csv or json"))
		return
	}

	rows, err := s.export.Export(r.Context())
	if err != nil {
		s.writeError(w, r, err, "export not found")
		return
	}

	if f == "csv" {
		writeCSV(w, rows)
		return
	}
	writeJSON(w, http.StatusOK, buildJSONRows(rows))
}

// buildJSONRows converts domain rows to the JSON response rows.
func buildJSONRows(rows []domain.ExportRow) []ExportRow {
	out := make([]ExportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domainRowToJSONRow(r))
	}
	return out
}

// writeCSV encodes domain rows as CSV.
// Tags within a row are pipe-separated ("|") to keep each post on a single CSV line.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(domainRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="posts.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(buf.Bytes())
}

// domainRowToJSONRow maps a domain.ExportRow to the JSON row type.
func domainRowToJSONRow(r domain.ExportRow) ExportRow {
	postID, _ := uuid.Parse(r.PostID)
	row := ExportRow{
		PostID:           postID,
		Title:            r.Title,
		Slug:             r.Slug,
		Author:           r.Author,
		PublicationStart: r.PublicationStart.UTC(),
		URL:              r.URL,
		Tags:             r.Tags,
	}
	if row.Tags == nil {
		row.Tags = []string{}
	}
	if r.Language != "" {
		row.Language = &r.Language
	}
	if r.PublicationEnd != nil {
		end := r.PublicationEnd.UTC()
		row.PublicationEnd = &end
	}
	return row
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
// A nil publication end is encoded as an empty string.
// Tags are joined with "|".
func domainRowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		r.PostID,
		r.Title,
		r.Slug,
		r.Language,
		r.Author,
		r.PublicationStart.UTC().Format(time.RFC3339),
		formatOptionalTime(r.PublicationEnd),
		r.URL,
		strings.Join(r.Tags, "|"),
	}
}

// formatOptionalTime returns the RFC3339 representation of t, or "" if t is nil.
func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
