package handler

import (
	"net/http"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/blog/internal/service"
)

// LatestEntriesRequest is the body of the selector create and update routes.
// On update a missing latest_entries keeps the current count and a missing
// tags list keeps the current tags; an empty list removes the restriction.
type LatestEntriesRequest struct {
	Language      string   `json:"language,omitempty"`
	LatestEntries *int     `json:"latest_entries,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

func (req LatestEntriesRequest) toInput() service.LatestEntriesInput {
	return service.LatestEntriesInput{
		Language:      req.Language,
		LatestEntries: req.LatestEntries,
		TagSlugs:      req.Tags,
	}
}

// TagSlugsRequest is the body of PUT /admin/latest-entries/{id}/tags.
type TagSlugsRequest struct {
	Tags []string `json:"tags"`
}

// CopyRequest is the body of POST /admin/latest-entries/{id}/copy.
type CopyRequest struct {
	PlaceholderID openapi_types.UUID `json:"placeholder_id"`
}

// GetLatestEntriesPosts handles GET /latest-entries/{id}/posts.
// It renders the selector: the newest published posts in its placement
// language, narrowed to its tags.
func (s *Server) GetLatestEntriesPosts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	posts, err := s.latestEntries.GetPosts(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "latest entries plugin not found")
		return
	}
	writeJSON(w, http.StatusOK, postsToResponse(posts))
}

// CreateLatestEntries handles POST /admin/placeholders/{id}/latest-entries.
func (s *Server) CreateLatestEntries(w http.ResponseWriter, r *http.Request) {
	placeholderID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req LatestEntriesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := s.latestEntries.Create(r.Context(), placeholderID, req.toInput())
	if err != nil {
		s.writeError(w, r, err, "placeholder not found")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GetLatestEntries handles GET /admin/latest-entries/{id}.
func (s *Server) GetLatestEntries(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	p, err := s.latestEntries.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "latest entries plugin not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateLatestEntries handles PUT /admin/latest-entries/{id}.
func (s *Server) UpdateLatestEntries(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req LatestEntriesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := s.latestEntries.Update(r.Context(), id, req.toInput())
	if err != nil {
		s.writeError(w, r, err, "latest entries plugin not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// SetLatestEntriesTags handles PUT /admin/latest-entries/{id}/tags.
func (s *Server) SetLatestEntriesTags(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req TagSlugsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}
	p, err := s.latestEntries.SetTags(r.Context(), id, req.Tags)
	if err != nil {
		s.writeError(w, r, err, "latest entries plugin not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteLatestEntries handles DELETE /admin/latest-entries/{id}.
func (s *Server) DeleteLatestEntries(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.latestEntries.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, "latest entries plugin not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CopyLatestEntries handles POST /admin/latest-entries/{id}/copy.
func (s *Server) CopyLatestEntries(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req CopyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if uuid.UUID(req.PlaceholderID) == uuid.Nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("placeholder_id is required"))
		return
	}
	p, err := s.latestEntries.Copy(r.Context(), id, uuid.UUID(req.PlaceholderID))
	if err != nil {
		s.writeError(w, r, err, "latest entries plugin or placeholder not found")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}
