package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/blog/internal/domain"
)

// AddTagRequest is the body of POST /admin/posts/{id}/tags.
type AddTagRequest struct {
	Name string `json:"name"`
}

// ListTags handles GET /tags.
// The optional ?q= query parameter filters tags by slug prefix.
func (s *Server) ListTags(w http.ResponseWriter, r *http.Request) {
	params, ok := pagination(w, r)
	if !ok {
		return
	}
	var q *string
	if !queryParam(w, r, "q", &q) {
		return
	}

	tags, total, err := s.tags.ListPaged(r.Context(), derefString(q), params)
	if err != nil {
		s.writeError(w, r, err, "tag not found")
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(tags, params, total))
}

// ListPostTags handles GET /admin/posts/{id}/tags.
func (s *Server) ListPostTags(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	tags, err := s.tags.ListByPost(r.Context(), postID)
	if err != nil {
		s.writeError(w, r, err, "post not found")
		return
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	writeJSON(w, http.StatusOK, tags)
}

// AddPostTag handles POST /admin/posts/{id}/tags.
// The tag is created on first use; adding a tag twice is not an error.
func (s *Server) AddPostTag(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req AddTagRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tag, err := s.tags.AddToPost(r.Context(), postID, req.Name)
	if err != nil {
		s.writeError(w, r, err, "post not found")
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

// RemovePostTag handles DELETE /admin/posts/{id}/tags/{slug}.
func (s *Server) RemovePostTag(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.tags.RemoveFromPost(r.Context(), postID, chi.URLParam(r, "slug")); err != nil {
		s.writeError(w, r, err, "tag not linked to post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
