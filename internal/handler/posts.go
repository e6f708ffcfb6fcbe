package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/blog/internal/domain"
	"github.com/pkordes/blog/internal/i18n"
	"github.com/pkordes/blog/internal/repo"
)

// PostRequest is the body of POST /admin/posts and PUT /admin/posts/{id}.
// An empty slug is derived from the title; a missing publication_start
// defaults to now on create and keeps the stored value on update.
type PostRequest struct {
	Title            string             `json:"title"`
	Slug             string             `json:"slug,omitempty"`
	Language         *string            `json:"language,omitempty"`
	KeyVisual        *string            `json:"key_visual,omitempty"`
	LeadIn           string             `json:"lead_in,omitempty"`
	AuthorID         openapi_types.UUID `json:"author_id"`
	PublicationStart *time.Time         `json:"publication_start,omitempty"`
	PublicationEnd   *time.Time         `json:"publication_end,omitempty"`
}

func (req PostRequest) toDomain(id uuid.UUID) domain.Post {
	p := domain.Post{
		ID:             id,
		Title:          req.Title,
		Slug:           req.Slug,
		Language:       req.Language,
		KeyVisual:      req.KeyVisual,
		LeadIn:         req.LeadIn,
		AuthorID:       uuid.UUID(req.AuthorID),
		PublicationEnd: req.PublicationEnd,
	}
	if req.PublicationStart != nil {
		p.PublicationStart = *req.PublicationStart
	}
	return p
}

// PostResponse is a post as returned by the API, with its public URL.
type PostResponse struct {
	domain.Post
	URL string `json:"url"`
}

func postToResponse(p domain.Post) PostResponse {
	if p.Tags == nil {
		p.Tags = []domain.Tag{}
	}
	return PostResponse{Post: p, URL: p.URL()}
}

func postsToResponse(posts []domain.Post) []PostResponse {
	out := make([]PostResponse, len(posts))
	for i, p := range posts {
		out[i] = postToResponse(p)
	}
	return out
}

// ListPublishedPosts handles GET /posts.
// It lists posts published now and visible in the request language.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListPublishedPosts(w http.ResponseWriter, r *http.Request) {
	params, ok := pagination(w, r)
	if !ok {
		return
	}
	posts, total, err := s.posts.ListPublished(r.Context(), params)
	if err != nil {
		s.writeError(w, r, err, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(postsToResponse(posts), params, total))
}

// GetPublishedPost handles GET /blog/{year}/{month}/{day}/{slug}.
func (s *Server) GetPublishedPost(w http.ResponseWriter, r *http.Request) {
	year, ok := pathInt(w, r, "year")
	if !ok {
		return
	}
	month, ok := pathInt(w, r, "month")
	if !ok {
		return
	}
	day, ok := pathInt(w, r, "day")
	if !ok {
		return
	}

	post, err := s.posts.GetPublishedBySlug(r.Context(), year, month, day, chi.URLParam(r, "slug"))
	if err != nil {
		s.writeError(w, r, err, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, postToResponse(post))
}

// CreatePost handles POST /admin/posts.
func (s *Server) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := s.posts.Create(r.Context(), req.toDomain(uuid.Nil))
	if err != nil && !s.savedDespite(r, created, err) {
		s.writeError(w, r, err, "author not found")
		return
	}
	writeJSON(w, http.StatusCreated, postToResponse(created))
}

// ListPosts handles GET /admin/posts.
// Unlike GET /posts it ignores the publication window. ?language= narrows the
// list to posts visible in that language.
func (s *Server) ListPosts(w http.ResponseWriter, r *http.Request) {
	params, ok := pagination(w, r)
	if !ok {
		return
	}
	var lang *string
	if !queryParam(w, r, i18n.QueryParam, &lang) {
		return
	}

	var filters []repo.PostFilter
	if l := derefString(lang); l != "" {
		filters = append(filters, repo.InLanguage(l))
	}

	posts, total, err := s.posts.List(r.Context(), params, filters...)
	if err != nil {
		s.writeError(w, r, err, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(postsToResponse(posts), params, total))
}

// GetPost handles GET /admin/posts/{id}.
func (s *Server) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	post, err := s.posts.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, postToResponse(post))
}

// UpdatePost handles PUT /admin/posts/{id}.
func (s *Server) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req PostRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := s.posts.Update(r.Context(), req.toDomain(id))
	if err != nil && !s.savedDespite(r, updated, err) {
		s.writeError(w, r, err, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, postToResponse(updated))
}

// DeletePost handles DELETE /admin/posts/{id}.
func (s *Server) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.posts.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, "post not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// savedDespite reports whether a save returned a persisted post together with
// err, which happens when a post-save hook fails after the write committed.
// The failure is logged and the request still succeeds.
func (s *Server) savedDespite(r *http.Request, post domain.Post, err error) bool {
	if post.ID == uuid.Nil {
		return false
	}
	s.logger.WarnContext(r.Context(), "post saved but post-save hook failed",
		"post_id", post.ID,
		"error", err,
	)
	return true
}
