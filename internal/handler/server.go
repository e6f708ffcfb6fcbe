// Package handler implements the HTTP handlers for the blog API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, posts.go, etc.) but share the same Server struct so they
// can access its dependencies. Routes wires them onto a chi router.
package handler

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/blog/internal/domain"
	"github.com/pkordes/blog/internal/repo"
	"github.com/pkordes/blog/internal/service"
)

// PostServicer defines the business operations the post handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type PostServicer interface {
	Create(ctx context.Context, post domain.Post) (domain.Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Post, error)
	List(ctx context.Context, p domain.PaginationParams, filters ...repo.PostFilter) ([]domain.Post, int64, error)
	Update(ctx context.Context, post domain.Post) (domain.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListPublished(ctx context.Context, p domain.PaginationParams) ([]domain.Post, int64, error)
	GetPublishedBySlug(ctx context.Context, year, month, day int, slug string) (domain.Post, error)
}

// TagServicer defines the tag operations used by the tag handlers.
type TagServicer interface {
	ListPaged(ctx context.Context, prefix string, p domain.PaginationParams) ([]domain.Tag, int64, error)
	AddToPost(ctx context.Context, postID uuid.UUID, name string) (domain.Tag, error)
	RemoveFromPost(ctx context.Context, postID uuid.UUID, slug string) error
	ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Tag, error)
}

// UserServicer defines the author account operations.
type UserServicer interface {
	Create(ctx context.Context, username, email string) (domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
}

// ContentServicer manages placeholders and generic content plugins.
type ContentServicer interface {
	CreatePlaceholder(ctx context.Context, slot string) (domain.Placeholder, error)
	GetPlaceholder(ctx context.Context, id uuid.UUID) (domain.Placeholder, error)
	AddPlugin(ctx context.Context, placeholderID uuid.UUID, in service.PluginInput) (domain.PluginInstance, error)
	ListPlugins(ctx context.Context, placeholderID uuid.UUID) ([]domain.PluginInstance, error)
}

// LatestEntriesServicer manages latest-entries selectors and renders them.
type LatestEntriesServicer interface {
	GetPosts(ctx context.Context, id uuid.UUID) ([]domain.Post, error)
	Create(ctx context.Context, placeholderID uuid.UUID, in service.LatestEntriesInput) (domain.LatestEntriesPlugin, error)
	Get(ctx context.Context, id uuid.UUID) (domain.LatestEntriesPlugin, error)
	Update(ctx context.Context, id uuid.UUID, in service.LatestEntriesInput) (domain.LatestEntriesPlugin, error)
	SetTags(ctx context.Context, id uuid.UUID, slugs []string) (domain.LatestEntriesPlugin, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Copy(ctx context.Context, id, targetPlaceholderID uuid.UUID) (domain.LatestEntriesPlugin, error)
}

// ExportServicer defines the operation the export handler depends on.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// Services bundles the collaborators of a Server. Nil members are allowed in
// tests that never reach the corresponding routes.
type Services struct {
	Posts         PostServicer
	Tags          TagServicer
	Users         UserServicer
	Content       ContentServicer
	LatestEntries LatestEntriesServicer
	Export        ExportServicer
}

// Server holds the dependencies shared by all handlers.
type Server struct {
	posts         PostServicer
	tags          TagServicer
	users         UserServicer
	content       ContentServicer
	latestEntries LatestEntriesServicer
	export        ExportServicer
	logger        *slog.Logger
}

// NewServer constructs the Server with all its dependencies. A nil logger
// discards the internal-error log lines.
func NewServer(svc Services, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		posts:         svc.Posts,
		tags:          svc.Tags,
		users:         svc.Users,
		content:       svc.Content,
		latestEntries: svc.LatestEntries,
		export:        svc.Export,
		logger:        logger,
	}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(Services{}, nil)
}

// Routes returns the API router. Global middleware is applied by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Get("/posts", s.ListPublishedPosts)
	r.Get("/blog/{year}/{month}/{day}/{slug}", s.GetPublishedPost)
	r.Get("/latest-entries/{id}/posts", s.GetLatestEntriesPosts)
	r.Get("/tags", s.ListTags)

	r.Route("/admin", func(r chi.Router) {
		r.Post("/users", s.CreateUser)
		r.Get("/users/{id}", s.GetUser)

		r.Route("/posts", func(r chi.Router) {
			r.Post("/", s.CreatePost)
			r.Get("/", s.ListPosts)
			r.Get("/{id}", s.GetPost)
			r.Put("/{id}", s.UpdatePost)
			r.Delete("/{id}", s.DeletePost)
			r.Get("/{id}/tags", s.ListPostTags)
			r.Post("/{id}/tags", s.AddPostTag)
			r.Delete("/{id}/tags/{slug}", s.RemovePostTag)
		})

		r.Post("/placeholders", s.CreatePlaceholder)
		r.Get("/placeholders/{id}", s.GetPlaceholder)
		r.Get("/placeholders/{id}/plugins", s.ListPlugins)
		r.Post("/placeholders/{id}/plugins", s.AddPlugin)
		r.Post("/placeholders/{id}/latest-entries", s.CreateLatestEntries)

		r.Route("/latest-entries/{id}", func(r chi.Router) {
			r.Get("/", s.GetLatestEntries)
			r.Put("/", s.UpdateLatestEntries)
			r.Delete("/", s.DeleteLatestEntries)
			r.Put("/tags", s.SetLatestEntriesTags)
			r.Post("/copy", s.CopyLatestEntries)
		})

		r.Get("/export", s.GetExport)
	})

	return r
}
