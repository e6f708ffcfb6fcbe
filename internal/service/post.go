// Package service contains the business logic for the blog backend.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/pkordes/blog/internal/domain"
	"github.com/pkordes/blog/internal/i18n"
	"github.com/pkordes/blog/internal/repo"
)

// maxTitleLen bounds titles and slugs, matching the posts columns.
const maxTitleLen = 255

// Clock returns the current time. Visibility checks call it once per request.
type Clock func() time.Time

// LanguageSet reports whether a language code is configured.
// *i18n.Resolver satisfies it.
type LanguageSet interface {
	IsSupported(lang string) bool
}

// PostService implements business logic for Post operations: slug
// assignment, validation, visibility filtering and post-save hooks.
type PostService struct {
	posts     repo.PostRepo
	tags      repo.TagRepo
	clock     Clock
	languages LanguageSet
	hooks     []PostSaveHook
	logger    *slog.Logger
	policy    *bluemonday.Policy
}

// PostOption configures optional PostService collaborators.
type PostOption func(*PostService)

// WithClock replaces time.Now as the source of "now".
func WithClock(c Clock) PostOption {
	return func(s *PostService) { s.clock = c }
}

// WithLanguages restricts Post.Language to the given set.
func WithLanguages(ls LanguageSet) PostOption {
	return func(s *PostService) { s.languages = ls }
}

// WithSaveHooks registers hooks run, in order, after every successful write.
func WithSaveHooks(hooks ...PostSaveHook) PostOption {
	return func(s *PostService) { s.hooks = append(s.hooks, hooks...) }
}

// WithLogger sets the logger used for query debugging.
func WithLogger(l *slog.Logger) PostOption {
	return func(s *PostService) { s.logger = l }
}

// NewPostService constructs a PostService backed by the provided repos.
func NewPostService(posts repo.PostRepo, tags repo.TagRepo, opts ...PostOption) *PostService {
	s := &PostService{
		posts:  posts,
		tags:   tags,
		clock:  time.Now,
		logger: slog.New(slog.DiscardHandler),
		policy: bluemonday.UGCPolicy(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Save creates the post when it has no ID yet and updates it otherwise.
func (s *PostService) Save(ctx context.Context, post domain.Post) (domain.Post, error) {
	if post.ID == uuid.Nil {
		return s.Create(ctx, post)
	}
	return s.Update(ctx, post)
}

// Create validates and persists a new post together with its content
// placeholder, then runs the save hooks. When a hook fails the created post
// is still returned alongside the error.
func (s *PostService) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	if err := s.prepare(&post); err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.Create: %w", err)
	}

	created, err := s.posts.Create(ctx, post)
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.Create: %w", err)
	}
	created.Tags = []domain.Tag{}

	if err := s.afterSave(ctx, created); err != nil {
		return created, fmt.Errorf("service.PostService.Create: %w", err)
	}
	return created, nil
}

// Update validates and overwrites an existing post. A zero PublicationStart
// keeps the stored one.
func (s *PostService) Update(ctx context.Context, post domain.Post) (domain.Post, error) {
	if post.PublicationStart.IsZero() {
		existing, err := s.posts.GetByID(ctx, post.ID)
		if err != nil {
			return domain.Post{}, fmt.Errorf("service.PostService.Update: %w", err)
		}
		post.PublicationStart = existing.PublicationStart
	}
	if err := s.prepare(&post); err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.Update: %w", err)
	}

	updated, err := s.posts.Update(ctx, post)
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.Update: %w", err)
	}
	// The write has committed; from here on the post is returned with any error.
	tagErr := s.attachTags(ctx, []*domain.Post{&updated})
	if tagErr != nil {
		updated.Tags = []domain.Tag{}
	}
	if err := errors.Join(tagErr, s.afterSave(ctx, updated)); err != nil {
		return updated, fmt.Errorf("service.PostService.Update: %w", err)
	}
	return updated, nil
}

// GetByID returns a single post with its tags, regardless of visibility.
func (s *PostService) GetByID(ctx context.Context, id uuid.UUID) (domain.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.GetByID: %w", err)
	}
	if err := s.attachTags(ctx, []*domain.Post{&p}); err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.GetByID: %w", err)
	}
	return p, nil
}

// List returns one page of posts matching filters, ignoring visibility, plus
// the total number of matches. Used by the admin listing.
func (s *PostService) List(ctx context.Context, p domain.PaginationParams, filters ...repo.PostFilter) ([]domain.Post, int64, error) {
	posts, total, err := s.page(ctx, p, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("service.PostService.List: %w", err)
	}
	return posts, total, nil
}

// Delete removes a post, its content placeholder and its tag links.
func (s *PostService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.PostService.Delete: %w", err)
	}
	return nil
}

// FilterByLanguage returns posts visible in lang: posts in lang and posts
// without a language. extra filters are applied on top.
func (s *PostService) FilterByLanguage(ctx context.Context, lang string, extra ...repo.PostFilter) ([]domain.Post, error) {
	posts, err := s.find(ctx, append([]repo.PostFilter{repo.InLanguage(lang)}, extra...))
	if err != nil {
		return nil, fmt.Errorf("service.PostService.FilterByLanguage: %w", err)
	}
	return posts, nil
}

// FilterByCurrentLanguage is FilterByLanguage for the language active in ctx.
func (s *PostService) FilterByCurrentLanguage(ctx context.Context, extra ...repo.PostFilter) ([]domain.Post, error) {
	return s.FilterByLanguage(ctx, i18n.FromContext(ctx), extra...)
}

// Published returns posts whose publication window contains the clock's
// current time. It does not filter by language.
func (s *PostService) Published(ctx context.Context, extra ...repo.PostFilter) ([]domain.Post, error) {
	posts, err := s.find(ctx, append([]repo.PostFilter{repo.PublishedAt(s.clock())}, extra...))
	if err != nil {
		return nil, fmt.Errorf("service.PostService.Published: %w", err)
	}
	return posts, nil
}

// ListPublished returns one page of posts that are published now and visible
// in the current language, plus the total number of such posts.
func (s *PostService) ListPublished(ctx context.Context, p domain.PaginationParams) ([]domain.Post, int64, error) {
	filters := []repo.PostFilter{
		repo.PublishedAt(s.clock()),
		repo.InLanguage(i18n.FromContext(ctx)),
	}
	posts, total, err := s.page(ctx, p, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("service.PostService.ListPublished: %w", err)
	}
	return posts, total, nil
}

// GetPublishedBySlug resolves a public detail URL. The post must be published
// now, visible in the current language, and its PublicationStart must fall on
// the given UTC date.
func (s *PostService) GetPublishedBySlug(ctx context.Context, year, month, day int, slug string) (domain.Post, error) {
	posts, err := s.find(ctx, []repo.PostFilter{
		repo.PublishedAt(s.clock()),
		repo.InLanguage(i18n.FromContext(ctx)),
		repo.WithSlug(slug),
	})
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.GetPublishedBySlug: %w", err)
	}
	for _, p := range posts {
		y, m, d := p.PublicationStart.UTC().Date()
		if y == year && int(m) == month && d == day {
			return p, nil
		}
	}
	return domain.Post{}, fmt.Errorf("service.PostService.GetPublishedBySlug: %w", domain.ErrNotFound)
}

// prepare applies the save-time rules in place: slug derivation, language
// normalisation, default publication start, validation and sanitising.
func (s *PostService) prepare(post *domain.Post) error {
	post.Title = strings.TrimSpace(post.Title)
	if post.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(post.Title) > maxTitleLen {
		return fmt.Errorf("%w: title exceeds %d characters", domain.ErrValidation, maxTitleLen)
	}

	// A slug that is already set is kept even if the title changed.
	if post.Slug == "" {
		post.Slug = Slugify(post.Title)
		if post.Slug == "" {
			return fmt.Errorf("%w: title %q does not produce a slug; set one explicitly", domain.ErrValidation, post.Title)
		}
	}
	if len(post.Slug) > maxTitleLen {
		return fmt.Errorf("%w: slug exceeds %d characters", domain.ErrValidation, maxTitleLen)
	}

	if post.Language != nil && *post.Language == "" {
		post.Language = nil
	}
	if post.Language != nil && s.languages != nil && !s.languages.IsSupported(*post.Language) {
		return fmt.Errorf("%w: unsupported language %q", domain.ErrValidation, *post.Language)
	}

	if post.AuthorID == uuid.Nil {
		return fmt.Errorf("%w: author_id is required", domain.ErrValidation)
	}

	if post.PublicationStart.IsZero() {
		post.PublicationStart = s.clock()
	}
	if post.PublicationEnd != nil && post.PublicationEnd.Before(post.PublicationStart) {
		return fmt.Errorf("%w: publication_end must not be before publication_start", domain.ErrValidation)
	}

	post.LeadIn = s.policy.Sanitize(post.LeadIn)
	return nil
}

func (s *PostService) afterSave(ctx context.Context, post domain.Post) error {
	for _, h := range s.hooks {
		if err := h.AfterSave(ctx, post); err != nil {
			return fmt.Errorf("post-save hook: %w", err)
		}
	}
	return nil
}

// find runs filters and attaches tags to every result.
func (s *PostService) find(ctx context.Context, filters []repo.PostFilter) ([]domain.Post, error) {
	if s.logger.Enabled(ctx, slog.LevelDebug) {
		sql, args := repo.Render(filters...)
		s.logger.DebugContext(ctx, "post query", "sql", sql, "args", args)
	}

	posts, err := s.posts.Find(ctx, filters...)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	ptrs := make([]*domain.Post, len(posts))
	for i := range posts {
		ptrs[i] = &posts[i]
	}
	if err := s.attachTags(ctx, ptrs); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *PostService) page(ctx context.Context, p domain.PaginationParams, filters []repo.PostFilter) ([]domain.Post, int64, error) {
	total, err := s.posts.Count(ctx, filters...)
	if err != nil {
		return nil, 0, err
	}
	posts, err := s.find(ctx, append(filters[:len(filters):len(filters)], repo.Page(p)))
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// attachTags loads tags for all posts in one query. Posts without tags get an
// empty, non-nil slice.
func (s *PostService) attachTags(ctx context.Context, posts []*domain.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	byPost, err := s.tags.ListByPosts(ctx, ids)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	for _, p := range posts {
		p.Tags = byPost[p.ID]
		if p.Tags == nil {
			p.Tags = []domain.Tag{}
		}
	}
	return nil
}
