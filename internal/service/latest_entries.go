package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/blog/internal/domain"
	"github.com/pkordes/blog/internal/i18n"
	"github.com/pkordes/blog/internal/repo"
)

// PostFinder returns published posts narrowed by extra filters.
// *PostService satisfies it.
type PostFinder interface {
	Published(ctx context.Context, extra ...repo.PostFilter) ([]domain.Post, error)
}

// LatestEntriesInput carries the editable fields of a selector.
// A nil LatestEntries keeps the current value (or the default on create);
// a nil TagSlugs keeps the current tags.
type LatestEntriesInput struct {
	Language      string
	LatestEntries *int
	TagSlugs      []string
}

// LatestEntriesService manages latest-entries selectors and renders the
// posts each one shows.
type LatestEntriesService struct {
	entries   repo.LatestEntriesRepo
	tags      repo.TagRepo
	posts     PostFinder
	languages LanguageSet
}

// NewLatestEntriesService constructs a LatestEntriesService. languages may be
// nil to accept any placement language.
func NewLatestEntriesService(entries repo.LatestEntriesRepo, tags repo.TagRepo, posts PostFinder, languages LanguageSet) *LatestEntriesService {
	return &LatestEntriesService{entries: entries, tags: tags, posts: posts, languages: languages}
}

// GetPosts returns the newest published posts for the selector: visible in
// its placement language and, if it has tags, carrying at least one of them.
// At most LatestEntries posts are returned; zero or less yields none.
func (s *LatestEntriesService) GetPosts(ctx context.Context, id uuid.UUID) ([]domain.Post, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.LatestEntriesService.GetPosts: %w", err)
	}
	if p.LatestEntries <= 0 {
		return []domain.Post{}, nil
	}

	posts, err := s.posts.Published(ctx,
		repo.InLanguage(p.Language),
		repo.TaggedWithAny(domain.TagIDs(p.Tags)...),
		repo.Limit(p.LatestEntries),
	)
	if err != nil {
		return nil, fmt.Errorf("service.LatestEntriesService.GetPosts: %w", err)
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	return posts, nil
}

// Create places a new selector at the end of placeholderID. An empty
// Language defaults to the language active in ctx.
func (s *LatestEntriesService) Create(ctx context.Context, placeholderID uuid.UUID, in LatestEntriesInput) (domain.LatestEntriesPlugin, error) {
	lang, err := s.placementLanguage(ctx, in.Language)
	if err != nil {
		return domain.LatestEntriesPlugin{}, fmt.Errorf("service.LatestEntriesService.Create: %w", err)
	}
	n := domain.DefaultLatestEntries
	if in.LatestEntries != nil {
		n = *in.LatestEntries
	}
	if err := validateLatestEntries(n); err != nil {
		return domain.LatestEntriesPlugin{}, fmt.Errorf("service.LatestEntriesService.Create: %w", err)
	}
	tagIDs, err := s.resolveTags(ctx, in.TagSlugs)
	if err != nil {
		return domain.LatestEntriesPlugin{}, fmt.Errorf("service.LatestEntriesService.Create: %w", err)
	}

	created, err := s.entries.Create(ctx, domain.LatestEntriesPlugin{
		PluginInstance: domain.PluginInstance{PlaceholderID: placeholderID, Language: lang},
		LatestEntries:  n,
	}, tagIDs)
	if err != nil {
		return domain.LatestEntriesPlugin{}, fmt.Errorf("service.LatestEntriesService.Create: %w", err)
	}
	return s.Get(ctx, created.ID)
}

// Get returns a selector with its tags.
func (s *LatestEntriesService) Get(ctx context.Context, id uuid.UUID) (domain.LatestEntriesPlugin, error) {
	p, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return domain.LatestEntriesPlugin{}, fmt.Errorf("service.LatestEntriesService.Get: %w", err)
	}
	tags, err := s.entries.ListTags(ctx, id)
	if err != nil {
		return domain.LatestEntriesPlugin{}, fmt.Errorf("service.LatestEntriesService.Get: %w", err)
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	p.Tags = tags
	return p, nil
}

// Update changes the count and, when TagSlugs is non-nil, the tags.
// The placement language is not editable.
func (s *LatestEntriesService) Update(ctx context.Context, id uuid.UUID, in LatestEntriesInput) (domain.LatestEntriesPlugin, error) {
	p, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return domain.LatestEntriesPlugin{}, fmt.Errorf("service.LatestEntriesService.Update: %w", err)
	}
	if in.LatestEntries != nil {
		if err := validateLatestEntries(*in.LatestEntries); err != nil {
			return domain.LatestEntriesPlugin{}, fmt.Errorf("service.LatestEntriesService.Update: %w", err)
		}
		p.LatestEntries = *in.LatestEntries
		if _, err := s.entries.Update(ctx, p); err != nil {
			return domain.LatestEntriesPlugin{}, fmt.Errorf("service.LatestEntriesService.Update: %w", err)
		}
	}
	if in.TagSlugs != nil {
		if _, err := s.SetTags(ctx, id, in.TagSlugs); err != nil {
			return domain.LatestEntriesPlugin{}, fmt.Errorf("service.LatestEntriesService.Update: %w", err)
		}
	}
	return s.Get(ctx, id)
}

// SetTags replaces the selector's tags. Every slug must name an existing tag;
// an empty list removes the tag restriction.
func (s *LatestEntriesService) SetTags(ctx context.Context, id uuid.UUID, slugs []string) (domain.LatestEntriesPlugin, error) {
	if _, err := s.entries.GetByID(ctx, id); err != nil {
		return domain.LatestEntriesPlugin{}, fmt.Errorf("service.LatestEntriesService.SetTags: %w", err)
	}
	tagIDs, err := s.resolveTags(ctx, slugs)
	if err != nil {
		return domain.LatestEntriesPlugin{}, fmt.Errorf("service.LatestEntriesService.SetTags: %w", err)
	}
	if err := s.entries.SetTags(ctx, id, tagIDs); err != nil {
		return domain.LatestEntriesPlugin{}, fmt.Errorf("service.LatestEntriesService.SetTags: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete removes a selector and its tag associations.
func (s *LatestEntriesService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.entries.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.LatestEntriesService.Delete: %w", err)
	}
	return nil
}

// Copy duplicates a selector into targetPlaceholderID, keeping its placement
// language and count, and re-attaches the source's tags to the copy.
func (s *LatestEntriesService) Copy(ctx context.Context, id, targetPlaceholderID uuid.UUID) (domain.LatestEntriesPlugin, error) {
	src, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return domain.LatestEntriesPlugin{}, fmt.Errorf("service.LatestEntriesService.Copy: %w", err)
	}
	dst, err := s.entries.Copy(ctx, src.ID, domain.LatestEntriesPlugin{
		PluginInstance: domain.PluginInstance{PlaceholderID: targetPlaceholderID, Language: src.Language},
		LatestEntries:  src.LatestEntries,
	})
	if err != nil {
		return domain.LatestEntriesPlugin{}, fmt.Errorf("service.LatestEntriesService.Copy: %w", err)
	}
	return s.Get(ctx, dst.ID)
}

func (s *LatestEntriesService) placementLanguage(ctx context.Context, lang string) (string, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return i18n.FromContext(ctx), nil
	}
	if s.languages != nil && !s.languages.IsSupported(lang) {
		return "", fmt.Errorf("%w: unsupported language %q", domain.ErrValidation, lang)
	}
	return lang, nil
}

// resolveTags maps slugs onto tag IDs, rejecting unknown slugs.
func (s *LatestEntriesService) resolveTags(ctx context.Context, slugs []string) ([]uuid.UUID, error) {
	want := normalizeSlugs(slugs)
	if len(want) == 0 {
		return []uuid.UUID{}, nil
	}
	found, err := s.tags.GetBySlugs(ctx, want)
	if err != nil {
		return nil, err
	}
	if len(found) != len(want) {
		known := make(map[string]bool, len(found))
		for _, t := range found {
			known[t.Slug] = true
		}
		var missing []string
		for _, slug := range want {
			if !known[slug] {
				missing = append(missing, slug)
			}
		}
		return nil, fmt.Errorf("%w: unknown tags %s", domain.ErrValidation, strings.Join(missing, ", "))
	}
	return domain.TagIDs(found), nil
}

func validateLatestEntries(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: latest_entries must not be negative", domain.ErrValidation)
	}
	return nil
}

// normalizeSlugs lowercases, trims and de-duplicates slugs, keeping order.
func normalizeSlugs(slugs []string) []string {
	seen := make(map[string]bool, len(slugs))
	out := make([]string, 0, len(slugs))
	for _, s := range slugs {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
