package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/blog/internal/domain"
	"github.com/pkordes/blog/internal/repo"
)

// TagService implements business logic for Tag operations.
// Its primary responsibility is slug normalization: all tag identity is
// determined by slug, which is always lowercase and hyphenated.
type TagService struct {
	tags repo.TagRepo
}

// NewTagService constructs a TagService backed by the provided TagRepo.
func NewTagService(tags repo.TagRepo) *TagService {
	return &TagService{tags: tags}
}

// UpsertByName creates the tag for name, or returns the existing tag with the
// same slug.
func (s *TagService) UpsertByName(ctx context.Context, name string) (domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Tag{}, fmt.Errorf("service.TagService.UpsertByName: %w: name is required", domain.ErrValidation)
	}
	slug := Slugify(name)
	if slug == "" {
		return domain.Tag{}, fmt.Errorf("service.TagService.UpsertByName: %w: name %q has no usable characters", domain.ErrValidation, name)
	}

	tag, err := s.tags.Upsert(ctx, name, slug)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.UpsertByName: %w", err)
	}
	return tag, nil
}

// List returns tags whose slug starts with prefix. The prefix is lowercased
// so "Go" finds "go-programming". Always returns a non-nil slice.
func (s *TagService) List(ctx context.Context, prefix string) ([]domain.Tag, error) {
	tags, err := s.tags.List(ctx, strings.ToLower(strings.TrimSpace(prefix)))
	if err != nil {
		return nil, fmt.Errorf("service.TagService.List: %w", err)
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	return tags, nil
}

// ListPaged is List with pagination and a total count.
func (s *TagService) ListPaged(ctx context.Context, prefix string, p domain.PaginationParams) ([]domain.Tag, int64, error) {
	tags, total, err := s.tags.ListPaged(ctx, strings.ToLower(strings.TrimSpace(prefix)), p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TagService.ListPaged: %w", err)
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	return tags, total, nil
}

// AddToPost upserts the tag named name and links it to the post.
// Returns domain.ErrNotFound if the post does not exist.
func (s *TagService) AddToPost(ctx context.Context, postID uuid.UUID, name string) (domain.Tag, error) {
	tag, err := s.UpsertByName(ctx, name)
	if err != nil {
		return domain.Tag{}, err
	}
	if err := s.tags.AddToPost(ctx, postID, tag.ID); err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.AddToPost: %w", err)
	}
	return tag, nil
}

// RemoveFromPost unlinks the tag with slug from the post.
func (s *TagService) RemoveFromPost(ctx context.Context, postID uuid.UUID, slug string) error {
	if err := s.tags.RemoveFromPost(ctx, postID, strings.ToLower(slug)); err != nil {
		return fmt.Errorf("service.TagService.RemoveFromPost: %w", err)
	}
	return nil
}

// ListByPost returns the tags of a post ordered by slug.
func (s *TagService) ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Tag, error) {
	tags, err := s.tags.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.ListByPost: %w", err)
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	return tags, nil
}
