package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/blog/internal/domain"
	"github.com/pkordes/blog/internal/repo"
)

// ExportService assembles a full flat export of all posts with their authors
// and tags.
type ExportService struct {
	posts repo.PostRepo
	users repo.UserRepo
	tags  repo.TagRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(posts repo.PostRepo, users repo.UserRepo, tags repo.TagRepo) *ExportService {
	return &ExportService{posts: posts, users: users, tags: tags}
}

// Export returns one ExportRow per post, newest publication first, ignoring
// language and publication window.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	posts, err := s.posts.Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	ids := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	tagsByPost, err := s.tags.ListByPosts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	authors := make(map[uuid.UUID]string)
	rows := make([]domain.ExportRow, 0, len(posts))
	for _, p := range posts {
		name, ok := authors[p.AuthorID]
		if !ok {
			u, err := s.users.GetByID(ctx, p.AuthorID)
			if err != nil {
				return nil, fmt.Errorf("service.ExportService.Export: author of %s: %w", p.ID, err)
			}
			name = u.Username
			authors[p.AuthorID] = name
		}

		tagSlugs := make([]string, 0, len(tagsByPost[p.ID]))
		for _, t := range tagsByPost[p.ID] {
			tagSlugs = append(tagSlugs, t.Slug)
		}

		var lang string
		if p.Language != nil {
			lang = *p.Language
		}

		rows = append(rows, domain.ExportRow{
			PostID:           p.ID.String(),
			Title:            p.Title,
			Slug:             p.Slug,
			Language:         lang,
			Author:           name,
			PublicationStart: p.PublicationStart,
			PublicationEnd:   p.PublicationEnd,
			URL:              p.URL(),
			Tags:             tagSlugs,
		})
	}
	return rows, nil
}
