package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/blog/internal/domain"
)

// TagRepo defines the persistence operations for Tags and the post_tags join table.
type TagRepo interface {
	// Upsert inserts a tag by slug, or returns the existing tag if the slug
	// already exists. The name of the first creator is preserved on conflict.
	Upsert(ctx context.Context, name, slug string) (domain.Tag, error)

	// List returns all tags whose slug starts with prefix, ordered by slug.
	// If prefix is empty, all tags are returned.
	List(ctx context.Context, prefix string) ([]domain.Tag, error)

	// ListPaged returns one page of tags matching the slug prefix and the total count.
	ListPaged(ctx context.Context, prefix string, p domain.PaginationParams) ([]domain.Tag, int64, error)

	// GetBySlugs returns the tags with the given slugs, ordered by slug.
	// Unknown slugs are silently absent from the result.
	GetBySlugs(ctx context.Context, slugs []string) ([]domain.Tag, error)

	// AddToPost links a tag to a post. Idempotent, no error if already linked.
	AddToPost(ctx context.Context, postID, tagID uuid.UUID) error

	// RemoveFromPost unlinks a tag from a post by slug.
	// Returns domain.ErrNotFound if the tag is not linked to the post.
	RemoveFromPost(ctx context.Context, postID uuid.UUID, slug string) error

	// ListByPost returns all tags linked to a post, ordered by slug.
	ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Tag, error)

	// ListByPosts returns the tags of every given post keyed by post ID.
	// Posts without tags are absent from the map.
	ListByPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]domain.Tag, error)
}

// pgTagRepo is the Postgres implementation of TagRepo.
type pgTagRepo struct {
	db db
}

// NewTagRepo constructs a TagRepo backed by the provided db connection.
func NewTagRepo(db db) TagRepo {
	return &pgTagRepo{db: db}
}

// Upsert inserts a tag or returns the existing row on slug conflict.
// The DO UPDATE SET trick forces the RETURNING clause to fire even when
// the conflict handler skips the insert; with DO NOTHING, RETURNING would
// return no row on conflict.
func (r *pgTagRepo) Upsert(ctx context.Context, name, slug string) (domain.Tag, error) {
	const q = `
		INSERT INTO tags (name, slug)
		VALUES (@name, @slug)
		ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
		RETURNING id, name, slug, created_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": name, "slug": slug})
	result, err := scanTag(row)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.Upsert: %w", classify(err))
	}
	return result, nil
}

// List returns all tags whose slug starts with prefix, ordered by slug.
func (r *pgTagRepo) List(ctx context.Context, prefix string) ([]domain.Tag, error) {
	const q = `
		SELECT id, name, slug, created_at
		FROM tags
		WHERE slug LIKE @prefix || '%'
		ORDER BY slug`

	tags, err := r.queryTags(ctx, q, pgx.NamedArgs{"prefix": prefix})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.List: %w", err)
	}
	return tags, nil
}

// ListPaged returns one page of tags matching prefix ordered by slug, plus
// the total number of matches.
func (r *pgTagRepo) ListPaged(ctx context.Context, prefix string, p domain.PaginationParams) ([]domain.Tag, int64, error) {
	const countQ = `SELECT count(*) FROM tags WHERE slug LIKE @prefix || '%'`
	const q = `
		SELECT id, name, slug, created_at
		FROM tags
		WHERE slug LIKE @prefix || '%'
		ORDER BY slug
		LIMIT @limit OFFSET @offset`

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"prefix": prefix}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TagRepo.ListPaged: count: %w", err)
	}

	tags, err := r.queryTags(ctx, q, pgx.NamedArgs{
		"prefix": prefix,
		"limit":  p.Limit,
		"offset": p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TagRepo.ListPaged: %w", err)
	}
	return tags, total, nil
}

// GetBySlugs returns the tags matching slugs.
func (r *pgTagRepo) GetBySlugs(ctx context.Context, slugs []string) ([]domain.Tag, error) {
	if len(slugs) == 0 {
		return []domain.Tag{}, nil
	}
	const q = `
		SELECT id, name, slug, created_at
		FROM tags
		WHERE slug = ANY(@slugs::text[])
		ORDER BY slug`

	tags, err := r.queryTags(ctx, q, pgx.NamedArgs{"slugs": slugs})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.GetBySlugs: %w", err)
	}
	return tags, nil
}

// AddToPost links a tag to a post. Idempotent via ON CONFLICT DO NOTHING.
func (r *pgTagRepo) AddToPost(ctx context.Context, postID, tagID uuid.UUID) error {
	const q = `
		INSERT INTO post_tags (post_id, tag_id)
		VALUES (@post_id, @tag_id)
		ON CONFLICT (post_id, tag_id) DO NOTHING`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{"post_id": postID, "tag_id": tagID})
	if err != nil {
		return fmt.Errorf("repo.TagRepo.AddToPost: %w", classify(err))
	}
	return nil
}

// RemoveFromPost unlinks a tag from a post using a slug-based subquery lookup.
func (r *pgTagRepo) RemoveFromPost(ctx context.Context, postID uuid.UUID, slug string) error {
	const q = `
		DELETE FROM post_tags
		WHERE post_id = @post_id
		  AND tag_id = (SELECT id FROM tags WHERE slug = @slug)`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"post_id": postID, "slug": slug})
	if err != nil {
		return fmt.Errorf("repo.TagRepo.RemoveFromPost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TagRepo.RemoveFromPost: %w", domain.ErrNotFound)
	}
	return nil
}

// ListByPost returns all tags linked to a post, ordered by slug.
func (r *pgTagRepo) ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Tag, error) {
	const q = `
		SELECT t.id, t.name, t.slug, t.created_at
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = @post_id
		ORDER BY t.slug`

	tags, err := r.queryTags(ctx, q, pgx.NamedArgs{"post_id": postID})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByPost: %w", err)
	}
	return tags, nil
}

// ListByPosts loads the tags for many posts in one round trip.
func (r *pgTagRepo) ListByPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]domain.Tag, error) {
	out := make(map[uuid.UUID][]domain.Tag)
	if len(postIDs) == 0 {
		return out, nil
	}
	const q = `
		SELECT pt.post_id, t.id, t.name, t.slug, t.created_at
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = ANY(@post_ids::uuid[])
		ORDER BY pt.post_id, t.slug`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"post_ids": postIDs})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByPosts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID uuid.UUID
			t      domain.Tag
		)
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("repo.TagRepo.ListByPosts: scan: %w", err)
		}
		out[postID] = append(out[postID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByPosts: rows: %w", err)
	}
	return out, nil
}

// queryTags runs q and scans every row as a tag. Always returns a non-nil slice.
func (r *pgTagRepo) queryTags(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Tag, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTags(rows)
}

func collectTags(rows pgx.Rows) ([]domain.Tag, error) {
	tags := []domain.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return tags, nil
}

// scanTag maps a single database row into a domain.Tag.
func scanTag(s scanner) (domain.Tag, error) {
	var t domain.Tag
	if err := s.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
		return domain.Tag{}, err
	}
	return t, nil
}
