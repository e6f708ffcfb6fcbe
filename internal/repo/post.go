package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/blog/internal/domain"
)

// postColumns is the column list every post query returns, in scanPost order.
const postColumns = `p.id, p.title, p.slug, p.language, p.key_visual, p.lead_in, p.content_id,
       p.author_id, p.publication_start, p.publication_end, p.created_at, p.updated_at`

// PostRepo defines the persistence operations for Posts.
// Tags are not loaded here; see TagRepo.ListByPosts.
type PostRepo interface {
	// Create inserts a new post together with its content placeholder and
	// returns the persisted record. A duplicate slug yields domain.ErrConflict.
	Create(ctx context.Context, post domain.Post) (domain.Post, error)

	// GetByID retrieves a single post by primary key.
	// Returns domain.ErrNotFound if no post with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Post, error)

	// Find returns the posts matching every filter, newest publication_start first.
	Find(ctx context.Context, filters ...PostFilter) ([]domain.Post, error)

	// Count returns how many posts match every filter. Paging filters are ignored.
	Count(ctx context.Context, filters ...PostFilter) (int64, error)

	// Update overwrites the mutable fields of a post. The content placeholder
	// is never reassigned. Returns domain.ErrNotFound if the post does not exist.
	Update(ctx context.Context, post domain.Post) (domain.Post, error)

	// Delete removes a post and its content placeholder (and, by cascade, the
	// plugins inside it). Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgPostRepo is the Postgres implementation of PostRepo.
type pgPostRepo struct {
	db db
}

// NewPostRepo constructs a PostRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPostRepo(db db) PostRepo {
	return &pgPostRepo{db: db}
}

// Create inserts the content placeholder and the post in one statement so a
// post never exists without its content block.
func (r *pgPostRepo) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	const q = `
		WITH content AS (
			INSERT INTO placeholders (slot) VALUES (@slot)
			RETURNING id
		)
		INSERT INTO posts AS p (title, slug, language, key_visual, lead_in, content_id,
		                        author_id, publication_start, publication_end)
		SELECT @title::varchar, @slug::varchar, @language::varchar, @key_visual::text, @lead_in::text,
		       content.id, @author_id::uuid, @publication_start::timestamptz, @publication_end::timestamptz
		FROM content
		RETURNING ` + postColumns

	args := postArgs(post)
	args["slot"] = domain.ContentSlot

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanPost(row)
	if err != nil {
		return domain.Post{}, fmt.Errorf("repo.PostRepo.Create: %w", classify(err))
	}
	return result, nil
}

// GetByID retrieves a post by primary key.
func (r *pgPostRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Post, error) {
	const q = `SELECT ` + postColumns + `
		FROM posts p
		WHERE p.id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanPost(row)
	if err != nil {
		return domain.Post{}, fmt.Errorf("repo.PostRepo.GetByID: %w", classify(err))
	}
	return result, nil
}

// Find renders the composed filters into one SELECT.
func (r *pgPostRepo) Find(ctx context.Context, filters ...PostFilter) ([]domain.Post, error) {
	pq := newPostQuery(filters)
	sql := pq.selectSQL()

	rows, err := r.db.Query(ctx, sql, pq.args)
	if err != nil {
		return nil, fmt.Errorf("repo.PostRepo.Find: %w", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.PostRepo.Find: scan: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PostRepo.Find: rows: %w", err)
	}
	return posts, nil
}

// Count renders the composed filters into a COUNT(*).
func (r *pgPostRepo) Count(ctx context.Context, filters ...PostFilter) (int64, error) {
	pq := newPostQuery(filters)
	sql := pq.countSQL()

	var n int64
	if err := r.db.QueryRow(ctx, sql, pq.args).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.PostRepo.Count: %w", err)
	}
	return n, nil
}

// Update overwrites the mutable fields of a post and returns the updated record.
func (r *pgPostRepo) Update(ctx context.Context, post domain.Post) (domain.Post, error) {
	const q = `
		UPDATE posts AS p
		SET title             = @title,
		    slug              = @slug,
		    language          = @language,
		    key_visual        = @key_visual,
		    lead_in           = @lead_in,
		    author_id         = @author_id,
		    publication_start = @publication_start,
		    publication_end   = @publication_end,
		    updated_at        = now()
		WHERE p.id = @id
		RETURNING ` + postColumns

	args := postArgs(post)
	args["id"] = post.ID

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanPost(row)
	if err != nil {
		return domain.Post{}, fmt.Errorf("repo.PostRepo.Update: %w", classify(err))
	}
	return result, nil
}

// Delete removes the post and its placeholder in a single statement.
// Both deletes run against the same snapshot, so the posts -> placeholders
// foreign key is satisfied at the end of the statement.
func (r *pgPostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `
		WITH deleted AS (
			DELETE FROM posts WHERE id = @id
			RETURNING content_id
		), content AS (
			DELETE FROM placeholders
			WHERE id IN (SELECT content_id FROM deleted)
		)
		SELECT count(*) FROM deleted`

	var n int64
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&n); err != nil {
		return fmt.Errorf("repo.PostRepo.Delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("repo.PostRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// postArgs maps the writable fields of a post onto named arguments.
// Nil pointers become NULL.
func postArgs(post domain.Post) pgx.NamedArgs {
	return pgx.NamedArgs{
		"title":             post.Title,
		"slug":              post.Slug,
		"language":          post.Language,
		"key_visual":        post.KeyVisual,
		"lead_in":           post.LeadIn,
		"author_id":         post.AuthorID,
		"publication_start": post.PublicationStart,
		"publication_end":   post.PublicationEnd,
	}
}

// scanPost maps a single database row into a domain.Post.
// It leaves Tags nil; callers attach them separately.
func scanPost(s scanner) (domain.Post, error) {
	var p domain.Post
	err := s.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Language, &p.KeyVisual, &p.LeadIn, &p.ContentID,
		&p.AuthorID, &p.PublicationStart, &p.PublicationEnd, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Post{}, err
	}
	return p, nil
}
