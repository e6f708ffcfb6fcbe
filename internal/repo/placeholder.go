package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/blog/internal/domain"
)

// PlaceholderRepo defines the persistence operations for content blocks that
// are not owned by a post (page regions). Post placeholders are created by
// PostRepo.Create.
type PlaceholderRepo interface {
	Create(ctx context.Context, slot string) (domain.Placeholder, error)

	// GetByID returns domain.ErrNotFound if no placeholder with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Placeholder, error)
}

type pgPlaceholderRepo struct {
	db db
}

// NewPlaceholderRepo constructs a PlaceholderRepo backed by the provided db connection.
func NewPlaceholderRepo(db db) PlaceholderRepo {
	return &pgPlaceholderRepo{db: db}
}

func (r *pgPlaceholderRepo) Create(ctx context.Context, slot string) (domain.Placeholder, error) {
	const q = `
		INSERT INTO placeholders (slot)
		VALUES (@slot)
		RETURNING id, slot, created_at`

	var p domain.Placeholder
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"slot": slot}).Scan(&p.ID, &p.Slot, &p.CreatedAt)
	if err != nil {
		return domain.Placeholder{}, fmt.Errorf("repo.PlaceholderRepo.Create: %w", err)
	}
	return p, nil
}

func (r *pgPlaceholderRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Placeholder, error) {
	const q = `SELECT id, slot, created_at FROM placeholders WHERE id = @id`

	var p domain.Placeholder
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&p.ID, &p.Slot, &p.CreatedAt)
	if err != nil {
		return domain.Placeholder{}, fmt.Errorf("repo.PlaceholderRepo.GetByID: %w", classify(err))
	}
	return p, nil
}
