package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/blog/internal/domain"
)

// pluginColumns is the cms_plugins column list in scanPluginInstance order.
const pluginColumns = `c.id, c.placeholder_id, c.plugin_type, c.language, c.position, c.body, c.created_at`

// nextPosition appends a new plugin after the last one in its placeholder.
const nextPosition = `(SELECT coalesce(max(position) + 1, 0) FROM cms_plugins WHERE placeholder_id = @placeholder_id)`

// PluginRepo defines the persistence operations shared by every plugin type:
// the cms_plugins rows that place a widget inside a placeholder.
type PluginRepo interface {
	// Create appends a plugin instance to the end of its placeholder.
	// Returns domain.ErrNotFound if the placeholder does not exist.
	Create(ctx context.Context, p domain.PluginInstance) (domain.PluginInstance, error)

	// ListByPlaceholder returns the instances of a placeholder ordered by position.
	ListByPlaceholder(ctx context.Context, placeholderID uuid.UUID) ([]domain.PluginInstance, error)

	// SetLanguageByPlaceholder sets the language of every instance in the
	// placeholder and returns how many rows changed.
	SetLanguageByPlaceholder(ctx context.Context, placeholderID uuid.UUID, lang string) (int64, error)
}

type pgPluginRepo struct {
	db db
}

// NewPluginRepo constructs a PluginRepo backed by the provided db connection.
func NewPluginRepo(db db) PluginRepo {
	return &pgPluginRepo{db: db}
}

func (r *pgPluginRepo) Create(ctx context.Context, p domain.PluginInstance) (domain.PluginInstance, error) {
	const q = `
		INSERT INTO cms_plugins AS c (placeholder_id, plugin_type, language, position, body)
		VALUES (@placeholder_id, @plugin_type, @language, ` + nextPosition + `, @body)
		RETURNING ` + pluginColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"placeholder_id": p.PlaceholderID,
		"plugin_type":    p.PluginType,
		"language":       p.Language,
		"body":           p.Body,
	})
	result, err := scanPluginInstance(row)
	if err != nil {
		return domain.PluginInstance{}, fmt.Errorf("repo.PluginRepo.Create: %w", classify(err))
	}
	return result, nil
}

func (r *pgPluginRepo) ListByPlaceholder(ctx context.Context, placeholderID uuid.UUID) ([]domain.PluginInstance, error) {
	const q = `
		SELECT ` + pluginColumns + `
		FROM cms_plugins c
		WHERE c.placeholder_id = @placeholder_id
		ORDER BY c.position, c.created_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"placeholder_id": placeholderID})
	if err != nil {
		return nil, fmt.Errorf("repo.PluginRepo.ListByPlaceholder: %w", err)
	}
	defer rows.Close()

	out := []domain.PluginInstance{}
	for rows.Next() {
		p, err := scanPluginInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.PluginRepo.ListByPlaceholder: scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PluginRepo.ListByPlaceholder: rows: %w", err)
	}
	return out, nil
}

// SetLanguageByPlaceholder is a single UPDATE over every instance of the
// placeholder; instances already in lang count as affected too.
func (r *pgPluginRepo) SetLanguageByPlaceholder(ctx context.Context, placeholderID uuid.UUID, lang string) (int64, error) {
	const q = `
		UPDATE cms_plugins
		SET language = @language
		WHERE placeholder_id = @placeholder_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"placeholder_id": placeholderID, "language": lang})
	if err != nil {
		return 0, fmt.Errorf("repo.PluginRepo.SetLanguageByPlaceholder: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanPluginInstance(s scanner) (domain.PluginInstance, error) {
	var p domain.PluginInstance
	err := s.Scan(&p.ID, &p.PlaceholderID, &p.PluginType, &p.Language, &p.Position, &p.Body, &p.CreatedAt)
	if err != nil {
		return domain.PluginInstance{}, err
	}
	return p, nil
}
