package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/blog/internal/domain"
)

// LatestEntriesRepo defines the persistence operations for latest-entries
// selectors: the cms_plugins row, its latest_entries_plugins configuration
// and the selector's tag associations.
type LatestEntriesRepo interface {
	// Create places a new selector at the end of its placeholder and links
	// tagIDs to it. The row and its tags are written in one transaction.
	Create(ctx context.Context, p domain.LatestEntriesPlugin, tagIDs []uuid.UUID) (domain.LatestEntriesPlugin, error)

	// Copy creates p and attaches every tag of fromID to it in one transaction.
	Copy(ctx context.Context, fromID uuid.UUID, p domain.LatestEntriesPlugin) (domain.LatestEntriesPlugin, error)

	// GetByID returns the selector without tags.
	// Returns domain.ErrNotFound if no selector with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.LatestEntriesPlugin, error)

	// Update stores LatestEntries. Returns domain.ErrNotFound if the selector does not exist.
	Update(ctx context.Context, p domain.LatestEntriesPlugin) (domain.LatestEntriesPlugin, error)

	// Delete removes the selector and its tag associations.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListTags returns the selector's tags ordered by slug.
	ListTags(ctx context.Context, id uuid.UUID) ([]domain.Tag, error)

	// SetTags replaces the selector's tag associations with tagIDs.
	SetTags(ctx context.Context, id uuid.UUID, tagIDs []uuid.UUID) error

	// CopyRelations attaches every tag of fromID to toID. Existing
	// associations of toID are kept.
	CopyRelations(ctx context.Context, fromID, toID uuid.UUID) error
}

type pgLatestEntriesRepo struct {
	db db
}

// NewLatestEntriesRepo constructs a LatestEntriesRepo backed by the provided db connection.
func NewLatestEntriesRepo(db db) LatestEntriesRepo {
	return &pgLatestEntriesRepo{db: db}
}

// Create inserts the selector and its tags inside one transaction.
func (r *pgLatestEntriesRepo) Create(ctx context.Context, p domain.LatestEntriesPlugin, tagIDs []uuid.UUID) (domain.LatestEntriesPlugin, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.LatestEntriesPlugin{}, fmt.Errorf("repo.LatestEntriesRepo.Create: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	created, err := insertLatestEntries(ctx, tx, p)
	if err != nil {
		return domain.LatestEntriesPlugin{}, fmt.Errorf("repo.LatestEntriesRepo.Create: %w", err)
	}
	if err := insertSelectorTags(ctx, tx, created.ID, tagIDs); err != nil {
		return domain.LatestEntriesPlugin{}, fmt.Errorf("repo.LatestEntriesRepo.Create: tags: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.LatestEntriesPlugin{}, fmt.Errorf("repo.LatestEntriesRepo.Create: commit: %w", err)
	}
	return created, nil
}

// Copy inserts p and copies the tag associations of fromID inside one transaction.
func (r *pgLatestEntriesRepo) Copy(ctx context.Context, fromID uuid.UUID, p domain.LatestEntriesPlugin) (domain.LatestEntriesPlugin, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.LatestEntriesPlugin{}, fmt.Errorf("repo.LatestEntriesRepo.Copy: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	created, err := insertLatestEntries(ctx, tx, p)
	if err != nil {
		return domain.LatestEntriesPlugin{}, fmt.Errorf("repo.LatestEntriesRepo.Copy: %w", err)
	}
	if err := copySelectorTags(ctx, tx, fromID, created.ID); err != nil {
		return domain.LatestEntriesPlugin{}, fmt.Errorf("repo.LatestEntriesRepo.Copy: relations: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.LatestEntriesPlugin{}, fmt.Errorf("repo.LatestEntriesRepo.Copy: commit: %w", err)
	}
	return created, nil
}

// insertLatestEntries writes the generic plugin row and its configuration in
// one statement.
func insertLatestEntries(ctx context.Context, q db, p domain.LatestEntriesPlugin) (domain.LatestEntriesPlugin, error) {
	const insertQ = `
		WITH c AS (
			INSERT INTO cms_plugins (placeholder_id, plugin_type, language, position)
			VALUES (@placeholder_id, @plugin_type, @language, ` + nextPosition + `)
			RETURNING id, placeholder_id, plugin_type, language, position, body, created_at
		), l AS (
			INSERT INTO latest_entries_plugins (cms_plugin_id, latest_entries)
			SELECT c.id, @latest_entries::integer FROM c
			RETURNING latest_entries
		)
		SELECT ` + pluginColumns + `, l.latest_entries
		FROM c, l`

	row := q.QueryRow(ctx, insertQ, pgx.NamedArgs{
		"placeholder_id": p.PlaceholderID,
		"plugin_type":    domain.PluginTypeLatestEntries,
		"language":       p.Language,
		"latest_entries": p.LatestEntries,
	})
	result, err := scanLatestEntries(row)
	if err != nil {
		return domain.LatestEntriesPlugin{}, classify(err)
	}
	return result, nil
}

func insertSelectorTags(ctx context.Context, q db, id uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}
	const insertQ = `
		INSERT INTO latest_entries_plugin_tags (plugin_id, tag_id)
		SELECT @id::uuid, unnest(@tag_ids::uuid[])
		ON CONFLICT (plugin_id, tag_id) DO NOTHING`

	if _, err := q.Exec(ctx, insertQ, pgx.NamedArgs{"id": id, "tag_ids": tagIDs}); err != nil {
		return classify(err)
	}
	return nil
}

func copySelectorTags(ctx context.Context, q db, fromID, toID uuid.UUID) error {
	const copyQ = `
		INSERT INTO latest_entries_plugin_tags (plugin_id, tag_id)
		SELECT @to_id::uuid, tag_id
		FROM latest_entries_plugin_tags
		WHERE plugin_id = @from_id
		ON CONFLICT (plugin_id, tag_id) DO NOTHING`

	if _, err := q.Exec(ctx, copyQ, pgx.NamedArgs{"from_id": fromID, "to_id": toID}); err != nil {
		return classify(err)
	}
	return nil
}

func (r *pgLatestEntriesRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.LatestEntriesPlugin, error) {
	const q = `
		SELECT ` + pluginColumns + `, l.latest_entries
		FROM cms_plugins c
		JOIN latest_entries_plugins l ON l.cms_plugin_id = c.id
		WHERE c.id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanLatestEntries(row)
	if err != nil {
		return domain.LatestEntriesPlugin{}, fmt.Errorf("repo.LatestEntriesRepo.GetByID: %w", classify(err))
	}
	return result, nil
}

func (r *pgLatestEntriesRepo) Update(ctx context.Context, p domain.LatestEntriesPlugin) (domain.LatestEntriesPlugin, error) {
	const q = `
		UPDATE latest_entries_plugins l
		SET latest_entries = @latest_entries
		FROM cms_plugins c
		WHERE c.id = l.cms_plugin_id
		  AND l.cms_plugin_id = @id
		RETURNING ` + pluginColumns + `, l.latest_entries`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": p.ID, "latest_entries": p.LatestEntries})
	result, err := scanLatestEntries(row)
	if err != nil {
		return domain.LatestEntriesPlugin{}, fmt.Errorf("repo.LatestEntriesRepo.Update: %w", classify(err))
	}
	return result, nil
}

// Delete removes the cms_plugins row; configuration and tag links cascade.
func (r *pgLatestEntriesRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM cms_plugins WHERE id = @id AND plugin_type = @plugin_type`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "plugin_type": domain.PluginTypeLatestEntries})
	if err != nil {
		return fmt.Errorf("repo.LatestEntriesRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.LatestEntriesRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgLatestEntriesRepo) ListTags(ctx context.Context, id uuid.UUID) ([]domain.Tag, error) {
	const q = `
		SELECT t.id, t.name, t.slug, t.created_at
		FROM tags t
		JOIN latest_entries_plugin_tags lt ON lt.tag_id = t.id
		WHERE lt.plugin_id = @id
		ORDER BY t.slug`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, fmt.Errorf("repo.LatestEntriesRepo.ListTags: %w", err)
	}
	defer rows.Close()

	tags, err := collectTags(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.LatestEntriesRepo.ListTags: %w", err)
	}
	return tags, nil
}

// SetTags clears and re-inserts the associations inside one transaction.
func (r *pgLatestEntriesRepo) SetTags(ctx context.Context, id uuid.UUID, tagIDs []uuid.UUID) error {
	const clearQ = `DELETE FROM latest_entries_plugin_tags WHERE plugin_id = @id`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.LatestEntriesRepo.SetTags: begin: %w", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, clearQ, pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("repo.LatestEntriesRepo.SetTags: clear: %w", err)
	}
	if err := insertSelectorTags(ctx, tx, id, tagIDs); err != nil {
		return fmt.Errorf("repo.LatestEntriesRepo.SetTags: insert: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.LatestEntriesRepo.SetTags: commit: %w", err)
	}
	return nil
}

func (r *pgLatestEntriesRepo) CopyRelations(ctx context.Context, fromID, toID uuid.UUID) error {
	if err := copySelectorTags(ctx, r.db, fromID, toID); err != nil {
		return fmt.Errorf("repo.LatestEntriesRepo.CopyRelations: %w", err)
	}
	return nil
}

func scanLatestEntries(s scanner) (domain.LatestEntriesPlugin, error) {
	var p domain.LatestEntriesPlugin
	err := s.Scan(
		&p.ID, &p.PlaceholderID, &p.PluginType, &p.Language, &p.Position, &p.Body, &p.CreatedAt,
		&p.LatestEntries,
	)
	if err != nil {
		return domain.LatestEntriesPlugin{}, err
	}
	return p, nil
}
