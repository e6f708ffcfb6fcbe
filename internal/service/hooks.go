package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/blog/internal/domain"
	"github.com/pkordes/blog/internal/repo"
)

// PostSaveHook runs after a post write has been committed.
type PostSaveHook interface {
	AfterSave(ctx context.Context, post domain.Post) error
}

// PostSaveHookFunc adapts a function to PostSaveHook.
type PostSaveHookFunc func(ctx context.Context, post domain.Post) error

func (f PostSaveHookFunc) AfterSave(ctx context.Context, post domain.Post) error {
	return f(ctx, post)
}

// ContentLanguageHook forces every plugin inside a post's content block to
// one configured language, independent of the post's own language.
type ContentLanguageHook struct {
	plugins repo.PluginRepo
	lang    string
	logger  *slog.Logger
}

// NewContentLanguageHook returns a hook that sets plugins to lang.
func NewContentLanguageHook(plugins repo.PluginRepo, lang string, logger *slog.Logger) *ContentLanguageHook {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ContentLanguageHook{plugins: plugins, lang: lang, logger: logger}
}

// Language returns the target language.
func (h *ContentLanguageHook) Language() string { return h.lang }

// Apply sets the language of every plugin in placeholderID and returns the
// number of rows updated.
func (h *ContentLanguageHook) Apply(ctx context.Context, placeholderID uuid.UUID) (int64, error) {
	n, err := h.plugins.SetLanguageByPlaceholder(ctx, placeholderID, h.lang)
	if err != nil {
		return 0, fmt.Errorf("service.ContentLanguageHook.Apply: %w", err)
	}
	return n, nil
}

// AfterSave is a no-op for posts without a content block.
func (h *ContentLanguageHook) AfterSave(ctx context.Context, post domain.Post) error {
	if post.ContentID == nil {
		return nil
	}
	n, err := h.Apply(ctx, *post.ContentID)
	if err != nil {
		return err
	}
	h.logger.InfoContext(ctx, "content plugins normalised",
		slog.String("post_id", post.ID.String()),
		slog.String("placeholder_id", post.ContentID.String()),
		slog.String("language", h.lang),
		slog.Int64("updated", n),
	)
	return nil
}
