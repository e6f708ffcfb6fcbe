package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/blog/internal/domain"
	"github.com/pkordes/blog/internal/i18n"
	"github.com/pkordes/blog/internal/repo"
)

// PluginInput carries the fields of a generic plugin instance.
type PluginInput struct {
	PluginType string
	Language   string
	Body       string
}

// ContentService manages placeholders and the generic plugins inside them.
// Latest-entries selectors have their own service.
type ContentService struct {
	placeholders repo.PlaceholderRepo
	plugins      repo.PluginRepo
	languages    LanguageSet
}

// NewContentService constructs a ContentService. languages may be nil.
func NewContentService(placeholders repo.PlaceholderRepo, plugins repo.PluginRepo, languages LanguageSet) *ContentService {
	return &ContentService{placeholders: placeholders, plugins: plugins, languages: languages}
}

// CreatePlaceholder creates an empty content block named slot.
func (s *ContentService) CreatePlaceholder(ctx context.Context, slot string) (domain.Placeholder, error) {
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return domain.Placeholder{}, fmt.Errorf("service.ContentService.CreatePlaceholder: %w: slot is required", domain.ErrValidation)
	}
	p, err := s.placeholders.Create(ctx, slot)
	if err != nil {
		return domain.Placeholder{}, fmt.Errorf("service.ContentService.CreatePlaceholder: %w", err)
	}
	return p, nil
}

// GetPlaceholder returns a single placeholder.
func (s *ContentService) GetPlaceholder(ctx context.Context, id uuid.UUID) (domain.Placeholder, error) {
	p, err := s.placeholders.GetByID(ctx, id)
	if err != nil {
		return domain.Placeholder{}, fmt.Errorf("service.ContentService.GetPlaceholder: %w", err)
	}
	return p, nil
}

// AddPlugin appends a generic plugin to the placeholder. Body, when set, must
// be valid JSON. An empty Language defaults to the language active in ctx.
func (s *ContentService) AddPlugin(ctx context.Context, placeholderID uuid.UUID, in PluginInput) (domain.PluginInstance, error) {
	in.PluginType = strings.TrimSpace(in.PluginType)
	switch in.PluginType {
	case "":
		return domain.PluginInstance{}, fmt.Errorf("service.ContentService.AddPlugin: %w: plugin_type is required", domain.ErrValidation)
	case domain.PluginTypeLatestEntries:
		return domain.PluginInstance{}, fmt.Errorf("service.ContentService.AddPlugin: %w: use the latest-entries endpoint for %s", domain.ErrValidation, in.PluginType)
	}
	if in.Body != "" && !json.Valid([]byte(in.Body)) {
		return domain.PluginInstance{}, fmt.Errorf("service.ContentService.AddPlugin: %w: body must be valid JSON", domain.ErrValidation)
	}

	lang := strings.ToLower(strings.TrimSpace(in.Language))
	if lang == "" {
		lang = i18n.FromContext(ctx)
	} else if s.languages != nil && !s.languages.IsSupported(lang) {
		return domain.PluginInstance{}, fmt.Errorf("service.ContentService.AddPlugin: %w: unsupported language %q", domain.ErrValidation, lang)
	}

	p, err := s.plugins.Create(ctx, domain.PluginInstance{
		PlaceholderID: placeholderID,
		PluginType:    in.PluginType,
		Language:      lang,
		Body:          in.Body,
	})
	if err != nil {
		return domain.PluginInstance{}, fmt.Errorf("service.ContentService.AddPlugin: %w", err)
	}
	return p, nil
}

// ListPlugins returns every plugin of the placeholder in position order.
// Returns domain.ErrNotFound if the placeholder does not exist.
func (s *ContentService) ListPlugins(ctx context.Context, placeholderID uuid.UUID) ([]domain.PluginInstance, error) {
	if _, err := s.placeholders.GetByID(ctx, placeholderID); err != nil {
		return nil, fmt.Errorf("service.ContentService.ListPlugins: %w", err)
	}
	plugins, err := s.plugins.ListByPlaceholder(ctx, placeholderID)
	if err != nil {
		return nil, fmt.Errorf("service.ContentService.ListPlugins: %w", err)
	}
	if plugins == nil {
		plugins = []domain.PluginInstance{}
	}
	return plugins, nil
}
