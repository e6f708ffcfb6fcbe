package service_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/pkordes/blog/internal/domain"
	"github.com/pkordes/blog/internal/repo"
)

// ---- mock PostRepo ---------------------------------------------------------

type mockPostRepo struct {
	create  func(ctx context.Context, post domain.Post) (domain.Post, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Post, error)
	find    func(ctx context.Context, filters ...repo.PostFilter) ([]domain.Post, error)
	count   func(ctx context.Context, filters ...repo.PostFilter) (int64, error)
	update  func(ctx context.Context, post domain.Post) (domain.Post, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockPostRepo) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	return m.create(ctx, post)
}
func (m *mockPostRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Post, error) {
	return m.getByID(ctx, id)
}
func (m *mockPostRepo) Find(ctx context.Context, filters ...repo.PostFilter) ([]domain.Post, error) {
	return m.find(ctx, filters...)
}
func (m *mockPostRepo) Count(ctx context.Context, filters ...repo.PostFilter) (int64, error) {
	return m.count(ctx, filters...)
}
func (m *mockPostRepo) Update(ctx context.Context, post domain.Post) (domain.Post, error) {
	return m.update(ctx, post)
}
func (m *mockPostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// ---- mock TagRepo ----------------------------------------------------------

type mockTagRepo struct {
	upsert         func(ctx context.Context, name, slug string) (domain.Tag, error)
	list           func(ctx context.Context, prefix string) ([]domain.Tag, error)
	listPaged      func(ctx context.Context, prefix string, p domain.PaginationParams) ([]domain.Tag, int64, error)
	getBySlugs     func(ctx context.Context, slugs []string) ([]domain.Tag, error)
	addToPost      func(ctx context.Context, postID, tagID uuid.UUID) error
	removeFromPost func(ctx context.Context, postID uuid.UUID, slug string) error
	listByPost     func(ctx context.Context, postID uuid.UUID) ([]domain.Tag, error)
	listByPosts    func(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]domain.Tag, error)
}

func (m *mockTagRepo) Upsert(ctx context.Context, name, slug string) (domain.Tag, error) {
	return m.upsert(ctx, name, slug)
}
func (m *mockTagRepo) List(ctx context.Context, prefix string) ([]domain.Tag, error) {
	return m.list(ctx, prefix)
}
func (m *mockTagRepo) ListPaged(ctx context.Context, prefix string, p domain.PaginationParams) ([]domain.Tag, int64, error) {
	return m.listPaged(ctx, prefix, p)
}
func (m *mockTagRepo) GetBySlugs(ctx context.Context, slugs []string) ([]domain.Tag, error) {
	return m.getBySlugs(ctx, slugs)
}
func (m *mockTagRepo) AddToPost(ctx context.Context, postID, tagID uuid.UUID) error {
	return m.addToPost(ctx, postID, tagID)
}
func (m *mockTagRepo) RemoveFromPost(ctx context.Context, postID uuid.UUID, slug string) error {
	return m.removeFromPost(ctx, postID, slug)
}
func (m *mockTagRepo) ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Tag, error) {
	return m.listByPost(ctx, postID)
}

// ListByPosts returns no tags when the test did not configure it, since
// nearly every PostService read goes through it.
func (m *mockTagRepo) ListByPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]domain.Tag, error) {
	if m.listByPosts == nil {
		return map[uuid.UUID][]domain.Tag{}, nil
	}
	return m.listByPosts(ctx, postIDs)
}

// ---- mock UserRepo ---------------------------------------------------------

type mockUserRepo struct {
	create  func(ctx context.Context, user domain.User) (domain.User, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	return m.create(ctx, user)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.getByID(ctx, id)
}

// ---- mock PlaceholderRepo --------------------------------------------------

type mockPlaceholderRepo struct {
	create  func(ctx context.Context, slot string) (domain.Placeholder, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Placeholder, error)
}

func (m *mockPlaceholderRepo) Create(ctx context.Context, slot string) (domain.Placeholder, error) {
	return m.create(ctx, slot)
}
func (m *mockPlaceholderRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Placeholder, error) {
	return m.getByID(ctx, id)
}

// ---- mock PluginRepo -------------------------------------------------------

type mockPluginRepo struct {
	create                   func(ctx context.Context, p domain.PluginInstance) (domain.PluginInstance, error)
	listByPlaceholder        func(ctx context.Context, placeholderID uuid.UUID) ([]domain.PluginInstance, error)
	setLanguageByPlaceholder func(ctx context.Context, placeholderID uuid.UUID, lang string) (int64, error)
}

func (m *mockPluginRepo) Create(ctx context.Context, p domain.PluginInstance) (domain.PluginInstance, error) {
	return m.create(ctx, p)
}
func (m *mockPluginRepo) ListByPlaceholder(ctx context.Context, placeholderID uuid.UUID) ([]domain.PluginInstance, error) {
	return m.listByPlaceholder(ctx, placeholderID)
}
func (m *mockPluginRepo) SetLanguageByPlaceholder(ctx context.Context, placeholderID uuid.UUID, lang string) (int64, error) {
	return m.setLanguageByPlaceholder(ctx, placeholderID, lang)
}

// ---- mock LatestEntriesRepo ------------------------------------------------

type mockLatestEntriesRepo struct {
	create        func(ctx context.Context, p domain.LatestEntriesPlugin, tagIDs []uuid.UUID) (domain.LatestEntriesPlugin, error)
	copy          func(ctx context.Context, fromID uuid.UUID, p domain.LatestEntriesPlugin) (domain.LatestEntriesPlugin, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.LatestEntriesPlugin, error)
	update        func(ctx context.Context, p domain.LatestEntriesPlugin) (domain.LatestEntriesPlugin, error)
	delete        func(ctx context.Context, id uuid.UUID) error
	listTags      func(ctx context.Context, id uuid.UUID) ([]domain.Tag, error)
	setTags       func(ctx context.Context, id uuid.UUID, tagIDs []uuid.UUID) error
	copyRelations func(ctx context.Context, fromID, toID uuid.UUID) error
}

func (m *mockLatestEntriesRepo) Create(ctx context.Context, p domain.LatestEntriesPlugin, tagIDs []uuid.UUID) (domain.LatestEntriesPlugin, error) {
	return m.create(ctx, p, tagIDs)
}
func (m *mockLatestEntriesRepo) Copy(ctx context.Context, fromID uuid.UUID, p domain.LatestEntriesPlugin) (domain.LatestEntriesPlugin, error) {
	return m.copy(ctx, fromID, p)
}
func (m *mockLatestEntriesRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.LatestEntriesPlugin, error) {
	return m.getByID(ctx, id)
}
func (m *mockLatestEntriesRepo) Update(ctx context.Context, p domain.LatestEntriesPlugin) (domain.LatestEntriesPlugin, error) {
	return m.update(ctx, p)
}
func (m *mockLatestEntriesRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockLatestEntriesRepo) ListTags(ctx context.Context, id uuid.UUID) ([]domain.Tag, error) {
	return m.listTags(ctx, id)
}
func (m *mockLatestEntriesRepo) SetTags(ctx context.Context, id uuid.UUID, tagIDs []uuid.UUID) error {
	return m.setTags(ctx, id, tagIDs)
}
func (m *mockLatestEntriesRepo) CopyRelations(ctx context.Context, fromID, toID uuid.UUID) error {
	return m.copyRelations(ctx, fromID, toID)
}

// compile-time checks
var (
	_ repo.PostRepo          = (*mockPostRepo)(nil)
	_ repo.TagRepo           = (*mockTagRepo)(nil)
	_ repo.UserRepo          = (*mockUserRepo)(nil)
	_ repo.PlaceholderRepo   = (*mockPlaceholderRepo)(nil)
	_ repo.PluginRepo        = (*mockPluginRepo)(nil)
	_ repo.LatestEntriesRepo = (*mockLatestEntriesRepo)(nil)
)

// langSet is a LanguageSet over a fixed list.
type langSet []string

func (l langSet) IsSupported(lang string) bool {
	for _, s := range l {
		if s == lang {
			return true
		}
	}
	return false
}

func ptr[T any](v T) *T { return &v }
