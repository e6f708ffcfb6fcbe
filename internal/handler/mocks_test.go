package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/blog/internal/domain"
	"github.com/pkordes/blog/internal/handler"
	"github.com/pkordes/blog/internal/repo"
	"github.com/pkordes/blog/internal/service"
)

// Each mock is a test double for one servicer interface.
// Set only the method fields your test needs.

type mockPostServicer struct {
	create             func(ctx context.Context, post domain.Post) (domain.Post, error)
	getByID            func(ctx context.Context, id uuid.UUID) (domain.Post, error)
	list               func(ctx context.Context, p domain.PaginationParams, filters ...repo.PostFilter) ([]domain.Post, int64, error)
	update             func(ctx context.Context, post domain.Post) (domain.Post, error)
	delete             func(ctx context.Context, id uuid.UUID) error
	listPublished      func(ctx context.Context, p domain.PaginationParams) ([]domain.Post, int64, error)
	getPublishedBySlug func(ctx context.Context, year, month, day int, slug string) (domain.Post, error)
}

func (m *mockPostServicer) Create(ctx context.Context, p domain.Post) (domain.Post, error) {
	return m.create(ctx, p)
}
func (m *mockPostServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Post, error) {
	return m.getByID(ctx, id)
}
func (m *mockPostServicer) List(ctx context.Context, p domain.PaginationParams, filters ...repo.PostFilter) ([]domain.Post, int64, error) {
	return m.list(ctx, p, filters...)
}
func (m *mockPostServicer) Update(ctx context.Context, p domain.Post) (domain.Post, error) {
	return m.update(ctx, p)
}
func (m *mockPostServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockPostServicer) ListPublished(ctx context.Context, p domain.PaginationParams) ([]domain.Post, int64, error) {
	return m.listPublished(ctx, p)
}
func (m *mockPostServicer) GetPublishedBySlug(ctx context.Context, year, month, day int, slug string) (domain.Post, error) {
	return m.getPublishedBySlug(ctx, year, month, day, slug)
}

type mockTagServicer struct {
	listPaged      func(ctx context.Context, prefix string, p domain.PaginationParams) ([]domain.Tag, int64, error)
	addToPost      func(ctx context.Context, postID uuid.UUID, name string) (domain.Tag, error)
	removeFromPost func(ctx context.Context, postID uuid.UUID, slug string) error
	listByPost     func(ctx context.Context, postID uuid.UUID) ([]domain.Tag, error)
}

func (m *mockTagServicer) ListPaged(ctx context.Context, prefix string, p domain.PaginationParams) ([]domain.Tag, int64, error) {
	return m.listPaged(ctx, prefix, p)
}
func (m *mockTagServicer) AddToPost(ctx context.Context, postID uuid.UUID, name string) (domain.Tag, error) {
	return m.addToPost(ctx, postID, name)
}
func (m *mockTagServicer) RemoveFromPost(ctx context.Context, postID uuid.UUID, slug string) error {
	return m.removeFromPost(ctx, postID, slug)
}
func (m *mockTagServicer) ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Tag, error) {
	return m.listByPost(ctx, postID)
}

type mockUserServicer struct {
	create  func(ctx context.Context, username, email string) (domain.User, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.User, error)
}

func (m *mockUserServicer) Create(ctx context.Context, username, email string) (domain.User, error) {
	return m.create(ctx, username, email)
}
func (m *mockUserServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.getByID(ctx, id)
}

type mockContentServicer struct {
	createPlaceholder func(ctx context.Context, slot string) (domain.Placeholder, error)
	getPlaceholder    func(ctx context.Context, id uuid.UUID) (domain.Placeholder, error)
	addPlugin         func(ctx context.Context, placeholderID uuid.UUID, in service.PluginInput) (domain.PluginInstance, error)
	listPlugins       func(ctx context.Context, placeholderID uuid.UUID) ([]domain.PluginInstance, error)
}

func (m *mockContentServicer) CreatePlaceholder(ctx context.Context, slot string) (domain.Placeholder, error) {
	return m.createPlaceholder(ctx, slot)
}
func (m *mockContentServicer) GetPlaceholder(ctx context.Context, id uuid.UUID) (domain.Placeholder, error) {
	return m.getPlaceholder(ctx, id)
}
func (m *mockContentServicer) AddPlugin(ctx context.Context, placeholderID uuid.UUID, in service.PluginInput) (domain.PluginInstance, error) {
	return m.addPlugin(ctx, placeholderID, in)
}
func (m *mockContentServicer) ListPlugins(ctx context.Context, placeholderID uuid.UUID) ([]domain.PluginInstance, error) {
	return m.listPlugins(ctx, placeholderID)
}

type mockLatestEntriesServicer struct {
	getPosts func(ctx context.Context, id uuid.UUID) ([]domain.Post, error)
	create   func(ctx context.Context, placeholderID uuid.UUID, in service.LatestEntriesInput) (domain.LatestEntriesPlugin, error)
	get      func(ctx context.Context, id uuid.UUID) (domain.LatestEntriesPlugin, error)
	update   func(ctx context.Context, id uuid.UUID, in service.LatestEntriesInput) (domain.LatestEntriesPlugin, error)
	setTags  func(ctx context.Context, id uuid.UUID, slugs []string) (domain.LatestEntriesPlugin, error)
	delete   func(ctx context.Context, id uuid.UUID) error
	copy     func(ctx context.Context, id, target uuid.UUID) (domain.LatestEntriesPlugin, error)
}

func (m *mockLatestEntriesServicer) GetPosts(ctx context.Context, id uuid.UUID) ([]domain.Post, error) {
	return m.getPosts(ctx, id)
}
func (m *mockLatestEntriesServicer) Create(ctx context.Context, placeholderID uuid.UUID, in service.LatestEntriesInput) (domain.LatestEntriesPlugin, error) {
	return m.create(ctx, placeholderID, in)
}
func (m *mockLatestEntriesServicer) Get(ctx context.Context, id uuid.UUID) (domain.LatestEntriesPlugin, error) {
	return m.get(ctx, id)
}
func (m *mockLatestEntriesServicer) Update(ctx context.Context, id uuid.UUID, in service.LatestEntriesInput) (domain.LatestEntriesPlugin, error) {
	return m.update(ctx, id, in)
}
func (m *mockLatestEntriesServicer) SetTags(ctx context.Context, id uuid.UUID, slugs []string) (domain.LatestEntriesPlugin, error) {
	return m.setTags(ctx, id, slugs)
}
func (m *mockLatestEntriesServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockLatestEntriesServicer) Copy(ctx context.Context, id, target uuid.UUID) (domain.LatestEntriesPlugin, error) {
	return m.copy(ctx, id, target)
}

type mockExportServicer struct {
	export func(ctx context.Context) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context) ([]domain.ExportRow, error) {
	return m.export(ctx)
}

// compile-time checks: mocks and services must satisfy the handler interfaces.
var (
	_ handler.PostServicer          = (*mockPostServicer)(nil)
	_ handler.TagServicer           = (*mockTagServicer)(nil)
	_ handler.UserServicer          = (*mockUserServicer)(nil)
	_ handler.ContentServicer       = (*mockContentServicer)(nil)
	_ handler.LatestEntriesServicer = (*mockLatestEntriesServicer)(nil)
	_ handler.ExportServicer        = (*mockExportServicer)(nil)

	_ handler.PostServicer          = (*service.PostService)(nil)
	_ handler.TagServicer           = (*service.TagService)(nil)
	_ handler.UserServicer          = (*service.UserService)(nil)
	_ handler.ContentServicer       = (*service.ContentService)(nil)
	_ handler.LatestEntriesServicer = (*service.LatestEntriesService)(nil)
	_ handler.ExportServicer        = (*service.ExportService)(nil)
)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into its chi router.
// This mirrors how main.go mounts it in production.
func newHTTPHandler(svc handler.Services) http.Handler {
	return handler.NewServer(svc, nil).Routes()
}

func ptr[T any](v T) *T { return &v }

func postFixture() domain.Post {
	content := uuid.New()
	return domain.Post{
		ID:               uuid.New(),
		Title:            "Hello World",
		Slug:             "hello-world",
		Language:         ptr("en"),
		LeadIn:           "<p>hi</p>",
		ContentID:        &content,
		AuthorID:         uuid.New(),
		PublicationStart: time.Date(2025, 3, 7, 9, 0, 0, 0, time.UTC),
		Tags:             []domain.Tag{},
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
}

func tagFixture() domain.Tag {
	return domain.Tag{
		ID:        uuid.New(),
		Name:      "Go Tips",
		Slug:      "go-tips",
		CreatedAt: time.Now().UTC(),
	}
}

func selectorFixture() domain.LatestEntriesPlugin {
	return domain.LatestEntriesPlugin{
		PluginInstance: domain.PluginInstance{
			ID:            uuid.New(),
			PlaceholderID: uuid.New(),
			PluginType:    domain.PluginTypeLatestEntries,
			Language:      "en",
			CreatedAt:     time.Now().UTC(),
		},
		LatestEntries: 5,
		Tags:          []domain.Tag{},
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, body *bytes.Buffer) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}
