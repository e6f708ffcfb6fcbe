package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/blog/internal/domain"
	"github.com/pkordes/blog/internal/i18n"
	"github.com/pkordes/blog/internal/repo"
	"github.com/pkordes/blog/internal/service"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// echoCreate is a PostRepo.create that returns its input with DB fields set.
func echoCreate(_ context.Context, p domain.Post) (domain.Post, error) {
	p.ID = uuid.New()
	p.ContentID = ptr(uuid.New())
	p.CreatedAt = fixedNow
	p.UpdatedAt = fixedNow
	return p, nil
}

func newPostService(posts repo.PostRepo, opts ...service.PostOption) *service.PostService {
	opts = append([]service.PostOption{service.WithClock(fixedClock)}, opts...)
	return service.NewPostService(posts, &mockTagRepo{}, opts...)
}

func validPost() domain.Post {
	return domain.Post{Title: "Hello World", AuthorID: uuid.New()}
}

// ---- slug assignment -------------------------------------------------------

func TestPostService_Create_DerivesSlug(t *testing.T) {
	var captured domain.Post
	svc := newPostService(&mockPostRepo{
		create: func(ctx context.Context, p domain.Post) (domain.Post, error) {
			captured = p
			return echoCreate(ctx, p)
		},
	})

	got, err := svc.Create(context.Background(), validPost())

	require.NoError(t, err)
	assert.Equal(t, "hello-world", captured.Slug)
	assert.Equal(t, "hello-world", got.Slug)
	assert.NotNil(t, got.Tags)
}

func TestPostService_Save_KeepsExplicitSlug(t *testing.T) {
	var slugs []string
	posts := &mockPostRepo{
		create: func(ctx context.Context, p domain.Post) (domain.Post, error) {
			slugs = append(slugs, p.Slug)
			return echoCreate(ctx, p)
		},
		update: func(_ context.Context, p domain.Post) (domain.Post, error) {
			slugs = append(slugs, p.Slug)
			return p, nil
		},
	}
	svc := newPostService(posts)

	in := validPost()
	in.Slug = "custom-slug"
	created, err := svc.Save(context.Background(), in)
	require.NoError(t, err)

	created.Title = "A Completely Different Title"
	_, err = svc.Save(context.Background(), created)
	require.NoError(t, err)

	assert.Equal(t, []string{"custom-slug", "custom-slug"}, slugs)
}

func TestPostService_Create_DuplicateSlugIsConflict(t *testing.T) {
	seen := map[string]bool{}
	svc := newPostService(&mockPostRepo{
		create: func(ctx context.Context, p domain.Post) (domain.Post, error) {
			if seen[p.Slug] {
				pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "posts_slug_key"}
				return domain.Post{}, fmt.Errorf("repo.PostRepo.Create: %w", fmt.Errorf("%w: %w", domain.ErrConflict, pgErr))
			}
			seen[p.Slug] = true
			return echoCreate(ctx, p)
		},
	})

	_, err := svc.Create(context.Background(), validPost())
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), validPost())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr), "storage error must stay reachable")
	assert.Equal(t, "23505", pgErr.Code)
}

// ---- validation ------------------------------------------------------------

func TestPostService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *domain.Post)
	}{
		{"missing title", func(p *domain.Post) { p.Title = "   " }},
		{"title without slug characters", func(p *domain.Post) { p.Title = "!!!" }},
		{"missing author", func(p *domain.Post) { p.AuthorID = uuid.Nil }},
		{"unsupported language", func(p *domain.Post) { p.Language = ptr("ja") }},
		{"end before start", func(p *domain.Post) {
			p.PublicationStart = fixedNow
			p.PublicationEnd = ptr(fixedNow.Add(-time.Second))
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newPostService(&mockPostRepo{}, service.WithLanguages(langSet{"en", "de"}))
			p := validPost()
			tc.mutate(&p)

			_, err := svc.Create(context.Background(), p)

			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestPostService_Create_Normalizes(t *testing.T) {
	var captured domain.Post
	svc := newPostService(&mockPostRepo{
		create: func(ctx context.Context, p domain.Post) (domain.Post, error) {
			captured = p
			return echoCreate(ctx, p)
		},
	})

	in := validPost()
	in.Language = ptr("")
	in.LeadIn = `<p>Intro</p><script>alert(1)</script>`
	_, err := svc.Create(context.Background(), in)

	require.NoError(t, err)
	assert.Nil(t, captured.Language, "empty language means all languages")
	assert.Equal(t, fixedNow, captured.PublicationStart, "start defaults to the clock")
	assert.Equal(t, "<p>Intro</p>", captured.LeadIn)
}

func TestPostService_Create_EndEqualsStartAllowed(t *testing.T) {
	svc := newPostService(&mockPostRepo{create: echoCreate})
	p := validPost()
	p.PublicationStart = fixedNow
	p.PublicationEnd = ptr(fixedNow)

	_, err := svc.Create(context.Background(), p)

	assert.NoError(t, err)
}

func TestPostService_Update_KeepsStoredStart(t *testing.T) {
	stored := fixedNow.Add(-48 * time.Hour)
	var captured domain.Post
	svc := newPostService(&mockPostRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Post, error) {
			return domain.Post{ID: id, PublicationStart: stored}, nil
		},
		update: func(_ context.Context, p domain.Post) (domain.Post, error) {
			captured = p
			return p, nil
		},
	})

	p := validPost()
	p.ID = uuid.New()
	_, err := svc.Update(context.Background(), p)

	require.NoError(t, err)
	assert.Equal(t, stored, captured.PublicationStart)
}

func TestPostService_Update_NotFound(t *testing.T) {
	svc := newPostService(&mockPostRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Post, error) {
			return domain.Post{}, domain.ErrNotFound
		},
	})

	p := validPost()
	p.ID = uuid.New()
	_, err := svc.Update(context.Background(), p)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostService_Update_TagLoadFailureReturnsPost(t *testing.T) {
	var hooked bool
	hook := service.PostSaveHookFunc(func(context.Context, domain.Post) error {
		hooked = true
		return nil
	})
	tags := &mockTagRepo{
		listByPosts: func(context.Context, []uuid.UUID) (map[uuid.UUID][]domain.Tag, error) {
			return nil, errors.New("tags unavailable")
		},
	}
	svc := service.NewPostService(&mockPostRepo{
		update: func(_ context.Context, p domain.Post) (domain.Post, error) { return p, nil },
	}, tags, service.WithClock(fixedClock), service.WithSaveHooks(hook))

	p := validPost()
	p.ID = uuid.New()
	p.PublicationStart = fixedNow
	got, err := svc.Update(context.Background(), p)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "tags unavailable")
	assert.Equal(t, p.ID, got.ID, "the committed post is still returned")
	assert.NotNil(t, got.Tags)
	assert.True(t, hooked, "hooks still run after the write")
}

// ---- hooks -----------------------------------------------------------------

func TestPostService_Create_RunsHooksAfterWrite(t *testing.T) {
	var order []string
	hook := service.PostSaveHookFunc(func(_ context.Context, p domain.Post) error {
		order = append(order, "hook:"+p.Slug)
		return nil
	})
	svc := newPostService(&mockPostRepo{
		create: func(ctx context.Context, p domain.Post) (domain.Post, error) {
			order = append(order, "write")
			return echoCreate(ctx, p)
		},
	}, service.WithSaveHooks(hook))

	_, err := svc.Create(context.Background(), validPost())

	require.NoError(t, err)
	assert.Equal(t, []string{"write", "hook:hello-world"}, order)
}

func TestPostService_Create_HookErrorReturnsPost(t *testing.T) {
	hook := service.PostSaveHookFunc(func(context.Context, domain.Post) error {
		return errors.New("plugins unavailable")
	})
	svc := newPostService(&mockPostRepo{create: echoCreate}, service.WithSaveHooks(hook))

	got, err := svc.Create(context.Background(), validPost())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "plugins unavailable")
	assert.NotEqual(t, uuid.Nil, got.ID, "the committed post is still returned")
}

// ---- visibility ------------------------------------------------------------

// capturingFind records the filters of the last Find call.
func capturingFind(out *[]repo.PostFilter, result []domain.Post) func(context.Context, ...repo.PostFilter) ([]domain.Post, error) {
	return func(_ context.Context, filters ...repo.PostFilter) ([]domain.Post, error) {
		*out = filters
		return result, nil
	}
}

func TestPostService_FilterByCurrentLanguage(t *testing.T) {
	var filters []repo.PostFilter
	svc := newPostService(&mockPostRepo{find: capturingFind(&filters, nil)})
	ctx := i18n.WithLanguage(context.Background(), "de")

	got, err := svc.FilterByCurrentLanguage(ctx, repo.Limit(2))

	require.NoError(t, err)
	assert.NotNil(t, got)
	sql, args := repo.Render(filters...)
	assert.Contains(t, sql, "p.language IS NULL OR p.language = @f1")
	assert.Contains(t, sql, "LIMIT")
	assert.Equal(t, "de", args["f1"])
	assert.NotContains(t, sql, "publication_start <=", "language filter does not imply publication")
}

func TestPostService_Published_EvaluatesClockPerCall(t *testing.T) {
	var filters []repo.PostFilter
	current := fixedNow
	svc := service.NewPostService(
		&mockPostRepo{find: capturingFind(&filters, nil)},
		&mockTagRepo{},
		service.WithClock(func() time.Time { return current }),
	)

	_, err := svc.Published(context.Background())
	require.NoError(t, err)
	_, first := repo.Render(filters...)

	current = fixedNow.Add(time.Hour)
	_, err = svc.Published(context.Background())
	require.NoError(t, err)
	sql, second := repo.Render(filters...)

	assert.Equal(t, fixedNow, first["f1"])
	assert.Equal(t, fixedNow.Add(time.Hour), second["f1"])
	assert.NotContains(t, sql, "p.language IS NULL", "publication filter does not imply language")
}

func TestPostService_ListPublished(t *testing.T) {
	var countFilters, findFilters []repo.PostFilter
	svc := newPostService(&mockPostRepo{
		count: func(_ context.Context, f ...repo.PostFilter) (int64, error) {
			countFilters = f
			return 42, nil
		},
		find: capturingFind(&findFilters, []domain.Post{{ID: uuid.New()}}),
	})
	ctx := i18n.WithLanguage(context.Background(), "fr")

	got, total, err := svc.ListPublished(ctx, domain.PaginationParams{Page: 2, Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, int64(42), total)
	require.Len(t, got, 1)
	assert.NotNil(t, got[0].Tags)
	assert.Len(t, countFilters, 2)
	sql, args := repo.Render(findFilters...)
	assert.Contains(t, sql, "p.publication_start <=")
	assert.Contains(t, sql, "p.language =")
	assert.Contains(t, sql, "OFFSET")
	assert.Contains(t, args, "f2")
	assert.Equal(t, "fr", args["f2"])
}

func TestPostService_GetPublishedBySlug(t *testing.T) {
	start := time.Date(2025, 3, 7, 9, 0, 0, 0, time.UTC)
	post := domain.Post{ID: uuid.New(), Slug: "hello", PublicationStart: start}
	svc := newPostService(&mockPostRepo{
		find: func(context.Context, ...repo.PostFilter) ([]domain.Post, error) {
			return []domain.Post{post}, nil
		},
	})

	got, err := svc.GetPublishedBySlug(context.Background(), 2025, 3, 7, "hello")
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)

	_, err = svc.GetPublishedBySlug(context.Background(), 2025, 3, 8, "hello")
	assert.ErrorIs(t, err, domain.ErrNotFound, "date segments must match")
}

func TestPostService_GetByID_AttachesTags(t *testing.T) {
	id := uuid.New()
	tag := domain.Tag{ID: uuid.New(), Slug: "go"}
	svc := service.NewPostService(
		&mockPostRepo{getByID: func(_ context.Context, id uuid.UUID) (domain.Post, error) {
			return domain.Post{ID: id}, nil
		}},
		&mockTagRepo{listByPosts: func(_ context.Context, ids []uuid.UUID) (map[uuid.UUID][]domain.Tag, error) {
			assert.Equal(t, []uuid.UUID{id}, ids)
			return map[uuid.UUID][]domain.Tag{id: {tag}}, nil
		}},
	)

	got, err := svc.GetByID(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, []domain.Tag{tag}, got.Tags)
}

func TestPostService_Delete_PropagatesNotFound(t *testing.T) {
	svc := newPostService(&mockPostRepo{
		delete: func(context.Context, uuid.UUID) error { return domain.ErrNotFound },
	})

	err := svc.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
