package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/blog/internal/domain"
	"github.com/pkordes/blog/internal/repo"
	"github.com/pkordes/blog/testutil"
)

// repos bundles every repo backed by the same rolled-back transaction, so a
// test can build a full hierarchy (user -> post -> tag -> selector).
type repos struct {
	users         repo.UserRepo
	posts         repo.PostRepo
	tags          repo.TagRepo
	placeholders  repo.PlaceholderRepo
	plugins       repo.PluginRepo
	latestEntries repo.LatestEntriesRepo
}

func newTestRepos(t *testing.T) repos {
	t.Helper()
	tx := testutil.NewTx(t)
	return repos{
		users:         repo.NewUserRepo(tx),
		posts:         repo.NewPostRepo(tx),
		tags:          repo.NewTagRepo(tx),
		placeholders:  repo.NewPlaceholderRepo(tx),
		plugins:       repo.NewPluginRepo(tx),
		latestEntries: repo.NewLatestEntriesRepo(tx),
	}
}

func ptr[T any](v T) *T { return &v }

// mustCreateUser inserts an author with a random username.
func mustCreateUser(t *testing.T, r repos) domain.User {
	t.Helper()
	u, err := r.users.Create(context.Background(), domain.User{
		Username: "author-" + uuid.NewString()[:8],
		Email:    "author@example.com",
	})
	require.NoError(t, err, "create user")
	return u
}

// mustCreatePost inserts a post with the given slug, language and start.
func mustCreatePost(t *testing.T, r repos, author domain.User, slug string, lang *string, start time.Time) domain.Post {
	t.Helper()
	p, err := r.posts.Create(context.Background(), domain.Post{
		Title:            slug,
		Slug:             slug,
		Language:         lang,
		AuthorID:         author.ID,
		PublicationStart: start,
	})
	require.NoError(t, err, "create post %s", slug)
	return p
}
