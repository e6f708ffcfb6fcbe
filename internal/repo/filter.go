package repo

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/blog/internal/domain"
)

// PostFilter narrows a post query. Filters are plain functions so callers can
// compose them in any order; each one only appends a condition, so earlier
// filters are never undone by later ones. Results are always ordered by
// publication_start descending.
type PostFilter func(*postQuery)

// postQuery accumulates WHERE conditions and named arguments for one statement.
type postQuery struct {
	where  []string
	args   pgx.NamedArgs
	limit  *int
	offset int
}

func newPostQuery(filters []PostFilter) *postQuery {
	q := &postQuery{args: pgx.NamedArgs{}}
	for _, f := range filters {
		if f != nil {
			f(q)
		}
	}
	return q
}

// bind registers v under a fresh argument name and returns the placeholder.
// Fresh names let the same filter be applied twice without clobbering.
func (q *postQuery) bind(v any) string {
	name := fmt.Sprintf("f%d", len(q.args)+1)
	q.args[name] = v
	return "@" + name
}

// InLanguage keeps posts without a language and posts in lang.
func InLanguage(lang string) PostFilter {
	return func(q *postQuery) {
		q.where = append(q.where, fmt.Sprintf("(p.language IS NULL OR p.language = %s)", q.bind(lang)))
	}
}

// PublishedAt keeps posts whose publication window contains now.
// Both bounds are inclusive.
func PublishedAt(now time.Time) PostFilter {
	return func(q *postQuery) {
		at := q.bind(now)
		q.where = append(q.where,
			fmt.Sprintf("p.publication_start <= %s", at),
			fmt.Sprintf("(p.publication_end IS NULL OR p.publication_end >= %s)", at),
		)
	}
}

// TaggedWithAny keeps posts carrying at least one of tagIDs. Each post is
// returned once even when it matches several tags. With no IDs it is a no-op.
func TaggedWithAny(tagIDs ...uuid.UUID) PostFilter {
	return func(q *postQuery) {
		if len(tagIDs) == 0 {
			return
		}
		q.where = append(q.where, fmt.Sprintf(
			"p.id IN (SELECT pt.post_id FROM post_tags pt WHERE pt.tag_id = ANY(%s::uuid[]))", q.bind(tagIDs)))
	}
}

// WithSlug keeps the post with the given slug.
func WithSlug(slug string) PostFilter {
	return func(q *postQuery) {
		q.where = append(q.where, fmt.Sprintf("p.slug = %s", q.bind(slug)))
	}
}

// Limit caps the number of returned posts. Negative values are treated as 0.
func Limit(n int) PostFilter {
	return func(q *postQuery) {
		n := max(n, 0)
		q.limit = &n
	}
}

// Page applies LIMIT/OFFSET from p.
func Page(p domain.PaginationParams) PostFilter {
	return func(q *postQuery) {
		limit := p.Limit
		q.limit = &limit
		q.offset = p.Offset()
	}
}

func (q *postQuery) writeWhere(b *strings.Builder) {
	if len(q.where) == 0 {
		return
	}
	b.WriteString("\nWHERE ")
	b.WriteString(strings.Join(q.where, "\n  AND "))
}

// selectSQL renders the full SELECT including ordering and paging.
func (q *postQuery) selectSQL() string {
	var b strings.Builder
	b.WriteString("SELECT " + postColumns + "\nFROM posts p")
	q.writeWhere(&b)
	b.WriteString("\nORDER BY p.publication_start DESC, p.id")
	if q.limit != nil {
		b.WriteString("\nLIMIT " + q.bind(*q.limit))
	}
	if q.offset > 0 {
		b.WriteString("\nOFFSET " + q.bind(q.offset))
	}
	return b.String()
}

// countSQL renders a COUNT over the same conditions, ignoring paging.
func (q *postQuery) countSQL() string {
	var b strings.Builder
	b.WriteString("SELECT count(*)\nFROM posts p")
	q.writeWhere(&b)
	return b.String()
}

// Render returns the SELECT and arguments the filters produce. Services use it
// for debug logging; it never touches the database.
func Render(filters ...PostFilter) (string, pgx.NamedArgs) {
	q := newPostQuery(filters)
	sql := q.selectSQL()
	return sql, q.args
}
