package article

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveExcerpt(t *testing.T) {
	short := "짧은 글"
	assert.Equal(t, short, DeriveExcerpt(short))

	exact := strings.Repeat("a", ExcerptLength)
	assert.Equal(t, exact, DeriveExcerpt(exact))

	long := strings.Repeat("가", ExcerptLength+10)
	got := DeriveExcerpt(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, ExcerptLength+3, len([]rune(got)))
}

func TestSortNewestFirst(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	articles := []*Article{
		{ID: 1, PublishedAt: t1},
		{ID: 2, PublishedAt: t1.Add(48 * time.Hour)},
		{ID: 3, PublishedAt: t1.Add(24 * time.Hour)},
	}

	SortNewestFirst(articles)

	assert.Equal(t, 2, articles[0].ID)
	assert.Equal(t, 3, articles[1].ID)
	assert.Equal(t, 1, articles[2].ID)
}

func TestArticle_Matches(t *testing.T) {
	a := &Article{Title: "Go Concurrency", Excerpt: "채널과 고루틴"}

	assert.True(t, a.Matches("concurrency"))
	assert.True(t, a.Matches("고루틴"))
	assert.False(t, a.Matches("rust"))
}

func TestPatch_Apply(t *testing.T) {
	a := &Article{Title: "t", Content: "c", Views: 4}
	content := "new content"
	now := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)

	Patch{Content: &content}.Apply(a, now)

	assert.Equal(t, "t", a.Title)
	assert.Equal(t, "new content", a.Content)
	assert.Equal(t, 4, a.Views)
	assert.Equal(t, now, a.UpdatedAt)
}
