// Package article contains the standalone Article entity.
package article

import (
	"slices"
	"strings"
	"time"
)

const (
	// PlaceholderAuthorID is stamped on every new article until authors exist.
	PlaceholderAuthorID = 1

	// ExcerptLength is the number of characters kept by DeriveExcerpt.
	ExcerptLength = 150

	excerptEllipsis = "..."
)

// Article is a published insight piece.
type Article struct {
	ID           int       `json:"Id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Excerpt      string    `json:"excerpt"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	AuthorID     int       `json:"authorId"`
	PublishedAt  time.Time `json:"publishedAt"`
	Views        int       `json:"views"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Clone returns a copy that shares no memory with a.
func (a *Article) Clone() *Article {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}

// Matches reports whether the lower-cased query occurs in the title or the
// excerpt. An empty query matches everything.
func (a *Article) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(a.Title), q) ||
		strings.Contains(strings.ToLower(a.Excerpt), q)
}

// DeriveExcerpt returns the first ExcerptLength characters of content,
// followed by "..." when content is longer.
func DeriveExcerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= ExcerptLength {
		return content
	}
	return string(runes[:ExcerptLength]) + excerptEllipsis
}

// Draft holds the caller-supplied fields of a new article.
// An empty Excerpt is derived from Content.
type Draft struct {
	Title        string
	Content      string
	Excerpt      string
	ThumbnailURL string
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Title        *string
	Content      *string
	Excerpt      *string
	ThumbnailURL *string
}

// Apply merges the patch into a and refreshes UpdatedAt.
func (p Patch) Apply(a *Article, now time.Time) {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Content != nil {
		a.Content = *p.Content
	}
	if p.Excerpt != nil {
		a.Excerpt = *p.Excerpt
	}
	if p.ThumbnailURL != nil {
		a.ThumbnailURL = *p.ThumbnailURL
	}
	a.UpdatedAt = now
}

// SortNewestFirst sorts articles descending by PublishedAt. Articles
// published at the same instant keep their relative order.
func SortNewestFirst(articles []*Article) {
	slices.SortStableFunc(articles, func(a, b *Article) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})
}
