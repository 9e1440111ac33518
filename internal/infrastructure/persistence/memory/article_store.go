package memory

import (
	"context"
	"sync"

	"github.com/apper-apps/skillup-plus-harbor/internal/domain/article"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/shared"
	"github.com/apper-apps/skillup-plus-harbor/pkg/latency"
	"github.com/apper-apps/skillup-plus-harbor/pkg/logger"
	"github.com/apper-apps/skillup-plus-harbor/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ARTICLE STORE
// ══════════════════════════════════════════════════════════════════════════════

var _ article.Repository = (*ArticleStore)(nil)

// ArticleStore implements article.Repository in memory.
type ArticleStore struct {
	mu       sync.RWMutex
	articles []*article.Article
	seq      sequence

	latency latency.Simulator
	clock   timeutil.Clock
	log     *logger.Logger
}

// NewArticleStore creates an ArticleStore seeded with copies of seed.
func NewArticleStore(seed []*article.Article, opts Options) *ArticleStore {
	opts = opts.withDefaults()
	s := &ArticleStore{
		articles: make([]*article.Article, 0, len(seed)),
		latency:  opts.Latency,
		clock:    opts.Clock,
		log:      opts.Logger.With(logger.Component("article_store")),
	}
	for _, a := range seed {
		s.articles = append(s.articles, a.Clone())
		s.seq.observe(a.ID)
	}
	return s
}

// GetAll returns all articles, newest first.
func (s *ArticleStore) GetAll(ctx context.Context) ([]*article.Article, error) {
	s.latency.Wait(ctx, latency.OpList)

	s.mu.RLock()
	out := make([]*article.Article, 0, len(s.articles))
	for _, a := range s.articles {
		out = append(out, a.Clone())
	}
	s.mu.RUnlock()

	article.SortNewestFirst(out)
	return out, nil
}

// GetByID returns a single article. Every successful read adds one view.
func (s *ArticleStore) GetByID(ctx context.Context, id int) (*article.Article, error) {
	s.latency.Wait(ctx, latency.OpGet)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, shared.NewNotFound(shared.DomainArticle, "GetByID", id)
	}
	s.articles[idx].Views++
	return s.articles[idx].Clone(), nil
}

// Create publishes a new article.
func (s *ArticleStore) Create(ctx context.Context, draft article.Draft) (*article.Article, error) {
	s.latency.Wait(ctx, latency.OpCreate)

	s.mu.Lock()
	defer s.mu.Unlock()

	excerpt := draft.Excerpt
	if excerpt == "" {
		excerpt = article.DeriveExcerpt(draft.Content)
	}

	now := s.clock.Now()
	a := &article.Article{
		ID:           s.seq.next(),
		Title:        draft.Title,
		Content:      draft.Content,
		Excerpt:      excerpt,
		ThumbnailURL: draft.ThumbnailURL,
		AuthorID:     article.PlaceholderAuthorID,
		PublishedAt:  now,
		Views:        0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.articles = append(s.articles, a)

	logger.FromContext(ctx, s.log).Debug("article published", logger.ArticleID(a.ID))
	return a.Clone(), nil
}

// Update merges patch into the stored article.
func (s *ArticleStore) Update(ctx context.Context, id int, patch article.Patch) (*article.Article, error) {
	s.latency.Wait(ctx, latency.OpUpdate)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, shared.NewNotFound(shared.DomainArticle, "Update", id)
	}

	updated := s.articles[idx].Clone()
	patch.Apply(updated, s.clock.Now())
	s.articles[idx] = updated

	logger.FromContext(ctx, s.log).Debug("article updated", logger.ArticleID(id))
	return updated.Clone(), nil
}

// Delete removes the article.
func (s *ArticleStore) Delete(ctx context.Context, id int) error {
	s.latency.Wait(ctx, latency.OpDelete)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return shared.NewNotFound(shared.DomainArticle, "Delete", id)
	}
	s.articles = append(s.articles[:idx], s.articles[idx+1:]...)

	logger.FromContext(ctx, s.log).Debug("article deleted", logger.ArticleID(id))
	return nil
}

func (s *ArticleStore) indexOf(id int) int {
	for i, a := range s.articles {
		if a.ID == id {
			return i
		}
	}
	return -1
}
