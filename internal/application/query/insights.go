package query

import (
	"context"
	"fmt"

	"github.com/apper-apps/skillup-plus-harbor/internal/domain/article"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/shared"
)

// InsightsHandler serves the article list and single article reads.
type InsightsHandler struct {
	articles article.Repository
}

// NewInsightsHandler creates a new InsightsHandler.
func NewInsightsHandler(articles article.Repository) *InsightsHandler {
	return &InsightsHandler{articles: articles}
}

// List returns the articles newest first, filtered by search.
func (h *InsightsHandler) List(ctx context.Context, search string) ([]*article.Article, error) {
	articles, err := h.articles.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("insights: failed to load articles: %w", err)
	}
	return filterArticles(articles, search), nil
}

// Read opens one article. Every successful read counts as a view.
func (h *InsightsHandler) Read(ctx context.Context, rawID string) (*article.Article, error) {
	id, err := shared.ParseID(shared.DomainArticle, rawID)
	if err != nil {
		return nil, fmt.Errorf("insights: %w", err)
	}

	a, err := h.articles.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("insights: failed to read article: %w", err)
	}
	return a, nil
}
