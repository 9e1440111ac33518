package command

import (
	"context"
	"fmt"

	"github.com/apper-apps/skillup-plus-harbor/internal/domain/article"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/shared"
	"github.com/apper-apps/skillup-plus-harbor/pkg/logger"
	"github.com/apper-apps/skillup-plus-harbor/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SAVE ARTICLE COMMAND
// Публикует новую статью или обновляет существующую.
// Пустой excerpt заполняется из начала текста.
// ══════════════════════════════════════════════════════════════════════════════

// SaveArticleCommand contains the editor form.
type SaveArticleCommand struct {
	// ArticleID is the raw id of the edited article, empty to publish a new one.
	ArticleID string

	Title        string `validate:"notblank"`
	Content      string `validate:"notblank"`
	Excerpt      string
	ThumbnailURL string `validate:"omitempty,url"`
}

// SaveArticleResult contains the stored article.
type SaveArticleResult struct {
	Article *article.Article
	Created bool
}

// SaveArticleHandler handles the SaveArticleCommand.
type SaveArticleHandler struct {
	articles       article.Repository
	eventPublisher shared.EventPublisher
	clock          timeutil.Clock
	log            *logger.Logger
}

// NewSaveArticleHandler creates a new SaveArticleHandler.
func NewSaveArticleHandler(
	articles article.Repository,
	eventPublisher shared.EventPublisher,
	clock timeutil.Clock,
	log *logger.Logger,
) *SaveArticleHandler {
	if clock == nil {
		clock = timeutil.SystemClock{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &SaveArticleHandler{
		articles:       articles,
		eventPublisher: eventPublisher,
		clock:          clock,
		log:            log.With(logger.Component("save_article")),
	}
}

// Handle executes the save article command.
func (h *SaveArticleHandler) Handle(ctx context.Context, cmd SaveArticleCommand) (*SaveArticleResult, error) {
	if err := validateStruct(shared.DomainArticle, "Save", cmd); err != nil {
		return nil, fmt.Errorf("save_article: validation failed: %w", err)
	}

	excerpt := cmd.Excerpt
	if excerpt == "" {
		excerpt = article.DeriveExcerpt(cmd.Content)
	}

	log := logger.FromContext(ctx, h.log)

	if cmd.ArticleID == "" {
		a, err := h.articles.Create(ctx, article.Draft{
			Title:        cmd.Title,
			Content:      cmd.Content,
			Excerpt:      excerpt,
			ThumbnailURL: cmd.ThumbnailURL,
		})
		if err != nil {
			return nil, fmt.Errorf("save_article: failed to create article: %w", err)
		}
		_ = h.eventPublisher.Publish(shared.NewArticleEvent(shared.EventArticlePublished, a.ID, a.Title, h.clock.Now()))
		log.Info("article published", logger.ArticleID(a.ID))
		return &SaveArticleResult{Article: a, Created: true}, nil
	}

	id, err := shared.ParseID(shared.DomainArticle, cmd.ArticleID)
	if err != nil {
		return nil, fmt.Errorf("save_article: %w", err)
	}

	a, err := h.articles.Update(ctx, id, article.Patch{
		Title:        &cmd.Title,
		Content:      &cmd.Content,
		Excerpt:      &excerpt,
		ThumbnailURL: &cmd.ThumbnailURL,
	})
	if err != nil {
		return nil, fmt.Errorf("save_article: failed to update article: %w", err)
	}
	_ = h.eventPublisher.Publish(shared.NewArticleEvent(shared.EventArticleUpdated, a.ID, a.Title, h.clock.Now()))
	log.Info("article updated", logger.ArticleID(a.ID))

	return &SaveArticleResult{Article: a}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DELETE ARTICLE COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// DeleteArticleHandler removes an article.
type DeleteArticleHandler struct {
	articles       article.Repository
	eventPublisher shared.EventPublisher
	clock          timeutil.Clock
	log            *logger.Logger
}

// NewDeleteArticleHandler creates a new DeleteArticleHandler.
func NewDeleteArticleHandler(
	articles article.Repository,
	eventPublisher shared.EventPublisher,
	clock timeutil.Clock,
	log *logger.Logger,
) *DeleteArticleHandler {
	if clock == nil {
		clock = timeutil.SystemClock{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &DeleteArticleHandler{
		articles:       articles,
		eventPublisher: eventPublisher,
		clock:          clock,
		log:            log.With(logger.Component("delete_article")),
	}
}

// Handle deletes the article with the given raw id.
func (h *DeleteArticleHandler) Handle(ctx context.Context, rawID string) error {
	id, err := shared.ParseID(shared.DomainArticle, rawID)
	if err != nil {
		return fmt.Errorf("delete_article: %w", err)
	}

	if err := h.articles.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete_article: failed to delete article: %w", err)
	}

	_ = h.eventPublisher.Publish(shared.NewArticleEvent(shared.EventArticleDeleted, id, "", h.clock.Now()))
	logger.FromContext(ctx, h.log).Info("article deleted", logger.ArticleID(id))

	return nil
}
