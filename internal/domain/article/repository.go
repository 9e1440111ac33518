package article

import "context"

// Repository defines the interface for article data access.
// Every method returns copies; absent ids fail with a NotFound DomainError.
type Repository interface {
	// GetAll returns all articles, newest first.
	GetAll(ctx context.Context) ([]*Article, error)

	// GetByID returns a single article and counts the read as a view.
	GetByID(ctx context.Context, id int) (*Article, error)

	// Create publishes a new article.
	Create(ctx context.Context, draft Draft) (*Article, error)

	// Update merges patch into the stored article.
	Update(ctx context.Context, id int, patch Patch) (*Article, error)

	// Delete removes the article.
	Delete(ctx context.Context, id int) error
}
