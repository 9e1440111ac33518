package video

import "context"

// Repository defines the interface for video data access.
// Every method returns copies; absent ids fail with a NotFound DomainError.
type Repository interface {
	// GetAll returns all videos in storage order.
	GetAll(ctx context.Context) ([]*Video, error)

	// GetByID returns a single video.
	GetByID(ctx context.Context, id int) (*Video, error)

	// GetByCourseID returns the curriculum of a course, stable-sorted by Order.
	GetByCourseID(ctx context.Context, courseID int) ([]*Video, error)

	// Create stores a new, not yet completed video.
	Create(ctx context.Context, draft Draft) (*Video, error)

	// Update merges patch into the stored video.
	Update(ctx context.Context, id int, patch Patch) (*Video, error)

	// MarkCompleted is Update with Completed set to true.
	MarkCompleted(ctx context.Context, id int) (*Video, error)

	// Delete removes the video.
	Delete(ctx context.Context, id int) error
}
