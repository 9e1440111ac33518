package course

import "context"

// Repository defines the interface for course data access.
// This interface is implemented by the infrastructure layer.
// Every method returns copies; absent ids fail with a NotFound DomainError.
type Repository interface {
	// GetAll returns all courses in storage order.
	GetAll(ctx context.Context) ([]*Course, error)

	// GetByID returns a single course.
	GetByID(ctx context.Context, id int) (*Course, error)

	// GetByType returns the courses with the given tag, in storage order.
	GetByType(ctx context.Context, t Type) ([]*Course, error)

	// Create assigns the next id, stamps timestamps and stores the course.
	Create(ctx context.Context, draft Draft) (*Course, error)

	// Update merges patch into the stored course.
	Update(ctx context.Context, id int, patch Patch) (*Course, error)

	// Delete removes the course. Videos referencing it are left in place.
	Delete(ctx context.Context, id int) error
}

// SummaryCache stores derived Summary values between reads.
// Implementations live in infrastructure; a miss is reported with ok=false.
type SummaryCache interface {
	GetSummary(ctx context.Context, courseID int) (summary *Summary, ok bool, err error)
	SetSummary(ctx context.Context, summary *Summary) error
	Invalidate(ctx context.Context, courseID int) error
	InvalidateAll(ctx context.Context) error
}
