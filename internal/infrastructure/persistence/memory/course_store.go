package memory

import (
	"context"
	"sync"

	"github.com/apper-apps/skillup-plus-harbor/internal/domain/course"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/shared"
	"github.com/apper-apps/skillup-plus-harbor/pkg/latency"
	"github.com/apper-apps/skillup-plus-harbor/pkg/logger"
	"github.com/apper-apps/skillup-plus-harbor/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE STORE
// ══════════════════════════════════════════════════════════════════════════════

var _ course.Repository = (*CourseStore)(nil)

// CourseStore implements course.Repository in memory.
type CourseStore struct {
	mu      sync.RWMutex
	courses []*course.Course
	seq     sequence

	latency latency.Simulator
	clock   timeutil.Clock
	log     *logger.Logger
}

// NewCourseStore creates a CourseStore seeded with copies of seed.
func NewCourseStore(seed []*course.Course, opts Options) *CourseStore {
	opts = opts.withDefaults()
	s := &CourseStore{
		courses: make([]*course.Course, 0, len(seed)),
		latency: opts.Latency,
		clock:   opts.Clock,
		log:     opts.Logger.With(logger.Component("course_store")),
	}
	for _, c := range seed {
		s.courses = append(s.courses, c.Clone())
		s.seq.observe(c.ID)
	}
	return s
}

// GetAll returns all courses in storage order.
func (s *CourseStore) GetAll(ctx context.Context) ([]*course.Course, error) {
	s.latency.Wait(ctx, latency.OpList)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*course.Course, 0, len(s.courses))
	for _, c := range s.courses {
		out = append(out, c.Clone())
	}
	return out, nil
}

// GetByID returns a single course.
func (s *CourseStore) GetByID(ctx context.Context, id int) (*course.Course, error) {
	s.latency.Wait(ctx, latency.OpGet)

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, shared.NewNotFound(shared.DomainCourse, "GetByID", id)
	}
	return s.courses[idx].Clone(), nil
}

// GetByType returns the courses with the given tag.
func (s *CourseStore) GetByType(ctx context.Context, t course.Type) ([]*course.Course, error) {
	s.latency.Wait(ctx, latency.OpFilter)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*course.Course, 0)
	for _, c := range s.courses {
		if c.Type == t {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

// Create stores a new course.
func (s *CourseStore) Create(ctx context.Context, draft course.Draft) (*course.Course, error) {
	s.latency.Wait(ctx, latency.OpCreate)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	c := &course.Course{
		ID:           s.seq.next(),
		Title:        draft.Title,
		Description:  draft.Description,
		ThumbnailURL: draft.ThumbnailURL,
		Type:         draft.Type,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.courses = append(s.courses, c)

	logger.FromContext(ctx, s.log).Debug("course created",
		logger.CourseID(c.ID),
		logger.String("type", c.Type.String()),
	)
	return c.Clone(), nil
}

// Update merges patch into the stored course.
func (s *CourseStore) Update(ctx context.Context, id int, patch course.Patch) (*course.Course, error) {
	s.latency.Wait(ctx, latency.OpUpdate)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, shared.NewNotFound(shared.DomainCourse, "Update", id)
	}

	updated := s.courses[idx].Clone()
	patch.Apply(updated, s.clock.Now())
	s.courses[idx] = updated

	logger.FromContext(ctx, s.log).Debug("course updated", logger.CourseID(id))
	return updated.Clone(), nil
}

// Delete removes the course. Videos are not touched.
func (s *CourseStore) Delete(ctx context.Context, id int) error {
	s.latency.Wait(ctx, latency.OpDelete)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return shared.NewNotFound(shared.DomainCourse, "Delete", id)
	}
	s.courses = append(s.courses[:idx], s.courses[idx+1:]...)

	logger.FromContext(ctx, s.log).Debug("course deleted", logger.CourseID(id))
	return nil
}

// Len returns the number of stored courses.
func (s *CourseStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.courses)
}

func (s *CourseStore) indexOf(id int) int {
	for i, c := range s.courses {
		if c.ID == id {
			return i
		}
	}
	return -1
}
