package memory

import (
	"context"
	"sync"

	"github.com/apper-apps/skillup-plus-harbor/internal/domain/shared"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/video"
	"github.com/apper-apps/skillup-plus-harbor/pkg/latency"
	"github.com/apper-apps/skillup-plus-harbor/pkg/logger"
	"github.com/apper-apps/skillup-plus-harbor/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// VIDEO STORE
// ══════════════════════════════════════════════════════════════════════════════

var _ video.Repository = (*VideoStore)(nil)

// VideoStore implements video.Repository in memory.
// A video's CourseID is not checked against the course store.
type VideoStore struct {
	mu     sync.RWMutex
	videos []*video.Video
	seq    sequence

	latency latency.Simulator
	clock   timeutil.Clock
	log     *logger.Logger
}

// NewVideoStore creates a VideoStore seeded with copies of seed.
func NewVideoStore(seed []*video.Video, opts Options) *VideoStore {
	opts = opts.withDefaults()
	s := &VideoStore{
		videos:  make([]*video.Video, 0, len(seed)),
		latency: opts.Latency,
		clock:   opts.Clock,
		log:     opts.Logger.With(logger.Component("video_store")),
	}
	for _, v := range seed {
		s.videos = append(s.videos, v.Clone())
		s.seq.observe(v.ID)
	}
	return s
}

// GetAll returns all videos in storage order.
func (s *VideoStore) GetAll(ctx context.Context) ([]*video.Video, error) {
	s.latency.Wait(ctx, latency.OpList)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*video.Video, 0, len(s.videos))
	for _, v := range s.videos {
		out = append(out, v.Clone())
	}
	return out, nil
}

// GetByID returns a single video.
func (s *VideoStore) GetByID(ctx context.Context, id int) (*video.Video, error) {
	s.latency.Wait(ctx, latency.OpGet)

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, shared.NewNotFound(shared.DomainVideo, "GetByID", id)
	}
	return s.videos[idx].Clone(), nil
}

// GetByCourseID returns the videos of a course, stable-sorted by Order.
func (s *VideoStore) GetByCourseID(ctx context.Context, courseID int) ([]*video.Video, error) {
	s.latency.Wait(ctx, latency.OpByCourse)

	s.mu.RLock()
	out := make([]*video.Video, 0)
	for _, v := range s.videos {
		if v.CourseID == courseID {
			out = append(out, v.Clone())
		}
	}
	s.mu.RUnlock()

	video.SortByOrder(out)
	return out, nil
}

// Create stores a new video. Completed always starts false.
func (s *VideoStore) Create(ctx context.Context, draft video.Draft) (*video.Video, error) {
	s.latency.Wait(ctx, latency.OpCreate)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	v := &video.Video{
		ID:        s.seq.next(),
		CourseID:  draft.CourseID,
		Title:     draft.Title,
		VideoURL:  draft.VideoURL,
		Duration:  draft.Duration,
		Order:     draft.Order,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.videos = append(s.videos, v)

	logger.FromContext(ctx, s.log).Debug("video created",
		logger.VideoID(v.ID),
		logger.CourseID(v.CourseID),
		logger.Int("order", v.Order),
	)
	return v.Clone(), nil
}

// Update merges patch into the stored video.
func (s *VideoStore) Update(ctx context.Context, id int, patch video.Patch) (*video.Video, error) {
	s.latency.Wait(ctx, latency.OpUpdate)
	return s.update(ctx, "Update", id, patch)
}

// MarkCompleted sets Completed on the stored video.
func (s *VideoStore) MarkCompleted(ctx context.Context, id int) (*video.Video, error) {
	s.latency.Wait(ctx, latency.OpMarkCompleted)
	return s.update(ctx, "MarkCompleted", id, video.CompletedPatch())
}

func (s *VideoStore) update(ctx context.Context, op string, id int, patch video.Patch) (*video.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, shared.NewNotFound(shared.DomainVideo, op, id)
	}

	updated := s.videos[idx].Clone()
	patch.Apply(updated, s.clock.Now())
	s.videos[idx] = updated

	logger.FromContext(ctx, s.log).Debug("video updated",
		logger.VideoID(id),
		logger.Operation(op),
	)
	return updated.Clone(), nil
}

// Delete removes the video.
func (s *VideoStore) Delete(ctx context.Context, id int) error {
	s.latency.Wait(ctx, latency.OpDelete)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return shared.NewNotFound(shared.DomainVideo, "Delete", id)
	}
	s.videos = append(s.videos[:idx], s.videos[idx+1:]...)

	logger.FromContext(ctx, s.log).Debug("video deleted", logger.VideoID(id))
	return nil
}

// Len returns the number of stored videos.
func (s *VideoStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.videos)
}

func (s *VideoStore) indexOf(id int) int {
	for i, v := range s.videos {
		if v.ID == id {
			return i
		}
	}
	return -1
}
