package command

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-apps/skillup-plus-harbor/config"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/article"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/course"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/progress"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/shared"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/video"
	"github.com/apper-apps/skillup-plus-harbor/internal/infrastructure/persistence/memory"
	"github.com/apper-apps/skillup-plus-harbor/pkg/logger"
	"github.com/apper-apps/skillup-plus-harbor/pkg/timeutil"
)

var testNow = time.Date(2024, 3, 6, 3, 0, 0, 0, time.UTC)

// recordingPublisher keeps every published event in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *recordingPublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []shared.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type fixture struct {
	courses   *memory.CourseStore
	videos    *memory.VideoStore
	articles  *memory.ArticleStore
	progress  *memory.ProgressAggregator
	clock     *timeutil.FixedClock
	publisher *recordingPublisher
}

func newFixture(t *testing.T, seed *progress.UserProgress) *fixture {
	t.Helper()

	clock := timeutil.NewFixedClock(testNow)
	opts := memory.Options{Clock: clock, Logger: logger.Discard()}

	courses := []*course.Course{
		{ID: 1, Title: "Go 입문", Description: "기초", Type: course.TypeMembership},
		{ID: 2, Title: "분산 시스템", Description: "Raft", Type: course.TypeMaster},
	}
	videos := []*video.Video{
		{ID: 1, CourseID: 1, Title: "소개", Duration: 10, Order: 1, Completed: true},
		{ID: 2, CourseID: 1, Title: "변수", Duration: 20, Order: 2},
		{ID: 3, CourseID: 2, Title: "리더 선출", Duration: 40, Order: 1},
		{ID: 4, CourseID: 99, Title: "고아 영상", Duration: 5, Order: 1},
	}
	articles := []*article.Article{
		{ID: 1, Title: "첫 글", Content: "본문", Excerpt: "본문", PublishedAt: testNow.Add(-time.Hour)},
	}
	if seed == nil {
		seed = &progress.UserProgress{UserID: 1}
	}

	return &fixture{
		courses:   memory.NewCourseStore(courses, opts),
		videos:    memory.NewVideoStore(videos, opts),
		articles:  memory.NewArticleStore(articles, opts),
		progress:  memory.NewProgressAggregator(seed, progress.MoveToFront, opts),
		clock:     clock,
		publisher: &recordingPublisher{},
	}
}

func enabled(t *testing.T, names ...string) *config.FeatureFlags {
	t.Helper()
	ff := config.NewFeatureFlags()
	for _, name := range names {
		require.NoError(t, ff.EnableFeature(name))
	}
	return ff
}

// ══════════════════════════════════════════════════════════════════════════════
// Upload course
// ══════════════════════════════════════════════════════════════════════════════

func TestUploadCourse_CreatesCourseThenVideosInOrder(t *testing.T) {
	f := newFixture(t, nil)
	h := NewUploadCourseHandler(f.courses, f.videos, f.publisher, f.clock, nil)

	res, err := h.Handle(context.Background(), UploadCourseCommand{
		Title:       "테스트 전략",
		Description: "testify로 배우는 테스트",
		Type:        course.TypeMembership,
		Videos: []UploadVideo{
			{Title: "assert", VideoURL: "https://youtu.be/aaaaaaaaaaa", Duration: 12},
			{Title: "require", VideoURL: "https://youtu.be/bbbbbbbbbbb", Duration: 8},
		},
		CorrelationID: "corr-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Course.ID)
	require.Len(t, res.Videos, 2)
	assert.Equal(t, 1, res.Videos[0].Order)
	assert.Equal(t, 2, res.Videos[1].Order)
	for _, v := range res.Videos {
		assert.Equal(t, res.Course.ID, v.CourseID)
		assert.False(t, v.Completed)
	}

	stored, err := f.videos.GetByCourseID(context.Background(), res.Course.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	assert.Equal(t, []shared.EventType{
		shared.EventVideoCreated,
		shared.EventVideoCreated,
		shared.EventCourseCreated,
	}, f.publisher.types())

	created, ok := f.publisher.events[2].(shared.CourseCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, "corr-1", created.CorrelationID)
	assert.Equal(t, "3", created.AggregateID())
}

func TestUploadCourse_Validation(t *testing.T) {
	valid := UploadCourseCommand{
		Title:       "제목",
		Description: "설명",
		Type:        course.TypeMaster,
		Videos:      []UploadVideo{{Title: "1강", VideoURL: "https://example.com/1.mp4", Duration: 1}},
	}

	tests := []struct {
		name   string
		mutate func(*UploadCourseCommand)
		field  string
	}{
		{"blank title", func(c *UploadCourseCommand) { c.Title = "   " }, "Title"},
		{"missing description", func(c *UploadCourseCommand) { c.Description = "" }, "Description"},
		{"unknown type", func(c *UploadCourseCommand) { c.Type = "premium" }, "Type"},
		{"no videos", func(c *UploadCourseCommand) { c.Videos = nil }, "Videos"},
		{"video without url", func(c *UploadCourseCommand) { c.Videos[0].VideoURL = "" }, "VideoURL"},
		{"negative duration", func(c *UploadCourseCommand) { c.Videos[0].Duration = -1 }, "Duration"},
		{"bad thumbnail", func(c *UploadCourseCommand) { c.ThumbnailURL = "not a url" }, "ThumbnailURL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			h := NewUploadCourseHandler(f.courses, f.videos, f.publisher, f.clock, nil)

			cmd := valid
			cmd.Videos = append([]UploadVideo(nil), valid.Videos...)
			tt.mutate(&cmd)

			_, err := h.Handle(context.Background(), cmd)
			require.Error(t, err)
			assert.True(t, shared.IsValidation(err))
			assert.Contains(t, err.Error(), tt.field)

			assert.Equal(t, 2, f.courses.Len())
			assert.Equal(t, 4, f.videos.Len())
			assert.Empty(t, f.publisher.types())
		})
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// Delete course
// ══════════════════════════════════════════════════════════════════════════════

func TestDeleteCourse_LeavesOrphansByDefault(t *testing.T) {
	f := newFixture(t, nil)
	h := NewDeleteCourseHandler(f.courses, f.videos, f.publisher, nil, f.clock, nil)

	res, err := h.Handle(context.Background(), DeleteCourseCommand{CourseID: "1"})
	require.NoError(t, err)

	assert.False(t, res.Cascaded)
	assert.Equal(t, 2, res.OrphanedCount)
	assert.Empty(t, res.DeletedVideos)

	_, err = f.courses.GetByID(context.Background(), 1)
	assert.True(t, shared.IsNotFound(err))

	orphans, err := f.videos.GetByCourseID(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, orphans, 2)

	require.Equal(t, []shared.EventType{shared.EventCourseDeleted}, f.publisher.types())
	deleted := f.publisher.events[0].(shared.CourseDeletedEvent)
	assert.Equal(t, 2, deleted.OrphanedVideos)
	assert.False(t, deleted.Cascaded)
}

func TestDeleteCourse_Cascade(t *testing.T) {
	f := newFixture(t, nil)
	h := NewDeleteCourseHandler(f.courses, f.videos, f.publisher,
		enabled(t, config.FeatureCascadeVideoDelete), f.clock, nil)

	res, err := h.Handle(context.Background(), DeleteCourseCommand{CourseID: "1"})
	require.NoError(t, err)

	assert.True(t, res.Cascaded)
	assert.Equal(t, []int{1, 2}, res.DeletedVideos)
	assert.Zero(t, res.OrphanedCount)
	assert.Equal(t, 2, f.videos.Len())

	assert.Equal(t, []shared.EventType{
		shared.EventVideoDeleted,
		shared.EventVideoDeleted,
		shared.EventCourseDeleted,
	}, f.publisher.types())
}

func TestDeleteCourse_NotFound(t *testing.T) {
	for _, raw := range []string{"42", "abc", ""} {
		t.Run(raw, func(t *testing.T) {
			f := newFixture(t, nil)
			h := NewDeleteCourseHandler(f.courses, f.videos, f.publisher,
				enabled(t, config.FeatureCascadeVideoDelete), f.clock, nil)

			_, err := h.Handle(context.Background(), DeleteCourseCommand{CourseID: raw})
			require.Error(t, err)
			assert.True(t, shared.IsNotFound(err))
			assert.Equal(t, 2, f.courses.Len())
			assert.Equal(t, 4, f.videos.Len())
			assert.Empty(t, f.publisher.types())
		})
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// Articles
// ══════════════════════════════════════════════════════════════════════════════

func TestSaveArticle_CreateDerivesExcerpt(t *testing.T) {
	f := newFixture(t, nil)
	h := NewSaveArticleHandler(f.articles, f.publisher, f.clock, nil)

	content := strings.Repeat("가", article.ExcerptLength+20)
	res, err := h.Handle(context.Background(), SaveArticleCommand{Title: "새 글", Content: content})
	require.NoError(t, err)

	assert.True(t, res.Created)
	assert.Equal(t, 2, res.Article.ID)
	assert.Equal(t, article.DeriveExcerpt(content), res.Article.Excerpt)
	assert.Equal(t, []shared.EventType{shared.EventArticlePublished}, f.publisher.types())
}

func TestSaveArticle_Update(t *testing.T) {
	f := newFixture(t, nil)
	h := NewSaveArticleHandler(f.articles, f.publisher, f.clock, nil)

	res, err := h.Handle(context.Background(), SaveArticleCommand{
		ArticleID: "1",
		Title:     "고친 글",
		Content:   "새 본문",
		Excerpt:   "요약",
	})
	require.NoError(t, err)

	assert.False(t, res.Created)
	assert.Equal(t, "고친 글", res.Article.Title)
	assert.Equal(t, "요약", res.Article.Excerpt)
	assert.Equal(t, []shared.EventType{shared.EventArticleUpdated}, f.publisher.types())
}

func TestSaveArticle_Errors(t *testing.T) {
	f := newFixture(t, nil)
	h := NewSaveArticleHandler(f.articles, f.publisher, f.clock, nil)

	_, err := h.Handle(context.Background(), SaveArticleCommand{Title: "", Content: "본문"})
	assert.True(t, shared.IsValidation(err))

	_, err = h.Handle(context.Background(), SaveArticleCommand{ArticleID: "77", Title: "t", Content: "c"})
	assert.True(t, shared.IsNotFound(err))

	assert.Empty(t, f.publisher.types())
}

func TestDeleteArticle(t *testing.T) {
	f := newFixture(t, nil)
	h := NewDeleteArticleHandler(f.articles, f.publisher, f.clock, nil)

	require.NoError(t, h.Handle(context.Background(), "1"))
	_, err := f.articles.GetByID(context.Background(), 1)
	assert.True(t, shared.IsNotFound(err))

	err = h.Handle(context.Background(), "1")
	assert.True(t, shared.IsNotFound(err))

	assert.Equal(t, []shared.EventType{shared.EventArticleDeleted}, f.publisher.types())
}

// ══════════════════════════════════════════════════════════════════════════════
// Complete video
// ══════════════════════════════════════════════════════════════════════════════

func TestCompleteVideo_FinishesCourse(t *testing.T) {
	f := newFixture(t, &progress.UserProgress{
		UserID:           1,
		TotalStudyTime:   100,
		LearningStreak:   3,
		LastActivityDate: testNow.Add(-25 * time.Hour),
	})
	h := NewCompleteVideoHandler(f.courses, f.videos, f.progress, f.publisher,
		enabled(t, config.FeatureCourseCompletionAchievement), f.clock, nil)

	res, err := h.Handle(context.Background(), CompleteVideoCommand{UserID: 1, VideoID: "2"})
	require.NoError(t, err)

	assert.False(t, res.AlreadyCompleted)
	assert.True(t, res.Video.Completed)
	assert.Equal(t, 100, res.CourseProgress)
	assert.True(t, res.CourseCompleted)
	assert.Equal(t, progress.StreakContinued, res.Streak)

	p := res.Progress
	assert.Equal(t, 120, p.TotalStudyTime)
	assert.Equal(t, 4, p.LearningStreak)
	assert.Zero(t, p.CompletedCourses)
	require.NotEmpty(t, p.RecentActivity)
	assert.Equal(t, progress.ActivityRow{CourseID: 1, Progress: 100, LastAccessed: testNow}, p.RecentActivity[0])
	require.Len(t, p.RecentAchievements, 1)
	assert.Equal(t, "Go 입문 완주", p.RecentAchievements[0].Title)
	assert.NotEmpty(t, p.RecentAchievements[0].ID)

	assert.Equal(t, []shared.EventType{
		shared.EventVideoCompleted,
		shared.EventStudyTimeAdded,
		shared.EventStreakUpdated,
		shared.EventCourseProgressUpdated,
		shared.EventAchievementUnlocked,
	}, f.publisher.types())
}

func TestCompleteVideo_AchievementNeedsFlag(t *testing.T) {
	f := newFixture(t, nil)
	h := NewCompleteVideoHandler(f.courses, f.videos, f.progress, f.publisher, nil, f.clock, nil)

	res, err := h.Handle(context.Background(), CompleteVideoCommand{UserID: 1, VideoID: "3"})
	require.NoError(t, err)

	assert.True(t, res.CourseCompleted)
	assert.Empty(t, res.Progress.RecentAchievements)
	assert.NotContains(t, f.publisher.types(), shared.EventAchievementUnlocked)
}

func TestCompleteVideo_FinishedCourseCountsOnce(t *testing.T) {
	f := newFixture(t, nil)
	h := NewCompleteVideoHandler(f.courses, f.videos, f.progress, f.publisher,
		enabled(t, config.FeatureCourseCompletionAchievement), f.clock, nil)
	ctx := context.Background()

	first, err := h.Handle(ctx, CompleteVideoCommand{UserID: 1, VideoID: "3"})
	require.NoError(t, err)
	require.True(t, first.CourseCompleted)

	// push course 2 out of the recent activity list
	for courseID := 10; courseID < 10+progress.MaxRecentActivity; courseID++ {
		_, err := f.progress.UpdateCourseProgress(ctx, 1, courseID, 30)
		require.NoError(t, err)
	}

	again, err := h.Handle(ctx, CompleteVideoCommand{UserID: 1, VideoID: "3"})
	require.NoError(t, err)
	assert.True(t, again.AlreadyCompleted)
	assert.Equal(t, 100, again.CourseProgress)
	assert.False(t, again.CourseCompleted)
	assert.Len(t, again.Progress.RecentAchievements, 1)
	assert.Equal(t, first.Progress.CompletedCourses, again.Progress.CompletedCourses)
}

func TestCompleteVideo_AlreadyCompletedAddsNoStudyTime(t *testing.T) {
	f := newFixture(t, &progress.UserProgress{
		UserID:           1,
		TotalStudyTime:   100,
		LearningStreak:   2,
		LastActivityDate: testNow.Add(-time.Hour),
	})
	h := NewCompleteVideoHandler(f.courses, f.videos, f.progress, f.publisher, nil, f.clock, nil)

	res, err := h.Handle(context.Background(), CompleteVideoCommand{UserID: 1, VideoID: "1"})
	require.NoError(t, err)

	assert.True(t, res.AlreadyCompleted)
	assert.Equal(t, 100, res.Progress.TotalStudyTime)
	assert.Equal(t, progress.StreakSameDay, res.Streak)
	assert.Equal(t, 2, res.Progress.LearningStreak)
	assert.Equal(t, 50, res.CourseProgress)
	assert.False(t, res.CourseCompleted)

	assert.Equal(t, []shared.EventType{
		shared.EventVideoCompleted,
		shared.EventCourseProgressUpdated,
	}, f.publisher.types())
}

func TestCompleteVideo_BrokenStreak(t *testing.T) {
	f := newFixture(t, &progress.UserProgress{
		UserID:           1,
		LearningStreak:   5,
		LastActivityDate: testNow.Add(-72 * time.Hour),
	})
	h := NewCompleteVideoHandler(f.courses, f.videos, f.progress, f.publisher, nil, f.clock, nil)

	res, err := h.Handle(context.Background(), CompleteVideoCommand{UserID: 1, VideoID: "3"})
	require.NoError(t, err)

	assert.Equal(t, progress.StreakBroken, res.Streak)
	assert.Equal(t, 1, res.Progress.LearningStreak)
	assert.Contains(t, f.publisher.types(), shared.EventStreakBroken)
	assert.NotContains(t, f.publisher.types(), shared.EventStreakUpdated)
}

func TestCompleteVideo_MissingCourseSkipsProgress(t *testing.T) {
	f := newFixture(t, nil)
	h := NewCompleteVideoHandler(f.courses, f.videos, f.progress, f.publisher, nil, f.clock, nil)

	res, err := h.Handle(context.Background(), CompleteVideoCommand{UserID: 1, VideoID: "4"})
	require.NoError(t, err)

	assert.True(t, res.Video.Completed)
	assert.Zero(t, res.CourseProgress)
	assert.Empty(t, res.Progress.RecentActivity)
	assert.Equal(t, 5, res.Progress.TotalStudyTime)
	assert.NotContains(t, f.publisher.types(), shared.EventCourseProgressUpdated)
}

func TestCompleteVideo_UnknownVideo(t *testing.T) {
	f := newFixture(t, nil)
	h := NewCompleteVideoHandler(f.courses, f.videos, f.progress, f.publisher, nil, f.clock, nil)

	for _, raw := range []string{"404", "x"} {
		_, err := h.Handle(context.Background(), CompleteVideoCommand{UserID: 1, VideoID: raw})
		assert.True(t, shared.IsNotFound(err), raw)
	}
	assert.Empty(t, f.publisher.types())
}
