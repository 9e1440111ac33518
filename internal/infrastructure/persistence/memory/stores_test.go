package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-apps/skillup-plus-harbor/internal/domain/article"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/course"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/shared"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/video"
	"github.com/apper-apps/skillup-plus-harbor/pkg/latency"
	"github.com/apper-apps/skillup-plus-harbor/pkg/timeutil"
)

var t0 = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

func testOptions() (Options, *timeutil.FixedClock) {
	clock := timeutil.NewFixedClock(t0)
	return Options{Latency: latency.None(), Clock: clock}, clock
}

func strPtr(s string) *string { return &s }

// ─────────────────────────────────────────────────────────────────────────────
// Courses
// ─────────────────────────────────────────────────────────────────────────────

func TestCourseStore_CreateAssignsNextID(t *testing.T) {
	ctx := context.Background()
	opts, clock := testOptions()

	empty := NewCourseStore(nil, opts)
	first, err := empty.Create(ctx, course.Draft{Title: "first", Type: course.TypeMaster})
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, t0, first.CreatedAt)
	assert.Equal(t, t0, first.UpdatedAt)

	store := NewCourseStore([]*course.Course{{ID: 3}, {ID: 7}, {ID: 5}}, opts)
	clock.Advance(time.Minute)
	created, err := store.Create(ctx, course.Draft{Title: "next"})
	require.NoError(t, err)
	assert.Equal(t, 8, created.ID)
}

func TestCourseStore_NeverReusesDeletedID(t *testing.T) {
	ctx := context.Background()
	opts, _ := testOptions()
	store := NewCourseStore(nil, opts)

	a, _ := store.Create(ctx, course.Draft{Title: "a"})
	b, _ := store.Create(ctx, course.Draft{Title: "b"})
	require.NoError(t, store.Delete(ctx, b.ID))

	c, err := store.Create(ctx, course.Draft{Title: "c"})
	require.NoError(t, err)
	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 3, c.ID)
}

func TestCourseStore_GetByType_KeepsStorageOrder(t *testing.T) {
	ctx := context.Background()
	opts, _ := testOptions()
	store := NewCourseStore([]*course.Course{
		{ID: 1, Type: course.TypeMaster},
		{ID: 2, Type: course.TypeMembership},
		{ID: 3, Type: course.TypeMaster},
	}, opts)

	masters, err := store.GetByType(ctx, course.TypeMaster)
	require.NoError(t, err)
	require.Len(t, masters, 2)
	assert.Equal(t, 1, masters[0].ID)
	assert.Equal(t, 3, masters[1].ID)

	none, err := store.GetByType(ctx, course.Type("free"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCourseStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	opts, _ := testOptions()
	store := NewCourseStore([]*course.Course{{ID: 1, Title: "original"}}, opts)

	got, err := store.GetByID(ctx, 1)
	require.NoError(t, err)
	got.Title = "mutated"

	all, _ := store.GetAll(ctx)
	all[0].Title = "mutated too"

	again, _ := store.GetByID(ctx, 1)
	assert.Equal(t, "original", again.Title)
}

func TestCourseStore_UpdateMergesAndRefreshes(t *testing.T) {
	ctx := context.Background()
	opts, clock := testOptions()
	store := NewCourseStore([]*course.Course{{ID: 1, Title: "t", Description: "d", CreatedAt: t0, UpdatedAt: t0}}, opts)

	clock.Advance(time.Hour)
	updated, err := store.Update(ctx, 1, course.Patch{Title: strPtr("new")})
	require.NoError(t, err)

	assert.Equal(t, "new", updated.Title)
	assert.Equal(t, "d", updated.Description)
	assert.Equal(t, t0, updated.CreatedAt)
	assert.Equal(t, t0.Add(time.Hour), updated.UpdatedAt)
}

func TestCourseStore_MissingIDLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	opts, _ := testOptions()
	store := NewCourseStore([]*course.Course{{ID: 1, Title: "keep"}}, opts)

	_, err := store.Update(ctx, 99, course.Patch{Title: strPtr("x")})
	assert.True(t, shared.IsNotFound(err))
	id, ok := shared.EntityIDOf(err)
	assert.True(t, ok)
	assert.Equal(t, 99, id)

	err = store.Delete(ctx, 99)
	assert.True(t, shared.IsNotFound(err))

	_, err = store.GetByID(ctx, 99)
	assert.True(t, shared.IsNotFound(err))

	all, _ := store.GetAll(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, "keep", all[0].Title)
}

func TestCourseStore_DeleteLeavesVideos(t *testing.T) {
	ctx := context.Background()
	opts, _ := testOptions()
	courses := NewCourseStore([]*course.Course{{ID: 1}}, opts)
	videos := NewVideoStore([]*video.Video{{ID: 1, CourseID: 1}, {ID: 2, CourseID: 1}}, opts)

	require.NoError(t, courses.Delete(ctx, 1))

	orphans, err := videos.GetByCourseID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, orphans, 2)
}

func TestCourseStore_SimulatesLatency(t *testing.T) {
	ctx := context.Background()
	rec := &latency.Recorder{}
	store := NewCourseStore(nil, Options{Latency: rec})

	_, _ = store.Create(ctx, course.Draft{Title: "x"})
	_, _ = store.GetAll(ctx)
	_ = store.Delete(ctx, 42)

	assert.Equal(t, []latency.Op{latency.OpCreate, latency.OpList, latency.OpDelete}, rec.Ops)
}

func TestCourseStore_ConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	opts, _ := testOptions()
	store := NewCourseStore(nil, opts)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Create(ctx, course.Draft{Title: "c"})
		}()
	}
	wg.Wait()

	all, _ := store.GetAll(ctx)
	seen := make(map[int]bool, len(all))
	for _, c := range all {
		assert.False(t, seen[c.ID], "duplicate id %d", c.ID)
		seen[c.ID] = true
	}
	assert.Len(t, all, 50)
}

// ─────────────────────────────────────────────────────────────────────────────
// Videos
// ─────────────────────────────────────────────────────────────────────────────

func TestVideoStore_GetByCourseID_FiltersAndSortsStably(t *testing.T) {
	ctx := context.Background()
	opts, _ := testOptions()
	store := NewVideoStore([]*video.Video{
		{ID: 1, CourseID: 1, Order: 3},
		{ID: 2, CourseID: 2, Order: 1},
		{ID: 3, CourseID: 1, Order: 1},
		{ID: 4, CourseID: 1, Order: 1},
		{ID: 5, CourseID: 1},
	}, opts)

	got, err := store.GetByCourseID(ctx, 1)
	require.NoError(t, err)

	ids := make([]int, 0, len(got))
	for _, v := range got {
		assert.Equal(t, 1, v.CourseID)
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []int{5, 3, 4, 1}, ids)
}

func TestVideoStore_CreateStartsIncomplete(t *testing.T) {
	ctx := context.Background()
	opts, _ := testOptions()
	store := NewVideoStore([]*video.Video{{ID: 4, CourseID: 1, Completed: true}}, opts)

	v, err := store.Create(ctx, video.Draft{CourseID: 1, Title: "intro", Duration: 12, Order: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, v.ID)
	assert.False(t, v.Completed)
	assert.Equal(t, 12, v.Duration)
}

func TestVideoStore_MarkCompleted(t *testing.T) {
	ctx := context.Background()
	opts, clock := testOptions()
	store := NewVideoStore([]*video.Video{{ID: 1, CourseID: 1, Title: "a"}}, opts)

	clock.Advance(time.Minute)
	v, err := store.MarkCompleted(ctx, 1)
	require.NoError(t, err)
	assert.True(t, v.Completed)
	assert.Equal(t, "a", v.Title)
	assert.Equal(t, t0.Add(time.Minute), v.UpdatedAt)

	_, err = store.MarkCompleted(ctx, 2)
	assert.True(t, shared.IsNotFound(err))
}

func TestVideoStore_MissingIDLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	opts, _ := testOptions()
	store := NewVideoStore([]*video.Video{{ID: 1, Title: "keep"}}, opts)

	_, err := store.Update(ctx, 2, video.Patch{Title: strPtr("x")})
	assert.True(t, shared.IsNotFound(err))
	assert.True(t, shared.IsNotFound(store.Delete(ctx, 2)))

	assert.Equal(t, 1, store.Len())
	v, _ := store.GetByID(ctx, 1)
	assert.Equal(t, "keep", v.Title)
}

// ─────────────────────────────────────────────────────────────────────────────
// Articles
// ─────────────────────────────────────────────────────────────────────────────

func TestArticleStore_GetByIDCountsViews(t *testing.T) {
	ctx := context.Background()
	opts, _ := testOptions()
	store := NewArticleStore([]*article.Article{{ID: 1, Views: 10}}, opts)

	_, err := store.GetByID(ctx, 1)
	require.NoError(t, err)
	second, err := store.GetByID(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 12, second.Views)

	_, err = store.GetByID(ctx, 2)
	assert.True(t, shared.IsNotFound(err))
}

func TestArticleStore_GetAllNewestFirst(t *testing.T) {
	ctx := context.Background()
	opts, _ := testOptions()
	t1 := t0
	t2 := t0.Add(time.Hour)
	t3 := t0.Add(2 * time.Hour)
	store := NewArticleStore([]*article.Article{
		{ID: 1, PublishedAt: t2},
		{ID: 2, PublishedAt: t1},
		{ID: 3, PublishedAt: t3},
	}, opts)

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []time.Time{t3, t2, t1}, []time.Time{got[0].PublishedAt, got[1].PublishedAt, got[2].PublishedAt})
}

func TestArticleStore_CreateDefaults(t *testing.T) {
	ctx := context.Background()
	opts, _ := testOptions()
	store := NewArticleStore(nil, opts)

	long := make([]rune, 200)
	for i := range long {
		long[i] = '글'
	}

	a, err := store.Create(ctx, article.Draft{Title: "t", Content: string(long)})
	require.NoError(t, err)
	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 0, a.Views)
	assert.Equal(t, article.PlaceholderAuthorID, a.AuthorID)
	assert.Equal(t, t0, a.PublishedAt)
	assert.Equal(t, article.DeriveExcerpt(string(long)), a.Excerpt)

	custom, err := store.Create(ctx, article.Draft{Title: "t", Content: "body", Excerpt: "mine"})
	require.NoError(t, err)
	assert.Equal(t, "mine", custom.Excerpt)
	assert.Equal(t, 2, custom.ID)
}

func TestArticleStore_MissingIDLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	opts, _ := testOptions()
	store := NewArticleStore([]*article.Article{{ID: 1, Title: "keep"}}, opts)

	_, err := store.Update(ctx, 5, article.Patch{Title: strPtr("x")})
	assert.True(t, shared.IsNotFound(err))
	assert.True(t, shared.IsNotFound(store.Delete(ctx, 5)))

	all, _ := store.GetAll(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, "keep", all[0].Title)
	assert.Equal(t, 0, all[0].Views)
}
