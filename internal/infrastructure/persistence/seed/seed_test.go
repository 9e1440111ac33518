package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-apps/skillup-plus-harbor/internal/domain/course"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/shared"
	"github.com/apper-apps/skillup-plus-harbor/pkg/timeutil"
)

func TestEmbeddedSource_Load(t *testing.T) {
	ds, err := EmbeddedSource{}.Load(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, ds.Courses)
	assert.NotEmpty(t, ds.Videos)
	assert.NotEmpty(t, ds.Articles)
	require.NotNil(t, ds.UserProgress)

	var masters, memberships int
	for _, c := range ds.Courses {
		switch c.Type {
		case course.TypeMaster:
			masters++
		case course.TypeMembership:
			memberships++
		}
		assert.False(t, c.CreatedAt.IsZero())
	}
	assert.Positive(t, masters)
	assert.Positive(t, memberships)

	week := ds.UserProgress.WeeklyProgress
	require.Len(t, week, 7)
	for i, e := range week {
		assert.Equal(t, timeutil.WeekdayLabels[i], e.Day)
	}

	values := make([]int, 0, len(ds.UserProgress.RecentActivity))
	for _, row := range ds.UserProgress.RecentActivity {
		values = append(values, row.Progress)
	}
	assert.Equal(t, shared.RoundedMean(values), ds.UserProgress.OverallProgress)
}

func TestParse_RejectsBrokenInvariants(t *testing.T) {
	cases := map[string]string{
		"duplicate course id": `{"courses":[{"Id":1},{"Id":1}]}`,
		"non-positive id":     `{"videos":[{"Id":0}]}`,
		"short week":          `{"userProgress":{"weeklyProgress":[{"day":"월","minutes":0}]}}`,
		"unknown label": `{"userProgress":{"weeklyProgress":[
			{"day":"Mon"},{"day":"화"},{"day":"수"},{"day":"목"},{"day":"금"},{"day":"토"},{"day":"일"}]}}`,
		"duplicate activity": `{"userProgress":{"weeklyProgress":[
			{"day":"월"},{"day":"화"},{"day":"수"},{"day":"목"},{"day":"금"},{"day":"토"},{"day":"일"}],
			"recentActivity":[{"courseId":1},{"courseId":1}]}}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.ErrorIs(t, err, ErrInvalidDataset)
		})
	}
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`{"courses":[{"Id":1,"videoCount":3}]}`))
	assert.Error(t, err)
}

func TestBytesSource_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BytesSource(`{}`).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDataset_Fingerprint(t *testing.T) {
	a, err := EmbeddedSource{}.Load(context.Background())
	require.NoError(t, err)
	b, err := EmbeddedSource{}.Load(context.Background())
	require.NoError(t, err)

	fa, err := a.Fingerprint()
	require.NoError(t, err)
	fb, err := b.Fingerprint()
	require.NoError(t, err)
	assert.Len(t, fa, 16)
	assert.Equal(t, fa, fb)

	b.Courses[0].Title += "!"
	fb, err = b.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, fa, fb)
}
