package query

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/apper-apps/skillup-plus-harbor/internal/domain/course"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/progress"
	"github.com/apper-apps/skillup-plus-harbor/pkg/logger"
	"github.com/apper-apps/skillup-plus-harbor/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DASHBOARD QUERY
// Личный кабинет: агрегат прогресса и последние курсы пользователя.
// ══════════════════════════════════════════════════════════════════════════════

// RecentCourse is an activity row joined with its course.
type RecentCourse struct {
	course.Course
	Progress          int       `json:"progress"`
	LastAccessed      time.Time `json:"lastAccessed"`
	LastAccessedLabel string    `json:"lastAccessedLabel"`
}

// DashboardView is the personal dashboard.
type DashboardView struct {
	Progress        *progress.UserProgress `json:"progress"`
	RecentCourses   []RecentCourse         `json:"recentCourses"`
	StudyTime       string                 `json:"studyTime"`
	WeeklyStudyTime string                 `json:"weeklyStudyTime"`
}

// DashboardHandler builds DashboardView.
type DashboardHandler struct {
	courses  course.Repository
	progress progress.Aggregator
	recent   int
	location *time.Location
	log      *logger.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
// recent is the number of activity rows joined; loc formats dates.
func NewDashboardHandler(courses course.Repository, agg progress.Aggregator, recent int, loc *time.Location, log *logger.Logger) *DashboardHandler {
	if recent <= 0 {
		recent = 4
	}
	if loc == nil {
		loc = timeutil.SeoulTZ
	}
	if log == nil {
		log = logger.Discard()
	}
	return &DashboardHandler{
		courses:  courses,
		progress: agg,
		recent:   recent,
		location: loc,
		log:      log.With(logger.Component("dashboard_query")),
	}
}

// Handle executes the dashboard query for userID.
func (h *DashboardHandler) Handle(ctx context.Context, userID int) (*DashboardView, error) {
	var (
		up      *progress.UserProgress
		courses []*course.Course
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		up, err = h.progress.GetUserProgress(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		courses, err = h.courses.GetAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: failed to load data: %w", err)
	}

	byID := make(map[int]*course.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}

	rows := firstN(up.RecentActivity, h.recent)
	recent := make([]RecentCourse, 0, len(rows))
	for _, row := range rows {
		c, ok := byID[row.CourseID]
		if !ok {
			logger.FromContext(ctx, h.log).Debug("activity references a missing course",
				logger.CourseID(row.CourseID), logger.UserID(userID))
			continue
		}
		recent = append(recent, RecentCourse{
			Course:            *c,
			Progress:          row.Progress,
			LastAccessed:      row.LastAccessed,
			LastAccessedLabel: timeutil.FormatMonthDay(row.LastAccessed, h.location),
		})
	}

	return &DashboardView{
		Progress:        up,
		RecentCourses:   recent,
		StudyTime:       timeutil.FormatMinutes(up.TotalStudyTime),
		WeeklyStudyTime: timeutil.FormatMinutes(up.WeeklyTotal()),
	}, nil
}
