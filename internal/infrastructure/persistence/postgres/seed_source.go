package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apper-apps/skillup-plus-harbor/internal/domain/article"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/course"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/progress"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/video"
	"github.com/apper-apps/skillup-plus-harbor/internal/infrastructure/persistence/seed"
	"github.com/apper-apps/skillup-plus-harbor/pkg/logger"
	"github.com/apper-apps/skillup-plus-harbor/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// SEED SOURCE
// ══════════════════════════════════════════════════════════════════════════════
//
// Expected snapshot tables:
//
//	courses(id int, title text, description text, thumbnail_url text null,
//	        type text, created_at timestamptz, updated_at timestamptz)
//	videos(id int, course_id int, title text, video_url text, duration int,
//	       order_index int null, completed bool, created_at, updated_at)
//	articles(id int, title text, content text, excerpt text null,
//	         thumbnail_url text null, author_id int, published_at timestamptz,
//	         views int, created_at, updated_at)
//	user_progress(user_id int, overall_progress int, completed_courses int,
//	              total_study_time int, achievements int, learning_streak int,
//	              last_activity_date timestamptz, recent_activity jsonb,
//	              weekly_progress jsonb, recent_achievements jsonb)

var _ seed.Source = (*SeedSource)(nil)

// SeedSource loads a seed.Dataset from a Postgres snapshot.
type SeedSource struct {
	conn    *Connection
	userID  int
	retrier *retry.Retrier
	log     *logger.Logger
}

// NewSeedSource creates a SeedSource reading the progress row of userID.
func NewSeedSource(conn *Connection, userID int, retrier *retry.Retrier, log *logger.Logger) *SeedSource {
	if retrier == nil {
		retrier = retry.New(retry.WithMaxAttempts(1))
	}
	if log == nil {
		log = logger.Discard()
	}
	return &SeedSource{
		conn:    conn,
		userID:  userID,
		retrier: retrier,
		log:     log.With(logger.Component("postgres_seed")),
	}
}

// Load implements seed.Source. Transient failures are retried.
func (s *SeedSource) Load(ctx context.Context) (*seed.Dataset, error) {
	var ds *seed.Dataset
	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		loaded, err := s.load(ctx)
		if err != nil {
			if IsTransient(err) {
				s.log.Warn("seed import failed, retrying", logger.Err(err))
				return retry.Retryable(err)
			}
			return err
		}
		ds = loaded
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: load seed: %w", err)
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}

	s.log.Info("seed imported",
		logger.Int("courses", len(ds.Courses)),
		logger.Int("videos", len(ds.Videos)),
		logger.Int("articles", len(ds.Articles)),
	)
	return ds, nil
}

func (s *SeedSource) load(ctx context.Context) (*seed.Dataset, error) {
	ds := &seed.Dataset{}
	err := s.conn.ReadOnly(ctx, func(q Querier) error {
		var err error
		if ds.Courses, err = loadCourses(ctx, q); err != nil {
			return err
		}
		if ds.Videos, err = loadVideos(ctx, q); err != nil {
			return err
		}
		if ds.Articles, err = loadArticles(ctx, q); err != nil {
			return err
		}
		ds.UserProgress, err = loadProgress(ctx, q, s.userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Rows
// ─────────────────────────────────────────────────────────────────────────────

type courseRow struct {
	ID           int
	Title        string
	Description  string
	ThumbnailURL string
	Type         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (r courseRow) toDomain() *course.Course {
	return &course.Course{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		ThumbnailURL: r.ThumbnailURL,
		Type:         course.Type(r.Type),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

func loadCourses(ctx context.Context, q Querier) ([]*course.Course, error) {
	rows, err := q.Query(ctx, `
		SELECT id, title, description, COALESCE(thumbnail_url, ''), type, created_at, updated_at
		FROM courses
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	var out []*course.Course
	for rows.Next() {
		var r courseRow
		if err := rows.Scan(&r.ID, &r.Title, &r.Description, &r.ThumbnailURL, &r.Type, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		out = append(out, r.toDomain())
	}
	return out, rows.Err()
}

type videoRow struct {
	ID        int
	CourseID  int
	Title     string
	VideoURL  string
	Duration  int
	Order     *int
	Completed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r videoRow) toDomain() *video.Video {
	order := 0
	if r.Order != nil {
		order = *r.Order
	}
	return &video.Video{
		ID:        r.ID,
		CourseID:  r.CourseID,
		Title:     r.Title,
		VideoURL:  r.VideoURL,
		Duration:  r.Duration,
		Order:     order,
		Completed: r.Completed,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func loadVideos(ctx context.Context, q Querier) ([]*video.Video, error) {
	rows, err := q.Query(ctx, `
		SELECT id, course_id, title, video_url, duration, order_index, completed, created_at, updated_at
		FROM videos
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var out []*video.Video
	for rows.Next() {
		var r videoRow
		if err := rows.Scan(&r.ID, &r.CourseID, &r.Title, &r.VideoURL, &r.Duration, &r.Order, &r.Completed, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		out = append(out, r.toDomain())
	}
	return out, rows.Err()
}

type articleRow struct {
	ID           int
	Title        string
	Content      string
	Excerpt      *string
	ThumbnailURL string
	AuthorID     int
	PublishedAt  time.Time
	Views        int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// toDomain derives a missing excerpt the same way ArticleStore.Create does.
func (r articleRow) toDomain() *article.Article {
	excerpt := ""
	if r.Excerpt != nil {
		excerpt = *r.Excerpt
	}
	if excerpt == "" {
		excerpt = article.DeriveExcerpt(r.Content)
	}
	return &article.Article{
		ID:           r.ID,
		Title:        r.Title,
		Content:      r.Content,
		Excerpt:      excerpt,
		ThumbnailURL: r.ThumbnailURL,
		AuthorID:     r.AuthorID,
		PublishedAt:  r.PublishedAt.UTC(),
		Views:        r.Views,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

func loadArticles(ctx context.Context, q Querier) ([]*article.Article, error) {
	rows, err := q.Query(ctx, `
		SELECT id, title, content, excerpt, COALESCE(thumbnail_url, ''), author_id,
		       published_at, views, created_at, updated_at
		FROM articles
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var out []*article.Article
	for rows.Next() {
		var r articleRow
		if err := rows.Scan(&r.ID, &r.Title, &r.Content, &r.Excerpt, &r.ThumbnailURL, &r.AuthorID,
			&r.PublishedAt, &r.Views, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		out = append(out, r.toDomain())
	}
	return out, rows.Err()
}

type progressRow struct {
	UserID             int
	OverallProgress    int
	CompletedCourses   int
	TotalStudyTime     int
	Achievements       int
	LearningStreak     int
	LastActivityDate   time.Time
	RecentActivity     []byte
	WeeklyProgress     []byte
	RecentAchievements []byte
}

func (r progressRow) toDomain() (*progress.UserProgress, error) {
	p := &progress.UserProgress{
		UserID:           r.UserID,
		OverallProgress:  r.OverallProgress,
		CompletedCourses: r.CompletedCourses,
		TotalStudyTime:   r.TotalStudyTime,
		Achievements:     r.Achievements,
		LearningStreak:   r.LearningStreak,
		LastActivityDate: r.LastActivityDate.UTC(),
	}
	if err := unmarshalJSONB(r.RecentActivity, &p.RecentActivity); err != nil {
		return nil, fmt.Errorf("recent_activity: %w", err)
	}
	if err := unmarshalJSONB(r.WeeklyProgress, &p.WeeklyProgress); err != nil {
		return nil, fmt.Errorf("weekly_progress: %w", err)
	}
	if err := unmarshalJSONB(r.RecentAchievements, &p.RecentAchievements); err != nil {
		return nil, fmt.Errorf("recent_achievements: %w", err)
	}
	if len(p.WeeklyProgress) == 0 {
		p.WeeklyProgress = progress.NewWeek()
	}
	return p, nil
}

func unmarshalJSONB(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func loadProgress(ctx context.Context, q Querier, userID int) (*progress.UserProgress, error) {
	var r progressRow
	err := q.QueryRow(ctx, `
		SELECT user_id, overall_progress, completed_courses, total_study_time, achievements,
		       learning_streak, last_activity_date, recent_activity, weekly_progress, recent_achievements
		FROM user_progress
		WHERE user_id = $1
	`, userID).Scan(&r.UserID, &r.OverallProgress, &r.CompletedCourses, &r.TotalStudyTime, &r.Achievements,
		&r.LearningStreak, &r.LastActivityDate, &r.RecentActivity, &r.WeeklyProgress, &r.RecentAchievements)
	if err != nil {
		if IsNoRows(err) {
			return &progress.UserProgress{UserID: userID, WeeklyProgress: progress.NewWeek()}, nil
		}
		return nil, fmt.Errorf("query user_progress: %w", err)
	}
	return r.toDomain()
}
