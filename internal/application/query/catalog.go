package query

import (
	"context"
	"fmt"

	"github.com/apper-apps/skillup-plus-harbor/internal/domain/course"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/shared"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/video"
	"github.com/apper-apps/skillup-plus-harbor/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG QUERY
// Список курсов одного типа (membership / master) и, если курс выбран,
// его учебный план с текущим видео.
// ══════════════════════════════════════════════════════════════════════════════

// CatalogQuery holds the parameters of a catalog page.
type CatalogQuery struct {
	// Type selects the catalog.
	Type course.Type

	// Search filters the course list by title/description.
	Search string

	// SelectedCourseID is the raw id of the opened course, empty for none.
	SelectedCourseID string

	// CurrentVideoID is the raw id of the playing video. Empty or foreign
	// ids fall back to the first video of the curriculum.
	CurrentVideoID string
}

// Curriculum is the ordered video list of one course.
type Curriculum struct {
	Course         CourseSummary  `json:"course"`
	Videos         []*video.Video `json:"videos"`
	CompletedCount int            `json:"completedCount"`
	TotalDuration  int            `json:"totalDuration"`
	Completion     int            `json:"completion"`
	CurrentVideo   *video.Video   `json:"currentVideo,omitempty"`
	EmbedURL       string         `json:"embedUrl,omitempty"`
}

// CatalogView is one catalog page.
type CatalogView struct {
	Type     course.Type     `json:"type"`
	Courses  []CourseSummary `json:"courses"`
	Selected *Curriculum     `json:"selected,omitempty"`
}

// CatalogHandler builds CatalogView.
type CatalogHandler struct {
	courses    course.Repository
	videos     video.Repository
	summarizer *Summarizer
	log        *logger.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(courses course.Repository, videos video.Repository, summarizer *Summarizer, log *logger.Logger) *CatalogHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &CatalogHandler{
		courses:    courses,
		videos:     videos,
		summarizer: summarizer,
		log:        log.With(logger.Component("catalog_query")),
	}
}

// Handle executes the catalog query.
// A selected course that is not part of the catalog leaves Selected empty.
func (h *CatalogHandler) Handle(ctx context.Context, q CatalogQuery) (*CatalogView, error) {
	if !q.Type.IsValid() {
		return nil, shared.NewValidation(shared.DomainCourse, "Catalog", fmt.Sprintf("unknown course type %q", q.Type), shared.ErrInvalidInput)
	}

	selectedID := 0
	if q.SelectedCourseID != "" {
		id, err := shared.ParseID(shared.DomainCourse, q.SelectedCourseID)
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		selectedID = id
	}

	courses, err := h.courses.GetByType(ctx, q.Type)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to load courses: %w", err)
	}

	summaries, err := h.summarizer.SummarizeAll(ctx, courses)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to summarize courses: %w", err)
	}

	view := &CatalogView{
		Type:    q.Type,
		Courses: filterCourses(summaries, q.Search),
	}

	if selectedID == 0 {
		return view, nil
	}

	for _, s := range summaries {
		if s.Course.ID != selectedID {
			continue
		}
		curriculum, err := h.curriculum(ctx, s, q.CurrentVideoID)
		if err != nil {
			return nil, err
		}
		view.Selected = curriculum
		return view, nil
	}

	logger.FromContext(ctx, h.log).Debug("selected course not in catalog",
		logger.CourseID(selectedID), logger.String("type", q.Type.String()))
	return view, nil
}

func (h *CatalogHandler) curriculum(ctx context.Context, s CourseSummary, rawVideoID string) (*Curriculum, error) {
	videos, err := h.videos.GetByCourseID(ctx, s.Course.ID)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to load curriculum: %w", err)
	}

	completed := video.CompletedCount(videos)
	c := &Curriculum{
		Course:         s,
		Videos:         videos,
		CompletedCount: completed,
		TotalDuration:  video.TotalDuration(videos),
		Completion:     shared.CompletionPercentage(completed, len(videos)).Int(),
	}

	if len(videos) == 0 {
		return c, nil
	}

	c.CurrentVideo = videos[0]
	if rawVideoID != "" {
		if id, err := shared.ParseID(shared.DomainVideo, rawVideoID); err == nil {
			for _, v := range videos {
				if v.ID == id {
					c.CurrentVideo = v
					break
				}
			}
		}
	}
	c.EmbedURL = c.CurrentVideo.EmbedURL()

	return c, nil
}
