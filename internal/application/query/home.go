package query

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/apper-apps/skillup-plus-harbor/internal/domain/article"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/course"
	"github.com/apper-apps/skillup-plus-harbor/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HOME QUERY
// Landing view: a few courses of each type and the latest articles.
// The search term filters what is shown, not what is fetched.
// ══════════════════════════════════════════════════════════════════════════════

// HomeQuery holds the parameters of the landing view.
type HomeQuery struct {
	// Search filters courses by title/description and articles by title/excerpt.
	Search string
}

// HomeView is the landing view.
type HomeView struct {
	MembershipCourses []CourseSummary    `json:"membershipCourses"`
	MasterCourses     []CourseSummary    `json:"masterCourses"`
	Articles          []*article.Article `json:"articles"`
	Search            string             `json:"search,omitempty"`
}

// HomeConfig holds the view sizes.
type HomeConfig struct {
	CoursesPerType int
	Articles       int
}

// DefaultHomeConfig returns 4 courses per type and 6 articles.
func DefaultHomeConfig() HomeConfig {
	return HomeConfig{CoursesPerType: 4, Articles: 6}
}

// HomeHandler builds HomeView.
type HomeHandler struct {
	courses    course.Repository
	articles   article.Repository
	summarizer *Summarizer
	config     HomeConfig
	log        *logger.Logger
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(courses course.Repository, articles article.Repository, summarizer *Summarizer, config HomeConfig, log *logger.Logger) *HomeHandler {
	if config == (HomeConfig{}) {
		config = DefaultHomeConfig()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &HomeHandler{
		courses:    courses,
		articles:   articles,
		summarizer: summarizer,
		config:     config,
		log:        log.With(logger.Component("home_query")),
	}
}

// Handle executes the home query.
func (h *HomeHandler) Handle(ctx context.Context, q HomeQuery) (*HomeView, error) {
	var (
		courses  []*course.Course
		articles []*article.Article
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		courses, err = h.courses.GetAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		articles, err = h.articles.GetAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("home: failed to load catalog: %w", err)
	}

	var membership, master []*course.Course
	for _, c := range courses {
		switch c.Type {
		case course.TypeMembership:
			membership = append(membership, c)
		case course.TypeMaster:
			master = append(master, c)
		}
	}

	shownMembership := firstN(membership, h.config.CoursesPerType)
	shown := make([]*course.Course, 0, len(courses))
	shown = append(shown, shownMembership...)
	shown = append(shown, firstN(master, h.config.CoursesPerType)...)
	summaries, err := h.summarizer.SummarizeAll(ctx, shown)
	if err != nil {
		return nil, fmt.Errorf("home: failed to summarize courses: %w", err)
	}

	split := len(shownMembership)
	view := &HomeView{
		MembershipCourses: filterCourses(summaries[:split], q.Search),
		MasterCourses:     filterCourses(summaries[split:], q.Search),
		Articles:          filterArticles(firstN(articles, h.config.Articles), q.Search),
		Search:            q.Search,
	}

	logger.FromContext(ctx, h.log).Debug("home view built",
		logger.Int("membership", len(view.MembershipCourses)),
		logger.Int("master", len(view.MasterCourses)),
		logger.Int("articles", len(view.Articles)),
	)

	return view, nil
}

// filterArticles keeps the articles matching query.
func filterArticles(items []*article.Article, query string) []*article.Article {
	out := make([]*article.Article, 0, len(items))
	for _, a := range items {
		if a.Matches(query) {
			out = append(out, a)
		}
	}
	return out
}
