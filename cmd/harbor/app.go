package main

import (
	"context"
	"fmt"

	"github.com/apper-apps/skillup-plus-harbor/config"

	// Application layer
	"github.com/apper-apps/skillup-plus-harbor/internal/application/command"
	"github.com/apper-apps/skillup-plus-harbor/internal/application/eventhandler"
	"github.com/apper-apps/skillup-plus-harbor/internal/application/query"
	"github.com/apper-apps/skillup-plus-harbor/internal/application/saga"

	// Domain layer
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/course"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/progress"

	// Infrastructure layer
	"github.com/apper-apps/skillup-plus-harbor/internal/infrastructure/messaging"
	"github.com/apper-apps/skillup-plus-harbor/internal/infrastructure/persistence/memory"
	"github.com/apper-apps/skillup-plus-harbor/internal/infrastructure/persistence/postgres"
	"github.com/apper-apps/skillup-plus-harbor/internal/infrastructure/persistence/redis"
	"github.com/apper-apps/skillup-plus-harbor/internal/infrastructure/persistence/seed"

	// Packages
	"github.com/apper-apps/skillup-plus-harbor/pkg/latency"
	"github.com/apper-apps/skillup-plus-harbor/pkg/logger"
	"github.com/apper-apps/skillup-plus-harbor/pkg/retry"
	"github.com/apper-apps/skillup-plus-harbor/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION
// ══════════════════════════════════════════════════════════════════════════════

// Application holds every wired component.
type Application struct {
	Config *config.Config
	Logger *logger.Logger

	// Stores
	Courses  *memory.CourseStore
	Videos   *memory.VideoStore
	Articles *memory.ArticleStore
	Progress *memory.ProgressAggregator

	// Infrastructure
	EventBus *messaging.InMemoryEventBus
	Cache    *redis.Cache
	Journal  *eventhandler.ActivityLogger

	// Queries
	Home      *query.HomeHandler
	Catalog   *query.CatalogHandler
	Insights  *query.InsightsHandler
	Dashboard *query.DashboardHandler

	// Commands
	UploadCourse  *command.UploadCourseHandler
	DeleteCourse  *command.DeleteCourseHandler
	SaveArticle   *command.SaveArticleHandler
	DeleteArticle *command.DeleteArticleHandler
	CompleteVideo *command.CompleteVideoHandler
}

// newEventBus is replaced in tests to observe the bus lifecycle.
var newEventBus = messaging.NewInMemoryEventBus

// buildApplication wires the stores, the bus and the handlers.
// source overrides the configured seed source when non-nil.
func buildApplication(ctx context.Context, cfg *config.Config, log *logger.Logger, clock timeutil.Clock, source seed.Source) (_ *Application, err error) {
	app := &Application{Config: cfg, Logger: log}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА НАЧАЛЬНЫХ ДАННЫХ
	// ─────────────────────────────────────────────────────────────────────────
	if source == nil {
		s, closeFn, err := seedSource(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		defer closeFn()
		source = s
	}

	ds, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load seed: %w", err)
	}
	fingerprint, err := ds.Fingerprint()
	if err != nil {
		return nil, err
	}
	log.Info("seed loaded",
		logger.String("fingerprint", fingerprint),
		logger.Int("courses", len(ds.Courses)),
		logger.Int("videos", len(ds.Videos)),
		logger.Int("articles", len(ds.Articles)),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. ХРАНИЛИЩА
	// ─────────────────────────────────────────────────────────────────────────
	opts := memory.Options{
		Latency:  latencySimulator(cfg.Latency),
		Clock:    clock,
		Location: cfg.App.Location,
		Logger:   log,
	}

	policy := progress.MoveToFront
	if cfg.Features.IsEnabled(config.FeatureKeepActivityPosition) {
		policy = progress.KeepPosition
	}

	app.Courses = memory.NewCourseStore(ds.Courses, opts)
	app.Videos = memory.NewVideoStore(ds.Videos, opts)
	app.Articles = memory.NewArticleStore(ds.Articles, opts)
	app.Progress = memory.NewProgressAggregator(ds.UserProgress, policy, opts)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. EVENT BUS И КЭШ
	// ─────────────────────────────────────────────────────────────────────────
	busCfg := messaging.DefaultInMemoryEventBusConfig()
	busCfg.AsyncMode = cfg.EventBus.Async
	busCfg.WorkerPoolSize = cfg.EventBus.Workers
	busCfg.Logger = log
	app.EventBus = newEventBus(busCfg)

	var summaries course.SummaryCache
	if cfg.Redis.Enabled {
		cache, err := redis.NewCache(ctx, redisConfig(cfg.Redis))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.Cache = cache
		sc := redis.NewSummaryCache(cache, cfg.Redis.SummaryTTL, log)
		// Stores start from the seed on every run, so summaries left by an earlier run are stale
		if err := sc.InvalidateAll(ctx); err != nil {
			log.Warn("failed to clear stale summaries", logger.Err(err))
		}
		summaries = sc
		log.Info("summary cache enabled", logger.Duration("ttl", cfg.Redis.SummaryTTL))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ОБРАБОТЧИКИ СОБЫТИЙ
	// ─────────────────────────────────────────────────────────────────────────
	app.Journal = eventhandler.NewActivityLogger(log, eventhandler.DefaultJournalSize)
	if err := app.Journal.Register(app.EventBus); err != nil {
		return nil, err
	}
	if summaries != nil {
		if err := eventhandler.NewSummaryInvalidator(summaries, log).Register(app.EventBus); err != nil {
			return nil, err
		}
	}
	if cfg.Features.IsEnabled(config.FeatureMilestoneAchievements) {
		flow := saga.NewAchievementFlowSaga(app.Progress, app.EventBus, clock, log, saga.DefaultAchievementFlowConfig())
		if err := eventhandler.NewOnProgressMilestoneHandler(flow, log).Register(app.EventBus); err != nil {
			return nil, err
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. QUERIES И COMMANDS
	// ─────────────────────────────────────────────────────────────────────────
	summarizer := query.NewSummarizer(app.Videos, summaries, cfg.Views.FanoutLimit, log)

	app.Home = query.NewHomeHandler(app.Courses, app.Articles, summarizer, query.HomeConfig{
		CoursesPerType: cfg.Views.HomeCoursesPerType,
		Articles:       cfg.Views.HomeArticles,
	}, log)
	app.Catalog = query.NewCatalogHandler(app.Courses, app.Videos, summarizer, log)
	app.Insights = query.NewInsightsHandler(app.Articles)
	app.Dashboard = query.NewDashboardHandler(app.Courses, app.Progress, cfg.Views.DashboardRecentCourses, cfg.App.Location, log)

	app.UploadCourse = command.NewUploadCourseHandler(app.Courses, app.Videos, app.EventBus, clock, log)
	app.DeleteCourse = command.NewDeleteCourseHandler(app.Courses, app.Videos, app.EventBus, cfg.Features, clock, log)
	app.SaveArticle = command.NewSaveArticleHandler(app.Articles, app.EventBus, clock, log)
	app.DeleteArticle = command.NewDeleteArticleHandler(app.Articles, app.EventBus, clock, log)
	app.CompleteVideo = command.NewCompleteVideoHandler(app.Courses, app.Videos, app.Progress, app.EventBus, cfg.Features, clock, log)

	log.Info("application wired",
		logger.Int("courses", app.Courses.Len()),
		logger.Int("videos", app.Videos.Len()),
		logger.Bool("latency", cfg.Latency.Enabled),
		logger.Bool("async_events", cfg.EventBus.Async),
	)

	return app, nil
}

// Close releases the bus and the cache connection.
func (a *Application) Close() {
	if a.EventBus != nil {
		_ = a.EventBus.Close()
	}
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
}

// seedSource picks the configured seed source. The returned func closes
// whatever connection the source needed.
func seedSource(ctx context.Context, cfg *config.Config, log *logger.Logger) (seed.Source, func(), error) {
	if cfg.Seed.Source != config.SeedPostgres {
		return seed.EmbeddedSource{}, func() {}, nil
	}

	pgCfg := postgres.DefaultConfig()
	pgCfg.URL = cfg.Database.URL
	if cfg.Database.MaxConns > 0 {
		pgCfg.MaxConns = int32(cfg.Database.MaxConns)
	}
	if cfg.Database.ConnectTimeout > 0 {
		pgCfg.ConnectTimeout = cfg.Database.ConnectTimeout
	}

	conn, err := postgres.NewConnection(ctx, pgCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Seed.Migrate {
		if _, err := conn.Migrate(ctx, postgres.Migrations, log); err != nil {
			conn.Close()
			return nil, nil, err
		}
	}

	retrier := retry.SeedImportRetrier(cfg.Seed.MaxRetries + 1)
	return postgres.NewSeedSource(conn, cfg.App.DefaultUserID, retrier, log), conn.Close, nil
}

func latencySimulator(cfg config.LatencyConfig) latency.Simulator {
	if !cfg.Enabled {
		return latency.None()
	}
	return latency.NewSleeper(latency.DefaultProfile(), cfg.Scale, cfg.Jitter)
}

func redisConfig(cfg config.RedisConfig) redis.Config {
	rc := redis.DefaultConfig()
	rc.URL = cfg.URL
	if cfg.Host != "" {
		rc.Host = cfg.Host
	}
	if cfg.Port > 0 {
		rc.Port = cfg.Port
	}
	rc.Password = cfg.Password
	rc.DB = cfg.DB
	if cfg.DialTimeout > 0 {
		rc.DialTimeout = cfg.DialTimeout
	}
	return rc
}
