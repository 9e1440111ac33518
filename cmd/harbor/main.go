// Package main - точка входа SkillUp Plus Harbor.
//
// Каталог курсов, видео и статей живёт в памяти процесса и заполняется
// из встроенного набора данных или из снимка PostgreSQL. Команда
// выполняет одно действие над каталогом и печатает результат в JSON.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: сущности и правила прогресса без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries/Sagas)
// - Infrastructure: хранилища, event bus, Redis и PostgreSQL
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/apper-apps/skillup-plus-harbor/config"
	"github.com/apper-apps/skillup-plus-harbor/internal/application/command"
	"github.com/apper-apps/skillup-plus-harbor/internal/application/query"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/course"
	"github.com/apper-apps/skillup-plus-harbor/pkg/logger"
	"github.com/apper-apps/skillup-plus-harbor/pkg/timeutil"
)

// errUsage is returned for unknown commands, bad flags and missing required flags.
var errUsage = errors.New("invalid usage")

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	// Корневой контекст отменяется по SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. КОМАНДЫ (приложение собирается только для известной команды)
	// ─────────────────────────────────────────────────────────────────────────
	c := &cli{
		out:    out,
		errOut: errOut,
		build: func(ctx context.Context, name string) (*Application, error) {
			log.Info("starting SkillUp Plus Harbor",
				logger.String("env", string(cfg.App.Environment)),
				logger.String("seed", string(cfg.Seed.Source)),
				logger.String("command", name),
			)
			return buildApplication(ctx, cfg, log, timeutil.SystemClock{}, nil)
		},
	}
	return c.execute(logger.WithContext(ctx, log), args)
}

// setupLogger builds the process logger from LOG_LEVEL. Logs go to stderr so
// stdout carries only the JSON result.
func setupLogger(cfg *config.Config) *logger.Logger {
	return logger.New(logger.Options{
		Output:    os.Stderr,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.IsDevelopment(),
	}).With(logger.String("app", cfg.App.Name))
}

// ══════════════════════════════════════════════════════════════════════════════
// CLI
// ══════════════════════════════════════════════════════════════════════════════

// cli owns one invocation: the application is built lazily by the root
// PersistentPreRunE and the subcommand's result is kept for printing.
type cli struct {
	out    io.Writer
	errOut io.Writer
	build  func(ctx context.Context, name string) (*Application, error)

	app    *Application
	result any
}

func (c *cli) execute(ctx context.Context, args []string) error {
	root := c.rootCommand()
	if len(args) == 0 {
		fmt.Fprint(c.errOut, root.UsageString())
		return errUsage
	}

	root.SetArgs(args)
	root.SetOut(c.errOut)
	root.SetErr(c.errOut)

	defer func() {
		if c.app != nil {
			c.app.Close()
		}
	}()

	cmd, err := root.ExecuteContextC(ctx)
	if err != nil {
		if errors.Is(err, errUsage) && cmd != nil {
			fmt.Fprint(c.errOut, cmd.UsageString())
		}
		return err
	}
	if c.result == nil {
		return nil
	}

	// Асинхронные обработчики должны успеть отработать до выхода
	c.app.EventBus.Drain()
	return writeJSON(c.out, c.result)
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "harbor",
		Short:         "SkillUp Plus catalog and learning progress",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errUsage
			}
			return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd == cmd.Root() || cmd.Name() == "help" {
				return nil
			}
			if err := cmd.ValidateRequiredFlags(); err != nil {
				return fmt.Errorf("%w: %v", errUsage, err)
			}
			if err := cmd.ValidateFlagGroups(); err != nil {
				return fmt.Errorf("%w: %v", errUsage, err)
			}
			app, err := c.build(cmd.Context(), cmd.Name())
			if err != nil {
				return err
			}
			c.app = app
			return nil
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})

	root.AddCommand(
		c.homeCommand(),
		c.catalogCommand(),
		c.insightsCommand(),
		c.dashboardCommand(),
		c.uploadCommand(),
		c.deleteCommand(),
		c.articleCommand(),
		c.unpublishCommand(),
		c.completeCommand(),
		c.featuresCommand(),
	)
	return root
}

// emit stores the result of a successful subcommand.
func (c *cli) emit(result any, err error) error {
	if err != nil {
		return err
	}
	c.result = result
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Queries
// ─────────────────────────────────────────────────────────────────────────────

func (c *cli) homeCommand() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "home",
		Short: "Home page: latest courses of each type and latest articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.emit(c.app.Home.Handle(cmd.Context(), query.HomeQuery{Search: search}))
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive search")
	return cmd
}

func (c *cli) catalogCommand() *cobra.Command {
	var courseType, search, courseID, videoID string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Courses of one type with an optional opened curriculum",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.emit(c.app.Catalog.Handle(cmd.Context(), query.CatalogQuery{
				Type:             course.Type(courseType),
				Search:           search,
				SelectedCourseID: courseID,
				CurrentVideoID:   videoID,
			}))
		},
	}
	cmd.Flags().StringVarP(&courseType, "type", "t", "", "membership or master")
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive search")
	cmd.Flags().StringVarP(&courseID, "course", "c", "", "course id to open")
	cmd.Flags().StringVarP(&videoID, "video", "v", "", "video id to play")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func (c *cli) insightsCommand() *cobra.Command {
	var search, articleID string
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Article list, or one article when --article is set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if articleID != "" {
				return c.emit(c.app.Insights.Read(cmd.Context(), articleID))
			}
			return c.emit(c.app.Insights.List(cmd.Context(), search))
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive search")
	cmd.Flags().StringVarP(&articleID, "article", "a", "", "article id to read")
	cmd.MarkFlagsMutuallyExclusive("search", "article")
	return cmd
}

func (c *cli) dashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Learning progress of the default user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.emit(c.app.Dashboard.Handle(cmd.Context(), c.app.Config.App.DefaultUserID))
		},
	}
}

func (c *cli) featuresCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "features",
		Short: "Feature flags and their state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.emit(c.app.Config.Features.GetAllFeatures(), nil)
		},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Commands
// ─────────────────────────────────────────────────────────────────────────────

func (c *cli) uploadCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Create a course and its videos from a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in command.UploadCourseCommand
			if err := readJSON(file, &in); err != nil {
				return err
			}
			return c.emit(c.app.UploadCourse.Handle(cmd.Context(), in))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "course JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (c *cli) deleteCommand() *cobra.Command {
	var courseID string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a course",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.emit(c.app.DeleteCourse.Handle(cmd.Context(), command.DeleteCourseCommand{CourseID: courseID}))
		},
	}
	cmd.Flags().StringVarP(&courseID, "course", "c", "", "course id")
	_ = cmd.MarkFlagRequired("course")
	return cmd
}

func (c *cli) articleCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "article",
		Short: "Publish or update an article from a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in command.SaveArticleCommand
			if err := readJSON(file, &in); err != nil {
				return err
			}
			return c.emit(c.app.SaveArticle.Handle(cmd.Context(), in))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "article JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (c *cli) unpublishCommand() *cobra.Command {
	var articleID string
	cmd := &cobra.Command{
		Use:   "unpublish",
		Short: "Delete an article",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.DeleteArticle.Handle(cmd.Context(), articleID); err != nil {
				return err
			}
			return c.emit(map[string]string{"deleted": articleID}, nil)
		},
	}
	cmd.Flags().StringVarP(&articleID, "article", "a", "", "article id")
	_ = cmd.MarkFlagRequired("article")
	return cmd
}

func (c *cli) completeCommand() *cobra.Command {
	var videoID string
	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Mark a video watched and update learning progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.emit(c.app.CompleteVideo.Handle(cmd.Context(), command.CompleteVideoCommand{
				UserID:  c.app.Config.App.DefaultUserID,
				VideoID: videoID,
			}))
		},
	}
	cmd.Flags().StringVarP(&videoID, "video", "v", "", "video id")
	_ = cmd.MarkFlagRequired("video")
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// JSON helpers
// ─────────────────────────────────────────────────────────────────────────────

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
