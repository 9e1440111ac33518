package postgres

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"

	"github.com/apper-apps/skillup-plus-harbor/pkg/logger"
)

// Migration is one versioned schema change.
type Migration struct {
	Version int
	Name    string
	Up      string
}

// Migrations creates the snapshot tables SeedSource reads.
var Migrations = []Migration{
	{Version: 1, Name: "create_catalog", Up: migration001Up},
	{Version: 2, Name: "create_user_progress", Up: migration002Up},
}

const createMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
)`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE CATALOG
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE IF NOT EXISTS courses (
    id INTEGER PRIMARY KEY,
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    thumbnail_url TEXT,
    type VARCHAR(20) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_course_type CHECK (type IN ('membership', 'master'))
);

CREATE INDEX IF NOT EXISTS idx_courses_type ON courses(type);

-- course_id is not a foreign key: videos may outlive their course
CREATE TABLE IF NOT EXISTS videos (
    id INTEGER PRIMARY KEY,
    course_id INTEGER NOT NULL,
    title VARCHAR(255) NOT NULL,
    video_url TEXT NOT NULL DEFAULT '',
    duration INTEGER NOT NULL DEFAULT 0,
    order_index INTEGER,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_duration CHECK (duration >= 0)
);

CREATE INDEX IF NOT EXISTS idx_videos_course_order ON videos(course_id, order_index);

CREATE TABLE IF NOT EXISTS articles (
    id INTEGER PRIMARY KEY,
    title VARCHAR(255) NOT NULL,
    content TEXT NOT NULL,
    excerpt TEXT,
    thumbnail_url TEXT,
    author_id INTEGER NOT NULL DEFAULT 1,
    published_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    views INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_views CHECK (views >= 0)
);

CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published_at DESC);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE USER PROGRESS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
CREATE TABLE IF NOT EXISTS user_progress (
    user_id INTEGER PRIMARY KEY,
    overall_progress INTEGER NOT NULL DEFAULT 0,
    completed_courses INTEGER NOT NULL DEFAULT 0,
    total_study_time INTEGER NOT NULL DEFAULT 0,
    achievements INTEGER NOT NULL DEFAULT 0,
    learning_streak INTEGER NOT NULL DEFAULT 0,
    last_activity_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    -- Nested rows are stored as JSONB in the same shape as the embedded dataset
    recent_activity JSONB NOT NULL DEFAULT '[]'::jsonb,
    weekly_progress JSONB NOT NULL DEFAULT '[]'::jsonb,
    recent_achievements JSONB NOT NULL DEFAULT '[]'::jsonb,

    CONSTRAINT valid_overall_progress CHECK (overall_progress BETWEEN 0 AND 100),
    CONSTRAINT valid_streak CHECK (learning_streak >= 0)
);
`

// ══════════════════════════════════════════════════════════════════════════════
// RUNNER
// ══════════════════════════════════════════════════════════════════════════════

// Migrate applies every migration newer than the recorded schema version.
// Each migration runs in its own transaction.
func (c *Connection) Migrate(ctx context.Context, migrations []Migration, log *logger.Logger) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return 0, ErrConnectionClosed
	}
	if log == nil {
		log = logger.Discard()
	}

	if _, err := c.pool.Exec(ctx, createMigrationsTable); err != nil {
		return 0, fmt.Errorf("postgres: create schema_migrations: %w", err)
	}

	var current int
	if err := c.pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return 0, fmt.Errorf("postgres: read schema version: %w", err)
	}

	applied := 0
	for _, m := range Pending(migrations, current) {
		err := pgx.BeginFunc(ctx, c.pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, m.Up); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.Version, m.Name)
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("postgres: migration %03d_%s: %w", m.Version, m.Name, err)
		}
		applied++
		log.Info("migration applied", logger.Int("version", m.Version), logger.String("name", m.Name))
	}
	return applied, nil
}

// Pending returns the migrations above version, in version order.
func Pending(migrations []Migration, version int) []Migration {
	var out []Migration
	for _, m := range migrations {
		if m.Version > version {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b Migration) int { return cmp.Compare(a.Version, b.Version) })
	return out
}
