// Package seed provides the initial data the stores are constructed from.
//
// A Dataset is loaded once at start-up from a Source: the catalog embedded in
// the binary, or a snapshot imported from Postgres.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/crypto/blake2b"

	"github.com/apper-apps/skillup-plus-harbor/internal/domain/article"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/course"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/progress"
	"github.com/apper-apps/skillup-plus-harbor/internal/domain/video"
	"github.com/apper-apps/skillup-plus-harbor/pkg/timeutil"
)

// ErrInvalidDataset is returned when seed data breaks an invariant.
var ErrInvalidDataset = errors.New("seed: invalid dataset")

//go:embed data/catalog.json
var embeddedCatalog []byte

// Dataset is the full initial state of the stores.
type Dataset struct {
	Courses      []*course.Course       `json:"courses"`
	Videos       []*video.Video         `json:"videos"`
	Articles     []*article.Article     `json:"articles"`
	UserProgress *progress.UserProgress `json:"userProgress"`
}

// Source loads a Dataset.
type Source interface {
	Load(ctx context.Context) (*Dataset, error)
}

// Parse decodes a JSON dataset and validates it.
func Parse(data []byte) (*Dataset, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var ds Dataset
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("seed: decode dataset: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Validate checks identity and shape invariants: ids are positive and unique
// per collection, and the week has exactly one entry per weekday label.
func (d *Dataset) Validate() error {
	var errs []error

	courseIDs := make([]int, 0, len(d.Courses))
	for _, c := range d.Courses {
		courseIDs = append(courseIDs, c.ID)
	}
	errs = append(errs, checkIDs("courses", courseIDs)...)

	videoIDs := make([]int, 0, len(d.Videos))
	for _, v := range d.Videos {
		videoIDs = append(videoIDs, v.ID)
		if v.Duration < 0 {
			errs = append(errs, fmt.Errorf("videos: id %d has negative duration", v.ID))
		}
	}
	errs = append(errs, checkIDs("videos", videoIDs)...)

	articleIDs := make([]int, 0, len(d.Articles))
	for _, a := range d.Articles {
		articleIDs = append(articleIDs, a.ID)
		if a.Views < 0 {
			errs = append(errs, fmt.Errorf("articles: id %d has negative views", a.ID))
		}
	}
	errs = append(errs, checkIDs("articles", articleIDs)...)

	if p := d.UserProgress; p != nil {
		if len(p.WeeklyProgress) != len(timeutil.WeekdayLabels) {
			errs = append(errs, fmt.Errorf("userProgress: want %d weekly entries, got %d",
				len(timeutil.WeekdayLabels), len(p.WeeklyProgress)))
		}
		seen := make(map[string]bool, len(p.WeeklyProgress))
		for _, e := range p.WeeklyProgress {
			if !slices.Contains(timeutil.WeekdayLabels, e.Day) {
				errs = append(errs, fmt.Errorf("userProgress: unknown weekday label %q", e.Day))
			}
			if seen[e.Day] {
				errs = append(errs, fmt.Errorf("userProgress: duplicate weekday label %q", e.Day))
			}
			seen[e.Day] = true
		}
		courses := make(map[int]bool, len(p.RecentActivity))
		for _, row := range p.RecentActivity {
			if courses[row.CourseID] {
				errs = append(errs, fmt.Errorf("userProgress: duplicate activity for course %d", row.CourseID))
			}
			courses[row.CourseID] = true
		}
		if len(p.RecentActivity) > progress.MaxRecentActivity {
			errs = append(errs, fmt.Errorf("userProgress: more than %d activity rows", progress.MaxRecentActivity))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDataset, errors.Join(errs...))
	}
	return nil
}

// Fingerprint is a short digest of the dataset's JSON form. Two loads print
// the same fingerprint only when they start the stores from the same state.
func (d *Dataset) Fingerprint() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("seed: encode dataset: %w", err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:8]), nil
}

func checkIDs(collection string, ids []int) []error {
	var errs []error
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if id <= 0 {
			errs = append(errs, fmt.Errorf("%s: id %d is not positive", collection, id))
		}
		if seen[id] {
			errs = append(errs, fmt.Errorf("%s: duplicate id %d", collection, id))
		}
		seen[id] = true
	}
	return errs
}

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED SOURCE
// ══════════════════════════════════════════════════════════════════════════════

// EmbeddedSource serves the catalog compiled into the binary.
type EmbeddedSource struct{}

// Load implements Source.
func (EmbeddedSource) Load(ctx context.Context) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Parse(embeddedCatalog)
}

// BytesSource serves a dataset from raw JSON, e.g. a file read by the caller.
type BytesSource []byte

// Load implements Source.
func (b BytesSource) Load(ctx context.Context) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Parse(b)
}
