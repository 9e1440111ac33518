package config

import (
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags manages named behaviour toggles.
// All flags default to off, which keeps the stores' reference behaviour.
type FeatureFlags struct {
	mu       sync.RWMutex
	features map[string]*Feature
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool
}

// Predefined feature flag names.
const (
	// Deleting a course also deletes its videos instead of orphaning them.
	FeatureCascadeVideoDelete = "catalog.cascade_video_delete"

	// An updated activity row keeps its position instead of moving to the front.
	FeatureKeepActivityPosition = "progress.keep_activity_position"

	// Finishing every video of a course unlocks an achievement.
	FeatureCourseCompletionAchievement = "progress.course_completion_achievement"

	// Streak and study-time milestones unlock achievements.
	FeatureMilestoneAchievements = "progress.milestone_achievements"
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := NewFeatureFlags()
	ff.loadFromEnvironment()
	return ff
}

// NewFeatureFlags returns the flag set with defaults only.
func NewFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{features: make(map[string]*Feature)}
	ff.initializeDefaults()
	return ff
}

func (ff *FeatureFlags) initializeDefaults() {
	ff.features[FeatureCascadeVideoDelete] = &Feature{
		Name:        FeatureCascadeVideoDelete,
		Description: "Delete a course's videos together with the course",
	}

	ff.features[FeatureKeepActivityPosition] = &Feature{
		Name:        FeatureKeepActivityPosition,
		Description: "Update recent-activity rows in place",
	}

	ff.features[FeatureCourseCompletionAchievement] = &Feature{
		Name:        FeatureCourseCompletionAchievement,
		Description: "Unlock an achievement when a course reaches 100%",
	}

	ff.features[FeatureMilestoneAchievements] = &Feature{
		Name:        FeatureMilestoneAchievements,
		Description: "Unlock achievements at streak and study-time milestones",
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false
// Example: FEATURE_CATALOG_CASCADE_VIDEO_DELETE=true
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		val := os.Getenv(featureNameToEnvKey(name))
		if val == "" {
			continue
		}
		if b, err := strconv.ParseBool(val); err == nil {
			feature.Enabled = b
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "catalog.cascade_video_delete" -> "FEATURE_CATALOG_CASCADE_VIDEO_DELETE"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled reports whether a feature is on. Unknown names are off.
// A nil receiver has every feature off.
func (ff *FeatureFlags) IsEnabled(featureName string) bool {
	if ff == nil {
		return false
	}
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	feature, ok := ff.features[featureName]
	return ok && feature.Enabled
}

// Set switches a feature on or off.
func (ff *FeatureFlags) Set(featureName string, enabled bool) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}
	feature.Enabled = enabled
	return nil
}

// EnableFeature switches a feature on.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.Set(featureName, true)
}

// DisableFeature switches a feature off.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.Set(featureName, false)
}

// GetAllFeatures returns copies of all features sorted by name.
func (ff *FeatureFlags) GetAllFeatures() []Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make([]Feature, 0, len(ff.features))
	for _, v := range ff.features {
		result = append(result, *v)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// --- Errors ---

var (
	ErrFeatureNotFound = &FeatureFlagError{Message: "feature not found"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
