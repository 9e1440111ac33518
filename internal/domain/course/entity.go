// Package course contains the Course entity of the catalog.
//
// Derived figures (video count, total duration) are never stored on a
// Course: the query layer computes them from the video store.
package course

import (
	"strings"
	"time"
)

// Type classifies a course.
type Type string

const (
	// TypeMembership - курсы, доступные по подписке.
	TypeMembership Type = "membership"

	// TypeMaster - мастер-классы.
	TypeMaster Type = "master"
)

// IsValid checks if the type is one of the known tags.
func (t Type) IsValid() bool {
	return t == TypeMembership || t == TypeMaster
}

// String returns the tag.
func (t Type) String() string {
	return string(t)
}

// Course is a catalog entry that owns an ordered list of videos.
type Course struct {
	ID           int       `json:"Id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	Type         Type      `json:"type"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Clone returns a copy that shares no memory with c.
func (c *Course) Clone() *Course {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// Matches reports whether the lower-cased query occurs in the title or the
// description. An empty query matches everything.
func (c *Course) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Title), q) ||
		strings.Contains(strings.ToLower(c.Description), q)
}

// Draft holds the caller-supplied fields of a new course.
type Draft struct {
	Title        string
	Description  string
	ThumbnailURL string
	Type         Type
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Title        *string
	Description  *string
	ThumbnailURL *string
	Type         *Type
}

// Apply merges the patch into c and refreshes UpdatedAt.
func (p Patch) Apply(c *Course, now time.Time) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.ThumbnailURL != nil {
		c.ThumbnailURL = *p.ThumbnailURL
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	c.UpdatedAt = now
}

// Summary holds the figures derived from a course's videos.
type Summary struct {
	CourseID       int `json:"courseId"`
	VideoCount     int `json:"videoCount"`
	TotalDuration  int `json:"totalDuration"` // minutes
	CompletedCount int `json:"completedCount"`
}
