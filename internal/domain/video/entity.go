// Package video contains the Video entity and curriculum helpers.
package video

import (
	"cmp"
	"slices"
	"time"
)

// Video is one lesson of a course curriculum.
type Video struct {
	ID        int       `json:"Id"`
	CourseID  int       `json:"courseId"`
	Title     string    `json:"title"`
	VideoURL  string    `json:"videoUrl"`
	Duration  int       `json:"duration"` // minutes
	Order     int       `json:"order"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a copy that shares no memory with v.
func (v *Video) Clone() *Video {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

// Draft holds the caller-supplied fields of a new video.
// New videos always start incomplete.
type Draft struct {
	CourseID int
	Title    string
	VideoURL string
	Duration int
	Order    int
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	CourseID  *int
	Title     *string
	VideoURL  *string
	Duration  *int
	Order     *int
	Completed *bool
}

// Apply merges the patch into v and refreshes UpdatedAt.
func (p Patch) Apply(v *Video, now time.Time) {
	if p.CourseID != nil {
		v.CourseID = *p.CourseID
	}
	if p.Title != nil {
		v.Title = *p.Title
	}
	if p.VideoURL != nil {
		v.VideoURL = *p.VideoURL
	}
	if p.Duration != nil {
		v.Duration = *p.Duration
	}
	if p.Order != nil {
		v.Order = *p.Order
	}
	if p.Completed != nil {
		v.Completed = *p.Completed
	}
	v.UpdatedAt = now
}

// CompletedPatch returns the patch MarkCompleted applies.
func CompletedPatch() Patch {
	done := true
	return Patch{Completed: &done}
}

// SortByOrder sorts videos ascending by Order, keeping the relative
// position of videos that share an Order.
func SortByOrder(videos []*Video) {
	slices.SortStableFunc(videos, func(a, b *Video) int {
		return cmp.Compare(a.Order, b.Order)
	})
}

// TotalDuration sums the durations in minutes.
func TotalDuration(videos []*Video) int {
	total := 0
	for _, v := range videos {
		total += v.Duration
	}
	return total
}

// CompletedCount counts the completed videos.
func CompletedCount(videos []*Video) int {
	n := 0
	for _, v := range videos {
		if v.Completed {
			n++
		}
	}
	return n
}
