// Package timeutil provides the clock abstraction and calendar helpers used by
// SkillUp Plus Harbor. Weekday labels and durations follow the ko-KR formatting
// the dashboard displays.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// SeoulTZ is the default timezone (UTC+9, no DST).
var SeoulTZ = time.FixedZone("Asia/Seoul", 9*60*60)

// Day is the length of a calendar day used for elapsed-day arithmetic.
const Day = 24 * time.Hour

// ══════════════════════════════════════════════════════════════════════════════
// CLOCK
// ══════════════════════════════════════════════════════════════════════════════

// Clock returns the current time. Stores take a Clock so tests can pin "now".
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock is a settable Clock for tests and replays.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a FixedClock pinned at t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

// Now implements Clock.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// ══════════════════════════════════════════════════════════════════════════════
// DAY ARITHMETIC
// ══════════════════════════════════════════════════════════════════════════════

// StartOfDay returns 00:00:00 of t's day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// ElapsedDays returns floor((to - from) / 24h). A from in the future
// yields a negative value.
func ElapsedDays(from, to time.Time) int {
	return int(math.Floor(float64(to.Sub(from)) / float64(Day)))
}

// IsSameDay checks if two times fall on the same calendar day in loc.
func IsSameDay(t1, t2 time.Time, loc *time.Location) bool {
	return StartOfDay(t1, loc).Equal(StartOfDay(t2, loc))
}

// ══════════════════════════════════════════════════════════════════════════════
// KO-KR LABELS
// ══════════════════════════════════════════════════════════════════════════════

// WeekdayLabels are the short ko-KR weekday labels in Monday-first order.
// The weekly progress entries are seeded with exactly these labels.
var WeekdayLabels = []string{"월", "화", "수", "목", "금", "토", "일"}

// WeekdayLabel returns the short ko-KR label of t's weekday in loc.
func WeekdayLabel(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	wd := t.In(loc).Weekday()
	// time.Sunday == 0, labels start at Monday
	return WeekdayLabels[(int(wd)+6)%7]
}

// FormatMinutes renders a study duration as "3시간 20분" or "45분".
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours > 0 {
		return fmt.Sprintf("%d시간 %d분", hours, mins)
	}
	return fmt.Sprintf("%d분", mins)
}

// FormatMonthDay renders a date as "10월 19일" in loc.
func FormatMonthDay(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return fmt.Sprintf("%d월 %d일", int(local.Month()), local.Day())
}
