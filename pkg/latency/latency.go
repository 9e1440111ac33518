// Package latency simulates the round-trip delay of a remote data service for
// the in-memory stores. A Simulator is injected into every store so tests can
// run with no delay at all.
package latency

import (
	"context"
	"math/rand/v2"
	"time"
)

// Op names an operation with its own simulated delay.
type Op string

// Store operations and their reference delays.
const (
	OpList          Op = "list"
	OpGet           Op = "get"
	OpFilter        Op = "filter"
	OpByCourse      Op = "by_course"
	OpCreate        Op = "create"
	OpUpdate        Op = "update"
	OpDelete        Op = "delete"
	OpMarkCompleted Op = "mark_completed"

	OpProgressGet    Op = "progress_get"
	OpProgressCourse Op = "progress_course"
	OpProgressStudy  Op = "progress_study"
	OpProgressUnlock Op = "progress_unlock"
	OpProgressStreak Op = "progress_streak"
)

// Profile maps operations to their base delay.
type Profile map[Op]time.Duration

// DefaultProfile returns the delays of the reference service (100-400ms).
func DefaultProfile() Profile {
	return Profile{
		OpList:          300 * time.Millisecond,
		OpGet:           200 * time.Millisecond,
		OpFilter:        300 * time.Millisecond,
		OpByCourse:      250 * time.Millisecond,
		OpCreate:        400 * time.Millisecond,
		OpUpdate:        300 * time.Millisecond,
		OpDelete:        200 * time.Millisecond,
		OpMarkCompleted: 200 * time.Millisecond,

		OpProgressGet:    300 * time.Millisecond,
		OpProgressCourse: 200 * time.Millisecond,
		OpProgressStudy:  100 * time.Millisecond,
		OpProgressUnlock: 200 * time.Millisecond,
		OpProgressStreak: 100 * time.Millisecond,
	}
}

// Simulator suspends the caller for the delay of an operation.
// Wait never aborts early: an invoked operation always completes, so ctx is
// not consulted for cancellation.
type Simulator interface {
	Wait(ctx context.Context, op Op)
}

// ══════════════════════════════════════════════════════════════════════════════
// IMPLEMENTATIONS
// ══════════════════════════════════════════════════════════════════════════════

type none struct{}

func (none) Wait(context.Context, Op) {}

// None returns a Simulator that never waits.
func None() Simulator {
	return none{}
}

// Sleeper sleeps for the profiled delay of each operation, scaled and jittered.
type Sleeper struct {
	profile Profile
	scale   float64
	jitter  float64
	sleep   func(time.Duration)
}

// NewSleeper creates a Sleeper. scale multiplies every delay (0 disables
// waiting); jitter in [0,1] spreads each delay uniformly by +-jitter.
func NewSleeper(profile Profile, scale, jitter float64) *Sleeper {
	if profile == nil {
		profile = DefaultProfile()
	}
	if scale < 0 {
		scale = 0
	}
	if jitter < 0 {
		jitter = 0
	}
	if jitter > 1 {
		jitter = 1
	}
	return &Sleeper{
		profile: profile,
		scale:   scale,
		jitter:  jitter,
		sleep:   time.Sleep,
	}
}

// Delay returns the duration Wait would sleep for op, before jitter.
func (s *Sleeper) Delay(op Op) time.Duration {
	return time.Duration(float64(s.profile[op]) * s.scale)
}

// Wait implements Simulator.
func (s *Sleeper) Wait(_ context.Context, op Op) {
	d := s.Delay(op)
	if d <= 0 {
		return
	}
	if s.jitter > 0 {
		spread := (rand.Float64()*2 - 1) * s.jitter
		d = time.Duration(float64(d) * (1 + spread))
	}
	s.sleep(d)
}

// Recorder records the operations it was asked to wait for. Used by tests
// that assert an operation went through the simulated round trip.
type Recorder struct {
	Ops []Op
}

// Wait implements Simulator.
func (r *Recorder) Wait(_ context.Context, op Op) {
	r.Ops = append(r.Ops, op)
}
