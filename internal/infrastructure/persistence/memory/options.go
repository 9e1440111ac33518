// Package memory implements the catalog repositories and the progress
// aggregator as in-process stores.
//
// Each store owns its collection for the lifetime of the process, guards it
// with a RWMutex and hands out copies only. A simulated round trip is spent
// before the lock is taken.
package memory

import (
	"time"

	"github.com/apper-apps/skillup-plus-harbor/pkg/latency"
	"github.com/apper-apps/skillup-plus-harbor/pkg/logger"
	"github.com/apper-apps/skillup-plus-harbor/pkg/timeutil"
)

// Options holds the collaborators shared by all stores.
type Options struct {
	// Latency simulates the delay of a remote call. Defaults to latency.None().
	Latency latency.Simulator

	// Clock stamps timestamps. Defaults to timeutil.SystemClock.
	Clock timeutil.Clock

	// Location is used to resolve today's weekday label. Defaults to Asia/Seoul.
	Location *time.Location

	// Logger receives debug records for every mutation. Defaults to logger.Discard().
	Logger *logger.Logger
}

func (o Options) withDefaults() Options {
	if o.Latency == nil {
		o.Latency = latency.None()
	}
	if o.Clock == nil {
		o.Clock = timeutil.SystemClock{}
	}
	if o.Location == nil {
		o.Location = timeutil.SeoulTZ
	}
	if o.Logger == nil {
		o.Logger = logger.Discard()
	}
	return o
}

// sequence allocates identifiers for one collection.
// The high-water mark survives deletes, so an id is never handed out twice.
type sequence struct {
	high int
}

// observe raises the high-water mark to id.
func (s *sequence) observe(id int) {
	if id > s.high {
		s.high = id
	}
}

// next returns max(high-water mark, ids seen) + 1.
func (s *sequence) next() int {
	s.high++
	return s.high
}
