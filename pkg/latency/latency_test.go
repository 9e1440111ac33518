package latency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSleeper_ScalesProfile(t *testing.T) {
	s := NewSleeper(DefaultProfile(), 0.5, 0)

	var slept []time.Duration
	s.sleep = func(d time.Duration) { slept = append(slept, d) }

	s.Wait(context.Background(), OpCreate)
	s.Wait(context.Background(), OpProgressStudy)

	assert.Equal(t, []time.Duration{200 * time.Millisecond, 50 * time.Millisecond}, slept)
}

func TestSleeper_ZeroScaleNeverSleeps(t *testing.T) {
	s := NewSleeper(nil, 0, 0.3)
	s.sleep = func(time.Duration) { t.Fatal("unexpected sleep") }

	s.Wait(context.Background(), OpList)
	assert.Equal(t, time.Duration(0), s.Delay(OpList))
}

func TestSleeper_JitterStaysInRange(t *testing.T) {
	s := NewSleeper(DefaultProfile(), 1, 0.25)

	var slept []time.Duration
	s.sleep = func(d time.Duration) { slept = append(slept, d) }

	for i := 0; i < 50; i++ {
		s.Wait(context.Background(), OpGet)
	}

	for _, d := range slept {
		assert.GreaterOrEqual(t, d, 150*time.Millisecond)
		assert.LessOrEqual(t, d, 250*time.Millisecond)
	}
}

func TestDefaultProfile_WithinReferenceRange(t *testing.T) {
	for op, d := range DefaultProfile() {
		assert.GreaterOrEqual(t, d, 100*time.Millisecond, op)
		assert.LessOrEqual(t, d, 400*time.Millisecond, op)
	}
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	r.Wait(context.Background(), OpGet)
	r.Wait(context.Background(), OpUpdate)
	assert.Equal(t, []Op{OpGet, OpUpdate}, r.Ops)
}
