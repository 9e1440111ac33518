package shared

import (
	"fmt"
	"math"
)

// ═══════════════════════════════════════════════════════════════════════════
// Percentage
// ═══════════════════════════════════════════════════════════════════════════

// Percentage is an integer completion value in [0, 100].
type Percentage int

const (
	MinPercentage Percentage = 0
	MaxPercentage Percentage = 100
)

// IsValid checks if the percentage is within [0, 100].
func (p Percentage) IsValid() bool {
	return p >= MinPercentage && p <= MaxPercentage
}

// Int returns the underlying int value.
func (p Percentage) Int() int {
	return int(p)
}

// IsComplete reports whether the value reached 100.
func (p Percentage) IsComplete() bool {
	return p >= MaxPercentage
}

// String returns "NN%".
func (p Percentage) String() string {
	return fmt.Sprintf("%d%%", p)
}

// NewPercentage creates a Percentage with validation.
func NewPercentage(value int) (Percentage, error) {
	p := Percentage(value)
	if !p.IsValid() {
		return 0, NewDomainError(DomainProgress, "Validate", ErrValueOutOfRange, "progress must be between 0 and 100")
	}
	return p, nil
}

// CompletionPercentage returns round(done/total*100), 0 when total is 0.
func CompletionPercentage(done, total int) Percentage {
	if total <= 0 || done <= 0 {
		return 0
	}
	if done >= total {
		return MaxPercentage
	}
	return Percentage(math.Round(float64(done) / float64(total) * 100))
}

// RoundedMean returns the arithmetic mean of values rounded half away from
// zero. An empty slice yields 0.
func RoundedMean(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return int(math.Round(float64(sum) / float64(len(values))))
}
