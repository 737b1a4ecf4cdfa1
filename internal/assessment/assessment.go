// Package assessment checks and loads assessment inputs: identities, level
// selections and peer decisions.
package assessment

import (
	"fmt"
	"strings"

	"github.com/sagearbor/ai-skill-eval-kit/internal/rubric"
)

// GamingThreshold is the level every dimension must reach before a
// self-assessment is flagged as likely inflated.
const GamingThreshold = 4

// IncompleteError names the dimensions that have no selection.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return "please answer the following dimensions: " + strings.Join(e.Missing, ", ")
}

// LevelError reports a selection outside 0..5.
type LevelError struct {
	Dimension rubric.Dimension
	Level     int
}

func (e *LevelError) Error() string {
	return fmt.Sprintf("%s: level %d is outside 0-%d", e.Dimension.Name(), e.Level, rubric.MaxLevel)
}

func (e *LevelError) Unwrap() error { return rubric.ErrLevelOutOfRange }

// Check verifies that every dimension has an in-range selection. Missing
// dimensions are reported by display name in rubric order. Keys outside the
// rubric are not errors; callers surface them from Levels.Unknown.
func Check(levels rubric.Levels) error {
	var missing []string
	for _, d := range rubric.Dimensions() {
		if _, ok := levels[d]; !ok {
			missing = append(missing, d.Name())
		}
	}
	if len(missing) > 0 {
		return &IncompleteError{Missing: missing}
	}
	for _, d := range rubric.Dimensions() {
		if l := levels[d]; l < 0 || l > rubric.MaxLevel {
			return &LevelError{Dimension: d, Level: l}
		}
	}
	return nil
}

// SuspectedGaming reports whether every dimension sits at or above
// GamingThreshold, which is rare for an honest self-assessment.
func SuspectedGaming(levels rubric.Levels) bool {
	for _, d := range rubric.Dimensions() {
		l, ok := levels[d]
		if !ok || l < GamingThreshold {
			return false
		}
	}
	return true
}

// Decision is a peer's verdict on one claimed level.
type Decision struct {
	Confirmed bool   `json:"confirmed" yaml:"confirmed"`
	Level     *int   `json:"level,omitempty" yaml:"level,omitempty"`
	Reason    string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Confirm accepts the claimed level.
func Confirm() Decision { return Decision{Confirmed: true} }

// Adjust replaces the claimed level and records why.
func Adjust(level int, reason string) Decision {
	return Decision{Level: &level, Reason: reason}
}

// FinalLevel is the level the decision settles on.
func (d Decision) FinalLevel(claimed int) int {
	if d.Confirmed || d.Level == nil {
		return claimed
	}
	return *d.Level
}
