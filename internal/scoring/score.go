// Package scoring turns level selections into weighted, evidence-adjusted,
// normalized scores.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/sagearbor/ai-skill-eval-kit/internal/rubric"
	"github.com/sagearbor/ai-skill-eval-kit/internal/weights"
)

// Warning records a level entry that was left out of the totals.
type Warning struct {
	Dimension rubric.Dimension `json:"dimension"`
	Level     int              `json:"level"`
	Reason    string           `json:"reason"`
	Err       error            `json:"-"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s=%d: %s", w.Dimension, w.Level, w.Reason)
}

// SingleScore is one normalized score.
type SingleScore struct {
	RawTotal        float64   `json:"rawTotal"`
	NormalizedScore int       `json:"normalizedScore"`
	ScoreBand       string    `json:"scoreBand"`
	Warnings        []Warning `json:"-"`
}

// Single scores levels against one weight vector. Raw points and the maximum
// both use w. Entries with unknown dimensions or out-of-range levels are
// excluded from both sums and reported as warnings.
func Single(levels rubric.Levels, w weights.Vector, multiplier float64) SingleScore {
	raw, maxPossible, warnings := accumulate(levels, w)

	final := raw * multiplier
	normalized := 0
	if maxPossible > 0 {
		normalized = int(math.Round(final / maxPossible * 100))
	}

	return SingleScore{
		RawTotal:        round2(raw),
		NormalizedScore: normalized,
		ScoreBand:       rubric.BandFor(normalized).Name,
		Warnings:        warnings,
	}
}

func accumulate(levels rubric.Levels, w weights.Vector) (raw, maxPossible float64, warnings []Warning) {
	for _, d := range rubric.Dimensions() {
		level, ok := levels[d]
		if !ok {
			continue
		}
		points, err := rubric.Points(d, level)
		if err != nil {
			warnings = append(warnings, warn(d, level, err))
			continue
		}
		weight := w[d]
		// Explicit conversions keep each product rounded before the add.
		raw += float64(points * weight)
		maxPossible += float64(rubric.MaxPoints(d) * weight)
	}
	for _, d := range levels.Unknown() {
		warnings = append(warnings, warn(d, levels[d], fmt.Errorf("rubric: %w: %q", rubric.ErrUnknownDimension, d)))
	}
	return raw, maxPossible, warnings
}

func warn(d rubric.Dimension, level int, err error) Warning {
	reason := "unknown dimension"
	if errors.Is(err, rubric.ErrLevelOutOfRange) {
		reason = "level out of range"
	}
	return Warning{Dimension: d, Level: level, Reason: reason, Err: err}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
