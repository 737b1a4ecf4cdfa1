package scoring

import "github.com/sagearbor/ai-skill-eval-kit/internal/config"

// Interpretation explains a personal minus corporate gap.
type Interpretation struct {
	Meaning string `json:"meaning"`
	Action  string `json:"action"`
}

// GapLadder maps a gap to an interpretation. A gap above High is high
// positive; at or above Moderate is moderate; at or above Balanced is
// balanced; anything lower is negative.
type GapLadder struct {
	High     float64
	Moderate float64
	Balanced float64

	HighPositive     Interpretation
	ModeratePositive Interpretation
	Even             Interpretation
	Negative         Interpretation
}

// DefaultGapLadder is used when no configuration supplies one.
func DefaultGapLadder() GapLadder {
	return GapLadder{
		High:             30,
		Moderate:         10,
		Balanced:         -10,
		HighPositive:     Interpretation{"High individual readiness, low org enablement", "Advocate for AI pilot projects"},
		ModeratePositive: Interpretation{"Moderate gap", "Seek deployment opportunities"},
		Even:             Interpretation{"Balanced", "Continue current trajectory"},
		Negative:         Interpretation{"Org ahead of individual", "Invest in learning/upskilling"},
	}
}

// LadderFrom reads the ladder from doc, falling back to the defaults when the
// document has none.
func LadderFrom(doc *config.Document) GapLadder {
	gi := doc.Gaps()
	if gi == nil {
		return DefaultGapLadder()
	}
	l := DefaultGapLadder()
	if gi.HighPositive.Threshold != nil {
		l.High = *gi.HighPositive.Threshold
	}
	if gi.ModeratePositive.MinThreshold != nil {
		l.Moderate = *gi.ModeratePositive.MinThreshold
	}
	if gi.Balanced.MinThreshold != nil {
		l.Balanced = *gi.Balanced.MinThreshold
	}
	l.HighPositive = Interpretation{gi.HighPositive.Meaning, gi.HighPositive.Action}
	l.ModeratePositive = Interpretation{gi.ModeratePositive.Meaning, gi.ModeratePositive.Action}
	l.Even = Interpretation{gi.Balanced.Meaning, gi.Balanced.Action}
	l.Negative = Interpretation{gi.Negative.Meaning, gi.Negative.Action}
	return l
}

// Interpret picks the interpretation for gap.
func (l GapLadder) Interpret(gap int) Interpretation {
	g := float64(gap)
	switch {
	case g > l.High:
		return l.HighPositive
	case g >= l.Moderate:
		return l.ModeratePositive
	case g >= l.Balanced:
		return l.Even
	default:
		return l.Negative
	}
}
