package scoring

import (
	"github.com/phuslu/log"

	"github.com/sagearbor/ai-skill-eval-kit/internal/config"
	"github.com/sagearbor/ai-skill-eval-kit/internal/logging"
	"github.com/sagearbor/ai-skill-eval-kit/internal/rubric"
	"github.com/sagearbor/ai-skill-eval-kit/internal/weights"
)

// Breakdown is the per-dimension detail shown alongside a score. It always
// uses the combined weight vector.
type Breakdown struct {
	Level            int     `json:"level"`
	RawPoints        float64 `json:"rawPoints"`
	Weight           float64 `json:"weight"`
	WeightedScore    float64 `json:"weightedScore"`
	LevelDescription string  `json:"levelDescription"`
}

// DualScore holds the personal, corporate and combined scores of one set of
// levels, plus the gap between personal and corporate.
type DualScore struct {
	Personal           SingleScore                         `json:"personalScore"`
	Corporate          SingleScore                         `json:"corporateScore"`
	Combined           SingleScore                         `json:"combinedScore"`
	Gap                int                                 `json:"gap"`
	GapInterpretation  Interpretation                      `json:"gapInterpretation"`
	Tier               rubric.Tier                         `json:"assessmentLevel"`
	EvidenceMultiplier float64                             `json:"evidenceMultiplier"`
	Confidence         rubric.Confidence                   `json:"confidence"`
	Dimensions         map[rubric.Dimension]Breakdown      `json:"dimensions"`
	Weights            map[rubric.ScoreType]weights.Vector `json:"weights"`

	// Mirrors of the combined score kept for older consumers.
	RawWeightedTotal   float64     `json:"rawWeightedTotal"`
	FinalWeightedScore float64     `json:"finalWeightedScore"`
	NormalizedScore    int         `json:"normalizedScore"`
	ScoreBand          rubric.Band `json:"scoreBand"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// Calculator computes dual scores against one configuration snapshot. It
// holds no mutable state and is safe for concurrent use.
type Calculator struct {
	doc      *config.Document
	resolver *weights.Resolver
	gaps     GapLadder
	logger   *log.Logger
}

// NewCalculator builds a calculator over doc. A nil doc uses the built-in
// tables throughout.
func NewCalculator(doc *config.Document, logger *log.Logger) *Calculator {
	logger = logging.OrNop(logger)
	return &Calculator{
		doc:      doc,
		resolver: weights.NewResolver(doc, logger),
		gaps:     LadderFrom(doc),
		logger:   logger,
	}
}

// Weights exposes the resolved vector for one score type.
func (c *Calculator) Weights(scoreType rubric.ScoreType, role, companyType string) weights.Vector {
	return c.resolver.Resolve(scoreType, role, companyType)
}

// Interpret explains a gap with the configured ladder.
func (c *Calculator) Interpret(gap int) Interpretation {
	return c.gaps.Interpret(gap)
}

// Describe returns the level text for role, preferring configured texts.
func (c *Calculator) Describe(dim rubric.Dimension, level int, role string) string {
	return c.doc.Describe(dim, level, role)
}

// Dual computes all three scores from the same levels and evidence tier. An
// invalid tier is treated as self-report.
func (c *Calculator) Dual(levels rubric.Levels, role, companyType string, tier rubric.Tier) DualScore {
	ev, ok := rubric.Evidence(tier)
	if !ok {
		c.logger.Warn().Int("tier", int(tier)).Msg("unknown evidence tier, scoring as self-report")
		tier = rubric.TierSelf
		ev, _ = rubric.Evidence(tier)
	}

	personalW := c.resolver.Resolve(rubric.ScorePersonal, role, companyType)
	corporateW := c.resolver.Resolve(rubric.ScoreCorporate, role, companyType)
	combinedW := c.resolver.Resolve(rubric.ScoreCombined, role, companyType)

	personal := Single(levels, personalW, ev.Multiplier)
	corporate := Single(levels, corporateW, ev.Multiplier)
	combined := Single(levels, combinedW, ev.Multiplier)

	gap := personal.NormalizedScore - corporate.NormalizedScore

	breakdown := make(map[rubric.Dimension]Breakdown, len(levels))
	for _, d := range rubric.Dimensions() {
		level, ok := levels[d]
		if !ok {
			continue
		}
		points, err := rubric.Points(d, level)
		if err != nil {
			continue
		}
		w := combinedW[d]
		breakdown[d] = Breakdown{
			Level:            level,
			RawPoints:        points,
			Weight:           w,
			WeightedScore:    points * w,
			LevelDescription: c.doc.Describe(d, level, role),
		}
	}

	warnings := combined.Warnings
	for _, w := range warnings {
		c.logger.Warn().Str("dimension", string(w.Dimension)).Int("level", w.Level).
			Msg("excluded from score: " + w.Reason)
	}

	return DualScore{
		Personal:           personal,
		Corporate:          corporate,
		Combined:           combined,
		Gap:                gap,
		GapInterpretation:  c.gaps.Interpret(gap),
		Tier:               tier,
		EvidenceMultiplier: ev.Multiplier,
		Confidence:         ev.Confidence,
		Dimensions:         breakdown,
		Weights: map[rubric.ScoreType]weights.Vector{
			rubric.ScorePersonal:  personalW,
			rubric.ScoreCorporate: corporateW,
			rubric.ScoreCombined:  combinedW,
		},
		RawWeightedTotal:   combined.RawTotal,
		FinalWeightedScore: combined.RawTotal * ev.Multiplier,
		NormalizedScore:    combined.NormalizedScore,
		ScoreBand:          rubric.BandFor(combined.NormalizedScore),
		Warnings:           warnings,
	}
}
