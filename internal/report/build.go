package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sagearbor/ai-skill-eval-kit/internal/assessment"
	"github.com/sagearbor/ai-skill-eval-kit/internal/rubric"
	"github.com/sagearbor/ai-skill-eval-kit/internal/scoring"
)

var (
	// ErrValidationRequired is returned for tier 2 and 3 requests without a
	// peer validation.
	ErrValidationRequired = errors.New("peer validation required for this assessment level")
	ErrInvalidTier        = errors.New("assessment level must be 1, 2 or 3")
)

// AdjustmentError is returned when a peer changed a level without saying why.
type AdjustmentError struct {
	Dimension rubric.Dimension
}

func (e *AdjustmentError) Error() string {
	return fmt.Sprintf("please provide a reason for adjusting %s", e.Dimension.Name())
}

// DecisionError is returned when the peer's decisions do not cover the rubric
// or adjust to an impossible level.
type DecisionError struct {
	Dimension rubric.Dimension
	Reason    string
}

func (e *DecisionError) Error() string {
	return fmt.Sprintf("validation for %s: %s", e.Dimension, e.Reason)
}

// Request is everything a report is built from. Levels are the assessee's
// claimed levels; for tier 2 and 3 the peer's decisions settle the final ones.
type Request struct {
	Assessee   assessment.Assessee
	Levels     rubric.Levels
	Tier       rubric.Tier
	Validation *assessment.Validation
	Notes      string
}

// Builder produces reports. Now and NewID are replaceable for tests.
type Builder struct {
	Calculator *scoring.Calculator
	Now        func() time.Time
	NewID      func(time.Time) string
}

// NewBuilder returns a builder using the wall clock and random ids.
func NewBuilder(calc *scoring.Calculator) *Builder {
	return &Builder{Calculator: calc, Now: time.Now, NewID: NewID}
}

// Build validates the request, scores the final levels and assembles a new
// report. Every call gets a fresh id and timestamp.
func (b *Builder) Build(req Request) (*Report, error) {
	assessee := req.Assessee.Normalize()
	if err := assessee.Validate(); err != nil {
		return nil, fmt.Errorf("report.Build: assessee: %w", err)
	}
	if !req.Tier.Valid() {
		return nil, fmt.Errorf("report.Build: %w (got %d)", ErrInvalidTier, req.Tier)
	}
	if err := assessment.Check(req.Levels); err != nil {
		return nil, fmt.Errorf("report.Build: %w", err)
	}

	final := req.Levels
	var verdicts map[rubric.Dimension]DimensionValidation
	if req.Tier >= rubric.TierPeer {
		if req.Validation == nil {
			return nil, fmt.Errorf("report.Build: %w", ErrValidationRequired)
		}
		if err := req.Validation.Peer.Validate(); err != nil {
			return nil, fmt.Errorf("report.Build: validator: %w", err)
		}
		var err error
		final, verdicts, err = settle(req.Levels, req.Validation.Decisions)
		if err != nil {
			return nil, fmt.Errorf("report.Build: %w", err)
		}
	}

	dual := b.Calculator.Dual(final, assessee.Role, assessee.CompanyType, req.Tier)

	now := b.Now().UTC()
	interp := dual.GapInterpretation
	r := &Report{
		SchemaVersion:   SchemaVersion,
		ReportType:      req.Tier.ReportType(),
		ReportID:        b.NewID(now),
		GeneratedAt:     now.Format(time.RFC3339),
		AssessmentLevel: req.Tier,
		Assessee:        assessee,
		Dimensions:      make(map[rubric.Dimension]Dimension, len(dual.Dimensions)),
		Calculation: Calculation{
			PersonalScore:      toScore(dual.Personal),
			CorporateScore:     toScore(dual.Corporate),
			Gap:                dual.Gap,
			GapInterpretation:  &interp,
			CombinedScore:      toScore(dual.Combined),
			EvidenceMultiplier: dual.EvidenceMultiplier,
			Confidence:         dual.Confidence,
		},
		Notes: strings.TrimSpace(req.Notes),
	}
	for d, bd := range dual.Dimensions {
		r.Dimensions[d] = Dimension{
			Level:         bd.Level,
			Points:        bd.RawPoints,
			Weight:        bd.Weight,
			WeightedScore: bd.WeightedScore,
		}
	}

	if verdicts != nil {
		peer := req.Validation.Peer
		v := &Validation{
			ValidatorName:          strings.TrimSpace(peer.Name),
			ValidatorEmail:         strings.TrimSpace(peer.Email),
			ValidatorRelationship:  strings.TrimSpace(peer.Relationship),
			ValidatedAt:            r.GeneratedAt,
			Dimensions:             verdicts,
			DimensionConfirmations: make(map[rubric.Dimension]Confirmation, len(verdicts)),
		}
		for d, dv := range verdicts {
			c := Confirmation{Confirmed: dv.Confirmed}
			if !dv.Confirmed {
				level := dv.FinalLevel
				c.AdjustedLevel = &level
			}
			v.DimensionConfirmations[d] = c
		}
		r.Validation = v
	}
	return r, nil
}

// settle applies the peer's decisions to the claimed levels.
func settle(claimed rubric.Levels, decisions map[rubric.Dimension]assessment.Decision) (rubric.Levels, map[rubric.Dimension]DimensionValidation, error) {
	for d := range decisions {
		if !d.Valid() {
			return nil, nil, &DecisionError{Dimension: d, Reason: "unknown dimension"}
		}
	}

	final := make(rubric.Levels, len(claimed))
	verdicts := make(map[rubric.Dimension]DimensionValidation, len(claimed))
	for _, d := range rubric.Dimensions() {
		c := claimed[d]
		dec, ok := decisions[d]
		if !ok {
			return nil, nil, &DecisionError{Dimension: d, Reason: "no decision recorded"}
		}
		if !dec.Confirmed {
			if strings.TrimSpace(dec.Reason) == "" {
				return nil, nil, &AdjustmentError{Dimension: d}
			}
			if dec.Level == nil {
				return nil, nil, &DecisionError{Dimension: d, Reason: "adjusted level missing"}
			}
			if *dec.Level < 0 || *dec.Level > rubric.MaxLevel {
				return nil, nil, &assessment.LevelError{Dimension: d, Level: *dec.Level}
			}
		}
		f := dec.FinalLevel(c)
		final[d] = f
		verdicts[d] = DimensionValidation{
			ClaimedLevel:     c,
			FinalLevel:       f,
			Confirmed:        dec.Confirmed,
			AdjustmentReason: strings.TrimSpace(dec.Reason),
		}
	}
	return final, verdicts, nil
}
