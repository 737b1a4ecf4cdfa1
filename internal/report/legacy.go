package report

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sagearbor/ai-skill-eval-kit/internal/assessment"
	"github.com/sagearbor/ai-skill-eval-kit/internal/rubric"
	"github.com/sagearbor/ai-skill-eval-kit/internal/weights"
)

var (
	ErrNoSchemaVersion    = errors.New("missing schemaVersion")
	ErrUnsupportedVersion = errors.New("unsupported schemaVersion")
)

// LegacyReport is the 1.0 report shape: a single score block and
// confirmations without claimed levels.
type LegacyReport struct {
	SchemaVersion   string              `json:"schemaVersion"`
	ReportID        string              `json:"reportId"`
	GeneratedAt     string              `json:"generatedAt"`
	AssessmentLevel rubric.Tier         `json:"assessmentLevel"`
	Assessee        assessment.Assessee `json:"assessee"`
	Scores          LegacyScores        `json:"scores"`
	Validation      *LegacyValidation   `json:"validation,omitempty"`
	Notes           string              `json:"notes,omitempty"`
}

// LegacyScores is the 1.0 score block.
type LegacyScores struct {
	Dimensions         map[rubric.Dimension]LegacyDimension `json:"dimensions"`
	RawTotal           float64                              `json:"rawTotal"`
	EvidenceMultiplier float64                              `json:"evidenceMultiplier"`
	FinalScore         int                                  `json:"finalScore"`
	Band               string                               `json:"band"`
	Confidence         rubric.Confidence                    `json:"confidence"`
}

type LegacyDimension struct {
	Level         int     `json:"level"`
	Points        float64 `json:"points"`
	WeightedScore float64 `json:"weightedScore"`
}

type LegacyValidation struct {
	ValidatorName          string                            `json:"validatorName"`
	ValidatorRelationship  string                            `json:"validatorRelationship,omitempty"`
	ValidatedAt            string                            `json:"validatedAt"`
	DimensionConfirmations map[rubric.Dimension]Confirmation `json:"dimensionConfirmations"`
}

// Version reads only the schemaVersion of a report document.
func Version(data []byte) (string, error) {
	var head struct {
		SchemaVersion *string `json:"schemaVersion"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return "", fmt.Errorf("report.Version: %w", err)
	}
	if head.SchemaVersion == nil {
		return "", ErrNoSchemaVersion
	}
	return *head.SchemaVersion, nil
}

// Decode reads a report of any supported version into the current shape.
func Decode(data []byte) (*Report, error) {
	version, err := Version(data)
	if err != nil {
		return nil, err
	}
	switch version {
	case SchemaVersion:
		var r Report
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("report.Decode: %w", err)
		}
		return &r, nil
	case LegacySchemaVersion:
		var lr LegacyReport
		if err := json.Unmarshal(data, &lr); err != nil {
			return nil, fmt.Errorf("report.Decode: %w", err)
		}
		return MigrateLegacy(&lr), nil
	default:
		return nil, fmt.Errorf("report.Decode: %w %q", ErrUnsupportedVersion, version)
	}
}

// MigrateLegacy adapts a 1.0 report. The single 1.0 score becomes all three
// scores with a zero gap. Weights are taken from the role's legacy vector.
// The 1.0 score block holds the claimed levels; an adjusted level in the
// confirmations becomes the final level.
func MigrateLegacy(lr *LegacyReport) *Report {
	tier := lr.AssessmentLevel
	if !tier.Valid() {
		tier = rubric.TierSelf
	}
	score := Score{
		RawTotal:        lr.Scores.RawTotal,
		NormalizedScore: lr.Scores.FinalScore,
		ScoreBand:       lr.Scores.Band,
	}
	if score.ScoreBand == "" {
		score.ScoreBand = rubric.BandFor(score.NormalizedScore).Name
	}
	confidence := lr.Scores.Confidence
	multiplier := lr.Scores.EvidenceMultiplier
	if ev, ok := rubric.Evidence(tier); ok {
		if confidence == "" {
			confidence = ev.Confidence
		}
		if multiplier == 0 {
			multiplier = ev.Multiplier
		}
	}

	assessee := lr.Assessee.Normalize()
	w := weights.Legacy(assessee.Role)
	r := &Report{
		SchemaVersion:   SchemaVersion,
		ReportType:      tier.ReportType(),
		ReportID:        lr.ReportID,
		GeneratedAt:     lr.GeneratedAt,
		AssessmentLevel: tier,
		Assessee:        assessee,
		Dimensions:      make(map[rubric.Dimension]Dimension, len(lr.Scores.Dimensions)),
		Calculation: Calculation{
			PersonalScore:      score,
			CorporateScore:     score,
			CombinedScore:      score,
			EvidenceMultiplier: multiplier,
			Confidence:         confidence,
		},
		Notes:        lr.Notes,
		MigratedFrom: lr.SchemaVersion,
	}
	for d, ld := range lr.Scores.Dimensions {
		r.Dimensions[d] = Dimension{
			Level:         ld.Level,
			Points:        ld.Points,
			Weight:        w[d],
			WeightedScore: ld.WeightedScore,
		}
	}

	if lv := lr.Validation; lv != nil {
		v := &Validation{
			ValidatorName:          lv.ValidatorName,
			ValidatorRelationship:  lv.ValidatorRelationship,
			ValidatedAt:            lv.ValidatedAt,
			Dimensions:             make(map[rubric.Dimension]DimensionValidation, len(lv.DimensionConfirmations)),
			DimensionConfirmations: lv.DimensionConfirmations,
		}
		for d, c := range lv.DimensionConfirmations {
			claimed := lr.Scores.Dimensions[d].Level
			final := claimed
			if !c.Confirmed && c.AdjustedLevel != nil {
				final = *c.AdjustedLevel
			}
			v.Dimensions[d] = DimensionValidation{ClaimedLevel: claimed, FinalLevel: final, Confirmed: c.Confirmed}
		}
		r.Validation = v
	}
	return r
}
