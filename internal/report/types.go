// Package report assembles versioned assessment reports and reads older
// report versions.
package report

import (
	"github.com/sagearbor/ai-skill-eval-kit/internal/assessment"
	"github.com/sagearbor/ai-skill-eval-kit/internal/rubric"
	"github.com/sagearbor/ai-skill-eval-kit/internal/scoring"
)

const (
	SchemaVersion       = "1.1"
	LegacySchemaVersion = "1.0"
)

// Report is a value snapshot of one assessment and its computed scores.
type Report struct {
	SchemaVersion   string                         `json:"schemaVersion"`
	ReportType      string                         `json:"reportType"`
	ReportID        string                         `json:"reportId"`
	GeneratedAt     string                         `json:"generatedAt"`
	AssessmentLevel rubric.Tier                    `json:"assessmentLevel"`
	Assessee        assessment.Assessee            `json:"assessee"`
	Dimensions      map[rubric.Dimension]Dimension `json:"dimensions"`
	Calculation     Calculation                    `json:"calculation"`
	Validation      *Validation                    `json:"validation,omitempty"`
	Notes           string                         `json:"notes,omitempty"`

	// MigratedFrom is set when the report was read from an older version.
	MigratedFrom string `json:"-"`
}

// Dimension is one row of the stored breakdown.
type Dimension struct {
	Level         int     `json:"level"`
	Points        float64 `json:"points"`
	Weight        float64 `json:"weight"`
	WeightedScore float64 `json:"weightedScore"`
}

// Score is the stored form of a single score.
type Score struct {
	RawTotal        float64 `json:"rawTotal"`
	NormalizedScore int     `json:"normalizedScore"`
	ScoreBand       string  `json:"scoreBand"`
}

// Calculation stores the dual score result.
type Calculation struct {
	PersonalScore      Score                   `json:"personalScore"`
	CorporateScore     Score                   `json:"corporateScore"`
	Gap                int                     `json:"gap"`
	GapInterpretation  *scoring.Interpretation `json:"gapInterpretation,omitempty"`
	CombinedScore      Score                   `json:"combinedScore"`
	EvidenceMultiplier float64                 `json:"evidenceMultiplier"`
	Confidence         rubric.Confidence       `json:"confidence"`
}

// Validation records a peer's review of the claimed levels.
type Validation struct {
	ValidatorName          string                                   `json:"validatorName"`
	ValidatorEmail         string                                   `json:"validatorEmail,omitempty"`
	ValidatorRelationship  string                                   `json:"validatorRelationship,omitempty"`
	ValidatedAt            string                                   `json:"validatedAt"`
	Dimensions             map[rubric.Dimension]DimensionValidation `json:"dimensions"`
	DimensionConfirmations map[rubric.Dimension]Confirmation        `json:"dimensionConfirmations"`
}

// DimensionValidation is the peer's verdict on one dimension.
type DimensionValidation struct {
	ClaimedLevel     int    `json:"claimedLevel"`
	FinalLevel       int    `json:"finalLevel"`
	Confirmed        bool   `json:"confirmed"`
	AdjustmentReason string `json:"adjustmentReason,omitempty"`
}

// Confirmation is the 1.0 form of a verdict, still emitted for old readers.
type Confirmation struct {
	Confirmed     bool `json:"confirmed"`
	AdjustedLevel *int `json:"adjustedLevel"`
}

// Levels returns the stored level of each dimension.
func (r *Report) Levels() rubric.Levels {
	out := make(rubric.Levels, len(r.Dimensions))
	for d, v := range r.Dimensions {
		out[d] = v.Level
	}
	return out
}

func toScore(s scoring.SingleScore) Score {
	return Score{RawTotal: s.RawTotal, NormalizedScore: s.NormalizedScore, ScoreBand: s.ScoreBand}
}
