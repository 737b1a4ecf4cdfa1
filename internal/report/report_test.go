package report

import (
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagearbor/ai-skill-eval-kit/internal/assessment"
	"github.com/sagearbor/ai-skill-eval-kit/internal/config"
	"github.com/sagearbor/ai-skill-eval-kit/internal/logging"
	"github.com/sagearbor/ai-skill-eval-kit/internal/rubric"
	"github.com/sagearbor/ai-skill-eval-kit/internal/scoring"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func newBuilder(t *testing.T) *Builder {
	t.Helper()
	doc, err := config.LoadBuiltin("standard")
	require.NoError(t, err)
	b := NewBuilder(scoring.NewCalculator(doc, logging.Nop()))
	b.Now = func() time.Time { return fixedNow }
	return b
}

func claimed() rubric.Levels {
	return rubric.Levels{rubric.Study: 3, rubric.Copy: 2, rubric.Output: 4, rubric.Research: 1, rubric.Ethical: 3}
}

func ada() assessment.Assessee {
	return assessment.Assessee{Name: "Ada", Email: "ada@example.com", Role: "General", CompanyType: "Startup"}
}

func confirmAll() map[rubric.Dimension]assessment.Decision {
	out := map[rubric.Dimension]assessment.Decision{}
	for _, d := range rubric.Dimensions() {
		out[d] = assessment.Confirm()
	}
	return out
}

func TestNewIDFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^AIQ-20250314-[0-9A-Z]{6}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := NewID(fixedNow)
		assert.Regexp(t, pattern, id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 45, "ids should be random")
}

func TestBuildSelfAssessment(t *testing.T) {
	r, err := newBuilder(t).Build(Request{Assessee: ada(), Levels: claimed(), Tier: rubric.TierSelf, Notes: "  first try "})
	require.NoError(t, err)

	assert.Equal(t, "1.1", r.SchemaVersion)
	assert.Equal(t, "self-assessment", r.ReportType)
	assert.Equal(t, "2025-03-14T09:26:53Z", r.GeneratedAt)
	assert.Equal(t, "first try", r.Notes)
	assert.Nil(t, r.Validation)
	assert.Equal(t, rubric.ConfidenceLow, r.Calculation.Confidence)
	assert.Equal(t, 0.6, r.Calculation.EvidenceMultiplier)
	assert.Equal(t, r.Calculation.PersonalScore.NormalizedScore-r.Calculation.CorporateScore.NormalizedScore, r.Calculation.Gap)
	require.NotNil(t, r.Calculation.GapInterpretation)
	assert.Len(t, r.Dimensions, 5)
	assert.Equal(t, 4, r.Dimensions[rubric.Output].Level)
	assert.Equal(t, 18.0, r.Dimensions[rubric.Output].Points)

	raw, err := json.Marshal(r)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.NotContains(t, m, "validation")
	assert.Equal(t, "Startup", m["assessee"].(map[string]any)["companyType"])
}

func TestBuildIsIdempotentApartFromIdentity(t *testing.T) {
	b := newBuilder(t)
	req := Request{Assessee: ada(), Levels: claimed(), Tier: rubric.TierPeer, Validation: &assessment.Validation{
		Peer:      assessment.Peer{Name: "Grace", Relationship: "manager"},
		Decisions: confirmAll(),
	}}
	r1, err := b.Build(req)
	require.NoError(t, err)
	r2, err := b.Build(req)
	require.NoError(t, err)

	assert.True(t, reflect.DeepEqual(r1.Dimensions, r2.Dimensions))
	assert.True(t, reflect.DeepEqual(r1.Calculation, r2.Calculation))
	assert.NotEqual(t, r1.ReportID, r2.ReportID)
}

func TestConfirmedPeerValidationMatchesDirectDualScore(t *testing.T) {
	b := newBuilder(t)
	r, err := b.Build(Request{Assessee: ada(), Levels: claimed(), Tier: rubric.TierPeer, Validation: &assessment.Validation{
		Peer:      assessment.Peer{Name: "Grace"},
		Decisions: confirmAll(),
	}})
	require.NoError(t, err)

	direct := b.Calculator.Dual(claimed(), "General", "Startup", rubric.TierPeer)
	assert.Equal(t, direct.Gap, r.Calculation.Gap)
	assert.Equal(t, toScore(direct.Personal), r.Calculation.PersonalScore)
	assert.Equal(t, toScore(direct.Corporate), r.Calculation.CorporateScore)
	assert.Equal(t, toScore(direct.Combined), r.Calculation.CombinedScore)
	assert.Equal(t, "peer-validation", r.ReportType)
	assert.Equal(t, rubric.ConfidenceMedium, r.Calculation.Confidence)

	for _, d := range rubric.Dimensions() {
		dv := r.Validation.Dimensions[d]
		assert.True(t, dv.Confirmed)
		assert.Equal(t, dv.ClaimedLevel, dv.FinalLevel)
		assert.Nil(t, r.Validation.DimensionConfirmations[d].AdjustedLevel)
	}
}

func TestPeerAdjustment(t *testing.T) {
	decisions := confirmAll()
	decisions[rubric.Output] = assessment.Adjust(2, "Only used by the author")
	r, err := newBuilder(t).Build(Request{Assessee: ada(), Levels: claimed(), Tier: rubric.TierPeer, Validation: &assessment.Validation{
		Peer:      assessment.Peer{Name: "Grace", Relationship: "peer"},
		Decisions: decisions,
	}})
	require.NoError(t, err)

	assert.Equal(t, 2, r.Dimensions[rubric.Output].Level)
	dv := r.Validation.Dimensions[rubric.Output]
	assert.Equal(t, DimensionValidation{ClaimedLevel: 4, FinalLevel: 2, AdjustmentReason: "Only used by the author"}, dv)
	conf := r.Validation.DimensionConfirmations[rubric.Output]
	require.NotNil(t, conf.AdjustedLevel)
	assert.Equal(t, 2, *conf.AdjustedLevel)
	assert.Equal(t, r.GeneratedAt, r.Validation.ValidatedAt)

	raw, err := json.Marshal(r.Validation.DimensionConfirmations[rubric.Study])
	require.NoError(t, err)
	assert.JSONEq(t, `{"confirmed":true,"adjustedLevel":null}`, string(raw))
}

func TestBuildErrors(t *testing.T) {
	peer := assessment.Peer{Name: "Grace"}
	noReason := confirmAll()
	noReason[rubric.Copy] = assessment.Adjust(1, "   ")
	missingDecision := confirmAll()
	delete(missingDecision, rubric.Ethical)
	badLevel := confirmAll()
	badLevel[rubric.Study] = assessment.Adjust(7, "typo")
	incomplete := claimed()
	delete(incomplete, rubric.Research)

	tests := []struct {
		name  string
		req   Request
		check func(t *testing.T, err error)
	}{
		{"missing reason", Request{Assessee: ada(), Levels: claimed(), Tier: rubric.TierPeer, Validation: &assessment.Validation{Peer: peer, Decisions: noReason}},
			func(t *testing.T, err error) {
				var ae *AdjustmentError
				require.ErrorAs(t, err, &ae)
				assert.Equal(t, rubric.Copy, ae.Dimension)
			}},
		{"no validation", Request{Assessee: ada(), Levels: claimed(), Tier: rubric.TierVerified},
			func(t *testing.T, err error) { require.ErrorIs(t, err, ErrValidationRequired) }},
		{"missing decision", Request{Assessee: ada(), Levels: claimed(), Tier: rubric.TierPeer, Validation: &assessment.Validation{Peer: peer, Decisions: missingDecision}},
			func(t *testing.T, err error) {
				var de *DecisionError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, rubric.Ethical, de.Dimension)
			}},
		{"adjusted out of range", Request{Assessee: ada(), Levels: claimed(), Tier: rubric.TierPeer, Validation: &assessment.Validation{Peer: peer, Decisions: badLevel}},
			func(t *testing.T, err error) { require.ErrorIs(t, err, rubric.ErrLevelOutOfRange) }},
		{"anonymous validator", Request{Assessee: ada(), Levels: claimed(), Tier: rubric.TierPeer, Validation: &assessment.Validation{Decisions: confirmAll()}},
			func(t *testing.T, err error) {
				var ie *assessment.IdentityError
				require.ErrorAs(t, err, &ie)
			}},
		{"incomplete levels", Request{Assessee: ada(), Levels: incomplete, Tier: rubric.TierSelf},
			func(t *testing.T, err error) {
				var ie *assessment.IncompleteError
				require.ErrorAs(t, err, &ie)
				assert.Equal(t, []string{"Research"}, ie.Missing)
			}},
		{"bad tier", Request{Assessee: ada(), Levels: claimed(), Tier: 4},
			func(t *testing.T, err error) { require.ErrorIs(t, err, ErrInvalidTier) }},
		{"bad assessee", Request{Assessee: assessment.Assessee{Role: "General"}, Levels: claimed(), Tier: rubric.TierSelf},
			func(t *testing.T, err error) {
				var ie *assessment.IdentityError
				require.ErrorAs(t, err, &ie)
			}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := newBuilder(t).Build(tt.req)
			assert.Nil(t, r)
			tt.check(t, err)
		})
	}
}

func TestDecodeCurrentVersion(t *testing.T) {
	r, err := newBuilder(t).Build(Request{Assessee: ada(), Levels: claimed(), Tier: rubric.TierSelf})
	require.NoError(t, err)
	raw, err := json.Marshal(r)
	require.NoError(t, err)

	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, r.Calculation, got.Calculation)
	assert.Equal(t, r.Dimensions, got.Dimensions)
	assert.Empty(t, got.MigratedFrom)
}

const legacyDoc = `{
  "schemaVersion": "1.0",
  "reportId": "AIQ-20240101-ABC123",
  "generatedAt": "2024-01-01T10:00:00.000Z",
  "assessmentLevel": 2,
  "assessee": {"name": "Lin", "role": "Developer"},
  "scores": {
    "dimensions": {
      "study": {"level": 3, "points": 10.5, "weightedScore": 1.05},
      "copy": {"level": 2, "points": 6.5, "weightedScore": 1.625},
      "output": {"level": 4, "points": 18, "weightedScore": 7.2},
      "research": {"level": 1, "points": 2.5, "weightedScore": 0.375},
      "ethical": {"level": 3, "points": 8, "weightedScore": 0.8}
    },
    "rawTotal": 11.05,
    "evidenceMultiplier": 0.8,
    "finalScore": 47,
    "band": "Practitioner",
    "confidence": "MEDIUM"
  },
  "validation": {
    "validatorName": "Sam",
    "validatedAt": "2024-01-02T10:00:00.000Z",
    "dimensionConfirmations": {
      "study": {"confirmed": true, "adjustedLevel": null},
      "output": {"confirmed": false, "adjustedLevel": 3}
    }
  }
}`

func TestDecodeMigratesLegacy(t *testing.T) {
	r, err := Decode([]byte(legacyDoc))
	require.NoError(t, err)

	assert.Equal(t, "1.0", r.MigratedFrom)
	assert.Equal(t, SchemaVersion, r.SchemaVersion)
	assert.Equal(t, "peer-validation", r.ReportType)
	assert.Equal(t, 47, r.Calculation.CombinedScore.NormalizedScore)
	assert.Equal(t, r.Calculation.CombinedScore, r.Calculation.PersonalScore)
	assert.Zero(t, r.Calculation.Gap)
	assert.Equal(t, 0.40, r.Dimensions[rubric.Output].Weight)
	assert.Equal(t, "Sam", r.Validation.ValidatorName)
	assert.Equal(t, DimensionValidation{ClaimedLevel: 4, FinalLevel: 3}, r.Validation.Dimensions[rubric.Output])
	assert.True(t, r.Validation.Dimensions[rubric.Study].Confirmed)
}

func TestDecodeRejects(t *testing.T) {
	_, err := Decode([]byte(`{"reportId":"x"}`))
	assert.True(t, errors.Is(err, ErrNoSchemaVersion))

	_, err = Decode([]byte(`{"schemaVersion":"2.0"}`))
	assert.True(t, errors.Is(err, ErrUnsupportedVersion))

	_, err = Decode([]byte(`{not json`))
	assert.Error(t, err)
}
