package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagearbor/ai-skill-eval-kit/internal/assessment"
	"github.com/sagearbor/ai-skill-eval-kit/internal/config"
	"github.com/sagearbor/ai-skill-eval-kit/internal/logging"
	"github.com/sagearbor/ai-skill-eval-kit/internal/report"
	"github.com/sagearbor/ai-skill-eval-kit/internal/rubric"
	"github.com/sagearbor/ai-skill-eval-kit/internal/scoring"
)

func builder(t *testing.T) *report.Builder {
	t.Helper()
	doc, err := config.LoadBuiltin("standard")
	require.NoError(t, err)
	b := report.NewBuilder(scoring.NewCalculator(doc, logging.Nop()))
	b.Now = func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC) }
	return b
}

func levels() rubric.Levels {
	return rubric.Levels{rubric.Study: 3, rubric.Copy: 2, rubric.Output: 4, rubric.Research: 1, rubric.Ethical: 3}
}

func selfReport(t *testing.T) *report.Report {
	t.Helper()
	r, err := builder(t).Build(report.Request{
		Assessee: assessment.Assessee{Name: "Ada", Email: "ada@example.com", Role: "Developer"},
		Levels:   levels(),
		Tier:     rubric.TierSelf,
	})
	require.NoError(t, err)
	return r
}

func asMap(t *testing.T, r *report.Report) map[string]any {
	t.Helper()
	data, err := json.Marshal(r)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestBuiltReportsPass(t *testing.T) {
	v := New(logging.Nop())
	ctx := context.Background()

	res := v.ValidateReport(ctx, selfReport(t))
	assert.True(t, res.Valid, "errors: %v", res.Errors)
	assert.False(t, res.Degraded)
	assert.Empty(t, res.Errors)

	decisions := map[rubric.Dimension]assessment.Decision{}
	for _, d := range rubric.Dimensions() {
		decisions[d] = assessment.Confirm()
	}
	decisions[rubric.Output] = assessment.Adjust(3, "shipped one tool, not two")
	peer, err := builder(t).Build(report.Request{
		Assessee:   assessment.Assessee{Name: "Ada", Role: "General", CompanyType: "Enterprise"},
		Levels:     levels(),
		Tier:       rubric.TierPeer,
		Validation: &assessment.Validation{Peer: assessment.Peer{Name: "Grace", Relationship: "manager"}, Decisions: decisions},
	})
	require.NoError(t, err)
	res = v.ValidateReport(ctx, peer)
	assert.True(t, res.Valid, "errors: %v", res.Errors)
}

func TestMissingRoleFails(t *testing.T) {
	m := asMap(t, selfReport(t))
	delete(m["assessee"].(map[string]any), "role")

	res := New(logging.Nop()).Validate(context.Background(), m)
	assert.False(t, res.Valid)
	assert.False(t, res.Degraded)
	assert.Contains(t, res.Errors, "Missing required field: role")
}

func TestFriendlyMessages(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m map[string]any)
		want   string
	}{
		{"const", func(m map[string]any) { m["schemaVersion"] = "2.0" }, `"schemaVersion" must be 1.1`},
		{"maximum", func(m map[string]any) { m["assessmentLevel"] = 4 }, `"assessmentLevel" value is out of range`},
		{"additional", func(m map[string]any) { m["favourite"] = "tea" }, "Unexpected property: favourite"},
		{"format", func(m map[string]any) { m["generatedAt"] = "yesterday" }, `"generatedAt" has invalid format (expected date-time)`},
		{"minLength", func(m map[string]any) { m["assessee"].(map[string]any)["name"] = "" }, `"name" cannot be empty`},
		{"enum", func(m map[string]any) { m["assessee"].(map[string]any)["role"] = "Wizard" },
			`"role" has invalid value. Allowed values: General, Developer, Researcher, Support, Leader`},
		{"type", func(m map[string]any) { m["calculation"].(map[string]any)["gap"] = "wide" }, `"gap" has incorrect type (expected integer)`},
		{"root required", func(m map[string]any) { delete(m, "calculation") }, "Missing required field: calculation"},
	}
	v := New(logging.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := asMap(t, selfReport(t))
			tt.mutate(m)
			res := v.Validate(context.Background(), m)
			assert.False(t, res.Valid)
			assert.Contains(t, res.Errors, tt.want)
		})
	}
}

func TestFriendlyDeduplicates(t *testing.T) {
	leaves := []ValidationError{
		{Path: "/assessee/role", Keyword: "enum", Message: `value must be one of "General", "Developer"`},
		{Path: "/assessee/role", Keyword: "enum", Message: `value must be one of "General", "Developer"`},
		{Path: "/assessee/role", Keyword: "type", Message: "expected string, but got number"},
		{Path: "", Keyword: "pattern", Message: "does not match pattern"},
	}
	got := Friendly(leaves)
	assert.Equal(t, []string{
		`"role" has invalid value. Allowed values: General, Developer`,
		`"role" has incorrect type (expected string)`,
		"Validation error at root: does not match pattern",
	}, got)
}

func TestDegradedMode(t *testing.T) {
	tests := []struct {
		name string
		v    func(buf *bytes.Buffer) *Validator
	}{
		{"uncompilable", func(buf *bytes.Buffer) *Validator {
			return NewFromBytes("broken", []byte("{not json"), logging.New("debug", logging.FormatJSON, buf))
		}},
		{"missing file", func(buf *bytes.Buffer) *Validator {
			return NewFromFile(filepath.Join(t.TempDir(), "absent.json"), logging.New("debug", logging.FormatJSON, buf))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			res := tt.v(&buf).Validate(context.Background(), map[string]any{"anything": true})
			assert.True(t, res.Valid)
			assert.True(t, res.Degraded)
			assert.Empty(t, res.Errors)
			assert.Contains(t, buf.String(), `"mode":"degraded"`)
		})
	}
}

func TestStrictPassIsLogged(t *testing.T) {
	var buf bytes.Buffer
	v := New(logging.New("debug", logging.FormatJSON, &buf))
	res := v.ValidateReport(context.Background(), selfReport(t))
	require.True(t, res.Valid)
	assert.Contains(t, buf.String(), `"mode":"strict"`)
	assert.NotContains(t, buf.String(), "degraded")
}

func TestValidateDocument(t *testing.T) {
	v := New(logging.Nop())
	_, err := v.ValidateDocument(context.Background(), []byte("not json"))
	assert.Error(t, err)

	data, err := json.Marshal(selfReport(t))
	require.NoError(t, err)
	res, err := v.ValidateDocument(context.Background(), data)
	require.NoError(t, err)
	assert.True(t, res.Valid, "errors: %v", res.Errors)
}

func TestSchemaFromFile(t *testing.T) {
	path := filepath.Join("testdata", "name-only.schema.json")
	v := NewFromFile(path, logging.Nop())

	res := v.Validate(context.Background(), map[string]any{"name": "Ada"})
	assert.True(t, res.Valid)
	assert.False(t, res.Degraded)

	res = v.Validate(context.Background(), map[string]any{})
	assert.False(t, res.Valid)
	assert.Equal(t, []string{"Missing required field: name"}, res.Errors)
}
