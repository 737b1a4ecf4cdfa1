package weights

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagearbor/ai-skill-eval-kit/internal/config"
	"github.com/sagearbor/ai-skill-eval-kit/internal/logging"
	"github.com/sagearbor/ai-skill-eval-kit/internal/rubric"
)

var allScoreTypes = []rubric.ScoreType{rubric.ScorePersonal, rubric.ScoreCorporate, rubric.ScoreCombined}

func standard(t *testing.T) *config.Document {
	t.Helper()
	doc, err := config.LoadBuiltin("standard")
	require.NoError(t, err)
	return doc
}

func TestResolveSumsToOne(t *testing.T) {
	docs := map[string]*config.Document{"defaults": nil, "standard": standard(t)}
	companies := append([]string{""}, rubric.CompanyTypes()...)

	for name, doc := range docs {
		r := NewResolver(doc, logging.Nop())
		for _, st := range allScoreTypes {
			for _, role := range append(rubric.Roles(), "Astronaut") {
				for _, ct := range companies {
					v := r.Resolve(st, role, ct)
					assert.InDelta(t, 1.0, v.Sum(), Tolerance, "%s %s/%s/%s", name, st, role, ct)
					for d, w := range v {
						assert.GreaterOrEqual(t, w, 0.0, "%s weight for %s", name, d)
					}
				}
			}
		}
	}
}

func TestResolveFallbacks(t *testing.T) {
	r := NewResolver(nil, logging.Nop())

	assert.Equal(t, Legacy("Developer"), r.Resolve(rubric.ScorePersonal, "Developer", ""))
	assert.Equal(t, Legacy("General"), r.Resolve(rubric.ScoreCorporate, "Astronaut", ""))
	// No modifier table configured: company type is ignored.
	assert.Equal(t, Legacy("Leader"), r.Resolve(rubric.ScoreCombined, "Leader", "Startup"))
}

func TestResolveUsesConfiguredVector(t *testing.T) {
	r := NewResolver(standard(t), logging.Nop())
	v := r.Resolve(rubric.ScorePersonal, "Researcher", "")
	assert.InDelta(t, 0.40, v[rubric.Research], 1e-12)
}

func TestIdentityModifierLeavesVectorUnchanged(t *testing.T) {
	ones := map[string]float64{"study": 1, "copy": 1, "output": 1, "research": 1, "ethical": 1}
	for _, role := range rubric.Roles() {
		base := Legacy(role)
		got, err := ApplyModifier(base, ones)
		require.NoError(t, err)
		for _, d := range rubric.Dimensions() {
			assert.InDelta(t, base[d], got[d], 1e-12, "%s %s", role, d)
		}
	}

	// Missing factors default to 1.0 as well.
	got, err := ApplyModifier(Legacy("General"), map[string]float64{})
	require.NoError(t, err)
	assert.InDelta(t, 0.30, got[rubric.Copy], 1e-12)
}

func TestModifierRenormalizes(t *testing.T) {
	got, err := ApplyModifier(Legacy("General"), map[string]float64{"output": 2})
	require.NoError(t, err)
	// 0.3*2 / 1.3
	assert.InDelta(t, 0.6/1.3, got[rubric.Output], 1e-12)
	assert.InDelta(t, 1.0, got.Sum(), Tolerance)
}

func TestZeroModifierFallsBackToBase(t *testing.T) {
	var buf bytes.Buffer
	doc := &config.Document{CompanyModifiers: map[string]config.CompanyModifier{
		"Startup": {Modifiers: map[string]float64{"study": 0, "copy": 0, "output": 0, "research": 0, "ethical": 0}},
	}}
	r := NewResolver(doc, logging.New("info", logging.FormatJSON, &buf))

	v := r.Resolve(rubric.ScoreCombined, "General", "Startup")
	assert.Equal(t, Legacy("General"), v)
	for _, w := range v {
		assert.False(t, math.IsNaN(w))
	}
	assert.Contains(t, buf.String(), "zeroes every weight")

	_, err := ApplyModifier(Legacy("General"), map[string]float64{"study": 0, "copy": 0, "output": 0, "research": 0, "ethical": 0})
	require.ErrorIs(t, err, ErrDegenerate)
}

func TestConfiguredVectorRenormalized(t *testing.T) {
	var buf bytes.Buffer
	doc := &config.Document{ScoreTypes: map[string]config.ScoreType{
		"personal": {Roles: map[string]map[string]float64{
			"General": {"study": 2, "copy": 2},
			"Leader":  {"study": 0},
		}},
	}}
	r := NewResolver(doc, logging.New("info", logging.FormatJSON, &buf))

	v := r.Resolve(rubric.ScorePersonal, "General", "")
	assert.InDelta(t, 0.5, v[rubric.Study], 1e-12)
	assert.InDelta(t, 0.5, v[rubric.Copy], 1e-12)
	assert.Contains(t, buf.String(), "renormalizing")

	assert.Equal(t, Legacy("Leader"), r.Resolve(rubric.ScorePersonal, "Leader", ""))
}
