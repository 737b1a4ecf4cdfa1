// Package weights resolves the weight vector used for a score type, role and
// company type.
package weights

import (
	"errors"
	"fmt"
	"math"

	"github.com/phuslu/log"

	"github.com/sagearbor/ai-skill-eval-kit/internal/config"
	"github.com/sagearbor/ai-skill-eval-kit/internal/logging"
	"github.com/sagearbor/ai-skill-eval-kit/internal/rubric"
)

// Tolerance is the allowed drift of a vector sum from 1.0.
const Tolerance = 1e-9

// ErrDegenerate is returned when a vector cannot be renormalized.
var ErrDegenerate = errors.New("weights sum to zero")

// Vector maps each dimension to a non-negative weight.
type Vector map[rubric.Dimension]float64

// Sum adds the weights in rubric order.
func (v Vector) Sum() float64 {
	total := 0.0
	for _, d := range rubric.Dimensions() {
		total += v[d]
	}
	return total
}

// Normalize divides every weight by the sum.
func (v Vector) Normalize() (Vector, error) {
	total := v.Sum()
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return nil, ErrDegenerate
	}
	out := make(Vector, len(rubric.Dimensions()))
	for _, d := range rubric.Dimensions() {
		out[d] = v[d] / total
	}
	return out, nil
}

// Clone copies v.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	for k, w := range v {
		out[k] = w
	}
	return out
}

var legacy = map[string]Vector{
	"General":    {rubric.Study: 0.20, rubric.Copy: 0.30, rubric.Output: 0.30, rubric.Research: 0.05, rubric.Ethical: 0.15},
	"Developer":  {rubric.Study: 0.10, rubric.Copy: 0.25, rubric.Output: 0.40, rubric.Research: 0.15, rubric.Ethical: 0.10},
	"Researcher": {rubric.Study: 0.15, rubric.Copy: 0.25, rubric.Output: 0.25, rubric.Research: 0.25, rubric.Ethical: 0.10},
	"Support":    {rubric.Study: 0.25, rubric.Copy: 0.20, rubric.Output: 0.30, rubric.Research: 0.10, rubric.Ethical: 0.15},
	"Leader":     {rubric.Study: 0.30, rubric.Copy: 0.15, rubric.Output: 0.20, rubric.Research: 0.10, rubric.Ethical: 0.25},
}

// Legacy returns the built-in combined vector for role, or General's.
func Legacy(role string) Vector {
	if v, ok := legacy[role]; ok {
		return v.Clone()
	}
	return legacy[rubric.DefaultRole].Clone()
}

// ApplyModifier multiplies base by factors, defaulting missing factors to
// 1.0, and renormalizes.
func ApplyModifier(base Vector, factors map[string]float64) (Vector, error) {
	modified := make(Vector, len(base))
	for _, d := range rubric.Dimensions() {
		f, ok := factors[string(d)]
		if !ok {
			f = 1.0
		}
		modified[d] = base[d] * f
	}
	out, err := modified.Normalize()
	if err != nil {
		return nil, fmt.Errorf("weights.ApplyModifier: %w", err)
	}
	return out, nil
}

// Resolver picks vectors from an optional configuration document.
type Resolver struct {
	doc    *config.Document
	logger *log.Logger
}

// NewResolver returns a resolver over doc. A nil doc uses the legacy table.
func NewResolver(doc *config.Document, logger *log.Logger) *Resolver {
	return &Resolver{doc: doc, logger: logging.OrNop(logger)}
}

// Resolve returns the weight vector for (scoreType, role, companyType). The
// result always sums to 1.0.
func (r *Resolver) Resolve(scoreType rubric.ScoreType, role, companyType string) Vector {
	base := r.base(scoreType, role)

	factors, ok := r.doc.Modifier(companyType)
	if !ok {
		return base
	}
	modified, err := ApplyModifier(base, factors)
	if err != nil {
		r.logger.Warn().Err(err).Str("company_type", companyType).Str("role", role).
			Msg("company modifier zeroes every weight, ignoring it")
		return base
	}
	return modified
}

func (r *Resolver) base(scoreType rubric.ScoreType, role string) Vector {
	raw, ok := r.doc.RoleWeights(scoreType, role)
	if !ok {
		return Legacy(role)
	}

	v := make(Vector, len(rubric.Dimensions()))
	for _, d := range rubric.Dimensions() {
		v[d] = raw[string(d)]
	}
	sum := v.Sum()
	if math.Abs(sum-1.0) <= Tolerance {
		return v
	}
	norm, err := v.Normalize()
	if err != nil {
		r.logger.Warn().Str("score_type", string(scoreType)).Str("role", role).
			Msg("configured weights are all zero, using legacy table")
		return Legacy(role)
	}
	r.logger.Warn().Str("score_type", string(scoreType)).Str("role", role).Float64("sum", sum).
		Msg("configured weights do not sum to 1, renormalizing")
	return norm
}
