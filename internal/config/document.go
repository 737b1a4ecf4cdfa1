// Package config holds the optional weight and level-description document that
// overrides the built-in scoring tables, and the providers that load it.
package config

import (
	"github.com/sagearbor/ai-skill-eval-kit/internal/rubric"
)

// Document is the external configuration. A nil or empty Document means
// "use the built-in defaults" everywhere.
type Document struct {
	Version           string                     `yaml:"version,omitempty" json:"version,omitempty"`
	ScoreTypes        map[string]ScoreType       `yaml:"scoreTypes,omitempty" json:"scoreTypes,omitempty"`
	CompanyModifiers  map[string]CompanyModifier `yaml:"companyModifiers,omitempty" json:"companyModifiers,omitempty"`
	GapInterpretation *GapInterpretation         `yaml:"gapInterpretation,omitempty" json:"gapInterpretation,omitempty"`
	LevelDescriptions *LevelDescriptions         `yaml:"levelDescriptions,omitempty" json:"levelDescriptions,omitempty"`
}

// ScoreType carries the per-role weight vectors of one score type.
type ScoreType struct {
	Description string                        `yaml:"description,omitempty" json:"description,omitempty"`
	Roles       map[string]map[string]float64 `yaml:"roles,omitempty" json:"roles,omitempty"`
}

// CompanyModifier scales a base weight vector for one company type.
type CompanyModifier struct {
	Description string             `yaml:"description,omitempty" json:"description,omitempty"`
	Modifiers   map[string]float64 `yaml:"modifiers,omitempty" json:"modifiers,omitempty"`
}

// GapRule is one branch of the gap interpretation ladder.
type GapRule struct {
	Threshold    *float64 `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	MinThreshold *float64 `yaml:"minThreshold,omitempty" json:"minThreshold,omitempty"`
	Meaning      string   `yaml:"meaning" json:"meaning"`
	Action       string   `yaml:"action" json:"action"`
}

// GapInterpretation configures the thresholds and texts used to explain the
// personal minus corporate gap.
type GapInterpretation struct {
	HighPositive     GapRule `yaml:"highPositive" json:"highPositive"`
	ModeratePositive GapRule `yaml:"moderatePositive" json:"moderatePositive"`
	Balanced         GapRule `yaml:"balanced" json:"balanced"`
	Negative         GapRule `yaml:"negative" json:"negative"`
}

// LevelText is a description attached to one level.
type LevelText struct {
	Level       int    `yaml:"level" json:"level"`
	Description string `yaml:"description" json:"description"`
}

// LevelDescriptions overrides the rubric's level texts, optionally per role.
type LevelDescriptions struct {
	Universal    map[string][]LevelText            `yaml:"universal,omitempty" json:"universal,omitempty"`
	RoleSpecific map[string]map[string][]LevelText `yaml:"roleSpecific,omitempty" json:"roleSpecific,omitempty"`
}

// RoleWeights returns the configured vector for (scoreType, role).
func (d *Document) RoleWeights(scoreType rubric.ScoreType, role string) (map[string]float64, bool) {
	if d == nil {
		return nil, false
	}
	st, ok := d.ScoreTypes[string(scoreType)]
	if !ok {
		return nil, false
	}
	w, ok := st.Roles[role]
	return w, ok && len(w) > 0
}

// Modifier returns the factors for a company type.
func (d *Document) Modifier(companyType string) (map[string]float64, bool) {
	if d == nil || companyType == "" {
		return nil, false
	}
	m, ok := d.CompanyModifiers[companyType]
	if !ok {
		return nil, false
	}
	return m.Modifiers, true
}

// Gaps returns the configured gap ladder, or nil.
func (d *Document) Gaps() *GapInterpretation {
	if d == nil {
		return nil
	}
	return d.GapInterpretation
}

// LevelDescription resolves a level text: role-specific first, then the
// configured universal text. ok is false when neither is configured.
func (d *Document) LevelDescription(dim rubric.Dimension, level int, role string) (string, bool) {
	if d == nil || d.LevelDescriptions == nil {
		return "", false
	}
	ld := d.LevelDescriptions
	if role != "" {
		if text, ok := findLevel(ld.RoleSpecific[string(dim)][role], level); ok {
			return text, true
		}
	}
	return findLevel(ld.Universal[string(dim)], level)
}

func findLevel(list []LevelText, level int) (string, bool) {
	for _, l := range list {
		if l.Level == level {
			return l.Description, true
		}
	}
	return "", false
}

// Describe resolves a level text with the rubric as the final fallback.
func (d *Document) Describe(dim rubric.Dimension, level int, role string) string {
	if text, ok := d.LevelDescription(dim, level, role); ok {
		return text
	}
	return rubric.Describe(dim, level)
}
