// Package rubric defines the fixed assessment rubric: dimensions, levels,
// point ranges, score bands, and evidence tiers.
package rubric

import (
	"errors"
	"fmt"
	"sort"
)

// Dimension identifies one of the five skill axes.
type Dimension string

const (
	Study    Dimension = "study"
	Copy     Dimension = "copy"
	Output   Dimension = "output"
	Research Dimension = "research"
	Ethical  Dimension = "ethical"
)

// MaxLevel is the highest selectable level in every dimension.
const MaxLevel = 5

var order = []Dimension{Study, Copy, Output, Research, Ethical}

// Valid reports whether d is one of the rubric dimensions.
func (d Dimension) Valid() bool {
	_, ok := table[d]
	return ok
}

// Name returns the display name, or the raw id for unknown dimensions.
func (d Dimension) Name() string {
	if def, ok := table[d]; ok {
		return def.Name
	}
	return string(d)
}

var (
	ErrUnknownDimension = errors.New("unknown dimension")
	ErrLevelOutOfRange  = errors.New("level out of range")
)

// Level describes one rung of a dimension. Level 0 carries no range.
type Level struct {
	Level       int     `json:"level" yaml:"level"`
	MinPoints   float64 `json:"minPoints" yaml:"min_points"`
	MaxPoints   float64 `json:"maxPoints" yaml:"max_points"`
	Midpoint    float64 `json:"midpoint" yaml:"midpoint"`
	Description string  `json:"description" yaml:"description"`
}

// Points is the representative value used in scoring.
func (l Level) Points() float64 {
	if l.Level == 0 {
		return 0
	}
	return l.Midpoint
}

// Definition is the static description of a dimension.
type Definition struct {
	ID       Dimension `json:"id"`
	Name     string    `json:"name"`
	FullName string    `json:"fullName"`
	Question string    `json:"question"`
	Levels   []Level   `json:"levels"`
}

// Dimensions returns the dimension ids in rubric order.
func Dimensions() []Dimension {
	out := make([]Dimension, len(order))
	copy(out, order)
	return out
}

// Definitions returns every dimension definition in rubric order.
func Definitions() []Definition {
	out := make([]Definition, 0, len(order))
	for _, d := range order {
		out = append(out, table[d])
	}
	return out
}

// Lookup returns the definition for d.
func Lookup(d Dimension) (Definition, bool) {
	def, ok := table[d]
	return def, ok
}

// LevelOf returns the level record for dimension d.
func LevelOf(d Dimension, level int) (Level, error) {
	def, ok := table[d]
	if !ok {
		return Level{}, fmt.Errorf("rubric: %w: %q", ErrUnknownDimension, d)
	}
	if level < 0 || level >= len(def.Levels) {
		return Level{}, fmt.Errorf("rubric: %w: %d for %s", ErrLevelOutOfRange, level, d)
	}
	return def.Levels[level], nil
}

// Points returns the representative point value for a level: 0 for level 0,
// otherwise the midpoint of its range. Unknown references return 0 and an
// error the caller is expected to log and skip.
func Points(d Dimension, level int) (float64, error) {
	l, err := LevelOf(d, level)
	if err != nil {
		return 0, err
	}
	return l.Points(), nil
}

// MaxPoints returns the points at the top level of d, or 0 if d is unknown.
func MaxPoints(d Dimension) float64 {
	p, _ := Points(d, MaxLevel)
	return p
}

// Describe returns the universal description of a level, or "".
func Describe(d Dimension, level int) string {
	l, err := LevelOf(d, level)
	if err != nil {
		return ""
	}
	return l.Description
}

func ranged(level int, lo, hi, mid float64, desc string) Level {
	return Level{Level: level, MinPoints: lo, MaxPoints: hi, Midpoint: mid, Description: desc}
}

var table = map[Dimension]Definition{
	Study: {
		ID:       Study,
		Name:     "Study",
		FullName: "S - Study (Information & Fluency)",
		Question: "Where do you learn about AI? Can you explain why things work or fail?",
		Levels: []Level{
			{Level: 0, Description: "No AI awareness. Avoids or fears the technology."},
			ranged(1, 1, 4, 2.5, "Mainstream news only. Passive consumption of hype/fear cycles."),
			ranged(2, 5, 8, 6.5, `LinkedIn influencers, YouTube "Top 10 Tools" content.`),
			ranged(3, 9, 12, 10.5, "Developer blogs, release notes, AI-focused newsletters."),
			ranged(4, 13, 16, 14.5, "Technical reports, GitHub repos. Can explain why models fail."),
			ranged(5, 17, 20, 18.5, "ArXiv papers, model weights, source code. Predicts capability shifts."),
		},
	},
	Copy: {
		ID:       Copy,
		Name:     "Copy",
		FullName: "C - Copy (Evaluation & Rigor)",
		Question: "How do you know if AI output is good? Can you prove it?",
		Levels: []Level{
			{Level: 0, Description: `No validation. Blind trust: "It looks right to me."`},
			ranged(1, 1, 4, 2.5, `"Vibes check." Runs prompt once, manually reviews.`),
			ranged(2, 5, 8, 6.5, "Maintains test cases. Systematic manual Pass/Fail grading."),
			ranged(3, 9, 12, 10.5, "A/B tests models. Comparative benchmarks. Uses eval tools."),
			ranged(4, 13, 16, 14.5, "Automated evals. LLM-as-Judge. Quantified metrics (precision, recall)."),
			ranged(5, 17, 20, 18.5, "Statistical confidence intervals. CI/CD for prompts. Regression testing."),
		},
	},
	Output: {
		ID:       Output,
		Name:     "Output",
		FullName: "O - Output (Deployment & Impact)",
		Question: "What have you built that others actually use? What value did it create?",
		Levels: []Level{
			{Level: 0, Description: "Chat interface only. No deployment or workflow integration."},
			ranged(1, 1, 5, 3, "Personal productivity (Copilot, ChatGPT Plus). Time savings only."),
			ranged(2, 6, 10, 8, "Simple wrapper apps. Basic API integration. Likely negative ROI."),
			ranged(3, 11, 15, 13, "Internal tools used by team. RAG pipelines. $10k+ verified savings."),
			ranged(4, 16, 20, 18, "Production agentic systems. Revenue-generating. External users."),
			ranged(5, 21, 25, 23, "Vertical AI platform. Fine-tuned models. $100k+ verified value."),
		},
	},
	Research: {
		ID:       Research,
		Name:     "Research",
		FullName: "R - Research (Innovation & Contribution)",
		Question: "Do you advance the field or just consume it?",
		Levels: []Level{
			{Level: 0, Description: "Treats AI as magic. No understanding of mechanisms."},
			ranged(1, 1, 4, 2.5, "Conceptual understanding: tokens, temperature, context windows."),
			ranged(2, 5, 8, 6.5, "Architectural knowledge. Understands Transformers. Implements papers."),
			ranged(3, 9, 12, 10.5, "Contributes: fine-tunes models, publishes weights, shares methods."),
			ranged(4, 13, 16, 14.5, "Researches: novel architectures, publishes at conferences."),
			ranged(5, 17, 20, 18.5, "Invents: paradigm-shifting discoveries. Industry-recognized impact."),
		},
	},
	Ethical: {
		ID:       Ethical,
		Name:     "Ethical",
		FullName: "Es - Ethical Security (Safety & Responsibility)",
		Question: "Can you be trusted with AI? Do you use it safely?",
		Levels: []Level{
			{Level: 0, Description: "Dangerous. Pastes PII into public models. Ignores bias."},
			ranged(1, 1, 3, 2, "Compliant. Follows rules. Uses only sanctioned tools."),
			ranged(2, 4, 6, 5, "Cautious. Fact-checks outputs. Human-in-the-loop for decisions."),
			ranged(3, 7, 9, 8, "Proactive. Tests for hallucinations. Documents failure modes."),
			ranged(4, 10, 12, 11, "Guardian. Catches risks in others' work. Designs safety protocols."),
			ranged(5, 13, 15, 14, "Leader. Shapes org policies. Trains others on safe practices."),
		},
	},
}

// Levels maps dimension ids to a selected level. Keys outside the rubric are
// kept so callers can report them.
type Levels map[Dimension]int

// Clone returns a copy of l.
func (l Levels) Clone() Levels {
	out := make(Levels, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// Unknown returns keys of l that are not rubric dimensions, sorted.
func (l Levels) Unknown() []Dimension {
	var out []Dimension
	for k := range l {
		if !k.Valid() {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
