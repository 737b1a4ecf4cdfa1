package assessment

import (
	"crypto/sha256"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sagearbor/ai-skill-eval-kit/internal/rubric"
)

// Input is an assessment as submitted: who, at what evidence tier, which
// levels, and for level 2 the peer's decisions.
type Input struct {
	Assessee   Assessee      `json:"assessee" yaml:"assessee"`
	Level      rubric.Tier   `json:"level,omitempty" yaml:"level,omitempty"`
	Levels     rubric.Levels `json:"levels" yaml:"levels"`
	Notes      string        `json:"notes,omitempty" yaml:"notes,omitempty"`
	Validation *Validation   `json:"validation,omitempty" yaml:"validation,omitempty"`

	FilePath string `json:"-" yaml:"-"`
	Hash     string `json:"-" yaml:"-"`
}

// Validation carries a peer's identity and per-dimension decisions.
type Validation struct {
	Peer      Peer                          `json:"validator" yaml:"validator"`
	Decisions map[rubric.Dimension]Decision `json:"decisions" yaml:"decisions"`
}

// Tier returns the evidence tier, defaulting to self-report.
func (in *Input) Tier() rubric.Tier {
	if in.Level == 0 {
		return rubric.TierSelf
	}
	return in.Level
}

// Load reads a YAML or JSON input file and records its SHA-256 hash.
func Load(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("assessment.Load: %w", err)
	}
	in, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("assessment.Load: %s: %w", path, err)
	}
	in.FilePath = path
	return in, nil
}

// Parse decodes an input document.
func Parse(data []byte) (*Input, error) {
	var in Input
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	in.Assessee = in.Assessee.Normalize()
	in.Hash = fmt.Sprintf("sha256:%x", sha256.Sum256(data))
	return &in, nil
}
