package config

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource []byte

// InvalidError lists the schema violations of a configuration document.
type InvalidError struct {
	Source   string
	Problems []string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("config %s: invalid document: %s", e.Source, strings.Join(e.Problems, "; "))
}

// Parse decodes a YAML or JSON weights document and checks it against the
// embedded CUE definition.
func Parse(source string, data []byte) (*Document, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config.Parse: %s: %w", source, err)
	}
	if err := check(source, raw); err != nil {
		return nil, err
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config.Parse: %s: %w", source, err)
	}
	return &doc, nil
}

// ParseDescriptions decodes a standalone level-descriptions document
// ({universal, roleSpecific}).
func ParseDescriptions(source string, data []byte) (*LevelDescriptions, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config.ParseDescriptions: %s: %w", source, err)
	}
	if err := check(source, map[string]any{"levelDescriptions": raw}); err != nil {
		return nil, err
	}
	var ld LevelDescriptions
	if err := yaml.Unmarshal(data, &ld); err != nil {
		return nil, fmt.Errorf("config.ParseDescriptions: %s: %w", source, err)
	}
	return &ld, nil
}

// cue.Context is not safe for concurrent use.
var checker struct {
	once sync.Once
	mu   sync.Mutex
	ctx  *cue.Context
	def  cue.Value
	err  error
}

func check(source string, raw map[string]any) error {
	checker.once.Do(func() {
		checker.ctx = cuecontext.New()
		schema := checker.ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
		if err := schema.Err(); err != nil {
			checker.err = fmt.Errorf("config: compile schema: %w", err)
			return
		}
		checker.def = schema.LookupPath(cue.ParsePath("#WeightsConfig"))
		if !checker.def.Exists() {
			checker.err = fmt.Errorf("config: #WeightsConfig not defined")
		}
	})
	if checker.err != nil {
		return checker.err
	}
	if raw == nil {
		raw = map[string]any{}
	}

	checker.mu.Lock()
	defer checker.mu.Unlock()

	value := checker.ctx.Encode(raw)
	if err := value.Err(); err != nil {
		return fmt.Errorf("config: encode %s: %w", source, err)
	}
	unified := checker.def.Unify(value)
	err := unified.Err()
	if err == nil {
		err = unified.Validate(cue.Concrete(true))
	}
	if err == nil {
		return nil
	}

	ie := &InvalidError{Source: source}
	for _, e := range cueerrors.Errors(err) {
		path := strings.Join(e.Path(), ".")
		msg := e.Error()
		if path != "" && !strings.HasPrefix(msg, path) {
			msg = path + ": " + msg
		}
		ie.Problems = append(ie.Problems, msg)
	}
	if len(ie.Problems) == 0 {
		ie.Problems = []string{err.Error()}
	}
	return ie
}
