// Package schema validates report documents against the AIQ JSON Schema.
//
// A validator whose schema cannot be read or compiled does not fail: it
// reports every document as valid and marks the result degraded, logging
// mode=degraded so the outcome can be told apart from a strict pass.
package schema

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/phuslu/log"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/sagearbor/ai-skill-eval-kit/internal/lazy"
	"github.com/sagearbor/ai-skill-eval-kit/internal/logging"
	"github.com/sagearbor/ai-skill-eval-kit/internal/report"
)

//go:embed aiq-report-v1.schema.json
var defaultSchema []byte

// resourceURL names the schema inside the compiler. It is never fetched.
const resourceURL = "mem://aiq/aiq-report-v1.schema.json"

// ValidationError is one leaf failure reported by the schema.
type ValidationError struct {
	Path    string
	Keyword string
	Message string
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Result is the outcome of one validation. Errors holds user-facing messages.
type Result struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Degraded bool     `json:"degraded"`
}

// Validator checks documents against one schema, compiled on first use.
type Validator struct {
	origin string
	logger *log.Logger
	schema *lazy.Value[*jsonschema.Schema]
}

// New returns a validator for the embedded report schema.
func New(logger *log.Logger) *Validator {
	return NewFromBytes("embedded", defaultSchema, logger)
}

// NewFromFile returns a validator for the schema at path. The file is read
// on first use.
func NewFromFile(path string, logger *log.Logger) *Validator {
	return newValidator(path, func(context.Context) ([]byte, error) {
		return os.ReadFile(path)
	}, logger)
}

// NewFromBytes returns a validator for an in-memory schema.
func NewFromBytes(origin string, data []byte, logger *log.Logger) *Validator {
	return newValidator(origin, func(context.Context) ([]byte, error) {
		return data, nil
	}, logger)
}

func newValidator(origin string, read func(context.Context) ([]byte, error), logger *log.Logger) *Validator {
	v := &Validator{origin: origin, logger: logging.OrNop(logger)}
	v.schema = lazy.New(func(ctx context.Context) (*jsonschema.Schema, error) {
		data, err := read(ctx)
		if err != nil {
			return nil, fmt.Errorf("schema.load: %w", err)
		}
		return compile(data)
	})
	return v
}

func compile(data []byte) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	c.AssertFormat = true
	if err := c.AddResource(resourceURL, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("schema.compile: %w", err)
	}
	sch, err := c.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("schema.compile: %w", err)
	}
	return sch, nil
}

// Validate checks doc, which may be any JSON-marshalable value.
func (v *Validator) Validate(ctx context.Context, doc any) Result {
	inst, err := instance(doc)
	if err != nil {
		return Result{Errors: []string{fmt.Sprintf("Report could not be read: %v", err)}}
	}

	sch, err := v.schema.Get(ctx)
	if err != nil {
		v.logger.Warn().Err(err).Str("mode", "degraded").Str("schema", v.origin).
			Msg("schema unavailable, skipping validation")
		return Result{Valid: true, Errors: []string{}, Degraded: true}
	}

	err = sch.Validate(inst)
	if err == nil {
		v.logger.Debug().Str("mode", "strict").Str("schema", v.origin).Msg("report passed schema validation")
		return Result{Valid: true, Errors: []string{}}
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		v.logger.Warn().Err(err).Str("mode", "degraded").Str("schema", v.origin).
			Msg("schema validation failed to run")
		return Result{Valid: true, Errors: []string{}, Degraded: true}
	}
	leaves := Leaves(ve)
	for _, l := range leaves {
		v.logger.Debug().Str("path", l.Path).Str("keyword", l.Keyword).Msg(l.Message)
	}
	return Result{Errors: Friendly(leaves)}
}

// ValidateReport checks a built report.
func (v *Validator) ValidateReport(ctx context.Context, r *report.Report) Result {
	return v.Validate(ctx, r)
}

// ValidateDocument checks raw JSON. Input that is not JSON is an error, not
// an invalid result.
func (v *Validator) ValidateDocument(ctx context.Context, data []byte) (Result, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return Result{}, fmt.Errorf("schema.ValidateDocument: %w", err)
	}
	return v.Validate(ctx, doc), nil
}

// instance converts doc to the generic form the schema library walks.
func instance(doc any) (any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// Leaves flattens a validation error tree into its leaf failures.
func Leaves(ve *jsonschema.ValidationError) []ValidationError {
	var out []ValidationError
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, ValidationError{
				Path:    e.InstanceLocation,
				Keyword: keyword(e.KeywordLocation),
				Message: e.Message,
			})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return out
}

func keyword(loc string) string {
	if i := strings.LastIndex(loc, "/"); i >= 0 {
		return loc[i+1:]
	}
	return loc
}

var (
	quoted       = regexp.MustCompile(`'([^']*)'`)
	expectedType = regexp.MustCompile(`expected ([^,]+), but got`)
	formatName   = regexp.MustCompile(`is not valid '([^']+)'`)
)

// Friendly turns leaf failures into one message per distinct path and
// keyword, in the order they were reported.
func Friendly(leaves []ValidationError) []string {
	out := []string{}
	seen := make(map[string]bool, len(leaves))
	for _, l := range leaves {
		path := l.Path
		if path == "" {
			path = "root"
		}
		key := path + ":" + l.Keyword
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, message(l, path))
	}
	return out
}

func message(l ValidationError, path string) string {
	field := "Report"
	if i := strings.LastIndex(l.Path, "/"); i >= 0 && i < len(l.Path)-1 {
		field = l.Path[i+1:]
	}

	switch l.Keyword {
	case "required":
		return "Missing required field: " + strings.Join(quotedNames(l.Message), ", ")
	case "minLength":
		return fmt.Sprintf("%q cannot be empty", field)
	case "type":
		want := "another type"
		if m := expectedType.FindStringSubmatch(l.Message); m != nil {
			want = m[1]
		}
		return fmt.Sprintf("%q has incorrect type (expected %s)", field, want)
	case "enum":
		allowed := l.Message
		if i := strings.Index(allowed, "one of "); i >= 0 {
			allowed = allowed[i+len("one of "):]
		}
		return fmt.Sprintf("%q has invalid value. Allowed values: %s", field, strings.ReplaceAll(allowed, `"`, ""))
	case "minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum":
		return fmt.Sprintf("%q value is out of range", field)
	case "format":
		format := "a valid format"
		if m := formatName.FindStringSubmatch(l.Message); m != nil {
			format = m[1]
		}
		return fmt.Sprintf("%q has invalid format (expected %s)", field, format)
	case "additionalProperties":
		return "Unexpected property: " + strings.Join(quotedNames(l.Message), ", ")
	case "const":
		want := strings.TrimPrefix(l.Message, "value must be ")
		return fmt.Sprintf("%q must be %s", field, strings.Trim(want, `"'`))
	default:
		return fmt.Sprintf("Validation error at %s: %s", path, l.Message)
	}
}

func quotedNames(msg string) []string {
	var names []string
	for _, m := range quoted.FindAllStringSubmatch(msg, -1) {
		names = append(names, m[1])
	}
	if len(names) == 0 {
		names = append(names, msg)
	}
	return names
}
