package assessment

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sagearbor/ai-skill-eval-kit/internal/rubric"
)

// Assessee identifies the person being assessed.
type Assessee struct {
	Name        string `json:"name" yaml:"name" validate:"required"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty" validate:"omitempty,email"`
	Role        string `json:"role" yaml:"role" validate:"required,oneof=General Developer Researcher Support Leader"`
	CompanyType string `json:"companyType,omitempty" yaml:"companyType,omitempty" validate:"omitempty,oneof=Startup Enterprise Aspirational"`
}

// Peer identifies the colleague who validates a level-2 assessment.
type Peer struct {
	Name         string `json:"name" yaml:"name" validate:"required"`
	Email        string `json:"email,omitempty" yaml:"email,omitempty" validate:"omitempty,email"`
	Relationship string `json:"relationship,omitempty" yaml:"relationship,omitempty"`
}

// Normalize trims fields and fixes the case of role and company type.
// An empty role becomes General.
func (a Assessee) Normalize() Assessee {
	a.Name = strings.TrimSpace(a.Name)
	a.Email = strings.TrimSpace(a.Email)
	if strings.TrimSpace(a.Role) == "" {
		a.Role = rubric.DefaultRole
	} else {
		a.Role, _ = rubric.CanonicalRole(a.Role)
	}
	if strings.TrimSpace(a.CompanyType) == "" {
		a.CompanyType = ""
	} else {
		a.CompanyType, _ = rubric.CanonicalCompanyType(a.CompanyType)
	}
	return a
}

// FieldError is one failed identity rule.
type FieldError struct {
	Field string
	Rule  string
	Value string
}

func (f FieldError) String() string {
	switch f.Rule {
	case "required":
		return fmt.Sprintf("%s is required", f.Field)
	case "email":
		return fmt.Sprintf("%s %q is not a valid email address", f.Field, f.Value)
	case "oneof":
		return fmt.Sprintf("%s %q is not one of the allowed values", f.Field, f.Value)
	default:
		return fmt.Sprintf("%s failed %s", f.Field, f.Rule)
	}
}

// IdentityError collects identity rule failures.
type IdentityError struct {
	Fields []FieldError
}

func (e *IdentityError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return "invalid identity: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks the assessee's identity fields.
func (a Assessee) Validate() error {
	return structErr(validate.Struct(a))
}

// Validate checks the peer's identity fields.
func (p Peer) Validate() error {
	return structErr(validate.Struct(p))
}

func structErr(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("assessment.Validate: %w", err)
	}
	ie := &IdentityError{}
	for _, fe := range verrs {
		ie.Fields = append(ie.Fields, FieldError{
			Field: fe.Field(),
			Rule:  fe.Tag(),
			Value: fmt.Sprint(fe.Value()),
		})
	}
	return ie
}
