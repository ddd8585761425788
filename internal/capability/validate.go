package capability

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ArgumentError reports a tool-call argument blob that is not valid JSON for
// the tool's parameter type.
type ArgumentError struct {
	Err error
}

func (e *ArgumentError) Error() string { return "parse tool arguments: " + e.Err.Error() }
func (e *ArgumentError) Unwrap() error { return e.Err }

// ValidationError describes the first argument field that failed validation.
type ValidationError struct {
	Field      string // JSON path of the field, e.g. "items[0].title"
	Constraint string // failed constraint, e.g. "required" or "oneof=all active"
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid argument %q: must satisfy %s", e.Field, e.Constraint)
}

// validate is a package-level singleton; building validators is expensive.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateArgs checks args against its `validate` struct tags and converts the
// first failure into a *ValidationError.
func validateArgs(args any) error {
	if reflect.Indirect(reflect.ValueOf(args)).Kind() != reflect.Struct {
		return nil
	}
	err := validate.Struct(args)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate arguments: %w", err)
	}

	fe := verrs[0]
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	constraint := fe.Tag()
	if fe.Param() != "" {
		constraint += "=" + fe.Param()
	}
	return &ValidationError{Field: field, Constraint: constraint}
}
