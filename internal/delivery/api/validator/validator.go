// Package validator adapts go-playground/validator to echo.
package validator

import (
	"reflect"
	"strings"

	domainerrors "greenroute/internal/domain/errors"
	"greenroute/internal/errors"

	playground "github.com/go-playground/validator/v10"
)

// Validator implements echo.Validator
type Validator struct {
	validate *playground.Validate
}

// New creates a validator reporting fields by their JSON names
func New() *Validator {
	v := playground.New(playground.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return &Validator{validate: v}
}

// coordinateTags are the rules whose failures are reported as INVALID_COORDINATE
var coordinateTags = map[string]struct{}{
	"latitude":  {},
	"longitude": {},
}

// Validate checks struct tags and returns an error listing every offending
// field. It is INVALID_COORDINATE when a latitude or longitude rule failed and
// VALIDATION_FAILED otherwise.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.WithStack(err)
	}

	for _, fe := range fieldErrs {
		if _, ok := coordinateTags[fe.Tag()]; ok {
			return domainerrors.ErrInvalidCoordinate.WithDetails(describe(fieldErrs))
		}
	}

	return domainerrors.ErrValidationFailed.WithDetails(describe(fieldErrs))
}

func describe(fieldErrs playground.ValidationErrors) string {
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fe.Field()+" failed on "+rule)
	}

	return strings.Join(parts, "; ")
}
