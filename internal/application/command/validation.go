// Package command contains write operations (CQRS - Commands).
// Stores accept whatever they are given; input validation happens here.
package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/apper-apps/skillup-plus-harbor/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// validate is shared by all commands. Initialized in init() with custom rules.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// notblank rejects empty and whitespace-only strings.
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// FeatureChecker reports whether a named feature flag is on.
// *config.FeatureFlags satisfies it.
type FeatureChecker interface {
	IsEnabled(name string) bool
}

type noFeatures struct{}

func (noFeatures) IsEnabled(string) bool { return false }

// validateStruct runs the struct tags of cmd and converts failures into a
// Validation DomainError listing every offending field.
func validateStruct(domain, op string, cmd any) error {
	err := validate.Struct(cmd)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return shared.NewValidation(domain, op, err.Error(), shared.ErrInvalidInput)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return shared.NewValidation(domain, op, strings.Join(msgs, "; "), shared.ErrInvalidInput)
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s needs at least %s item(s)", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "url":
		return field + " must be a URL"
	default:
		return fmt.Sprintf("%s failed %q (%s)", field, fe.Tag(), fe.Param())
	}
}
