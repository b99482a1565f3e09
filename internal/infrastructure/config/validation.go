package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
)

// Validator is a wrapper around go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance with custom validation rules:
//   - zone: a zone identifier such as W7N3
//   - position: an encoded position such as 10.22.W7N3
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("zone", func(fl validator.FieldLevel) bool {
		_, ok := territory.ParseZone(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("position", func(fl validator.FieldLevel) bool {
		pos, err := shared.ParsePosition(fl.Field().String())
		if err != nil {
			return false
		}
		_, ok := territory.ParseZone(pos.Zone)
		return ok
	})

	return &Validator{
		validate: v,
	}
}

// Validate validates a struct using validation tags
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return v.formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors into readable messages
func (v *Validator) formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrs {
			messages = append(messages, fmt.Sprintf(
				"field '%s' failed validation: %s (value: '%v')",
				e.Field(),
				e.Tag(),
				e.Value(),
			))
		}
		return fmt.Errorf("validation failed:\n  %s", strings.Join(messages, "\n  "))
	}
	return err
}

// ValidateConfig validates the entire configuration
func ValidateConfig(cfg *Config) error {
	v := NewValidator()
	if err := v.Validate(cfg); err != nil {
		return err
	}
	return cfg.Economy.ToConstants().Validate()
}
