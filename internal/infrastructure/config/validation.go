package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/kanban-go/internal/domain/production"
)

// Validator is a wrapper around go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance with custom validation rules
func NewValidator() *Validator {
	v := validator.New()

	if err := v.RegisterValidation("worker_type", validateWorkerType); err != nil {
		panic(fmt.Sprintf("register worker_type validation: %v", err))
	}

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
	if cfg.Store.Backend == BackendProcedures && cfg.Database.Type != "postgres" {
		return fmt.Errorf("store backend %q requires database type postgres, got %q", cfg.Store.Backend, cfg.Database.Type)
	}
	return nil
}

// validateWorkerType accepts only the closed worker type set
func validateWorkerType(fl validator.FieldLevel) bool {
	return production.WorkerType(fl.Field().String()).IsValid()
}
