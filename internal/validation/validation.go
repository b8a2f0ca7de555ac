// Package validation checks request payloads against their struct tag rules
// and reports failures per field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// FieldError is a single failed rule on a payload field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Global validator instance for reuse
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields under their wire names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("register notblank validation: %v", err))
	}
	return v
}

// Validate returns every rule v violates. An empty result means v is valid.
func Validate(v interface{}) []FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []FieldError{{Field: "", Message: err.Error()}}
	}

	result := make([]FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		result = append(result, FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return result
}

func message(fe validator.FieldError) string {
	display := fe.StructField()
	switch fe.Tag() {
	case "notblank", "required":
		return fmt.Sprintf("'%s' must not be empty.", display)
	case "min":
		return fmt.Sprintf("The length of '%s' must be at least %s characters. You entered %d characters.",
			display, fe.Param(), length(fe.Value()))
	case "max":
		return fmt.Sprintf("The length of '%s' must be %s characters or fewer. You entered %d characters.",
			display, fe.Param(), length(fe.Value()))
	}
	return fmt.Sprintf("'%s' failed the '%s' rule.", display, fe.Tag())
}

func length(value interface{}) int {
	switch v := value.(type) {
	case string:
		return utf8.RuneCountInString(v)
	case *string:
		if v != nil {
			return utf8.RuneCountInString(*v)
		}
	}
	return 0
}
