package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexivanou/cityinfo-api/internal/validation"
)

var (
	ErrCityNotFound            = errors.New("city not found")
	ErrPointOfInterestNotFound = errors.New("point of interest not found")
)

// ValidationError carries the failed rules of a rejected payload
type ValidationError struct {
	Fields []validation.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, " ")
}

// PatchError reports a patch document that is malformed or cannot be applied
type PatchError struct {
	Err error
}

func (e *PatchError) Error() string {
	return fmt.Sprintf("invalid patch document: %v", e.Err)
}

func (e *PatchError) Unwrap() error {
	return e.Err
}
