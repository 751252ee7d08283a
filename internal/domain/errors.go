package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
)

var (
	// ErrValidation marks input rejected before reaching storage
	ErrValidation = errors.New("validation error")

	// ErrStorageUnavailable marks connection or statement failures
	ErrStorageUnavailable = errors.New("storage unavailable")
)

var validate = validator.New()

// ValidationError lists every problem found with a record
type ValidationError struct {
	Problems *multierror.Error
}

func (e *ValidationError) Error() string {
	if e.Problems == nil || len(e.Problems.Errors) == 0 {
		return ErrValidation.Error()
	}
	if len(e.Problems.Errors) == 1 {
		return fmt.Sprintf("%s: %v", ErrValidation, e.Problems.Errors[0])
	}
	msgs := make([]string, 0, len(e.Problems.Errors))
	for _, p := range e.Problems.Errors {
		msgs = append(msgs, p.Error())
	}
	return fmt.Sprintf("%s: %d problems: %s", ErrValidation, len(msgs), strings.Join(msgs, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	if e.Problems == nil {
		return nil
	}
	return e.Problems.ErrorOrNil()
}

// StorageError wraps a failure talking to the backing store
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError tags err as a storage failure for op
func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// Validate checks a record before insert.
// A zero timestamp counts as missing.
func (r NewWeatherRecord) Validate() error {
	var result *multierror.Error

	if r.Timestamp.IsZero() {
		result = multierror.Append(result, errors.New("timestamp is required"))
	}

	if err := validate.Struct(r); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				result = multierror.Append(result, fieldProblem(fe))
			}
		} else {
			result = multierror.Append(result, err)
		}
	}

	if result.ErrorOrNil() == nil {
		return nil
	}
	return &ValidationError{Problems: result}
}

func fieldProblem(fe validator.FieldError) error {
	field := jsonName(fe.Field())
	switch fe.Tag() {
	case "max":
		return fmt.Errorf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Errorf("%s failed %q check", field, fe.Tag())
	}
}

func jsonName(field string) string {
	switch field {
	case "Location":
		return "location"
	default:
		return field
	}
}
