package service

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrNotFound is wrapped by every error reporting a missing board, column or
// task.
var ErrNotFound = errors.New("not found")

// ErrConflict is wrapped by errors reporting that a concurrent write changed
// the entity between its lookup and the lock.
var ErrConflict = errors.New("conflict")

// ValidationError lists the request fields that failed validation, keyed by
// their JSON path.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func notFound(entity string, id uint) error {
	return fmt.Errorf("%s with ID %d %w", entity, id, ErrNotFound)
}

func movedConcurrently(id, columnID uint) error {
	return fmt.Errorf("task %d left column %d while waiting for the lock: %w", id, columnID, ErrConflict)
}

// lookupErr turns a missing record into a not-found error for entity.
func lookupErr(entity string, id uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, id)
	}
	return err
}

// failure passes client errors through and logs anything else as a storage
// failure of op.
func failure(err error, op string, fields log.Fields) error {
	var verr *ValidationError
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) || errors.As(err, &verr) {
		return err
	}
	log.WithFields(fields).WithError(err).Errorf("%s failed", op)
	return fmt.Errorf("failed to %s: %w", op, err)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct checks req against its validate tags.
func validateStruct(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		out.Fields[field] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return "must be a date formatted YYYY-MM-DD"
	}
	return "is invalid"
}
