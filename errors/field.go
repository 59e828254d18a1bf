package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field labels err with the name of the field that caused it. It returns
// nil if err is nil.
//
// Use Go naming for the field name, for example Seed or ExecutionID. Nested
// fields use a dot separated path, for example Callback.ProgramID or
// Inputs.1.Data
func Field(name string, err error, description string, args ...interface{}) error {
	if errIsNil(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{name: name, desc: description, parent: err}
}

// AppendField labels fieldErr with the field name and appends it to errs.
// Both errors can be nil.
func AppendField(errs error, name string, fieldErr error) error {
	return Append(errs, Field(name, fieldErr, ""))
}

// FieldErrors returns every error contained in err that was labeled with
// given field name.
func FieldErrors(err error, name string) []error {
	var res []error
	walk(err, func(e error) bool {
		if f, ok := e.(fielder); ok && f.Field() == name {
			res = append(res, e)
			return false
		}
		return true
	})
	return res
}

type fieldError struct {
	name   string
	desc   string
	parent error
}

func (e *fieldError) Error() string {
	if e.desc == "" {
		return fmt.Sprintf("field %q: %s", e.name, e.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", e.name, e.desc, e.parent)
}

func (e *fieldError) Cause() error {
	return e.parent
}

func (e *fieldError) Field() string {
	return e.name
}

type fielder interface {
	Field() string
}
