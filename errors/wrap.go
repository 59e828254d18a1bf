package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Wrap adds a description to err. A stack trace is recorded unless err
// already carries one. Wrap returns nil if err is nil.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &wrappedError{msg: description, parent: err}
}

// Wrapf is Wrap with formatting.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

type wrappedError struct {
	msg    string
	parent error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.parent.Error()
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Format implements fmt.Formatter. %+v prints the stack trace, %v appends
// the [file:line] the error was created at.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	fmt.Fprint(s, e.Error())
	if verb != 'v' {
		return
	}
	st := stackTrace(e)
	switch {
	case s.Flag('+') && st != nil:
		fmt.Fprintf(s, "%+v", st)
	case len(st) > 0:
		writeSimpleFrame(s, st[0])
	}
}

// Recover turns a panic into an ErrPanic assigned to err. Call it with
// defer.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

type causer interface {
	Cause() error
}

// unpacker is implemented by errors that club together more than one error.
type unpacker interface {
	Unpack() []error
}

// walk calls visit for err and every error it wraps, depth first. Errors
// below one for which visit returns false are not visited.
func walk(err error, visit func(error) bool) {
	for !errIsNil(err) {
		if !visit(err) {
			return
		}
		if u, ok := err.(unpacker); ok {
			for _, e := range u.Unpack() {
				walk(e, visit)
			}
			return
		}
		c, ok := err.(causer)
		if !ok {
			return
		}
		err = c.Cause()
	}
}
