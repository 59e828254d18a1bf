package errors

import "reflect"

const (
	// SuccessCode is the code of a nil error.
	SuccessCode uint32 = 0

	// InternalCode is the code of an error that does not wrap a root
	// error.
	InternalCode uint32 = 1
)

type coder interface {
	Code() uint32
}

// Code returns the code of the root error err wraps. For a multi error it
// is the code of the first contained error.
func Code(err error) uint32 {
	if errIsNil(err) {
		return SuccessCode
	}
	for {
		if c, ok := err.(coder); ok {
			return c.Code()
		}
		c, ok := err.(causer)
		if !ok {
			return InternalCode
		}
		err = c.Cause()
	}
}

// errIsNil returns true for nil and for a nil pointer stored in the error
// interface.
func errIsNil(err error) bool {
	if err == nil {
		return true
	}
	v := reflect.ValueOf(err)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
