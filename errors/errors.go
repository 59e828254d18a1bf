package errors

import "fmt"

// Root errors shared by the runtime and all programs. Codes 2 to 99 are
// reserved for this package.
var (
	ErrUnauthorized           = Register(2, "unauthorized")
	ErrNotFound               = Register(3, "not found")
	ErrInvalidInstructionData = Register(4, "invalid instruction data")
	ErrMissingSignature       = Register(5, "missing required signature")
	ErrInvalidSeeds           = Register(6, "invalid seeds")

	// ErrHuman marks a code path that is reachable only because of a
	// programming mistake.
	ErrHuman = Register(7, "coding error")

	ErrBufferTooSmall     = Register(8, "account data too small")
	ErrEmpty              = Register(9, "value is empty")
	ErrInvalidState       = Register(10, "invalid state")
	ErrInvalidType        = Register(11, "invalid type")
	ErrInsufficientAmount = Register(12, "insufficient amount")
	ErrInvalidInput       = Register(14, "invalid input")
	ErrOverflow           = Register(16, "an operation cannot be completed due to value overflow")
	ErrNotEnoughAccounts  = Register(17, "not enough account keys")

	// ErrAccountInUse is returned when an account that is to be created
	// already holds lamports or data.
	ErrAccountInUse = Register(18, "account already in use")

	// Violations of the account rules enforced by the runtime after each
	// instruction.
	ErrReadonly             = Register(19, "readonly account modified")
	ErrExternalModification = Register(20, "account modified by a non owner")
	ErrUnbalanced           = Register(21, "sum of account balances changed")
	ErrPrivilegeEscalation  = Register(22, "privilege escalation")

	ErrUnknownProgram = Register(23, "unknown program")
	ErrCallDepth      = Register(24, "call depth exceeded")
	ErrDatabase       = Register(25, "database")
	ErrDuplicate      = Register(26, "duplicate")

	// ErrPanic is used only for a recovered panic.
	ErrPanic = Register(111222, "panic")
)

// registered holds every root error by code. Code 1 belongs to errors that
// were not created from a root error.
var registered = map[uint32]*Error{InternalCode: nil}

// Register declares a root error. It panics if the code is taken, so call
// it only when initializing package variables.
func Register(code uint32, description string) *Error {
	if e, ok := registered[code]; ok {
		if e == nil {
			panic(fmt.Sprintf("error code %d is reserved", code))
		}
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	e := &Error{code: code, desc: description}
	registered[code] = e
	return e
}

// Error is a root error. Errors returned at runtime wrap one of them, which
// tells a caller what kind of failure happened.
type Error struct {
	code uint32
	desc string
}

func (e *Error) Error() string {
	return e.desc
}

// Code returns the code the error was registered with.
func (e *Error) Code() uint32 {
	return e.code
}

// New returns an error of this kind with a description and a stack trace.
// It is the same as Wrap(e, description).
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is New with formatting.
func (e *Error) Newf(format string, args ...interface{}) error {
	return Wrap(e, fmt.Sprintf(format, args...))
}

// Is returns true if err is of this kind. Wrapped errors are unwrapped and
// a multi error matches if any of the contained errors does. A nil kind
// matches only a nil error.
func (e *Error) Is(err error) bool {
	if e == nil {
		return errIsNil(err)
	}
	var found bool
	walk(err, func(c error) bool {
		if c == e {
			found = true
		}
		return !found
	})
	return found
}
