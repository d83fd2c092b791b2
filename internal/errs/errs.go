package errs

import (
	"errors"
	"fmt"
)

// Kind categorizes an application error.
type Kind string

const (
	// KindService indicates a transient failure calling an external
	// service (mailbox, language model, spreadsheet). Per-message.
	KindService Kind = "service"
	// KindValidation indicates an extracted or entered field failed
	// local rules.
	KindValidation Kind = "validation"
	// KindPersistence indicates the sheet rejected a write.
	KindPersistence Kind = "persistence"
	// KindConfiguration indicates a collaborator handle is missing or
	// invalid at startup. Fatal: no run can make progress.
	KindConfiguration Kind = "configuration"
)

// Error is a coded application error with an optional cause.
// It supports errors.Is and errors.As through Unwrap.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Service creates a service error wrapping cause.
func Service(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindService, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Validation creates a validation error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Persistence creates a persistence error wrapping cause.
func Persistence(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindPersistence, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Configuration creates a configuration error.
func Configuration(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether any error in err's chain carries kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
