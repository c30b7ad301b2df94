package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("no copies available")
	ErrConflict    = errors.New("conflict")
	ErrValidation  = errors.New("validation failed")
)

var (
	ErrBookNotFound        = New(ErrNotFound, "book not found")
	ErrUserNotFound        = New(ErrNotFound, "user not found")
	ErrTransactionNotFound = New(ErrNotFound, "transaction not found")
	ErrFineNotFound        = New(ErrNotFound, "fine not found")

	ErrActiveLoans      = New(ErrConflict, "active borrows exist")
	ErrUnpaidFines      = New(ErrConflict, "unpaid fines exist")
	ErrAdminUndeletable = New(ErrConflict, "cannot delete an admin user")
)

// kindError carries a user facing message and matches its kind with errors.Is.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func New(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func Newf(kind error, format string, args ...any) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func Validation(msg string) error {
	return New(ErrValidation, msg)
}

type ValidationErrorResponse struct {
	Message string `json:"message"`
	Errors  struct {
		AdditionalProperties string `json:"additionalProperties"`
	} `json:"errors"`
}

// Message is the user facing text of err, without the wrapping context added
// on the way up.
func Message(err error) string {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.msg
	}
	return err.Error()
}
