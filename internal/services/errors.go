package services

import (
	"errors"
	"fmt"
)

// Define common service errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict") // e.g., duplicate email, duplicate application
	ErrValidation         = errors.New("validation failed")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrResourceLimit      = errors.New("resource limit exceeded")
	ErrInternal           = errors.New("internal error")
)

// Errors with a client-facing message. Each one wraps one of the kinds above.
var (
	ErrJobNotFound         = newError(ErrNotFound, "Job not found")
	ErrUserNotFound        = newError(ErrNotFound, "User not found")
	ErrLocationNotFound    = newError(ErrNotFound, "Location not found")
	ErrNoStats             = newError(ErrNotFound, "No stats found for")
	ErrAddressNotFound     = newError(ErrValidation, "Please add a valid address")
	ErrApplicationsClosed  = newError(ErrValidation, "You can not apply to this job. Date is over.")
	ErrFileRequired        = newError(ErrValidation, "Please upload file.")
	ErrInvalidDeadline     = newError(ErrValidation, "Last date can not be before the posting date.")
	ErrInvalidDistance     = newError(ErrValidation, "Distance must be a positive number of miles.")
	ErrPasswordMismatch    = newError(ErrValidation, "Password does not match")
	ErrInvalidResetToken   = newError(ErrValidation, "Password Reset token is invalid or has been expired.")
	ErrAlreadyApplied      = newError(ErrConflict, "You have already applied to this job.")
	ErrJobModified         = newError(ErrConflict, "Job was changed by another request. Reload and try again.")
	ErrDuplicateEmail      = newError(ErrConflict, "Duplicate email entered")
	ErrUnsupportedFileType = newError(ErrResourceLimit, "Please upload document file.")
	ErrFileTooLarge        = newError(ErrResourceLimit, "Please upload a smaller file.")
	ErrLoginRequired       = newError(ErrUnauthenticated, "Login first to access this resource.")
	ErrBadLogin            = newError(ErrInvalidCredentials, "Invalid Email or Password")
	ErrWrongPassword       = newError(ErrInvalidCredentials, "Old Password is incorrect.")
	ErrInvalidToken        = newError(ErrUnauthenticated, "JSON Web Token is invalid. Try Again!")
	ErrExpiredToken        = newError(ErrUnauthenticated, "JSON Web Token is expired. Try Again!")
	ErrUserGone            = newError(ErrUnauthenticated, "The user belonging to this token no longer exists.")
	ErrEmailNotSent        = newError(ErrInternal, "Email is not sent.")
)

// Error is a service error whose message is safe to show to clients.
type Error struct {
	kind error
	msg  string
}

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

// Unwrap exposes the error kind to errors.Is.
func (e *Error) Unwrap() error { return e.kind }

// forbidden builds an authorization error for a described action.
func forbidden(action string) error {
	return newError(ErrForbidden, fmt.Sprintf("You are not allowed to %s.", action))
}
