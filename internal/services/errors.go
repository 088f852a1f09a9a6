package services

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is(err, services.ErrNotFound) and friends to
// classify a returned error.
var (
	ErrValidation    = errors.New("validation failed")
	ErrConflict      = errors.New("conflict")
	ErrNotFound      = errors.New("not found")
	ErrPermission    = errors.New("permission denied")
	ErrSelfReference = errors.New("self reference")
)

// Rules attached to errors so clients can tell cases of one kind apart.
const (
	RuleRequired               = "required"
	RuleInvalid                = "invalid"
	RuleTooShort               = "too_short"
	RuleTooLong                = "too_long"
	RuleMinValue               = "min_value"
	RuleEmpty                  = "empty"
	RuleDuplicateItem          = "duplicate_item"
	RuleUnknownReference       = "unknown_reference"
	RuleInvalidImageEncoding   = "invalid_image_encoding"
	RuleInvalidOrdering        = "invalid_ordering"
	RuleAlreadyExists          = "already_exists"
	RuleDuplicateName          = "duplicate_name"
	RuleSelfSubscription       = "self_subscription"
	RuleAuthenticationRequired = "authentication_required"
	RuleNotOwner               = "not_owner"
	RuleInvalidCredentials     = "invalid_credentials"
	RuleUsernameTaken          = "username_taken"
	RuleEmailTaken             = "email_taken"
)

// Error is the error type returned by every service operation that fails
// for a reason the caller can act on.
type Error struct {
	Kind    error
	Rule    string
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is matches the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ValidationError reports invalid input on field.
func ValidationError(field, rule, message string) *Error {
	return &Error{Kind: ErrValidation, Field: field, Rule: rule, Message: message}
}

// ConflictError reports a uniqueness violation.
func ConflictError(rule, message string) *Error {
	return &Error{Kind: ErrConflict, Rule: rule, Message: message}
}

// NotFoundError reports that the named entity does not exist.
func NotFoundError(entity, id string) *Error {
	return &Error{Kind: ErrNotFound, Rule: "not_found", Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// PermissionError reports that the caller may not perform the operation.
func PermissionError(rule, message string) *Error {
	return &Error{Kind: ErrPermission, Rule: rule, Message: message}
}

// SelfReferenceError reports a relation from a user to themself.
func SelfReferenceError(rule, message string) *Error {
	return &Error{Kind: ErrSelfReference, Rule: rule, Message: message}
}

func errAuthenticationRequired() *Error {
	return PermissionError(RuleAuthenticationRequired, "authentication credentials were not provided")
}

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}
