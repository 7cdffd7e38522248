package domain

import (
	"errors"
	"fmt"
)

// Sentinels every DomainError wraps; handlers map them onto status codes
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrUpstream      = errors.New("upstream failure") // the document store failed
)

// DomainError carries a client-safe message next to the wrapped cause
type DomainError struct {
	Code    string
	Message string
	Details []Violation // per-item violations, set for validation failures
	Err     error
}

// Violation is one rule broken by one item of a request
type Violation struct {
	Index   int
	URI     string
	Flavor  string
	Kind    string
	Field   string
	Message string
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UserMessage is the message safe to return to clients
func (e *DomainError) UserMessage() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func newError(code string, sentinel error, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Err: sentinel}
}

func NewNotFoundError(resourceType, name string) error {
	return newError("NOT_FOUND", ErrNotFound, fmt.Sprintf("%s '%s' not found", resourceType, name))
}

// NewEntityNotFoundError uses the message clients of the entity paths rely on
func NewEntityNotFoundError(uri string) error {
	return newError("NOT_FOUND", ErrNotFound, "Could not find entity: uri="+uri)
}

func NewAlreadyExistsError(resourceType, name string) error {
	return newError("ALREADY_EXISTS", ErrAlreadyExists, fmt.Sprintf("%s '%s' already exists", resourceType, name))
}

func NewInvalidInputError(message string) error {
	return newError("INVALID_INPUT", ErrInvalidInput, message)
}

// NewValidationError is an invalid input error listing every violation
func NewValidationError(message string, details []Violation) error {
	e := newError("VALIDATION_FAILED", ErrInvalidInput, message)
	e.Details = details
	return e
}

func NewUnauthorizedError(message string) error {
	return newError("UNAUTHORIZED", ErrUnauthorized, message)
}

// NewUpstreamError wraps a store failure; action completes "could not ..."
func NewUpstreamError(action string, err error) error {
	e := newError("UPSTREAM_ERROR", ErrUpstream, "could not "+action)
	e.Err = fmt.Errorf("%w: %v", ErrUpstream, err)
	return e
}

func IsNotFound(err error) bool      { return errors.Is(err, ErrNotFound) }
func IsAlreadyExists(err error) bool { return errors.Is(err, ErrAlreadyExists) }
func IsInvalidInput(err error) bool  { return errors.Is(err, ErrInvalidInput) }
func IsUnauthorized(err error) bool  { return errors.Is(err, ErrUnauthorized) }
func IsUpstream(err error) bool      { return errors.Is(err, ErrUpstream) }
