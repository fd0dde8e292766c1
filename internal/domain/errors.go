package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// UnauthorizedError is returned when an operation needs a resolved user identity.
type UnauthorizedError struct {
	Reason string
	Err    error
}

func (e UnauthorizedError) Error() string {
	if e.Reason != "" {
		return "unauthorized: " + e.Reason
	}
	return "unauthorized"
}

func (e UnauthorizedError) Unwrap() error { return e.Err }

// InternalError wraps store failures. Msg is safe for the client, Err carries the cause.
type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

// Details returns the underlying cause message, if any.
func (e InternalError) Details() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// UpstreamError marks a failure of the external model provider.
type UpstreamError struct {
	Provider string
	Status   int
	Err      error
}

func (e UpstreamError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s upstream status %d: %v", e.Provider, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s upstream status %d", e.Provider, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s upstream: %v", e.Provider, e.Err)
	default:
		return e.Provider + " upstream failure"
	}
}

func (e UpstreamError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

func IsUpstream(err error) bool {
	var target UpstreamError
	return errors.As(err, &target)
}
