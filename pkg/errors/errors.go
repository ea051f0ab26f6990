package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeFetch           Code = "FETCH_ERROR"
	CodeAPI             Code = "API_ERROR"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeEmptyCart       Code = "EMPTY_CART"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL_ERROR"
)

// FieldErrors maps a form field name to a single human-readable message.
// Local validators and the remote API's structured 422 payload are both
// reduced to this shape so callers render them identically.
type FieldErrors map[string]string

type Metadata struct {
	Retryable   bool
	UserMessage string
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		Retryable:   false,
		UserMessage: "please correct the highlighted fields",
	},
	CodeFetch: {
		Retryable:   true,
		UserMessage: "could not reach the store, please try again",
	},
	CodeAPI: {
		Retryable:   false,
		UserMessage: "the store rejected the request",
	},
	CodeUnauthenticated: {
		Retryable:   false,
		UserMessage: "please sign in to continue",
	},
	CodeEmptyCart: {
		Retryable:   false,
		UserMessage: "your cart is empty",
	},
	CodeConflict: {
		Retryable:   false,
		UserMessage: "another change is still in progress",
	},
	CodeInternal: {
		Retryable:   true,
		UserMessage: "something went wrong",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	fields  FieldErrors
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// Fields returns the per-field messages attached to a validation error,
// or nil when the error carries none.
func (e *Error) Fields() FieldErrors {
	if e == nil {
		return nil
	}
	return e.fields
}

func (e *Error) WithFields(fields FieldErrors) *Error {
	if e == nil {
		return nil
	}
	e.fields = fields
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf extracts the code from any error, defaulting to CodeInternal for
// errors produced outside this package.
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.Code()
	}
	return CodeInternal
}
