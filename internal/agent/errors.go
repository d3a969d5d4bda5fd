package agent

import "fmt"

type ErrorKind string

const (
	LanguageModelErrorKind ErrorKind = "language_model_error"
	PreconditionErrorKind  ErrorKind = "precondition_error"
)

// Error is a fault that ends a turn. Malformed tool calls and domain
// outcomes never produce one.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewLanguageModelError(err error) *Error {
	return &Error{Kind: LanguageModelErrorKind, Message: "model call failed", Err: err}
}

func NewPreconditionError(msg string, err error) *Error {
	return &Error{Kind: PreconditionErrorKind, Message: msg, Err: err}
}
