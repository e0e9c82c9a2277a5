package pkg

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies router failures
type ErrorKind string

const (
	KindConnection         ErrorKind = "ConnectionError"
	KindClassification     ErrorKind = "ClassificationError"
	KindGeneration         ErrorKind = "GenerationError"
	KindParse              ErrorKind = "ParseError"
	KindUnsupportedAlgo    ErrorKind = "UnsupportedAlgorithm"
	KindParameter          ErrorKind = "ParameterError"
	KindConversion         ErrorKind = "ConversionError"
	KindAlgorithmExecution ErrorKind = "AlgorithmExecutionError"
	KindQuery              ErrorKind = "QueryError"
	KindVisualization      ErrorKind = "VisualizationError"
	KindInvalidCategory    ErrorKind = "InvalidCategory"
	KindGraphUnavailable   ErrorKind = "GraphUnavailable"
	KindTimeout            ErrorKind = "TimeoutError"
)

// Sentinels for errors.Is; matching is by kind only
var (
	ErrConnection         = &Error{Kind: KindConnection}
	ErrClassification     = &Error{Kind: KindClassification}
	ErrGeneration         = &Error{Kind: KindGeneration}
	ErrParse              = &Error{Kind: KindParse}
	ErrUnsupportedAlgo    = &Error{Kind: KindUnsupportedAlgo}
	ErrParameter          = &Error{Kind: KindParameter}
	ErrConversion         = &Error{Kind: KindConversion}
	ErrAlgorithmExecution = &Error{Kind: KindAlgorithmExecution}
	ErrQuery              = &Error{Kind: KindQuery}
	ErrVisualization      = &Error{Kind: KindVisualization}
	ErrInvalidCategory    = &Error{Kind: KindInvalidCategory}
	ErrGraphUnavailable   = &Error{Kind: KindGraphUnavailable}
	ErrTimeout            = &Error{Kind: KindTimeout}
)

// Error is a classified router error
type Error struct {
	Kind   ErrorKind `json:"kind"`
	Detail string    `json:"detail"`
	Err    error     `json:"-"`
}

// NewError creates an error of the given kind
func NewError(kind ErrorKind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Errorf creates an error of the given kind with a formatted detail
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind. A context deadline anywhere in the chain
// is reported as TimeoutError regardless of kind.
func Wrap(kind ErrorKind, err error, detail string) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	if detail == "" && err != nil {
		detail = err.Error()
	} else if err != nil {
		detail = detail + ": " + err.Error()
	}
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// AsError returns err as *Error, classifying unknown errors under fallback
func AsError(err error, fallback ErrorKind) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(fallback, err, "")
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of err, or "" when err is not a router error
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
