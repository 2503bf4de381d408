package model

import (
	"errors"
	"fmt"
)

type FailureKind string

const (
	FailureProvider  FailureKind = "provider"
	FailureNotFound  FailureKind = "not_found"
	FailureMalformed FailureKind = "malformed_response"
)

// Failure is the soft error the external providers are translated into.
// Raw holds the unparsed provider output for malformed responses.
type Failure struct {
	Kind    FailureKind
	Message string
	Raw     string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func ProviderError(message string, err error) *Failure {
	return &Failure{Kind: FailureProvider, Message: message, Err: err}
}

func NotFound(message string) *Failure {
	return &Failure{Kind: FailureNotFound, Message: message}
}

func Malformed(raw string, err error) *Failure {
	return &Failure{Kind: FailureMalformed, Message: "could not parse provider response", Raw: raw, Err: err}
}

// KindOf returns the kind of the first Failure in the chain of err.
func KindOf(err error) (FailureKind, bool) {
	var f *Failure
	if !errors.As(err, &f) {
		return "", false
	}
	return f.Kind, true
}
