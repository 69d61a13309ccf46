package model

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a fatal migration error by where it originated.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfig
	KindSource
	KindDestination
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "configuration"
	case KindSource:
		return "airtable"
	case KindDestination:
		return "google-sheets"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by the Airtable reader, the Google
// Sheets provisioner/writer and the orchestrator. Every Error aborts the run.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}

	return fmt.Sprintf("%v: %v (%v)", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf returns a new Error of the given kind with a formatted cause.
func Errorf(kind Kind, op string, format string, args ...any) error {
	return &Error{
		Kind: kind,
		Op:   op,
		Err:  fmt.Errorf(format, args...),
	}
}

// Wrap classifies err as kind unless it is already an Error or a context
// cancellation, both of which keep their own classification.
func Wrap(kind Kind, op string, err error) error {
	var e *Error

	switch {
	case err == nil:
		return nil

	case errors.As(err, &e):
		return err

	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindCancelled, Op: op, Err: err}

	default:
		return &Error{Kind: kind, Op: op, Err: err}
	}
}

// KindOf returns the Kind of the first Error in err's chain.
func KindOf(err error) Kind {
	var e *Error

	if errors.As(err, &e) {
		return e.Kind
	}

	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}

	return KindUnknown
}
