// Package faults defines the failure taxonomy shared by pipeline phases.
//
// Every public operation catches its errors at the phase boundary and reports
// them as a failed phase with one of these kinds; no error or panic crosses
// into the caller unclassified.
package faults

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalidInput    Kind = "invalid_input"
	KindIOFailure       Kind = "io_failure"
	KindTemplateFailure Kind = "template_failure"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrIOFailure       = errors.New("io failure")
	ErrTemplateFailure = errors.New("template failure")
)

// InvalidInput marks err as malformed-input. Returns nil for a nil err.
func InvalidInput(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// IOFailure marks err as a file or directory I/O failure.
func IOFailure(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrIOFailure, err)
}

// TemplateFailure marks err as a rendering/serialization failure.
func TemplateFailure(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTemplateFailure, err)
}

// KindOf classifies an error. Unclassified errors (including recovered
// panics) count as io_failure so that callers always have a concrete kind.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrTemplateFailure):
		return KindTemplateFailure
	default:
		return KindIOFailure
	}
}
