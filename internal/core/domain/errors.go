package domain

import (
	"errors"
	"fmt"
)

var (
	ErrLetterNotFound    = errors.New("letter not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrConflict          = errors.New("concurrent transition conflict")
	ErrAdapterFailure    = errors.New("adapter failure")
	ErrTemporary         = errors.New("temporary failure")
	ErrConfigMissing     = errors.New("required configuration missing")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
