package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	// ErrValidation is the caller's fault and is never retried.
	ErrValidation = fmt.Errorf("validation error")
	// ErrTransientPrerequisite means a message arrived before the entity it depends on.
	ErrTransientPrerequisite = fmt.Errorf("prerequisite not yet seen")
	ErrTransport             = fmt.Errorf("transport error")
	ErrProjection            = fmt.Errorf("projection error")

	ErrParsing           = fmt.Errorf("unable to parse marketplace message")
	ErrUnknownAction     = fmt.Errorf("unknown action type")
	ErrInvalidTransition = fmt.Errorf("invalid status transition")
	ErrInvalidPayload    = fmt.Errorf("invalid payload")
	ErrNotFound          = fmt.Errorf("not found")
	ErrAlreadyExists     = fmt.Errorf("already exists")
)

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Transient(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTransientPrerequisite, fmt.Sprintf(format, args...))
}

// Projection wraps a persistence failure met while projecting a message.
func Projection(err error) error {
	if err == nil {
		return nil
	}
	if IsTransient(err) || IsValidation(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrProjection, err)
}

func IsTransient(err error) bool {
	return stderrors.Is(err, ErrTransientPrerequisite)
}

func IsValidation(err error) bool {
	return stderrors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}
