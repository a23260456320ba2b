package main

import (
	"errors"

	apperrors "github.com/spec-kit/ticket-import/pkg/util/errorutil"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK         = 0
	exitValidation = 2
	exitUsage      = 3
	exitDB         = 4
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return 1
}

// classify attaches an exit code to a service error.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return err
	}
	switch apperrors.ToDomainError(err).Code {
	case apperrors.CodeValidation,
		apperrors.CodeNotFound,
		apperrors.CodeSourceUnreadable,
		apperrors.CodePayloadTooLarge,
		apperrors.CodeUnsupportedFileType:
		return withCode(exitValidation, err)
	case apperrors.CodeUnauthorized, apperrors.CodeForbidden:
		return withCode(exitUsage, err)
	default:
		return withCode(exitDB, err)
	}
}
