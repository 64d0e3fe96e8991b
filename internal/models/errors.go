package models

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrAcquisition ErrorType = iota
	ErrSync
	ErrMetadata
	ErrParseMismatch
	ErrInvalidConfig
	ErrFileOp
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrAcquisition:
		return "Acquisition"
	case ErrSync:
		return "Sync"
	case ErrMetadata:
		return "Metadata"
	case ErrParseMismatch:
		return "ParseMismatch"
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrFileOp:
		return "FileOp"
	default:
		return "Unknown"
	}
}

// RepoError represents an error raised while setting up a repository.
// Fatal errors abort the whole setup run; all others are reported to the
// caller, which decides whether to retry, skip or continue.
type RepoError struct {
	Type  ErrorType
	Repo  string
	Fatal bool
	Err   error
}

// Error implements the error interface
func (e *RepoError) Error() string {
	if e.Repo != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Repo, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *RepoError) Unwrap() error {
	return e.Err
}

// NewError wraps err in a non-fatal RepoError.
func NewError(t ErrorType, repo string, err error) *RepoError {
	return &RepoError{Type: t, Repo: repo, Err: err}
}

// IsFatal reports whether err carries a fatal RepoError.
func IsFatal(err error) bool {
	var re *RepoError
	return errors.As(err, &re) && re.Fatal
}

// IsType reports whether err carries a RepoError of type t.
func IsType(err error, t ErrorType) bool {
	var re *RepoError
	return errors.As(err, &re) && re.Type == t
}

// WithRepo fills in the repository of a RepoError that was raised without one
func WithRepo(err error, repo string) error {
	var re *RepoError
	if errors.As(err, &re) && re.Repo == "" {
		re.Repo = repo
	}
	return err
}
