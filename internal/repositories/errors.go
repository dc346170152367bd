package repositories

import (
	"errors"
	"fmt"
)

// Kind classifies a repository failure.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindConflict
	KindUnavailable
)

// Error is the RepositoryError used by backends without their own error type.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error       { return e.Err }
func (e *Error) IsNotFound() bool    { return e.Kind == KindNotFound }
func (e *Error) IsConflict() bool    { return e.Kind == KindConflict }
func (e *Error) IsUnavailable() bool { return e.Kind == KindUnavailable }

// NewNotFound reports that id does not exist.
func NewNotFound(op, id string) error {
	return &Error{Op: op, Kind: KindNotFound, Err: fmt.Errorf("%q not found", id)}
}

func NewConflict(op, id string) error {
	return &Error{Op: op, Kind: KindConflict, Err: fmt.Errorf("%q already exists", id)}
}

// NewUnavailable marks err as a transient store failure.
func NewUnavailable(op string, err error) error {
	return &Error{Op: op, Kind: KindUnavailable, Err: err}
}

// IsNotFound reports whether err is a repository not-found failure.
func IsNotFound(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

func IsConflict(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsConflict()
}

// IsUnavailable reports whether err means the store could not be reached and
// the operation may be retried.
func IsUnavailable(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsUnavailable()
}
