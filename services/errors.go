package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type ErrorKind int

const (
	ServerError ErrorKind = iota
	InvalidInput
	Unauthorized
	Forbidden
	NotFound
	Conflict
	InsufficientStock
	AlreadyCancelled
)

var kindNames = map[ErrorKind]string{
	ServerError:       "ServerError",
	InvalidInput:      "InvalidInput",
	Unauthorized:      "Unauthorized",
	Forbidden:         "Forbidden",
	NotFound:          "NotFound",
	Conflict:          "Conflict",
	InsufficientStock: "InsufficientStock",
	AlreadyCancelled:  "AlreadyCancelled",
}

func (k ErrorKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a failure the HTTP layer may show to the client verbatim.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns ServerError for anything that is not a *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ServerError
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
