package postapi

import (
	"errors"
	"fmt"
)

// operation names used in error messages
const (
	OpLoadPosts = "load posts"
	OpPost      = "post"
)

// StatusError is returned when the API answers with a non-2xx status
type StatusError struct {
	Op         string
	StatusCode int
	Status     string // reason phrase
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Failed to %s: %s", e.Op, e.Status)
}

// TransportError is returned when the request could not be completed
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Failed to %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsStatus reports whether err is a StatusError carrying code
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
