package api

import (
	"errors"
	"fmt"
)

// ErrAuthenticationRequired covers both the fail-fast case (an endpoint
// needing a token was called without one) and a backend 401/403 on a
// token the client did present.
var ErrAuthenticationRequired = errors.New("authentication required")

// APIError is any non-2xx backend response that is not an auth failure.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

// ConnectivityError means the backend could not be reached at all, as
// opposed to reaching it and getting an error status.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("cannot reach the server (%s): %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }
