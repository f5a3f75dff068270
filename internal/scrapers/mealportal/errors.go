package mealportal

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingToken means the login page no longer carries the csrf token field, the
	// portal most likely changed the shape of its login page.
	ErrMissingToken = errors.New("no csrf token found on login page")
	// ErrAuthenticationFailed means the portal rendered the login form again after the
	// credentials were submitted.
	ErrAuthenticationFailed = errors.New("login failed, login form was rendered again")
)

// TransportError is returned when a request to the portal fails or does not come back
// with status 200.
type TransportError struct {
	Method string
	Url    string
	// StatusCode is 0 if no response was received.
	StatusCode int
	// Err is the underlying network error, if any.
	Err error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s", e.Method, e.Url, e.Err.Error())
	}
	return fmt.Sprintf("%s %s failed: status %d", e.Method, e.Url, e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
