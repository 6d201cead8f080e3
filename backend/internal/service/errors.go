package service

import (
	stderrors "errors"
	"net/http"

	"github.com/postboard/postboard/shared/errors"
)

// Outcomes of the auth flow. Handlers render them through their status codes.
var (
	ErrUserNotFound       = &errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
	ErrInvalidCredentials = &errors.ErrorWithStatusCode{Message: "Invalid credentials", StatusCode: http.StatusForbidden}
	// ErrLoginFailed replaces both of the above when login errors are unified.
	ErrLoginFailed     = &errors.ErrorWithStatusCode{Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}
	ErrUnauthenticated = &errors.ErrorWithStatusCode{Message: "Could not validate credentials", StatusCode: http.StatusUnauthorized}
	ErrForbidden       = &errors.ErrorWithStatusCode{Message: "Not authorized to perform requested action", StatusCode: http.StatusForbidden}

	// ErrUserVanished tags the 404 returned when a valid token names a deleted user.
	ErrUserVanished = stderrors.New("token user no longer exists")
)
