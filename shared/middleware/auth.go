package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/postboard/postboard/shared/domain"
	"github.com/postboard/postboard/shared/errors"
	"github.com/postboard/postboard/shared/middleware/metrics"
	"github.com/postboard/postboard/shared/utils"
)

// CurrentUserResolver turns a bearer token into the user it was issued for.
type CurrentUserResolver interface {
	CurrentUser(ctx context.Context, token string) (domain.User, error)
}

// UserHandlerFunc is a handler that runs only for an authenticated user.
type UserHandlerFunc func(w http.ResponseWriter, r *http.Request, user domain.User)

// Auth guards protected handlers. The resolved user is passed to the handler
// as an argument rather than through the request context.
type Auth struct {
	resolver CurrentUserResolver
}

func NewAuth(resolver CurrentUserResolver) *Auth {
	return &Auth{resolver: resolver}
}

var errNoToken = &errors.ErrorWithStatusCode{Message: "Not authenticated", StatusCode: http.StatusUnauthorized}

// NeedAuth runs next only when the request carries a token that resolves to
// an existing user.
func (a *Auth) NeedAuth(next UserHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			writeAuthError(w, errNoToken)
			return
		}
		user, err := a.resolver.CurrentUser(r.Context(), token)
		if err != nil {
			writeAuthError(w, err)
			return
		}
		next(w, r, user)
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeAuthError(w http.ResponseWriter, err error) {
	status := errors.StatusCode(err)
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	metrics.ObserveAuthRejection(status)
	utils.WriteErrorAndStatusCode(w, err)
}
