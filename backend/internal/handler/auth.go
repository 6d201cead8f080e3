package handler

import (
	stderrors "errors"
	"mime"
	"net/http"

	"github.com/postboard/postboard/backend/internal/service"
	"github.com/postboard/postboard/shared/api"
	"github.com/postboard/postboard/shared/domain"
	"github.com/postboard/postboard/shared/errors"
	"github.com/postboard/postboard/shared/middleware/metrics"
	"github.com/postboard/postboard/shared/utils"
)

// Login accepts {"email","password"} as JSON, or "username"/"password" as an
// OAuth2 password-grant form, and answers with a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := decodeLogin(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	token, err := h.auth.Login(r.Context(), domain.Credentials{Email: body.Email, Password: body.Password})
	metrics.ObserveLogin(loginOutcome(err))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.TokenResponse{AccessToken: token.Token, TokenType: token.Type})
}

func decodeLogin(r *http.Request) (api.LoginRequest, error) {
	var body api.LoginRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		if err := r.ParseForm(); err != nil {
			return body, errors.BadRequest("Body is invalid form")
		}
		body.Email = r.PostFormValue("username")
		body.Password = r.PostFormValue("password")
		return body, utils.Validate(&body)
	}
	return body, utils.DecodeValidate(r.Body, &body)
}

func loginOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.LoginSuccess
	case stderrors.Is(err, service.ErrUserNotFound):
		return metrics.LoginUserNotFound
	case stderrors.Is(err, service.ErrInvalidCredentials), stderrors.Is(err, service.ErrLoginFailed):
		return metrics.LoginInvalidCredentials
	default:
		return metrics.LoginError
	}
}
