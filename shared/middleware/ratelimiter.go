package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/postboard/postboard/shared/api"
	"github.com/postboard/postboard/shared/logger"
	"github.com/postboard/postboard/shared/utils"
)

// maxKeyBody bounds how much of a request body is buffered to read a login name.
const maxKeyBody = 64 << 10

// RateLimit allows requestLimit requests per window for each identity
// produced by getIdentity. A zero or negative limit disables limiting.
func RateLimit(requestLimit int, window time.Duration, getIdentity ...httprate.KeyFunc) func(http.Handler) http.Handler {
	if requestLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(requestLimit, window,
		httprate.WithKeyFuncs(getIdentity...),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.Log.Warn("rate limit exceeded", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
			utils.WriteJSON(w, http.StatusTooManyRequests, api.ErrorResponse{Detail: "Rate limit exceeded, try again later"})
		}),
	)
}

// GetIP keys by client address. RemoteAddr is expected to be rewritten by a
// trusted real-ip middleware when running behind a proxy.
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return ip, nil
}

// GetLoginName keys by the account being logged into: "email" from a JSON
// body or "username" from a form. The body is restored for the handler.
// Requests without a name share one bucket and fail validation later.
func GetLoginName(r *http.Request) (string, error) {
	if r.Body == nil {
		return "", nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxKeyBody))
	r.Body.Close()
	if err != nil {
		r.Body = io.NopCloser(bytes.NewReader(body))
		return "", nil
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		clone := r.Clone(r.Context())
		clone.Body = io.NopCloser(bytes.NewReader(body))
		if err := clone.ParseForm(); err != nil {
			return "", nil
		}
		return clone.PostForm.Get("username"), nil
	}

	var data struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return "", nil
	}
	return data.Email, nil
}
