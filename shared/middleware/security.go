package middleware

import (
	"net/http"

	"github.com/postboard/postboard/shared/logger"
	"github.com/unrolled/secure"
)

// SecurityHeaders sets hardening headers for a JSON API. HSTS is only sent
// when the service is served over HTTPS.
func SecurityHeaders(isHTTPS bool) func(http.Handler) http.Handler {
	opts := secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		PermissionsPolicy:     "camera=(), microphone=(), geolocation=(), payment=()",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
	}
	if isHTTPS {
		opts.STSSeconds = 31536000
		opts.STSIncludeSubdomains = true
	}
	s := secure.New(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := s.Process(w, r); err != nil {
				logger.Log.Warn("secure headers blocked request", "error", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
