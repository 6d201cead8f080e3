package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/postboard/postboard/shared/errors"
)

// parseIdParam reads a positive integer path parameter.
func parseIdParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.BadRequest("invalid %s: must be a positive integer", name)
	}
	return id, nil
}

// parseIntQuery returns def when the query parameter is absent.
func parseIntQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return 0, errors.BadRequest("invalid %s: must be a non-negative integer", name)
	}
	return val, nil
}
