package handler

import (
	"context"
	"net/http"

	"github.com/postboard/postboard/backend/internal/service"
	"github.com/postboard/postboard/shared/api"
	"github.com/postboard/postboard/shared/config"
	"github.com/postboard/postboard/shared/utils"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	auth   service.AuthService
	users  service.UserService
	posts  service.PostService
	health HealthChecker
	cfg    *config.Config
}

func New(auth service.AuthService, users service.UserService, posts service.PostService, health HealthChecker, cfg *config.Config) *Handler {
	return &Handler{
		auth:   auth,
		users:  users,
		posts:  posts,
		health: health,
		cfg:    cfg,
	}
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "postboard API"})
}
