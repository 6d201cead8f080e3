package setup

import (
	"context"

	"github.com/postboard/postboard/backend/internal/handler"
	"github.com/postboard/postboard/backend/internal/service"
	"github.com/postboard/postboard/backend/internal/storage/pg"
	"github.com/postboard/postboard/shared/config"
	"github.com/postboard/postboard/shared/crypto"
	"github.com/postboard/postboard/shared/jwt"
	mw "github.com/postboard/postboard/shared/middleware"
)

// Storage is everything the services and probes need from persistence.
type Storage interface {
	service.AuthStorage
	service.UserStorage
	service.PostStorage
	handler.HealthChecker
}

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config         *config.Config
	Handler        *handler.Handler
	AuthMiddleware *mw.Auth
	Jwt            jwt.JwtService
}

// SetupDependencies connects to PostgreSQL and wires the services on top of it.
// The returned storage must be closed by the caller.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, *pg.Storage, error) {
	storage, err := pg.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return Wire(cfg, storage), storage, nil
}

// Wire builds services, handler and auth middleware over any storage.
func Wire(cfg *config.Config, storage Storage) *Dependencies {
	hasher := crypto.NewPasswordHasher(cfg.Public.BcryptCost)
	tokens := jwt.New(cfg.JwtKey(), cfg.JwtTTL())

	auth := service.NewAuth(storage, hasher, tokens, cfg.Public.UnifyLoginErrors)
	users := service.NewUser(storage, hasher)
	posts := service.NewPost(storage, &cfg.Public)

	return &Dependencies{
		Config:         cfg,
		Handler:        handler.New(auth, users, posts, storage, cfg),
		AuthMiddleware: mw.NewAuth(auth),
		Jwt:            tokens,
	}
}
