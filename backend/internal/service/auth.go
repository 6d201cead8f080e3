package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/postboard/postboard/shared/domain"
	"github.com/postboard/postboard/shared/errors"
	"github.com/postboard/postboard/shared/logger"
)

type AuthService interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.AccessToken, error)
	CurrentUser(ctx context.Context, token string) (domain.User, error)
}

type Auth struct {
	storage     AuthStorage
	hasher      PasswordHasher
	tokens      TokenService
	unifyErrors bool
	now         func() time.Time
}

type AuthStorage interface {
	UserByEmail(ctx context.Context, email domain.Email) (domain.User, error)
	UserById(ctx context.Context, id domain.UserId) (domain.User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type TokenService interface {
	Issue(userId domain.UserId, now time.Time) (string, error)
	Verify(token string, now time.Time) (domain.UserId, error)
}

// NewAuth builds the login flow and access guard. With unifyErrors set, an
// unknown email and a wrong password both yield ErrLoginFailed.
func NewAuth(storage AuthStorage, hasher PasswordHasher, tokens TokenService, unifyErrors bool) *Auth {
	return &Auth{
		storage:     storage,
		hasher:      hasher,
		tokens:      tokens,
		unifyErrors: unifyErrors,
		now:         time.Now,
	}
}

// Login looks the user up by exact email, checks the password and issues a
// bearer token. Nothing is persisted.
func (a *Auth) Login(ctx context.Context, creds domain.Credentials) (domain.AccessToken, error) {
	user, err := a.storage.UserByEmail(ctx, creds.Email)
	if err != nil {
		if errors.IsNotFound(err) {
			logger.Log.Debug("login for unknown email")
			return domain.AccessToken{}, a.loginError(ErrUserNotFound)
		}
		return domain.AccessToken{}, err
	}

	if !a.hasher.Verify(creds.Password, user.PassHash) {
		logger.Log.Debug("login with wrong password", "user_id", user.Id)
		return domain.AccessToken{}, a.loginError(ErrInvalidCredentials)
	}

	token, err := a.tokens.Issue(user.Id, a.now())
	if err != nil {
		logger.Log.Error("failed to issue token", "user_id", user.Id, "error", err)
		return domain.AccessToken{}, err
	}
	return domain.AccessToken{Token: token, Type: domain.TokenTypeBearer}, nil
}

func (a *Auth) loginError(err error) error {
	if a.unifyErrors {
		return ErrLoginFailed
	}
	return err
}

// CurrentUser resolves the user behind a bearer token. Any token failure is
// ErrUnauthenticated; a token whose user was deleted is a 404 tagged with
// ErrUserVanished.
func (a *Auth) CurrentUser(ctx context.Context, token string) (domain.User, error) {
	userId, err := a.tokens.Verify(token, a.now())
	if err != nil {
		return domain.User{}, ErrUnauthenticated
	}

	user, err := a.storage.UserById(ctx, userId)
	if err != nil {
		if errors.IsNotFound(err) {
			logger.Log.Warn("token for deleted user", "user_id", userId)
			return domain.User{}, &errors.ErrorWithStatusCode{
				Message:    fmt.Sprintf("User with id %d not found", userId),
				StatusCode: http.StatusNotFound,
				Err:        ErrUserVanished,
			}
		}
		return domain.User{}, err
	}
	return user, nil
}
