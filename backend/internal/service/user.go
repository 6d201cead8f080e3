package service

import (
	"context"
	stderrors "errors"

	"github.com/postboard/postboard/shared/crypto"
	"github.com/postboard/postboard/shared/domain"
	"github.com/postboard/postboard/shared/errors"
	"github.com/postboard/postboard/shared/logger"
)

type UserService interface {
	Create(ctx context.Context, creds domain.Credentials) (domain.User, error)
	Get(ctx context.Context, id domain.UserId) (domain.User, error)
}

type User struct {
	storage UserStorage
	hasher  PasswordHasher
}

type UserStorage interface {
	SaveUser(ctx context.Context, email domain.Email, passHash string) (domain.User, error)
	UserById(ctx context.Context, id domain.UserId) (domain.User, error)
}

func NewUser(storage UserStorage, hasher PasswordHasher) *User {
	return &User{storage: storage, hasher: hasher}
}

// Create registers a user. Only the password hash is stored.
func (u *User) Create(ctx context.Context, creds domain.Credentials) (domain.User, error) {
	passHash, err := u.hasher.Hash(creds.Password)
	if stderrors.Is(err, crypto.ErrPasswordTooLong) {
		return domain.User{}, errors.BadRequest("password must be at most 72 bytes")
	}
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return domain.User{}, err
	}
	user, err := u.storage.SaveUser(ctx, creds.Email, passHash)
	if err != nil {
		return domain.User{}, err
	}
	logger.Log.Info("user registered", "user_id", user.Id)
	return user, nil
}

func (u *User) Get(ctx context.Context, id domain.UserId) (domain.User, error) {
	return u.storage.UserById(ctx, id)
}
