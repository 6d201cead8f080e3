package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/postboard/postboard/shared/domain"
	"github.com/postboard/postboard/shared/logger"
)

// ErrInvalidToken is returned for every verification failure: bad signature,
// malformed token, expiry or a missing subject are not told apart.
var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserId *domain.UserId `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

type JwtService interface {
	Issue(userId domain.UserId, now time.Time) (string, error)
	Verify(token string, now time.Time) (domain.UserId, error)
	TTL() time.Duration
}

// Jwt signs HS256 access tokens. Key and TTL are fixed at construction.
type Jwt struct {
	secretKey []byte
	ttl       time.Duration
}

func New(secretKey string, ttl time.Duration) *Jwt {
	return &Jwt{secretKey: []byte(secretKey), ttl: ttl}
}

func (j *Jwt) TTL() time.Duration {
	return j.ttl
}

func (j *Jwt) Issue(userId domain.UserId, now time.Time) (string, error) {
	claims := Claims{
		UserId: &userId,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("can't create token: %w", err)
	}
	return tokenString, nil
}

// Verify returns the subject of a token that is correctly signed and whose
// expiry is strictly after now.
func (j *Jwt) Verify(tokenString string, now time.Time) (domain.UserId, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return j.secretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		logger.Log.Debug("token rejected", "error", err)
		return 0, ErrInvalidToken
	}
	if !token.Valid || claims.UserId == nil {
		logger.Log.Debug("token rejected", "error", "missing user_id claim")
		return 0, ErrInvalidToken
	}
	return *claims.UserId, nil
}
