package api

import (
	"time"

	"github.com/postboard/postboard/shared/domain"
)

// Request DTOs

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Response DTOs

type UserResponse struct {
	Id        domain.UserId `json:"id"`
	Email     domain.Email  `json:"email"`
	CreatedAt time.Time     `json:"created_at"`
}

func NewUserResponse(u domain.User) UserResponse {
	return UserResponse{Id: u.Id, Email: u.Email, CreatedAt: u.CreatedAt}
}
