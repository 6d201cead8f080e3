package api

import (
	"time"

	"github.com/postboard/postboard/shared/domain"
)

// Request DTOs

// PostRequest is used for both create and update. Published defaults to true.
type PostRequest struct {
	Title     string `json:"title" validate:"required,max=300"`
	Content   string `json:"content" validate:"required,max=100000"`
	Published *bool  `json:"published"`
}

func (r PostRequest) IsPublished() bool {
	return r.Published == nil || *r.Published
}

// Response DTOs

type PostResponse struct {
	Id        domain.PostId `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Published bool          `json:"published"`
	CreatedAt time.Time     `json:"created_at"`
	UserId    domain.UserId `json:"user_id"`
	User      UserResponse  `json:"user"`
}

func NewPostResponse(p domain.Post) PostResponse {
	return PostResponse{
		Id:        p.Id,
		Title:     p.Title,
		Content:   p.Content,
		Published: p.Published,
		CreatedAt: p.CreatedAt,
		UserId:    p.OwnerId,
		User:      NewUserResponse(p.Owner),
	}
}

func NewPostsResponse(posts []domain.Post) []PostResponse {
	resp := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		resp = append(resp, NewPostResponse(p))
	}
	return resp
}
