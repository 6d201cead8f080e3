package service

import (
	"context"

	"github.com/postboard/postboard/backend/internal/service/utils"
	"github.com/postboard/postboard/shared/config"
	"github.com/postboard/postboard/shared/domain"
	"github.com/postboard/postboard/shared/errors"
	"github.com/postboard/postboard/shared/logger"
)

type PostService interface {
	Create(ctx context.Context, user domain.User, data domain.PostCreationData) (domain.Post, error)
	Get(ctx context.Context, user domain.User, id domain.PostId) (domain.Post, error)
	List(ctx context.Context, user domain.User, filter domain.PostFilter) ([]domain.Post, error)
	Update(ctx context.Context, user domain.User, data domain.PostUpdateData) (domain.Post, error)
	Delete(ctx context.Context, user domain.User, id domain.PostId) error
}

type Post struct {
	storage PostStorage
	cfg     *config.Public
}

type PostStorage interface {
	SavePost(ctx context.Context, data domain.PostCreationData) (domain.Post, error)
	Post(ctx context.Context, id domain.PostId) (domain.Post, error)
	Posts(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error)
	UpdatePost(ctx context.Context, data domain.PostUpdateData) (domain.Post, error)
	DeletePost(ctx context.Context, id domain.PostId) error
}

func NewPost(storage PostStorage, cfg *config.Public) *Post {
	return &Post{storage: storage, cfg: cfg}
}

// Create stores a post owned by user, whatever owner the caller asked for.
func (p *Post) Create(ctx context.Context, user domain.User, data domain.PostCreationData) (domain.Post, error) {
	title, content, err := sanitize(data.Title, data.Content)
	if err != nil {
		return domain.Post{}, err
	}
	data.Title, data.Content = title, content
	data.OwnerId = user.Id

	post, err := p.storage.SavePost(ctx, data)
	if err != nil {
		return domain.Post{}, err
	}
	logger.Log.Debug("post created", "post_id", post.Id, "user_id", user.Id)
	return post, nil
}

// Get returns a published post to anyone and a draft only to its owner.
func (p *Post) Get(ctx context.Context, user domain.User, id domain.PostId) (domain.Post, error) {
	post, err := p.storage.Post(ctx, id)
	if err != nil {
		return domain.Post{}, err
	}
	if !post.Published {
		if err := AuthorizeOwnerAction(post.OwnerId, user.Id); err != nil {
			return domain.Post{}, err
		}
	}
	return post, nil
}

func (p *Post) List(ctx context.Context, user domain.User, filter domain.PostFilter) ([]domain.Post, error) {
	filter.ViewerId = user.Id
	if filter.Limit <= 0 {
		filter.Limit = p.cfg.PostsPageSize
	}
	filter.Limit = min(filter.Limit, p.cfg.MaxPostsPageSize)
	filter.Offset = max(filter.Offset, 0)
	return p.storage.Posts(ctx, filter)
}

// Update and Delete check existence, then ownership, then mutate. The order
// decides which error a caller sees.
func (p *Post) Update(ctx context.Context, user domain.User, data domain.PostUpdateData) (domain.Post, error) {
	if err := p.authorize(ctx, user, data.Id); err != nil {
		return domain.Post{}, err
	}
	title, content, err := sanitize(data.Title, data.Content)
	if err != nil {
		return domain.Post{}, err
	}
	data.Title, data.Content = title, content
	return p.storage.UpdatePost(ctx, data)
}

func (p *Post) Delete(ctx context.Context, user domain.User, id domain.PostId) error {
	if err := p.authorize(ctx, user, id); err != nil {
		return err
	}
	if err := p.storage.DeletePost(ctx, id); err != nil {
		return err
	}
	logger.Log.Debug("post deleted", "post_id", id, "user_id", user.Id)
	return nil
}

func (p *Post) authorize(ctx context.Context, user domain.User, id domain.PostId) error {
	post, err := p.storage.Post(ctx, id)
	if err != nil {
		return err
	}
	if err := AuthorizeOwnerAction(post.OwnerId, user.Id); err != nil {
		logger.Log.Debug("ownership check failed", "post_id", id, "owner_id", post.OwnerId, "user_id", user.Id)
		return err
	}
	return nil
}

func sanitize(title domain.PostTitle, content domain.PostContent) (domain.PostTitle, domain.PostContent, error) {
	title = utils.SanitizeTitle(title)
	if title == "" {
		return "", "", errors.BadRequest("title is empty after removing markup")
	}
	content = utils.SanitizeContent(content)
	if content == "" {
		return "", "", errors.BadRequest("content is empty after removing markup")
	}
	return title, content, nil
}
