package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/postboard/postboard/shared/domain"
	internal_errors "github.com/postboard/postboard/shared/errors"
)

// postColumns selects a post joined with its owner; see scanPost.
const postColumns = `p.id, p.title, p.content, p.published, p.created_at, p.user_id,
	u.id, u.email, u.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (domain.Post, error) {
	var p domain.Post
	err := row.Scan(&p.Id, &p.Title, &p.Content, &p.Published, &p.CreatedAt, &p.OwnerId,
		&p.Owner.Id, &p.Owner.Email, &p.Owner.CreatedAt)
	return p, err
}

// =========================================================================
// Public Methods (satisfy the service.PostStorage interface)
// =========================================================================

func (s *Storage) SavePost(ctx context.Context, data domain.PostCreationData) (domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var post domain.Post
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		id, err := s.savePost(ctx, tx, data)
		if err != nil {
			return err
		}
		post, err = s.post(ctx, tx, id)
		return err
	})
	return post, err
}

func (s *Storage) Post(ctx context.Context, id domain.PostId) (domain.Post, error) {
	return s.post(ctx, s.db, id)
}

// Posts lists published posts plus the viewer's own drafts, newest first.
func (s *Storage) Posts(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error) {
	query := `SELECT ` + postColumns + `
		FROM posts p JOIN users u ON u.id = p.user_id
		WHERE (p.published OR p.user_id = $1)
		  AND ($2 = '' OR p.title ILIKE '%' || $2 || '%' ESCAPE '\')
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $3 OFFSET $4`

	rows, err := s.db.QueryContext(ctx, query, filter.ViewerId, escapeLike(filter.Search), filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate post rows: %w", err)
	}
	return posts, nil
}

func (s *Storage) UpdatePost(ctx context.Context, data domain.PostUpdateData) (domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var post domain.Post
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.updatePost(ctx, tx, data); err != nil {
			return err
		}
		var err error
		post, err = s.post(ctx, tx, data.Id)
		return err
	})
	return post, err
}

func (s *Storage) DeletePost(ctx context.Context, id domain.PostId) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.deletePost(ctx, tx, id)
	})
}

// =========================================================================
// Internal Methods
// =========================================================================

func (s *Storage) savePost(ctx context.Context, q Querier, data domain.PostCreationData) (domain.PostId, error) {
	var id domain.PostId
	err := q.QueryRowContext(ctx,
		"INSERT INTO posts(title, content, published, user_id) VALUES($1, $2, $3, $4) RETURNING id",
		data.Title, data.Content, data.Published, data.OwnerId).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert post: %w", err)
	}
	return id, nil
}

func (s *Storage) post(ctx context.Context, q Querier, id domain.PostId) (domain.Post, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts p JOIN users u ON u.id = p.user_id WHERE p.id = $1`, id)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Post{}, internal_errors.NotFound("post with id %d not found", id)
		}
		return domain.Post{}, fmt.Errorf("failed to query post: %w", err)
	}
	return p, nil
}

func (s *Storage) updatePost(ctx context.Context, q Querier, data domain.PostUpdateData) error {
	result, err := q.ExecContext(ctx,
		"UPDATE posts SET title = $1, content = $2, published = $3 WHERE id = $4",
		data.Title, data.Content, data.Published, data.Id)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for post update: %w", err)
	}
	if rowsAffected == 0 {
		return internal_errors.NotFound("post with id %d not found", data.Id)
	}
	return nil
}

func (s *Storage) deletePost(ctx context.Context, q Querier, id domain.PostId) error {
	result, err := q.ExecContext(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	rowsDeleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for post deletion: %w", err)
	}
	if rowsDeleted == 0 {
		return internal_errors.NotFound("post with id %d not found", id)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
