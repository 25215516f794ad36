package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/event-planner/internal/apperror"
	"github.com/sakif/event-planner/internal/model"
	"github.com/sakif/event-planner/internal/repository"
)

var _ repository.PostRepository = (*DB)(nil)

// CreatePost inserts a new post. The caller is responsible for the
// participation check; the repository only persists.
func (db *DB) CreatePost(ctx context.Context, post *model.Post) error {
	post.ID = xid.New().String()
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO posts (id, content, event_id, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.Content,
		post.EventID,
		post.UserID,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting post: %w", err)
	}

	return nil
}

// GetPostByID retrieves a post by id. Returns apperror.ErrNotFound if no
// post exists with that id.
func (db *DB) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, content, event_id, user_id, created_at, updated_at
		 FROM posts WHERE id = ?`,
		id,
	).Scan(
		&p.ID,
		&p.Content,
		&p.EventID,
		&p.UserID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}

	return &p, nil
}

// ListEventPosts returns an event's posts, oldest first, with the author's
// username joined in.
func (db *DB) ListEventPosts(ctx context.Context, eventID string) ([]model.Post, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT p.id, p.content, p.event_id, p.user_id, p.created_at, p.updated_at, u.username
		 FROM posts p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.event_id = ?
		 ORDER BY p.created_at`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts of event %s: %w", eventID, err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.Content, &p.EventID, &p.UserID, &p.CreatedAt, &p.UpdatedAt, &p.AuthorName); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating post rows: %w", err)
	}

	return posts, nil
}

// UpdatePost persists content changes to an existing post.
func (db *DB) UpdatePost(ctx context.Context, post *model.Post) error {
	post.UpdatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE posts SET content = ?, updated_at = ? WHERE id = ?`,
		post.Content,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %s: %w", post.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating post %s: %w", post.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("post", post.ID)
	}

	return nil
}

// DeletePost removes a post by id.
func (db *DB) DeletePost(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("post", id)
	}

	return nil
}
