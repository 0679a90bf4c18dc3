package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/maragia/motalk-server/internal/apperror"
	"github.com/maragia/motalk-server/internal/model"
	"github.com/maragia/motalk-server/internal/repository"
)

// NewsStore implements repository.NewsRepository on the shared pool.
type NewsStore struct {
	conn *sql.DB
}

var _ repository.NewsRepository = (*NewsStore)(nil)

const newsColumns = `id, title, body, image_path, author_id, created_at, updated_at`

// CreateNews inserts a new feed item, assigning an xid and timestamps.
func (s *NewsStore) CreateNews(ctx context.Context, item *model.News) error {
	now := time.Now()
	item.ID = xid.New().String()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO news (id, title, body, image_path, author_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.Title,
		item.Body,
		item.ImagePath,
		item.AuthorID,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting news item: %w", err)
	}

	return nil
}

// GetNewsByID retrieves a feed item by ID.
// Returns apperror.ErrNotFound if no such item exists.
func (s *NewsStore) GetNewsByID(ctx context.Context, id string) (*model.News, error) {
	var n model.News
	err := s.conn.QueryRowContext(ctx,
		`SELECT `+newsColumns+` FROM news WHERE id = ?`, id,
	).Scan(
		&n.ID,
		&n.Title,
		&n.Body,
		&n.ImagePath,
		&n.AuthorID,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("news", id)
		}
		return nil, fmt.Errorf("sqlite: getting news %s: %w", id, err)
	}
	return &n, nil
}

// ListNews returns feed items, newest first.
func (s *NewsStore) ListNews(ctx context.Context, opts repository.ListOptions) ([]model.News, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+newsColumns+` FROM news
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing news: %w", err)
	}
	defer rows.Close()

	var items []model.News
	for rows.Next() {
		var n model.News
		if err := rows.Scan(
			&n.ID,
			&n.Title,
			&n.Body,
			&n.ImagePath,
			&n.AuthorID,
			&n.CreatedAt,
			&n.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning news row: %w", err)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating news rows: %w", err)
	}

	return items, nil
}

// UpdateNews saves the title, body and image path of an existing item.
func (s *NewsStore) UpdateNews(ctx context.Context, item *model.News) error {
	item.UpdatedAt = time.Now()
	res, err := s.conn.ExecContext(ctx,
		`UPDATE news SET title = ?, body = ?, image_path = ?, updated_at = ? WHERE id = ?`,
		item.Title,
		item.Body,
		item.ImagePath,
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating news %s: %w", item.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("news", item.ID)
	}
	return nil
}

// DeleteNews removes a feed item.
func (s *NewsStore) DeleteNews(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM news WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting news %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("news", id)
	}
	return nil
}

// UpdateNewsImagePath stores the relative path of an attached image.
func (s *NewsStore) UpdateNewsImagePath(ctx context.Context, id, path string) error {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE news SET image_path = ?, updated_at = ? WHERE id = ?`,
		path, time.Now(), id)
	if err != nil {
		return fmt.Errorf("sqlite: updating news image path %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("news", id)
	}
	return nil
}
