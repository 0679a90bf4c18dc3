// Package repository declares the storage interfaces consumed by the
// service layer. The sqlite subpackage is the only implementation; tests
// substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/maragia/motalk-server/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository persists user accounts. Email lookups are exact-match:
// callers normalize (lowercase, trim) before storing or querying.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// LinkGoogleID attaches a Google subject ID to an existing account,
	// so a password account can later sign in with Google.
	LinkGoogleID(ctx context.Context, id, googleID string) error
	UpdateImagePath(ctx context.Context, id, path string) error
	List(ctx context.Context, opts ListOptions) ([]model.User, error)
}

// NewsRepository persists feed items.
type NewsRepository interface {
	CreateNews(ctx context.Context, item *model.News) error
	GetNewsByID(ctx context.Context, id string) (*model.News, error)
	ListNews(ctx context.Context, opts ListOptions) ([]model.News, error)
	UpdateNews(ctx context.Context, item *model.News) error
	DeleteNews(ctx context.Context, id string) error
	UpdateNewsImagePath(ctx context.Context, id, path string) error
}
