package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/maragia/motalk-server/internal/apperror"
	"github.com/maragia/motalk-server/internal/model"
	"github.com/maragia/motalk-server/internal/repository"
)

const (
	maxNewsTitleLen = 200
	maxNewsBodyLen  = 10000
)

// NewsService manages the admin-curated news feed.
type NewsService struct {
	news   repository.NewsRepository
	logger *slog.Logger
}

func NewNewsService(news repository.NewsRepository, logger *slog.Logger) *NewsService {
	return &NewsService{news: news, logger: logger}
}

func validateNews(title, body string) error {
	if strings.TrimSpace(title) == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > maxNewsTitleLen {
		return apperror.ValidationFailed("title", "title is too long")
	}
	if len(body) > maxNewsBodyLen {
		return apperror.ValidationFailed("body", "body is too long")
	}
	return nil
}

// Create publishes a feed item authored by the given admin.
func (s *NewsService) Create(ctx context.Context, title, body, authorID string) (*model.News, error) {
	if err := validateNews(title, body); err != nil {
		return nil, err
	}

	item := &model.News{
		Title:    strings.TrimSpace(title),
		Body:     body,
		AuthorID: authorID,
	}
	if err := s.news.CreateNews(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("news item created", "news_id", item.ID, "author_id", authorID)
	return item, nil
}

// Get loads one feed item.
func (s *NewsService) Get(ctx context.Context, id string) (*model.News, error) {
	return s.news.GetNewsByID(ctx, id)
}

// List returns feed items, newest first.
func (s *NewsService) List(ctx context.Context, opts repository.ListOptions) ([]model.News, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 50
	}
	return s.news.ListNews(ctx, opts)
}

// Update replaces the title and body of an existing item.
func (s *NewsService) Update(ctx context.Context, id, title, body string) (*model.News, error) {
	if err := validateNews(title, body); err != nil {
		return nil, err
	}

	item, err := s.news.GetNewsByID(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Title = strings.TrimSpace(title)
	item.Body = body
	if err := s.news.UpdateNews(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("news item updated", "news_id", item.ID)
	return item, nil
}

// Delete removes a feed item.
func (s *NewsService) Delete(ctx context.Context, id string) error {
	if err := s.news.DeleteNews(ctx, id); err != nil {
		return err
	}
	s.logger.Info("news item deleted", "news_id", id)
	return nil
}

// AttachImage records the stored path of an item's image.
func (s *NewsService) AttachImage(ctx context.Context, id, path string) error {
	return s.news.UpdateNewsImagePath(ctx, id, path)
}
