package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/maragia/motalk-server/internal/apperror"
	"github.com/maragia/motalk-server/internal/model"
	"github.com/maragia/motalk-server/internal/repository"
)

type fakeNewsRepo struct {
	items  map[string]*model.News
	nextID int
}

func newFakeNewsRepo() *fakeNewsRepo {
	return &fakeNewsRepo{items: make(map[string]*model.News)}
}

func (f *fakeNewsRepo) CreateNews(_ context.Context, item *model.News) error {
	f.nextID++
	item.ID = fmt.Sprintf("news-%d", f.nextID)
	stored := *item
	f.items[item.ID] = &stored
	return nil
}

func (f *fakeNewsRepo) GetNewsByID(_ context.Context, id string) (*model.News, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, apperror.NotFound("news", id)
	}
	result := *item
	return &result, nil
}

func (f *fakeNewsRepo) ListNews(_ context.Context, opts repository.ListOptions) ([]model.News, error) {
	result := make([]model.News, 0, len(f.items))
	for _, item := range f.items {
		result = append(result, *item)
	}
	if opts.Offset >= len(result) {
		return []model.News{}, nil
	}
	result = result[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}
	return result, nil
}

func (f *fakeNewsRepo) UpdateNews(_ context.Context, item *model.News) error {
	if _, ok := f.items[item.ID]; !ok {
		return apperror.NotFound("news", item.ID)
	}
	stored := *item
	f.items[item.ID] = &stored
	return nil
}

func (f *fakeNewsRepo) DeleteNews(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return apperror.NotFound("news", id)
	}
	delete(f.items, id)
	return nil
}

func (f *fakeNewsRepo) UpdateNewsImagePath(_ context.Context, id, path string) error {
	item, ok := f.items[id]
	if !ok {
		return apperror.NotFound("news", id)
	}
	item.ImagePath = path
	return nil
}

func newTestNewsService(t *testing.T) (*NewsService, *fakeNewsRepo) {
	t.Helper()
	repo := newFakeNewsRepo()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewNewsService(repo, logger), repo
}

func TestNewsCreate_Success(t *testing.T) {
	svc, _ := newTestNewsService(t)

	item, err := svc.Create(context.Background(), "  Opening dates  ", "Classes resume Monday.", "admin-1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if item.ID == "" {
		t.Error("expected item to have an ID")
	}
	if item.Title != "Opening dates" {
		t.Errorf("Title = %q, want trimmed", item.Title)
	}
	if item.AuthorID != "admin-1" {
		t.Errorf("AuthorID = %q, want %q", item.AuthorID, "admin-1")
	}
}

func TestNewsCreate_EmptyTitle(t *testing.T) {
	svc, _ := newTestNewsService(t)

	_, err := svc.Create(context.Background(), "   ", "body", "admin-1")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestNewsCreate_TitleTooLong(t *testing.T) {
	svc, _ := newTestNewsService(t)

	_, err := svc.Create(context.Background(), strings.Repeat("a", maxNewsTitleLen+1), "body", "admin-1")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestNewsUpdate_Success(t *testing.T) {
	svc, _ := newTestNewsService(t)

	created, err := svc.Create(context.Background(), "old", "old body", "admin-1")
	if err != nil {
		t.Fatalf("setup Create() error = %v", err)
	}

	updated, err := svc.Update(context.Background(), created.ID, "new", "new body")
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "new" || updated.Body != "new body" {
		t.Errorf("got (%q, %q), want updated fields", updated.Title, updated.Body)
	}
}

func TestNewsUpdate_NotFound(t *testing.T) {
	svc, _ := newTestNewsService(t)

	_, err := svc.Update(context.Background(), "no-such-id", "title", "body")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestNewsDelete(t *testing.T) {
	svc, repo := newTestNewsService(t)

	created, err := svc.Create(context.Background(), "doomed", "", "admin-1")
	if err != nil {
		t.Fatalf("setup Create() error = %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(repo.items) != 0 {
		t.Errorf("items remaining = %d, want 0", len(repo.items))
	}
}

func TestNewsAttachImage(t *testing.T) {
	svc, repo := newTestNewsService(t)

	created, err := svc.Create(context.Background(), "with image", "", "admin-1")
	if err != nil {
		t.Fatalf("setup Create() error = %v", err)
	}

	if err := svc.AttachImage(context.Background(), created.ID, "pic.jpg"); err != nil {
		t.Fatalf("AttachImage() error = %v", err)
	}
	if repo.items[created.ID].ImagePath != "pic.jpg" {
		t.Errorf("ImagePath = %q, want %q", repo.items[created.ID].ImagePath, "pic.jpg")
	}
}
