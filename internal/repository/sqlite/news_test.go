package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/maragia/motalk-server/internal/apperror"
	"github.com/maragia/motalk-server/internal/model"
	"github.com/maragia/motalk-server/internal/repository"
)

// newTestNewsStore returns a news store plus an admin user to author items,
// since news.author_id references users.id.
func newTestNewsStore(t *testing.T) (*NewsStore, *model.User) {
	t.Helper()
	db := newTestDB(t)
	admin := createTestUser(t, db.Users(), "admin@example.com", model.RoleAdmin)
	return db.News(), admin
}

func createTestNews(t *testing.T, news *NewsStore, authorID, title string) *model.News {
	t.Helper()
	item := &model.News{Title: title, Body: "body text", AuthorID: authorID}
	if err := news.CreateNews(context.Background(), item); err != nil {
		t.Fatalf("failed to create test news item: %v", err)
	}
	return item
}

func TestNewsCreate(t *testing.T) {
	news, admin := newTestNewsStore(t)

	item := &model.News{
		Title:    "Semester opening dates",
		Body:     "Classes resume on Monday.",
		AuthorID: admin.ID,
	}
	if err := news.CreateNews(context.Background(), item); err != nil {
		t.Fatalf("CreateNews() error = %v", err)
	}

	if item.ID == "" {
		t.Error("CreateNews() did not set item.ID")
	}
	if item.CreatedAt.IsZero() {
		t.Error("CreateNews() did not set item.CreatedAt")
	}
}

func TestNewsGetByID(t *testing.T) {
	news, admin := newTestNewsStore(t)

	created := createTestNews(t, news, admin.ID, "Exam timetable")

	found, err := news.GetNewsByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetNewsByID() error = %v", err)
	}
	if found.Title != "Exam timetable" {
		t.Errorf("Title = %q, want %q", found.Title, "Exam timetable")
	}
	if found.AuthorID != admin.ID {
		t.Errorf("AuthorID = %q, want %q", found.AuthorID, admin.ID)
	}
}

func TestNewsGetByID_NotFound(t *testing.T) {
	news, _ := newTestNewsStore(t)

	_, err := news.GetNewsByID(context.Background(), "no-such-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestNewsList(t *testing.T) {
	news, admin := newTestNewsStore(t)

	createTestNews(t, news, admin.ID, "first")
	createTestNews(t, news, admin.ID, "second")

	items, err := news.ListNews(context.Background(), repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("ListNews() error = %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len(items) = %d, want 2", len(items))
	}
}

func TestNewsUpdate(t *testing.T) {
	news, admin := newTestNewsStore(t)

	created := createTestNews(t, news, admin.ID, "old title")
	created.Title = "new title"
	created.Body = "new body"

	if err := news.UpdateNews(context.Background(), created); err != nil {
		t.Fatalf("UpdateNews() error = %v", err)
	}

	found, err := news.GetNewsByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetNewsByID() error = %v", err)
	}
	if found.Title != "new title" || found.Body != "new body" {
		t.Errorf("got (%q, %q), want updated title and body", found.Title, found.Body)
	}
}

func TestNewsUpdate_NotFound(t *testing.T) {
	news, _ := newTestNewsStore(t)

	err := news.UpdateNews(context.Background(), &model.News{ID: "no-such-id", Title: "x"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestNewsDelete(t *testing.T) {
	news, admin := newTestNewsStore(t)

	created := createTestNews(t, news, admin.ID, "doomed")

	if err := news.DeleteNews(context.Background(), created.ID); err != nil {
		t.Fatalf("DeleteNews() error = %v", err)
	}

	if _, err := news.GetNewsByID(context.Background(), created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("after delete, error = %v, want ErrNotFound", err)
	}
}

func TestNewsDelete_NotFound(t *testing.T) {
	news, _ := newTestNewsStore(t)

	if err := news.DeleteNews(context.Background(), "no-such-id"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestNewsUpdateImagePath(t *testing.T) {
	news, admin := newTestNewsStore(t)

	created := createTestNews(t, news, admin.ID, "with image")

	if err := news.UpdateNewsImagePath(context.Background(), created.ID, "img001.jpg"); err != nil {
		t.Fatalf("UpdateNewsImagePath() error = %v", err)
	}

	found, err := news.GetNewsByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetNewsByID() error = %v", err)
	}
	if found.ImagePath != "img001.jpg" {
		t.Errorf("ImagePath = %q, want %q", found.ImagePath, "img001.jpg")
	}
}
