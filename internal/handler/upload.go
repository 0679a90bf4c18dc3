package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/xid"

	"github.com/maragia/motalk-server/internal/apperror"
	"github.com/maragia/motalk-server/internal/auth"
	"github.com/maragia/motalk-server/internal/service"
)

// maxUploadBytes caps image uploads at 5 MiB.
const maxUploadBytes = 5 << 20

// UploadHandler stores profile and news images on disk and records their
// paths through the services. Files are renamed to xids so client-supplied
// names never touch the filesystem.
type UploadHandler struct {
	auths      *service.AuthService
	news       *service.NewsService
	uploadsDir string
	logger     *slog.Logger
}

func NewUploadHandler(auths *service.AuthService, news *service.NewsService, uploadsDir string, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		auths:      auths,
		news:       news,
		uploadsDir: uploadsDir,
		logger:     logger,
	}
}

// HandleUploadProfileImage saves the caller's profile image.
//
// HTTP: POST /api/me/image  (multipart form, field "image")
// Auth: required
func (h *UploadHandler) HandleUploadProfileImage(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.TokenInvalid("no authenticated principal"))
		return
	}

	name, err := h.saveUpload(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.auths.SetUserImage(r.Context(), principal.UserID, name); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("profile image uploaded", "user_id", principal.UserID, "file", name)
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "image uploaded",
		"imagePath": name,
	})
}

// HandleGetProfileImage serves the caller's profile image.
//
// HTTP: GET /api/me/image
// Auth: required
func (h *UploadHandler) HandleGetProfileImage(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.TokenInvalid("no authenticated principal"))
		return
	}

	user, err := h.auths.GetUserByID(r.Context(), principal.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if user.ImagePath == "" {
		writeError(w, apperror.NotFound("image", principal.UserID))
		return
	}

	http.ServeFile(w, r, filepath.Join(h.uploadsDir, filepath.Base(user.ImagePath)))
}

// HandleAttachNewsImage saves an image for a feed item.
//
// HTTP: POST /api/news/{id}/image  (multipart form, field "image")
// Auth: admin
func (h *UploadHandler) HandleAttachNewsImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Make sure the item exists before writing anything to disk.
	if _, err := h.news.Get(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	name, err := h.saveUpload(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.news.AttachImage(r.Context(), id, name); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("news image uploaded", "news_id", id, "file", name)
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "image uploaded",
		"imagePath": name,
	})
}

// saveUpload reads the "image" form field and writes it to the uploads
// directory under a fresh xid-based name, returning that name.
func (h *UploadHandler) saveUpload(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("image")
	if err != nil {
		return "", apperror.ValidationFailed("image", "an image file is required")
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		return "", apperror.ValidationFailed("image", "unsupported image type")
	}

	name := xid.New().String() + ext
	dst, err := os.Create(filepath.Join(h.uploadsDir, name))
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dst.Name())
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", apperror.ValidationFailed("image", "image is too large")
		}
		return "", fmt.Errorf("writing upload file: %w", err)
	}

	return name, nil
}
