package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/maragia/motalk-server/internal/apperror"
	"github.com/maragia/motalk-server/internal/auth"
	"github.com/maragia/motalk-server/internal/model"
	"github.com/maragia/motalk-server/internal/service"
)

// NewsHandler serves the news feed. Reads require authentication; writes
// are routed behind the admin middleware.
type NewsHandler struct {
	news *service.NewsService
}

func NewNewsHandler(news *service.NewsService) *NewsHandler {
	return &NewsHandler{news: news}
}

type newsRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// HandleList returns feed items, newest first.
//
// HTTP: GET /api/news
// Auth: required
func (h *NewsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.news.List(r.Context(), listOptionsFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []model.News{}
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleGet returns one feed item.
//
// HTTP: GET /api/news/{id}
// Auth: required
func (h *NewsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	item, err := h.news.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// HandleCreate publishes a new feed item authored by the caller.
//
// HTTP: POST /api/news
// Auth: admin
func (h *NewsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.TokenInvalid("no authenticated principal"))
		return
	}

	var req newsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	item, err := h.news.Create(r.Context(), req.Title, req.Body, principal.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// HandleUpdate replaces the title and body of an item.
//
// HTTP: PUT /api/news/{id}
// Auth: admin
func (h *NewsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req newsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	item, err := h.news.Update(r.Context(), chi.URLParam(r, "id"), req.Title, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// HandleDelete removes an item.
//
// HTTP: DELETE /api/news/{id}
// Auth: admin
func (h *NewsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.news.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "news item deleted"})
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %d", n)
	}
	return n, nil
}
