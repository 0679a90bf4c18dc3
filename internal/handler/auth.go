package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/rs/xid"

	"github.com/maragia/motalk-server/internal/apperror"
	"github.com/maragia/motalk-server/internal/auth"
	"github.com/maragia/motalk-server/internal/model"
	"github.com/maragia/motalk-server/internal/repository"
	"github.com/maragia/motalk-server/internal/service"
)

// AuthHandler serves signup, login, Google sign-in, and session endpoints.
//
// Two Google entry points exist on purpose: the mobile app verifies an ID
// token it already holds (POST /google-login), while browsers go through
// the redirect-based code flow (GET /auth/google/login → /callback).
type AuthHandler struct {
	auths    *service.AuthService
	verifier *auth.GoogleVerifier
	google   *auth.GoogleProvider
	logger   *slog.Logger
}

func NewAuthHandler(auths *service.AuthService, verifier *auth.GoogleVerifier, google *auth.GoogleProvider, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auths:    auths,
		verifier: verifier,
		google:   google,
		logger:   logger,
	}
}

type signupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// HandleSignup registers a new account.
//
// HTTP: POST /signup
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	user, err := h.auths.Signup(r.Context(), req.FullName, req.Email, req.Password, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "user registered successfully",
		"userId":  user.ID,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin authenticates an email/password pair and returns a session
// token.
//
// HTTP: POST /login
//
// Unknown email and wrong password produce the same 400 response; the
// service collapses both into an invalid-credentials error so the endpoint
// cannot be used to probe which emails are registered.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	result, err := h.auths.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "login successful",
		"token":   result.Token,
		"user":    result.User,
	})
}

type googleLoginRequest struct {
	Token string `json:"token"`
}

// HandleGoogleLogin signs in a user from a Google ID token.
//
// HTTP: POST /google-login
//
// The client obtained the ID token from Google's sign-in SDK. We verify
// the assertion ourselves (signature, audience, issuer, expiry) and issue
// our own session token; the Google token is never stored or reused.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}
	if req.Token == "" {
		writeError(w, apperror.ValidationFailed("token", "token is required"))
		return
	}

	identity, err := h.verifier.Verify(r.Context(), req.Token)
	if err != nil {
		h.logger.Warn("google login: assertion rejected", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	result, err := h.auths.LoginWithGoogle(r.Context(), identity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "login successful",
		"token":   result.Token,
		"user": map[string]string{
			"id":    result.User.ID,
			"email": result.User.Email,
			"role":  result.User.Role,
		},
	})
}

// HandleGoogleWebLogin starts the browser OAuth flow by redirecting to
// Google's consent page.
//
// HTTP: GET /auth/google/login
//
// A random state value goes into a short-lived HttpOnly cookie; the
// callback checks it to tie the response to a flow this server started.
func (h *AuthHandler) HandleGoogleWebLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback completes the browser OAuth flow.
//
// HTTP: GET /auth/google/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("google callback: state check failed")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// State is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("google callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	identity, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("google callback: exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	result, err := h.auths.LoginWithGoogle(r.Context(), identity)
	if err != nil {
		h.logger.Error("google callback: sign-in failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	// Hand the token back through the fragment so it never hits server logs.
	http.Redirect(w, r, "/#token="+url.QueryEscape(result.Token), http.StatusSeeOther)
}

// HandleLogout acknowledges a logout and clears the token cookie for
// browser clients. Tokens are stateless, so the session simply expires
// client-side; a token already issued stays valid until its expiry.
//
// HTTP: POST /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the authenticated user's profile.
//
// HTTP: GET /api/me
// Auth: required
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireAuth, but don't panic if mis-wired.
		writeError(w, apperror.TokenInvalid("no authenticated principal"))
		return
	}

	user, err := h.auths.GetUserByID(r.Context(), principal.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleListUsers returns registered users for the admin dashboard.
//
// HTTP: GET /api/admin/users
// Auth: admin
func (h *AuthHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.auths.ListUsers(r.Context(), listOptionsFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// listOptionsFromQuery reads limit/offset query params, leaving zero
// values for the service defaults when absent or unparseable.
func listOptionsFromQuery(r *http.Request) repository.ListOptions {
	var opts repository.ListOptions
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			opts.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			opts.Offset = n
		}
	}
	return opts
}
