// Package service holds the business logic between the HTTP handlers and
// the repositories. Services validate input, normalize it, enforce the
// authentication rules, and return apperror values the handler layer can
// translate to HTTP responses.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/maragia/motalk-server/internal/apperror"
	"github.com/maragia/motalk-server/internal/auth"
	"github.com/maragia/motalk-server/internal/model"
	"github.com/maragia/motalk-server/internal/repository"
)

// AuthResult bundles the authenticated user with a fresh session token.
type AuthResult struct {
	User  *model.User
	Token string
}

// AuthService implements signup, login, and Google sign-in.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenService, passwords *auth.PasswordService, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// normalizeEmail lowercases and trims an email so lookups are
// case-insensitive. "A@B.com" and "a@b.com" are the same account.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup registers a new account with a bcrypt-hashed password.
//
// The email is normalized before the duplicate check and the insert. An
// empty role defaults to "user"; an unknown role is rejected rather than
// silently downgraded. Returns the created user without issuing a token —
// the client logs in separately.
func (s *AuthService) Signup(ctx context.Context, fullName, email, password, role string) (*model.User, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, apperror.ValidationFailed("fullName", "full name is required")
	}

	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "a valid email is required")
	}

	if len(password) < 6 {
		return nil, apperror.ValidationFailed("password", "password must be at least 6 characters")
	}

	if role == "" {
		role = model.RoleUser
	}
	if !model.ValidRole(role) {
		return nil, apperror.ValidationFailed("role", "role must be user or admin")
	}

	// Pre-check for a friendlier message; the UNIQUE index on email still
	// backstops the race between this check and the insert.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperror.ValidationFailed("email", "an account with this email already exists")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.ValidationFailed("email", "an account with this email already exists")
		}
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Login verifies an email/password pair and issues a session token.
//
// Unknown email and wrong password both come back as authentication
// failures; handlers must not tell the caller which one happened.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.InvalidCredentials()
		}
		return nil, err
	}

	// Google-only accounts have no password hash; a password login against
	// one must fail the same way as a wrong password.
	if user.PasswordHash == "" {
		return nil, apperror.InvalidCredentials()
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID, "role", user.Role)
	return &AuthResult{User: user, Token: token}, nil
}

// LoginWithGoogle signs in a user from a verified Google identity.
//
// If no account exists for the identity's email, one is provisioned with
// the "user" role and no password. If an account exists but has not been
// linked to Google yet, the subject ID is recorded on it. Either way the
// caller gets our own session token; the Google assertion is never reused
// as a session credential.
func (s *AuthService) LoginWithGoogle(ctx context.Context, identity *auth.GoogleIdentity) (*AuthResult, error) {
	email := normalizeEmail(identity.Email)
	if email == "" {
		return nil, apperror.InvalidAssertion("identity has no email")
	}

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if user.GoogleID == "" {
			if err := s.users.LinkGoogleID(ctx, user.ID, identity.Subject); err != nil {
				return nil, err
			}
			user.GoogleID = identity.Subject
		}
	case errors.Is(err, apperror.ErrNotFound):
		user = &model.User{
			FullName: identity.Name,
			Email:    email,
			GoogleID: identity.Subject,
			Role:     model.RoleUser,
		}
		if user.FullName == "" {
			user.FullName = email
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		s.logger.Info("user provisioned from google", "user_id", user.ID)
	default:
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in with google", "user_id", user.ID, "role", user.Role)
	return &AuthResult{User: user, Token: token}, nil
}

// ValidateToken verifies a session token and returns the principal it
// encodes. Thin passthrough so callers outside the HTTP middleware (the
// client session guard, background jobs) don't need the TokenService.
func (s *AuthService) ValidateToken(token string) (*auth.Principal, error) {
	return s.tokens.Verify(token)
}

// GetUserByID loads a user profile.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListUsers returns registered users for the admin view.
func (s *AuthService) ListUsers(ctx context.Context, opts repository.ListOptions) ([]model.User, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 50
	}
	return s.users.List(ctx, opts)
}

// SetUserImage records the stored path of a user's profile image.
func (s *AuthService) SetUserImage(ctx context.Context, userID, path string) error {
	return s.users.UpdateImagePath(ctx, userID, path)
}
