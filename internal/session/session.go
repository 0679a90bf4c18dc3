package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/maragia/motalk-server/internal/model"
)

// Storage keys. The cached user is a convenience copy for rendering; the
// token is the credential and the server remains the authority on both.
const (
	tokenKey = "token"
	userKey  = "user"
)

// Session persists the current token and user profile through a Store.
// It is an explicit object handed to whoever needs it, not package state.
type Session struct {
	store Store
}

func New(store Store) *Session {
	return &Session{store: store}
}

// Save stores the token and a JSON copy of the user.
func (s *Session) Save(token string, user *model.User) error {
	if err := s.store.Set(tokenKey, token); err != nil {
		return err
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session: encoding user: %w", err)
	}
	return s.store.Set(userKey, string(data))
}

// Token returns the stored token, or "" with no error when none is saved.
func (s *Session) Token() (string, error) {
	token, err := s.store.Get(tokenKey)
	if errors.Is(err, ErrKeyNotFound) {
		return "", nil
	}
	return token, err
}

// User returns the cached user profile, or nil when none is saved.
func (s *Session) User() (*model.User, error) {
	data, err := s.store.Get(userKey)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("session: decoding user: %w", err)
	}
	return &user, nil
}

// Clear removes the token and cached user. Clearing an empty session is
// not an error.
func (s *Session) Clear() error {
	if err := s.store.Delete(tokenKey); err != nil {
		return err
	}
	return s.store.Delete(userKey)
}
