package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/maragia/motalk-server/internal/apperror"
	"github.com/maragia/motalk-server/internal/model"
)

// newTestTokenService creates a TokenService with a fixed secret so tests
// are deterministic.
func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

func TestNewTokenService_ShortSecret(t *testing.T) {
	_, err := NewTokenService("short")
	if err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestIssue_EmptyUserID(t *testing.T) {
	ts := newTestTokenService(t)

	_, err := ts.Issue("", model.RoleUser)
	if err == nil {
		t.Fatal("Issue() should reject an empty user ID")
	}
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Issue("user-123", model.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("token %q is not header.payload.signature", token)
	}

	principal, err := ts.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if principal.UserID != "user-123" {
		t.Errorf("UserID = %q, want %q", principal.UserID, "user-123")
	}
	if principal.Role != model.RoleAdmin {
		t.Errorf("Role = %q, want %q", principal.Role, model.RoleAdmin)
	}
}

func TestIssue_DistinctTokensForSameUser(t *testing.T) {
	ts := newTestTokenService(t)

	a, err := ts.Issue("user-123", model.RoleUser)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	b, err := ts.Issue("user-123", model.RoleUser)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// The ID claim is a fresh xid per token, so even two tokens minted in
	// the same instant differ.
	if a == b {
		t.Error("two tokens for the same user should not be identical")
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	ts, err := NewTokenServiceWithTTL("test-secret-at-least-16-chars!!", -time.Minute)
	if err != nil {
		t.Fatalf("NewTokenServiceWithTTL: %v", err)
	}

	token, err := ts.Issue("user-123", model.RoleUser)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = ts.Verify(token)
	if err == nil {
		t.Fatal("Verify() should reject an expired token")
	}
	if !errors.Is(err, apperror.ErrTokenExpired) {
		t.Errorf("error = %v, want ErrTokenExpired", err)
	}
}

func TestVerify_TamperedToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Issue("user-123", model.RoleUser)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Flip a character in the payload segment.
	parts := strings.Split(token, ".")
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = ts.Verify(tampered)
	if err == nil {
		t.Fatal("Verify() should reject a tampered token")
	}
	if !errors.Is(err, apperror.ErrTokenInvalid) {
		t.Errorf("error = %v, want ErrTokenInvalid", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	issuing := newTestTokenService(t)
	verifying, err := NewTokenService("a-completely-different-secret!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	token, err := issuing.Issue("user-123", model.RoleUser)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := verifying.Verify(token); !errors.Is(err, apperror.ErrTokenInvalid) {
		t.Errorf("error = %v, want ErrTokenInvalid", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	ts := newTestTokenService(t)

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := ts.Verify(tok); !errors.Is(err, apperror.ErrTokenInvalid) {
			t.Errorf("Verify(%q) error = %v, want ErrTokenInvalid", tok, err)
		}
	}
}

func TestVerify_EmptyRoleDefaultsToUser(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Issue("user-123", "")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	principal, err := ts.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if principal.Role != model.RoleUser {
		t.Errorf("Role = %q, want %q", principal.Role, model.RoleUser)
	}
}
