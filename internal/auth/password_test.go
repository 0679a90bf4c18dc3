package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/maragia/motalk-server/internal/apperror"
)

// Tests use bcrypt.MinCost so hashing doesn't dominate the run time.
func newTestPasswordService(t *testing.T) *PasswordService {
	t.Helper()
	return NewPasswordServiceForTest(bcrypt.MinCost)
}

func TestHashVerify_RoundTrip(t *testing.T) {
	ps := newTestPasswordService(t)

	hash, err := ps.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("Hash() returned the plaintext")
	}

	if err := ps.Verify(hash, "correct horse battery staple"); err != nil {
		t.Errorf("Verify() error = %v, want nil", err)
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	ps := newTestPasswordService(t)

	hash, err := ps.Hash("right password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	err = ps.Verify(hash, "wrong password")
	if err == nil {
		t.Fatal("Verify() should reject a wrong password")
	}
	if !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}
}

func TestHash_SamePasswordDifferentHashes(t *testing.T) {
	ps := newTestPasswordService(t)

	a, err := ps.Hash("same password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	b, err := ps.Hash("same password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// bcrypt salts every hash.
	if a == b {
		t.Error("two hashes of the same password should differ")
	}
}

func TestHash_TooLong(t *testing.T) {
	ps := newTestPasswordService(t)

	if _, err := ps.Hash(strings.Repeat("x", 73)); err == nil {
		t.Fatal("Hash() should reject passwords over 72 bytes")
	}
}

func TestVerify_GarbageHash(t *testing.T) {
	ps := newTestPasswordService(t)

	err := ps.Verify("not-a-bcrypt-hash", "anything")
	if err == nil {
		t.Fatal("Verify() should fail on a malformed hash")
	}
	// A broken hash is a server-side problem, not a wrong password.
	if errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Error("malformed hash should not look like invalid credentials")
	}
}
