// Package auth provides session-token issuance/verification, password
// hashing, and Google identity verification for the Motalk API.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. Client signs up with email/password, or presents a Google ID token
//  2. Server verifies the credential and issues a signed session token (JWT)
//  3. Client persists the token and attaches it as "Authorization: Bearer"
//  4. Middleware verifies the token on every protected request and puts the
//     principal (user ID + role) in the request context
//  5. On expiry the client drops back to the login screen — there is no
//     refresh endpoint and no server-side session state
//
// The session token and the Google ID token have separate trust roots: the
// session token is HMAC-signed with a server secret, the Google token is
// RSA-signed by Google and verified against Google's published key set.
// Nothing is shared between the two paths.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"

	"github.com/maragia/motalk-server/internal/apperror"
	"github.com/maragia/motalk-server/internal/model"
)

// DefaultTokenTTL is the session token lifetime. After expiry the client
// must log in again.
const DefaultTokenTTL = time.Hour

const issuer = "motalk"

// Principal is the authenticated identity recovered from a session token.
type Principal struct {
	UserID string
	Role   string
}

// TokenService issues and verifies session tokens.
//
// Tokens are stateless: all the information needed (user ID, role, expiry)
// is inside the signed token, so verification needs no database lookup.
// The same HMAC secret signs and verifies; it must be at least 16 bytes.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the default 1-hour expiry.
// The secret should be at least 32 bytes of random data in production,
// e.g. JWT_SECRET=$(openssl rand -hex 32).
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), ttl: DefaultTokenTTL}, nil
}

// NewTokenServiceWithTTL creates a TokenService with a custom token
// lifetime. Used in tests to issue already-expired tokens.
func NewTokenServiceWithTTL(secret string, ttl time.Duration) (*TokenService, error) {
	ts, err := NewTokenService(secret)
	if err != nil {
		return nil, err
	}
	ts.ttl = ttl
	return ts, nil
}

// sessionClaims is the session token payload: the standard registered
// claims plus the account role. Subject carries the user ID.
type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issue creates and signs a session token binding userID and role.
//
// Every token carries a fresh xid in the ID claim, so two tokens issued for
// the same user are always distinct, even within the same second. IssuedAt
// and ExpiresAt bound the token's validity window.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, same secret for
// signing and verifying.
func (s *TokenService) Issue(userID, role string) (string, error) {
	if userID == "" {
		return "", errors.New("auth: user ID must not be empty")
	}
	now := time.Now()

	c := sessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        xid.New().String(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses and verifies a session token and returns the principal it
// encodes.
//
// Checks performed (mostly by the jwt library):
//   - Signature is valid against our secret
//   - Algorithm is HS256 — jwt.WithValidMethods rejects anything else,
//     which closes the algorithm-confusion hole where an attacker submits a
//     token signed with "none"
//   - Token is not expired, and an expiry claim is present
//   - Issuer matches ours (tokens minted for other apps don't pass)
//
// Expired tokens fail with apperror.ErrTokenExpired; every other failure is
// apperror.ErrTokenInvalid.
func (s *TokenService) Verify(tokenStr string) (*Principal, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&sessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.TokenExpired()
		}
		return nil, apperror.TokenInvalid("session token failed verification")
	}

	c, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return nil, apperror.TokenInvalid("session token claims are malformed")
	}
	if c.Subject == "" {
		return nil, apperror.TokenInvalid("session token has no subject")
	}

	role := c.Role
	if role == "" {
		role = model.RoleUser
	}

	return &Principal{UserID: c.Subject, Role: role}, nil
}
