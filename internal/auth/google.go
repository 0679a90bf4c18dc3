package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/maragia/motalk-server/internal/apperror"
)

// GoogleIdentity is the verified payload of a Google ID token — the external
// identity assertion the mobile client sends to /google-login. It is consumed
// once per verification and never persisted.
type GoogleIdentity struct {
	Subject       string // Google's stable user ID ("sub" claim)
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// googleIssuers are the two issuer values Google uses for ID tokens.
var googleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

// googleJWKSURL is where Google publishes its current signing keys.
const googleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

// KeySource supplies the RSA public keys used to verify Google ID token
// signatures, keyed by the token header's "kid". The production source
// fetches Google's JWKS over HTTPS; tests inject a static source.
type KeySource interface {
	Key(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// GoogleVerifier verifies Google-issued ID tokens against Google's key set
// and an expected audience (our OAuth client ID).
//
// This is a separate trust root from TokenService: Google signs with RSA
// keys it rotates regularly, and the audience claim ties the token to our
// client ID so a token minted for another app cannot be replayed here.
type GoogleVerifier struct {
	audience string
	keys     KeySource
}

// NewGoogleVerifier creates a verifier for ID tokens issued to the given
// OAuth client ID, fetching signing keys from Google's JWKS endpoint.
func NewGoogleVerifier(clientID string) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, errors.New("auth: Google client ID must not be empty")
	}
	return &GoogleVerifier{
		audience: clientID,
		keys:     newJWKSSource(googleJWKSURL),
	}, nil
}

// NewGoogleVerifierWithKeys creates a verifier with an injected key source.
// Used in tests with locally generated RSA keys.
func NewGoogleVerifierWithKeys(clientID string, keys KeySource) *GoogleVerifier {
	return &GoogleVerifier{audience: clientID, keys: keys}
}

// googleClaims is the subset of the ID token payload we care about.
type googleClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	jwt.RegisteredClaims
}

// Verify checks the assertion's signature, audience, issuer, and expiry,
// and returns the identity it attests to. Any failure — tampered signature,
// wrong audience, unknown signing key, expired token — comes back as
// apperror.ErrInvalidAssertion; the caller should respond 401 and must not
// distinguish the failure modes to the client.
func (v *GoogleVerifier) Verify(ctx context.Context, rawToken string) (*GoogleIdentity, error) {
	token, err := jwt.ParseWithClaims(
		rawToken,
		&googleClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			kid, _ := token.Header["kid"].(string)
			if kid == "" {
				return nil, errors.New("auth: ID token has no key ID")
			}
			return v.keys.Key(ctx, kid)
		},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, apperror.InvalidAssertion("Google token failed verification")
	}

	c, ok := token.Claims.(*googleClaims)
	if !ok || !token.Valid {
		return nil, apperror.InvalidAssertion("Google token claims are malformed")
	}
	if !issuedByGoogle(c.Issuer) {
		return nil, apperror.InvalidAssertion("Google token has an unexpected issuer")
	}
	if c.Subject == "" || c.Email == "" {
		return nil, apperror.InvalidAssertion("Google token is missing identity claims")
	}

	return &GoogleIdentity{
		Subject:       c.Subject,
		Email:         c.Email,
		EmailVerified: c.EmailVerified,
		Name:          c.Name,
		Picture:       c.Picture,
	}, nil
}

func issuedByGoogle(iss string) bool {
	for _, want := range googleIssuers {
		if iss == want {
			return true
		}
	}
	return false
}

// jwksSource fetches and caches Google's JWKS.
//
// Keys are cached for an hour; an unknown kid forces one refresh before
// failing, which covers Google's key rotation without hammering the
// endpoint on every bad token.
type jwksSource struct {
	url    string
	client *http.Client

	mu        sync.Mutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

const jwksCacheTTL = time.Hour

func newJWKSSource(url string) *jwksSource {
	return &jwksSource{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *jwksSource) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.fetchedAt) > jwksCacheTTL {
		if err := s.refreshLocked(ctx); err != nil {
			return nil, err
		}
	}

	if key, ok := s.keys[kid]; ok {
		return key, nil
	}

	// Unknown kid: the key set may have rotated since the last fetch.
	if err := s.refreshLocked(ctx); err != nil {
		return nil, err
	}
	if key, ok := s.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("auth: no Google signing key with id %q", kid)
}

// jwk is one entry of the JWKS document. Google publishes RSA keys with the
// modulus and exponent base64url-encoded.
type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (s *jwksSource) refreshLocked(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("auth: building JWKS request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("auth: fetching Google JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth: Google JWKS endpoint returned status %d", resp.StatusCode)
	}

	var doc struct {
		Keys []jwk `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("auth: decoding Google JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := k.publicKey()
		if err != nil {
			return fmt.Errorf("auth: parsing Google JWK %q: %w", k.Kid, err)
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return errors.New("auth: Google JWKS contained no usable keys")
	}

	s.keys = keys
	s.fetchedAt = time.Now()
	return nil
}

func (k jwk) publicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decoding modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decoding exponent: %w", err)
	}

	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	if e == 0 {
		return nil, errors.New("exponent is zero")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}

// StaticKeySource is a KeySource backed by a fixed key map. Exported for
// tests that sign tokens with locally generated keys.
type StaticKeySource map[string]*rsa.PublicKey

func (s StaticKeySource) Key(_ context.Context, kid string) (*rsa.PublicKey, error) {
	key, ok := s[kid]
	if !ok {
		return nil, fmt.Errorf("auth: no signing key with id %q", kid)
	}
	return key, nil
}
