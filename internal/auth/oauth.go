package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleProvider wraps golang.org/x/oauth2 for the web-side Google
// authorization-code flow.
//
// The mobile app verifies ID tokens directly (GoogleVerifier); the web
// surface uses the classic redirect flow instead:
//  1. We redirect the browser to Google's authorization endpoint
//  2. Google redirects back to our callback URL with a short-lived code
//  3. We exchange the code for an access token (server-to-server, so the
//     client secret never reaches the browser)
//  4. We call the userinfo endpoint to learn who authorized us
//
// Both paths end in the same place: a GoogleIdentity handed to
// AuthService.LoginWithGoogle.
type GoogleProvider struct {
	config *oauth2.Config
}

// userinfoURL is Google's OpenID userinfo endpoint — the same one the
// mobile client queries after its own token exchange.
const userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// NewGoogleProvider creates a GoogleProvider with the given OAuth app
// credentials. callbackURL must exactly match an authorized redirect URI
// registered in the Google Cloud console.
func NewGoogleProvider(clientID, clientSecret, callbackURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthURL returns the URL to redirect the user to for authorization.
//
// state must be a random single-use value stored in a cookie before the
// redirect; the callback handler verifies the value Google echoes back
// matches the cookie, which stops CSRF-initiated logins.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for the authorizing user's Google
// profile: code → access token → userinfo.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*GoogleIdentity, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// config.Client returns an *http.Client that attaches the bearer token
	// to every request.
	client := p.config.Client(ctx, oauthToken)

	resp, err := client.Get(userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("auth: calling Google userinfo API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: Google userinfo API returned status %d", resp.StatusCode)
	}

	var info struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("auth: decoding Google userinfo response: %w", err)
	}

	if info.ID == "" || info.Email == "" {
		return nil, fmt.Errorf("auth: Google returned an incomplete profile")
	}

	return &GoogleIdentity{
		Subject:       info.ID,
		Email:         info.Email,
		EmailVerified: info.VerifiedEmail,
		Name:          info.Name,
		Picture:       info.Picture,
	}, nil
}
