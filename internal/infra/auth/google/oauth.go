package google

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"harbor/config"
	"harbor/internal/domain/entity"
	"harbor/internal/domain/service"
	"harbor/internal/errors"
)

const (
	googleOAuthURL    = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

	stateTTL = 10 * time.Minute
)

// OAuthService drives the Google authorization code flow. It implements
// service.OAuthCodeFlowService.
type OAuthService struct {
	clientID     string
	clientSecret string
	redirectURI  string
	scopes       string
	httpClient   *http.Client

	// Single-use state parameters for CSRF protection.
	stateMutex sync.Mutex
	stateStore map[string]stateEntry

	tokenURL    string
	userInfoURL string
}

type stateEntry struct {
	redirectURI string
	expiresAt   time.Time
}

// NewOAuthService creates a new Google OAuth service
func NewOAuthService(cfg *config.Config) service.OAuthCodeFlowService {
	return &OAuthService{
		clientID:     cfg.GoogleOAuth.ClientID,
		clientSecret: cfg.GoogleOAuth.ClientSecret,
		redirectURI:  cfg.GoogleOAuth.RedirectURI,
		scopes:       cfg.GoogleOAuth.Scopes,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		stateStore:   make(map[string]stateEntry),
		tokenURL:     googleTokenURL,
		userInfoURL:  googleUserInfoURL,
	}
}

// AuthorizationURL builds the consent URL with a fresh single-use state.
// An empty redirectURI falls back to the configured default, so the same
// service serves both the customer and the admin callback routes.
func (s *OAuthService) AuthorizationURL(_ context.Context, redirectURI string) (string, error) {
	if redirectURI == "" {
		redirectURI = s.redirectURI
	}

	state, err := s.issueState(redirectURI)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("client_id", s.clientID)
	params.Set("redirect_uri", redirectURI)
	params.Set("scope", s.scopes)
	params.Set("response_type", "code")
	params.Set("state", state)

	return googleOAuthURL + "?" + params.Encode(), nil
}

// Exchange validates the state, trades the code for an access token, and
// fetches the user's profile.
func (s *OAuthService) Exchange(ctx context.Context, code, state string) (*service.OAuthUser, error) {
	redirectURI, ok := s.consumeState(state)
	if !ok {
		return nil, errors.New("unknown or expired state parameter")
	}

	accessToken, err := s.exchangeCode(ctx, code, redirectURI)
	if err != nil {
		return nil, err
	}

	return s.fetchUserInfo(ctx, accessToken)
}

// GetProvider returns the OAuth provider type
func (s *OAuthService) GetProvider() entity.ProviderType {
	return entity.ProviderTypeGoogle
}

// issueState generates a cryptographically random state and stores it with
// its expiry and the redirect URI it was issued for.
func (s *OAuthService) issueState(redirectURI string) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "failed to generate state")
	}
	state := hex.EncodeToString(raw)

	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()

	now := time.Now()
	for key, entry := range s.stateStore {
		if now.After(entry.expiresAt) {
			delete(s.stateStore, key)
		}
	}
	s.stateStore[state] = stateEntry{redirectURI: redirectURI, expiresAt: now.Add(stateTTL)}

	return state, nil
}

// consumeState removes the state so a replayed callback fails.
func (s *OAuthService) consumeState(state string) (string, bool) {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()

	entry, exists := s.stateStore[state]
	if !exists {
		return "", false
	}
	delete(s.stateStore, state)

	if time.Now().After(entry.expiresAt) {
		return "", false
	}

	return entry.redirectURI, true
}

// exchangeCode exchanges an authorization code for an access token.
func (s *OAuthService) exchangeCode(ctx context.Context, code, redirectURI string) (string, error) {
	data := url.Values{}
	data.Set("client_id", s.clientID)
	data.Set("client_secret", s.clientSecret)
	data.Set("code", code)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "failed to create token exchange request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "failed to exchange code for token")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", errors.Errorf("token exchange failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return "", errors.Wrap(err, "failed to decode token response")
	}

	return tokenResponse.AccessToken, nil
}

// fetchUserInfo retrieves the user's profile using an access token.
func (s *OAuthService) fetchUserInfo(ctx context.Context, accessToken string) (*service.OAuthUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create user info request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user info")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.Errorf("user info request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var googleUser struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
		VerifiedEmail bool   `json:"verified_email"`
		Locale        string `json:"locale"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return nil, errors.Wrap(err, "failed to decode user info response")
	}

	return &service.OAuthUser{
		ID:            googleUser.ID,
		Email:         googleUser.Email,
		Name:          googleUser.Name,
		Provider:      entity.ProviderTypeGoogle,
		AvatarURL:     googleUser.Picture,
		EmailVerified: googleUser.VerifiedEmail,
		Locale:        googleUser.Locale,
	}, nil
}
