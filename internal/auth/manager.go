// Package auth assembles outbound authentication headers for the
// ServiceNow instance: basic, OAuth password grant, or API key.
package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Type selects the authentication scheme.
type Type string

const (
	TypeBasic  Type = "basic"
	TypeOAuth  Type = "oauth"
	TypeAPIKey Type = "api_key"
)

// DefaultAPIKeyHeader is used when no header name is configured.
const DefaultAPIKeyHeader = "X-ServiceNow-API-Key"

// Config is the authentication section of the bridge configuration.
type Config struct {
	Type Type `mapstructure:"type"`

	Basic struct {
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
	} `mapstructure:"basic"`

	OAuth struct {
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
		Username     string `mapstructure:"username"`
		Password     string `mapstructure:"password"`
		// TokenURL defaults to <instance>/oauth_token.do.
		TokenURL string `mapstructure:"token_url"`
	} `mapstructure:"oauth"`

	APIKey struct {
		Key        string `mapstructure:"key"`
		HeaderName string `mapstructure:"header_name"`
	} `mapstructure:"api_key"`
}

// Validate fails fast when the selected scheme is missing its settings.
func (c Config) Validate() error {
	switch c.Type {
	case TypeBasic:
		if c.Basic.Username == "" || c.Basic.Password == "" {
			return fmt.Errorf("basic auth requires username and password")
		}
	case TypeOAuth:
		if c.OAuth.ClientID == "" || c.OAuth.ClientSecret == "" {
			return fmt.Errorf("oauth requires client_id and client_secret")
		}
		if c.OAuth.Username == "" || c.OAuth.Password == "" {
			return fmt.Errorf("oauth password grant requires username and password")
		}
	case TypeAPIKey:
		if c.APIKey.Key == "" {
			return fmt.Errorf("api_key auth requires a key")
		}
	default:
		return fmt.Errorf("unknown auth type %q", c.Type)
	}
	return nil
}

// Manager produces request headers for the configured scheme. Safe for
// concurrent use; OAuth token state is guarded by a mutex.
type Manager struct {
	cfg         Config
	instanceURL string
	http        *http.Client

	mu        sync.Mutex
	token     string
	tokenType string
	expiresAt time.Time
}

// NewManager validates the configuration and builds a Manager.
func NewManager(cfg Config, instanceURL string) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid auth configuration: %w", err)
	}
	return &Manager{
		cfg:         cfg,
		instanceURL: strings.TrimRight(instanceURL, "/"),
		http:        &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Headers returns the authentication headers for one outbound request.
func (m *Manager) Headers(ctx context.Context) (http.Header, error) {
	headers := http.Header{}
	switch m.cfg.Type {
	case TypeBasic:
		creds := m.cfg.Basic.Username + ":" + m.cfg.Basic.Password
		headers.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(creds)))
	case TypeOAuth:
		token, tokenType, err := m.oauthToken(ctx)
		if err != nil {
			return nil, err
		}
		headers.Set("Authorization", tokenType+" "+token)
	case TypeAPIKey:
		name := m.cfg.APIKey.HeaderName
		if name == "" {
			name = DefaultAPIKeyHeader
		}
		headers.Set(name, m.cfg.APIKey.Key)
	}
	return headers, nil
}

// Invalidate drops the cached OAuth token so the next request fetches a
// fresh one. No-op for the other schemes.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
}

func (m *Manager) oauthToken(ctx context.Context) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" && time.Now().Before(m.expiresAt) {
		return m.token, m.tokenType, nil
	}

	tokenURL := m.cfg.OAuth.TokenURL
	if tokenURL == "" {
		tokenURL = m.instanceURL + "/oauth_token.do"
	}

	form := url.Values{
		"grant_type":    {"password"},
		"client_id":     {m.cfg.OAuth.ClientID},
		"client_secret": {m.cfg.OAuth.ClientSecret},
		"username":      {m.cfg.OAuth.Username},
		"password":      {m.cfg.OAuth.Password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", "", fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.http.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetching oauth token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("oauth token endpoint returned status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", "", fmt.Errorf("decoding oauth token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", "", fmt.Errorf("oauth token response carried no access_token")
	}

	m.token = payload.AccessToken
	m.tokenType = payload.TokenType
	if m.tokenType == "" {
		m.tokenType = "Bearer"
	}
	// Refresh a minute early so an expiring token never reaches the wire.
	lifetime := time.Duration(payload.ExpiresIn) * time.Second
	if lifetime > 2*time.Minute {
		lifetime -= time.Minute
	}
	m.expiresAt = time.Now().Add(lifetime)
	return m.token, m.tokenType, nil
}
