package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"remotemcp/pkg/logging"
)

// HTTPProvider verifies credentials against the account backend's internal
// verification endpoint.
type HTTPProvider struct {
	verifyURL string
	apiKey    string
	jwtSecret string
	client    *http.Client
}

// NewHTTPProvider creates a provider for the given verification endpoint.
// The API key authenticates this server to the backend. If jwtSecret is
// non-empty, the user's api_token is verified and its permissions claim is
// extracted; otherwise the token is passed through opaquely.
func NewHTTPProvider(verifyURL, apiKey, jwtSecret string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		verifyURL: verifyURL,
		apiKey:    apiKey,
		jwtSecret: jwtSecret,
		client:    &http.Client{Timeout: timeout},
	}
}

type verifyRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type verifyResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	User    *struct {
		ID       json.Number `json:"id"`
		Username string      `json:"username"`
		Email    string      `json:"email"`
		Name     string      `json:"name"`
		APIToken string      `json:"api_token"`
		Token    string      `json:"token"`
	} `json:"user"`
}

// Verify posts the credentials to the backend and maps the result onto the
// sentinel errors.
func (p *HTTPProvider) Verify(ctx context.Context, username, password string) (*UserRecord, error) {
	body, err := json.Marshal(verifyRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode verification request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.verifyURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build verification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		logging.Error("Identity", err, "Verification request for user %s failed", username)
		return nil, ErrServiceUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.Warn("Identity", "Verification endpoint returned status %d", resp.StatusCode)
		return nil, ErrServiceUnavailable
	}

	var vr verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		logging.Error("Identity", err, "Failed to decode verification response")
		return nil, ErrServiceUnavailable
	}

	if !vr.Success || vr.User == nil {
		logging.Debug("Identity", "Backend rejected credentials for user %s: %s", username, vr.Error)
		return nil, ErrInvalidCredentials
	}

	apiToken := vr.User.APIToken
	if apiToken == "" {
		apiToken = vr.User.Token
	}

	record := &UserRecord{
		ID:       vr.User.ID.String(),
		Username: vr.User.Username,
		Email:    vr.User.Email,
		Name:     vr.User.Name,
		APIToken: apiToken,
	}
	record.Permissions = p.extractPermissions(apiToken)

	logging.Info("Identity", "Authenticated user %s (id %s)", record.Username, record.ID)
	return record, nil
}

// extractPermissions verifies the backend JWT and pulls its permissions
// claim. Extraction is best effort: a missing secret or an unverifiable
// token just yields no permissions.
func (p *HTTPProvider) extractPermissions(apiToken string) []string {
	if p.jwtSecret == "" || apiToken == "" {
		return nil
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(apiToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(p.jwtSecret), nil
	})
	if err != nil {
		logging.Warn("Identity", "Could not verify backend api_token: %v", err)
		return nil
	}

	raw, ok := claims["permissions"].([]interface{})
	if !ok {
		return nil
	}
	permissions := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			permissions = append(permissions, s)
		}
	}
	return permissions
}
