package auth

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// ErrTokenInvalid is returned when the provider rejects a bearer token.
var ErrTokenInvalid = errors.New("token invalid or expired")

// ProviderError carries a rejection from the identity provider (e.g. a
// duplicate email on signup) whose message should reach the caller.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider: %s (status %d)", e.Message, e.Status)
}

// Client talks to the identity provider's HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

var _ Provider = (*Client)(nil)

// NewClient creates a provider client for the given base URL.
// The API key authenticates this server to the provider, not end users.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type providerErrorResponse struct {
	Message string `json:"message"`
}

// SignUp registers a new account with the provider.
func (c *Client) SignUp(ctx context.Context, email, password, name string) (*Identity, error) {
	body, err := json.Marshal(signUpRequest{
		Email:    email,
		Password: password,
		Name:     name,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal signup request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/accounts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("signup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, c.providerError(resp)
	}

	var identity Identity
	if err := json.UnmarshalRead(resp.Body, &identity); err != nil {
		return nil, fmt.Errorf("parse signup response: %w", err)
	}

	c.logger.Debug("provider signup succeeded", "user_id", identity.ID)
	return &identity, nil
}

// Introspect asks the provider who a bearer token belongs to.
func (c *Client) Introspect(ctx context.Context, token string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/introspect", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("introspect request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to parse
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrTokenInvalid
	default:
		return nil, c.providerError(resp)
	}

	var identity Identity
	if err := json.UnmarshalRead(resp.Body, &identity); err != nil {
		return nil, fmt.Errorf("parse introspect response: %w", err)
	}

	return &identity, nil
}

// providerError drains an error response into a ProviderError, falling
// back to the HTTP status text when the body is not parseable.
func (c *Client) providerError(resp *http.Response) error {
	perr := &ProviderError{
		Status:  resp.StatusCode,
		Message: http.StatusText(resp.StatusCode),
	}

	var body providerErrorResponse
	if err := json.UnmarshalRead(resp.Body, &body); err == nil && body.Message != "" {
		perr.Message = body.Message
	}

	c.logger.Warn("identity provider returned error",
		"status", perr.Status,
		"message", perr.Message,
	)
	return perr
}
