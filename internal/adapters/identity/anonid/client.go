package anonid

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"family-med-calendar/internal/platform/httpclient"
	"family-med-calendar/internal/ports/identity"
)

var (
	ErrNotConfigured = errors.New("anonid client not configured")
	ErrUnauthorized  = errors.New("anonid unauthorized")
	ErrUpstream      = errors.New("anonid upstream error")
)

// Config del cliente del identity provider anónimo.
// BaseURL y APIKey normalmente vienen de env vars (IDENTITY_BASE_URL,
// IDENTITY_API_KEY) en quien lo instancia.
type Config struct {
	BaseURL string
	APIKey  string

	// Header donde va la API key; vacío = "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

type Client struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func NewClient(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:         hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

// VerifyToken resuelve un token anónimo al device id estable que lo emitió.
func (c *Client) VerifyToken(ctx context.Context, token string) (identity.Device, error) {
	if !c.IsConfigured() {
		return identity.Device{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return identity.Device{}, ErrUnauthorized
	}

	const verifyPath = "/v1/devices/verify"

	var out struct {
		DeviceID string `json:"device_id"`
	}

	err := c.http.DoJSON(ctx, http.MethodPost, verifyPath,
		map[string]string{
			c.apiKeyHeader:  c.apiKey,
			"Authorization": "Bearer " + token,
		},
		map[string]string{"token": token},
		&out,
	)
	if err != nil {
		var he *httpclient.HTTPError
		if errors.As(err, &he) {
			if he.StatusCode == http.StatusUnauthorized || he.StatusCode == http.StatusForbidden {
				return identity.Device{}, ErrUnauthorized
			}
			return identity.Device{}, fmt.Errorf("%w: status=%d", ErrUpstream, he.StatusCode)
		}
		return identity.Device{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	out.DeviceID = strings.TrimSpace(out.DeviceID)
	if out.DeviceID == "" {
		return identity.Device{}, errors.New("anonid response missing device_id")
	}

	return identity.Device{DeviceID: out.DeviceID}, nil
}
