package anonid

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"family-med-calendar/internal/ports/identity"
)

var (
	ErrTokenEmpty = errors.New("token is empty")
)

// Provider implementa identity.Provider sobre el servicio anonid.
// No se integra automáticamente; se instancia desde main/router cuando
// hay IDENTITY_BASE_URL configurada.
type Provider struct {
	client *Client
}

func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

func (p *Provider) Verify(ctx context.Context, token string) (identity.Device, error) {
	if p == nil || p.client == nil {
		return identity.Device{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return identity.Device{}, ErrTokenEmpty
	}

	d, err := p.client.VerifyToken(ctx, token)
	if err != nil {
		return identity.Device{}, fmt.Errorf("anonid verify failed: %w", err)
	}

	d.DeviceID = strings.TrimSpace(d.DeviceID)
	if d.DeviceID == "" {
		return identity.Device{}, errors.New("anonid device missing id")
	}

	return d, nil
}
