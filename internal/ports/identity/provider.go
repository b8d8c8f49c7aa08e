package identity

import "context"

// Provider resuelve un token anónimo a un Device estable, o error.
type Provider interface {
	Verify(ctx context.Context, token string) (Device, error)
}
