package middleware

import (
	"context"
	"net/http"
	"strings"

	"family-med-calendar/internal/ports/identity"
)

type ctxKey string

const deviceKey ctxKey = "device"

// DeviceContext:
// - Si provider != nil y viene Bearer token => intenta Verify() y setea el device.
// - Si provider == nil => modo dev: header X-Device-ID setea el device.
// - Sin device el request sigue igual; cada handler decide si lo exige.
//   (La identidad anónima gatea TODAS las operaciones remotas: los handlers
//   de escritura/lectura del store responden 401 hasta tener device id.)
func DeviceContext(provider identity.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if provider == nil {
				if id := strings.TrimSpace(r.Header.Get("X-Device-ID")); id != "" {
					ctx := context.WithValue(r.Context(), deviceKey, identity.Device{DeviceID: id})
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			d, err := provider.Verify(r.Context(), token)
			if err != nil {
				// No cortamos acá; el handler decide 401.
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), deviceKey, d)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetDevice(ctx context.Context) (identity.Device, bool) {
	v := ctx.Value(deviceKey)
	if v == nil {
		return identity.Device{}, false
	}
	d, ok := v.(identity.Device)
	return d, ok
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
