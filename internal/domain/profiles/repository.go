package profiles

import "context"

// Repository es el slot clave/valor por dispositivo: se lee al inicio
// y se escribe en el guardado explícito.
type Repository interface {
	// Get devuelve el perfil; inexistente => perfil con nombre vacío.
	Get(ctx context.Context, deviceID string) (Profile, error)
	Save(ctx context.Context, p Profile) error
}
