package dayrecords

import "context"

// Patch es una escritura merge de UN campo del registro: los punteros
// nil no se tocan. La granularidad del last-write-wins es el campo
// completo (no hay merge por ítem de notas/tomas entre escritores
// concurrentes; la última escritura exitosa pisa la secuencia entera).
type Patch struct {
	Status        *map[string]bool
	Notes         *[]Note
	BloodPressure *[]Reading
}

// Empty informa si el patch no trae ningún campo. Un patch vacío es un
// no-op para todos los adapters: no crea documento ni notifica a nadie.
func (p Patch) Empty() bool {
	return p.Status == nil && p.Notes == nil && p.BloodPressure == nil
}

// Subscription es el stream push de snapshots de un día. El primer
// snapshot llega apenas se abre; Cancel libera la suscripción
// exactamente una vez (idempotente) y tras Cancel no se entrega nada
// más (Updates se cierra).
type Subscription interface {
	Updates() <-chan Record
	Cancel()
}

// Repository es el contrato contra el store de documentos: un documento
// por fecha con los tres campos serializados de forma independiente más
// el string de la fecha.
type Repository interface {
	// Get devuelve el registro del día; documento inexistente => Empty(date).
	Get(ctx context.Context, date string) (Record, error)

	// Merge persiste los campos presentes del patch junto con la fecha,
	// sin tocar los campos ausentes.
	Merge(ctx context.Context, date string, p Patch) error

	// Watch abre un stream de snapshots completos del día. Cada llamada
	// crea una suscripción independiente de un solo consumidor.
	Watch(ctx context.Context, date string) (Subscription, error)
}
