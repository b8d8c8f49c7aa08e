package medications

import "context"

// Repository persiste el listado de definiciones como UN documento
// compartido: se lee entero y se reescribe entero.
type Repository interface {
	// LoadAll devuelve el listado completo; documento inexistente => lista vacía.
	LoadAll(ctx context.Context) ([]Definition, error)

	// ReplaceAll reescribe el documento completo con el nuevo listado.
	ReplaceAll(ctx context.Context, defs []Definition) error
}
