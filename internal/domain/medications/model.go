package medications

// Definition es una medicación del listado familiar. El listado completo
// vive en un único documento compartido y se reescribe entero ante
// cualquier alta/edición/baja (no hay documentos por ítem).
type Definition struct {
	ID   string
	Name string

	Dosage string // puede ser vacío

	TimeSlot  string // uno de los slots fijos, o texto libre
	Frequency string // ver constantes Frequency*
}
