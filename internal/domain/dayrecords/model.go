package dayrecords

import "time"

// DateLayout es el formato de la clave de un día. El registro diario se
// direcciona SOLO por este string: dos instantes que formatean igual
// resuelven al mismo documento.
const DateLayout = "2006-01-02"

// Note es una anotación del día, append-only.
type Note struct {
	Text      string    `json:"text" bson:"text"`
	Author    string    `json:"author" bson:"author"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// Reading es una toma de presión del día, append-only. Sistólica y
// diastólica quedan como texto: se registran tal como se cargan.
type Reading struct {
	Systolic  string    `json:"systolic" bson:"systolic"`
	Diastolic string    `json:"diastolic" bson:"diastolic"`
	Author    string    `json:"author" bson:"author"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// Record es el estado mutable de un día calendario. Cada campo se
// persiste de forma independiente y defaultea a vacío si el documento
// (o el campo) no existe. Ausencia de clave en Status = "no tomada".
type Record struct {
	Date          string          `json:"date" bson:"date"`
	Status        map[string]bool `json:"medication_status" bson:"medicationStatus"`
	Notes         []Note          `json:"notes" bson:"notes"`
	BloodPressure []Reading       `json:"blood_pressure" bson:"bloodPressure"`
}

// Empty devuelve el registro default de una fecha sin documento.
func Empty(date string) Record {
	return Record{
		Date:          date,
		Status:        map[string]bool{},
		Notes:         []Note{},
		BloodPressure: []Reading{},
	}
}

// Normalize completa campos nil con sus defaults, manteniendo la
// invariante "nunca nil hacia afuera".
func (r Record) Normalize(date string) Record {
	if r.Date == "" {
		r.Date = date
	}
	if r.Status == nil {
		r.Status = map[string]bool{}
	}
	if r.Notes == nil {
		r.Notes = []Note{}
	}
	if r.BloodPressure == nil {
		r.BloodPressure = []Reading{}
	}
	return r
}
