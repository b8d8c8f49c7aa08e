package medications

import "time"

// SlotGroup es un slot del día con sus medicaciones, en el orden del
// listado fuente.
type SlotGroup struct {
	Slot        string
	Definitions []Definition
}

// Resolve arma el checklist de un día: qué definiciones aplican en esa
// fecha, agrupadas por slot y con los slots en orden de presentación.
// Es pura y total: entradas malformadas caen al default diario, nunca
// devuelve error. Las "Según necesidad" no entran al checklist (ver
// AsNeeded).
func Resolve(defs []Definition, date time.Time) []SlotGroup {
	bySlot := make(map[string][]Definition)
	order := make([]string, 0)

	for _, d := range defs {
		if !Applies(d, date) {
			continue
		}
		if _, seen := bySlot[d.TimeSlot]; !seen {
			order = append(order, d.TimeSlot)
		}
		bySlot[d.TimeSlot] = append(bySlot[d.TimeSlot], d)
	}

	out := make([]SlotGroup, 0, len(order))

	// Primero los slots conocidos, en su prioridad fija.
	listed := make(map[string]bool, len(slotPriority))
	for _, slot := range slotPriority {
		listed[slot] = true
		if ds, ok := bySlot[slot]; ok {
			out = append(out, SlotGroup{Slot: slot, Definitions: ds})
		}
	}

	// Después los desconocidos, estables por primera aparición.
	for _, slot := range order {
		if listed[slot] {
			continue
		}
		out = append(out, SlotGroup{Slot: slot, Definitions: bySlot[slot]})
	}

	return out
}

// AsNeeded devuelve las entradas "Según necesidad": no van al checklist
// diario, se muestran aparte como referencia.
func AsNeeded(defs []Definition) []Definition {
	out := make([]Definition, 0)
	for _, d := range defs {
		if d.Frequency == FrequencyAsNeeded {
			out = append(out, d)
		}
	}
	return out
}

// Applies decide si una definición corresponde a la fecha dada.
// Frecuencias no reconocidas cuentan como diarias.
func Applies(d Definition, date time.Time) bool {
	switch d.Frequency {
	case FrequencyAsNeeded:
		return false
	case FrequencyTueThuSat:
		wd := date.Weekday()
		return wd == time.Tuesday || wd == time.Thursday || wd == time.Saturday
	case FrequencyLastTuesday:
		last := lastTuesday(date.Year(), date.Month(), date.Location())
		return date.Year() == last.Year() && date.Month() == last.Month() && date.Day() == last.Day()
	default:
		// Diario y cualquier otra cosa.
		return true
	}
}

// lastTuesday busca el último martes del mes barriendo hacia atrás
// desde el último día calendario.
func lastTuesday(year int, month time.Month, loc *time.Location) time.Time {
	// día 0 del mes siguiente = último día de este mes
	d := time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
	for d.Weekday() != time.Tuesday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
