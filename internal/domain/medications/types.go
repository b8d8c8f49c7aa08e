package medications

// TimeSlot agrupa medicaciones por momento del día. El valor es texto
// libre ("Otro" permite slots ad-hoc), pero estos son los fijos.
const (
	SlotFasting     = "Ayunas"
	SlotMorning     = "Mañana Post desayuno"
	SlotBeforeLunch = "Antes de Comer 13hs"
	SlotAfternoon   = "Tarde 18hs"
	SlotNight       = "Noche"
	SlotMonthly     = "Mensual"
)

// slotPriority define el orden de presentación de los slots conocidos.
// Slots desconocidos van después, estables por orden de aparición.
var slotPriority = []string{
	SlotFasting,
	SlotMorning,
	SlotBeforeLunch,
	SlotAfternoon,
	SlotNight,
	SlotMonthly,
}

// Frequency codifica cada cuánto aplica una medicación. Cualquier otro
// string se trata como diario (default permisivo; es comportamiento
// contractual, no un bug a "mejorar").
const (
	FrequencyDaily       = "Diario"
	FrequencyTueThuSat   = "Martes, Jueves, Sábados"
	FrequencyLastTuesday = "Último Martes del Mes"
	FrequencyAsNeeded    = "Según necesidad"
)

// DefaultDefinitions es el set que se siembra en el primer arranque,
// cuando el documento de definiciones todavía no existe.
func DefaultDefinitions() []Definition {
	return []Definition{
		{ID: "t4", Name: "Levotiroxina (T4)", Dosage: "100 mcg", TimeSlot: SlotFasting, Frequency: FrequencyDaily},
		{ID: "enalapril", Name: "Enalapril", Dosage: "10 mg", TimeSlot: SlotMorning, Frequency: FrequencyDaily},
		{ID: "aspirina", Name: "Aspirina Prevent", Dosage: "100 mg", TimeSlot: SlotMorning, Frequency: FrequencyDaily},
		{ID: "hierro", Name: "Hierro", Dosage: "1 comprimido", TimeSlot: SlotBeforeLunch, Frequency: FrequencyTueThuSat},
		{ID: "calcio", Name: "Calcio + Vitamina D", Dosage: "", TimeSlot: SlotAfternoon, Frequency: FrequencyDaily},
		{ID: "atorvastatina", Name: "Atorvastatina", Dosage: "20 mg", TimeSlot: SlotNight, Frequency: FrequencyDaily},
		{ID: "ibandronato", Name: "Ácido Ibandrónico", Dosage: "150 mg", TimeSlot: SlotMonthly, Frequency: FrequencyLastTuesday},
		{ID: "paracetamol", Name: "Paracetamol", Dosage: "500 mg si hay dolor", TimeSlot: SlotMorning, Frequency: FrequencyAsNeeded},
	}
}
