package profiles

// Profile es el nombre para mostrar de un dispositivo. No es única ni
// autentica nada: solo etiqueta la autoría de notas y tomas de presión.
type Profile struct {
	DeviceID    string
	DisplayName string
}
