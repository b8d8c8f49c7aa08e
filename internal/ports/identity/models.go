package identity

// Device representa el principal anónimo de un dispositivo.
// DeviceID es estable por dispositivo; no es una identidad de usuario
// ni un principal de autorización, solo habilita las operaciones remotas.
type Device struct {
	DeviceID string
}
