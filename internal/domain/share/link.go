package share

import (
	"net/url"
	"strings"
)

// DefaultMessage es el texto que acompaña al link del calendario.
const DefaultMessage = "Calendario de medicación de la familia"

// WhatsAppLink arma el deep link de compartir: mensaje prefijado con la
// dirección del calendario. Es solo el armado del link; abrirlo es un
// side effect del cliente, fire-and-forget, sin respuesta que manejar.
func WhatsAppLink(pageURL, message string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		message = DefaultMessage
	}

	text := message
	if u := strings.TrimSpace(pageURL); u != "" {
		text = message + " " + u
	}

	return "https://wa.me/?text=" + url.QueryEscape(text)
}
