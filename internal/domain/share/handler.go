package share

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registra el endpoint de compartir. publicURL es la
// dirección del calendario usada cuando el cliente no manda la suya.
func RegisterRoutes(r chi.Router, publicURL string) {
	r.Get("/share-link", shareLinkHandler(publicURL))
}

type shareLinkResponse struct {
	URL string `json:"url"`
}

// shareLinkHandler godoc
// @Summary Link para compartir el calendario
// @Description Devuelve el deep link de WhatsApp con el mensaje y la dirección del calendario prellenados.
// @Tags share
// @Produce json
// @Param url query string false "Dirección a compartir (default: PUBLIC_URL)"
// @Success 200 {object} shareLinkResponse
// @Router /share-link [get]
func shareLinkHandler(publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageURL := strings.TrimSpace(r.URL.Query().Get("url"))
		if pageURL == "" {
			pageURL = publicURL
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(shareLinkResponse{
			URL: WhatsAppLink(pageURL, DefaultMessage),
		})
	}
}
