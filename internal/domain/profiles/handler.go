package profiles

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"family-med-calendar/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/me/profile", getProfileHandler(svc))
	r.Put("/me/profile", saveProfileHandler(svc))
}

type profileRequest struct {
	DisplayName string `json:"display_name"`
}

type profileResponse struct {
	DeviceID    string `json:"device_id"`
	DisplayName string `json:"display_name"`
}

// getProfileHandler godoc
// @Summary Perfil del dispositivo
// @Description Devuelve el nombre para mostrar guardado para este dispositivo (vacío si nunca se guardó).
// @Tags profiles
// @Produce json
// @Param X-Device-ID header string false "Device id en modo dev"
// @Success 200 {object} profileResponse
// @Failure 401 {string} string "unauthorized"
// @Router /me/profile [get]
func getProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := middleware.GetDevice(r.Context())
		if !ok || strings.TrimSpace(d.DeviceID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.Get(r.Context(), d.DeviceID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, profileResponse{
			DeviceID:    d.DeviceID,
			DisplayName: p.DisplayName,
		})
	}
}

func saveProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := middleware.GetDevice(r.Context())
		if !ok || strings.TrimSpace(d.DeviceID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req profileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Save(r.Context(), d.DeviceID, req.DisplayName)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, "display_name is required", http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, profileResponse{
			DeviceID:    p.DeviceID,
			DisplayName: p.DisplayName,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
