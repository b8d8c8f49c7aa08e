package medications

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"family-med-calendar/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/medications", func(mr chi.Router) {
		mr.Get("/", listMedicationsHandler(svc))
		mr.Post("/", createMedicationHandler(svc))
		mr.Put("/{medID}", updateMedicationHandler(svc))
		mr.Delete("/{medID}", deleteMedicationHandler(svc))
	})

	r.Get("/schedule", scheduleHandler(svc))
}

// medicationRequest es el cuerpo para crear/editar una definición.
type medicationRequest struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	TimeSlot  string `json:"time_slot"`
	Frequency string `json:"frequency" enums:"Diario,Martes, Jueves, Sábados,Último Martes del Mes,Según necesidad"`
}

type medicationResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	TimeSlot  string `json:"time_slot"`
	Frequency string `json:"frequency"`
}

type slotGroupResponse struct {
	Slot        string               `json:"slot"`
	Medications []medicationResponse `json:"medications"`
}

type scheduleResponse struct {
	Date     string               `json:"date"`
	Slots    []slotGroupResponse  `json:"slots"`
	AsNeeded []medicationResponse `json:"as_needed"`
}

// listMedicationsHandler godoc
// @Summary Listar definiciones de medicación
// @Description Devuelve el listado familiar completo de medicaciones. Autenticación: `X-Device-ID` (dev) o `Authorization: Bearer <token>`.
// @Tags medications
// @Produce json
// @Param X-Device-ID header string false "Device id en modo dev"
// @Success 200 {array} medicationResponse
// @Failure 401 {string} string "unauthorized"
// @Router /medications [get]
func listMedicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireDevice(w, r) {
			return
		}

		defs, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]medicationResponse, 0, len(defs))
		for _, d := range defs {
			out = append(out, toMedicationResponse(d))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// createMedicationHandler godoc
// @Summary Crear definición de medicación
// @Description Agrega una medicación al listado familiar. Nombre y slot son obligatorios; frecuencia vacía cuenta como "Diario". El listado se reescribe entero (last-write-wins).
// @Tags medications
// @Accept json
// @Produce json
// @Param payload body medicationRequest true "Datos de la medicación"
// @Success 201 {object} medicationResponse
// @Failure 400 {string} string "invalid json / faltan campos"
// @Failure 401 {string} string "unauthorized"
// @Router /medications [post]
func createMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireDevice(w, r) {
			return
		}

		var req medicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		d, err := svc.Create(r.Context(), CreateInput{
			Name:      req.Name,
			Dosage:    req.Dosage,
			TimeSlot:  req.TimeSlot,
			Frequency: req.Frequency,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, "name and time_slot are required", http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toMedicationResponse(d))
	}
}

func updateMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireDevice(w, r) {
			return
		}

		var req medicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		d, err := svc.Update(r.Context(), chi.URLParam(r, "medID"), UpdateInput{
			Name:      req.Name,
			Dosage:    req.Dosage,
			TimeSlot:  req.TimeSlot,
			Frequency: req.Frequency,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, "name and time_slot are required", http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "medication not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toMedicationResponse(d))
	}
}

func deleteMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireDevice(w, r) {
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "medID")); err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, "invalid id", http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "medication not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// scheduleHandler godoc
// @Summary Checklist del día
// @Description Resuelve qué medicaciones aplican en la fecha dada, agrupadas por slot en orden fijo. Las "Según necesidad" van aparte en `as_needed`.
// @Tags medications
// @Produce json
// @Param date query string true "Fecha YYYY-MM-DD"
// @Success 200 {object} scheduleResponse
// @Failure 400 {string} string "date must be YYYY-MM-DD"
// @Failure 401 {string} string "unauthorized"
// @Router /schedule [get]
func scheduleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireDevice(w, r) {
			return
		}

		raw := strings.TrimSpace(r.URL.Query().Get("date"))
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		groups, asNeeded, err := svc.Schedule(r.Context(), date)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := scheduleResponse{
			Date:     raw,
			Slots:    make([]slotGroupResponse, 0, len(groups)),
			AsNeeded: make([]medicationResponse, 0, len(asNeeded)),
		}
		for _, g := range groups {
			sg := slotGroupResponse{Slot: g.Slot, Medications: make([]medicationResponse, 0, len(g.Definitions))}
			for _, d := range g.Definitions {
				sg.Medications = append(sg.Medications, toMedicationResponse(d))
			}
			resp.Slots = append(resp.Slots, sg)
		}
		for _, d := range asNeeded {
			resp.AsNeeded = append(resp.AsNeeded, toMedicationResponse(d))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func toMedicationResponse(d Definition) medicationResponse {
	return medicationResponse{
		ID:        d.ID,
		Name:      d.Name,
		Dosage:    d.Dosage,
		TimeSlot:  d.TimeSlot,
		Frequency: d.Frequency,
	}
}

func requireDevice(w http.ResponseWriter, r *http.Request) bool {
	d, ok := middleware.GetDevice(r.Context())
	if !ok || strings.TrimSpace(d.DeviceID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

// writeJSON está duplicado a propósito en los handlers de cada módulo
// (medications/dayrecords/profiles) para no crear helpers compartidos
// antes de tiempo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
