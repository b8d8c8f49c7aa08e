package dayrecords

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"family-med-calendar/internal/domain/profiles"
	"family-med-calendar/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, profilesSvc *profiles.Service) {
	r.Route("/days/{date}", func(dr chi.Router) {
		dr.Get("/", getDayHandler(svc))
		dr.Get("/watch", watchDayHandler(svc))

		dr.Put("/status", setStatusHandler(svc))
		dr.Post("/status/{medID}/toggle", toggleHandler(svc))

		dr.Post("/notes", addNoteHandler(svc, profilesSvc))
		dr.Post("/blood-pressure", addReadingHandler(svc, profilesSvc))
	})
}

type statusRequest struct {
	Status map[string]bool `json:"status"`
}

type noteRequest struct {
	Text string `json:"text"`
}

type readingRequest struct {
	Systolic  string `json:"systolic"`
	Diastolic string `json:"diastolic"`
}

// getDayHandler godoc
// @Summary Registro del día
// @Description Devuelve el registro del día indicado. Si no existe documento (o la lectura falla) responde el registro vacío: checks en cero, sin notas, sin tomas.
// @Tags days
// @Produce json
// @Param date path string true "Fecha YYYY-MM-DD"
// @Success 200 {object} Record
// @Failure 400 {string} string "date must be YYYY-MM-DD"
// @Failure 401 {string} string "unauthorized"
// @Router /days/{date} [get]
func getDayHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireDevice(w, r) {
			return
		}
		date, ok := dateParam(w, r)
		if !ok {
			return
		}

		writeJSON(w, http.StatusOK, svc.Snapshot(r.Context(), date))
	}
}

// setStatusHandler reemplaza el mapa completo de checks del día.
// Escritura merge: notas y presión no se tocan.
func setStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireDevice(w, r) {
			return
		}
		date, ok := dateParam(w, r)
		if !ok {
			return
		}

		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if err := svc.SetStatus(r.Context(), date, req.Status); err != nil {
			writeFailed(w)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// toggleHandler godoc
// @Summary Marcar/desmarcar una toma
// @Description Invierte el check de la medicación para el día. Optimista: responde el estado recién escrito; el snapshot que empuje el store es el autoritativo.
// @Tags days
// @Produce json
// @Param date path string true "Fecha YYYY-MM-DD"
// @Param medID path string true "ID de la definición"
// @Success 200 {object} Record
// @Failure 400 {string} string "date must be YYYY-MM-DD"
// @Failure 401 {string} string "unauthorized"
// @Failure 502 {string} string "write failed"
// @Router /days/{date}/status/{medID}/toggle [post]
func toggleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireDevice(w, r) {
			return
		}
		date, ok := dateParam(w, r)
		if !ok {
			return
		}

		rec, err := svc.Toggle(r.Context(), date, chi.URLParam(r, "medID"))
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, "invalid medication id", http.StatusBadRequest)
				return
			}
			writeFailed(w)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func addNoteHandler(svc *Service, profilesSvc *profiles.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := middleware.GetDevice(r.Context())
		if !ok || strings.TrimSpace(d.DeviceID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		date, ok := dateParam(w, r)
		if !ok {
			return
		}

		var req noteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		author := profilesSvc.DisplayName(r.Context(), d.DeviceID)
		n, err := svc.AddNote(r.Context(), date, req.Text, author)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, "text is required", http.StatusBadRequest)
				return
			}
			writeFailed(w)
			return
		}
		writeJSON(w, http.StatusCreated, n)
	}
}

func addReadingHandler(svc *Service, profilesSvc *profiles.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := middleware.GetDevice(r.Context())
		if !ok || strings.TrimSpace(d.DeviceID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		date, ok := dateParam(w, r)
		if !ok {
			return
		}

		var req readingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		author := profilesSvc.DisplayName(r.Context(), d.DeviceID)
		rd, err := svc.AddReading(r.Context(), date, req.Systolic, req.Diastolic, author)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, "systolic and diastolic are required", http.StatusBadRequest)
				return
			}
			writeFailed(w)
			return
		}
		writeJSON(w, http.StatusCreated, rd)
	}
}

// watchDayHandler godoc
// @Summary Stream del día (SSE)
// @Description Stream server-sent events de snapshots completos del día; el primero llega al conectar. Cortar la conexión cancela la suscripción.
// @Tags days
// @Produce text/event-stream
// @Param date path string true "Fecha YYYY-MM-DD"
// @Success 200 {string} string "eventos `data: <Record JSON>`"
// @Failure 400 {string} string "date must be YYYY-MM-DD"
// @Failure 401 {string} string "unauthorized"
// @Router /days/{date}/watch [get]
func watchDayHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireDevice(w, r) {
			return
		}
		date, ok := dateParam(w, r)
		if !ok {
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		sess := svc.NewSession()
		defer sess.Close()

		ctx := r.Context()
		if err := sess.Switch(ctx, date); err != nil {
			// Degradación: un único snapshot vacío y se corta el stream.
			writeEvent(w, flusher, Empty(date))
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-sess.Updates():
				writeEvent(w, flusher, snap.Record)
			}
		}
	}
}

// NewSession expone el sincronizador sobre el mismo repositorio del
// servicio (una fecha activa por sesión, ver Session).
func (s *Service) NewSession() *Session {
	return NewSession(s.repo)
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, rec Record) {
	b, err := json.Marshal(rec)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", b)
	flusher.Flush()
}

// dateParam valida y canonicaliza la fecha del path. Siempre se pasa el
// string formateado: es LA clave del registro.
func dateParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "date"))
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return "", false
	}
	return t.Format(DateLayout), true
}

func writeFailed(w http.ResponseWriter) {
	// Aviso visible pero no bloqueante; sin retry automático.
	http.Error(w, "no se pudo guardar, reintentá más tarde", http.StatusBadGateway)
}

func requireDevice(w http.ResponseWriter, r *http.Request) bool {
	d, ok := middleware.GetDevice(r.Context())
	if !ok || strings.TrimSpace(d.DeviceID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

// writeJSON duplicado a propósito por módulo (ver medications/handler.go).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
