package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"family-med-calendar/internal/router"
)

func TestHTTP_EndToEnd_DayFlow(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	deviceA := "device-ana"
	deviceB := "device-beto"
	date := "2024-03-05" // martes, NO es el último martes de marzo

	// 1) Sin identidad no se entra
	{
		st, _ := doReq(t, ts.URL, "GET", "/medications", "", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without device, got %d", st)
		}
	}

	// 2) El listado arranca sembrado con el set default
	{
		st, body := doReq(t, ts.URL, "GET", "/medications", deviceA, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list medications, got %d body=%s", st, string(body))
		}
		var defs []struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(body, &defs)
		if len(defs) == 0 {
			t.Fatalf("expected seeded medications, body=%s", string(body))
		}
		found := false
		for _, d := range defs {
			if d.ID == "t4" {
				found = true
			}
		}
		if !found {
			t.Fatalf("seeded list should include t4, body=%s", string(body))
		}
	}

	// 3) Checklist del día: t4 en Ayunas, paracetamol aparte
	{
		st, body := doReq(t, ts.URL, "GET", "/schedule?date="+date, deviceA, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 schedule, got %d body=%s", st, string(body))
		}
		var resp struct {
			Date  string `json:"date"`
			Slots []struct {
				Slot        string `json:"slot"`
				Medications []struct {
					ID string `json:"id"`
				} `json:"medications"`
			} `json:"slots"`
			AsNeeded []struct {
				ID string `json:"id"`
			} `json:"as_needed"`
		}
		_ = json.Unmarshal(body, &resp)

		if len(resp.Slots) == 0 || resp.Slots[0].Slot != "Ayunas" {
			t.Fatalf("expected Ayunas first, body=%s", string(body))
		}
		if len(resp.Slots[0].Medications) == 0 || resp.Slots[0].Medications[0].ID != "t4" {
			t.Fatalf("expected t4 in Ayunas, body=%s", string(body))
		}
		asNeeded := false
		for _, d := range resp.AsNeeded {
			if d.ID == "paracetamol" {
				asNeeded = true
			}
		}
		if !asNeeded {
			t.Fatalf("expected paracetamol in as_needed, body=%s", string(body))
		}
		for _, g := range resp.Slots {
			for _, d := range g.Medications {
				if d.ID == "paracetamol" {
					t.Fatalf("paracetamol must not be scheduled, body=%s", string(body))
				}
			}
		}
	}

	// 4) Fecha inválida => 400
	{
		st, _ := doReq(t, ts.URL, "GET", "/schedule?date=05-03-2024", deviceA, nil)
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for bad date, got %d", st)
		}
	}

	// 5) Día sin documento: defaults vacíos
	{
		st, body := doReq(t, ts.URL, "GET", "/days/"+date, deviceA, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get day, got %d body=%s", st, string(body))
		}
		rec := decodeRecord(t, body)
		if rec.Date != date || len(rec.Status) != 0 || len(rec.Notes) != 0 || len(rec.BloodPressure) != 0 {
			t.Fatalf("expected empty defaults, body=%s", string(body))
		}
	}

	// 6) Toggle marca la toma; el resto del registro no se toca
	{
		st, body := doReq(t, ts.URL, "POST", "/days/"+date+"/status/t4/toggle", deviceA, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 toggle, got %d body=%s", st, string(body))
		}
		rec := decodeRecord(t, body)
		if !rec.Status["t4"] {
			t.Fatalf("expected t4 checked, body=%s", string(body))
		}
	}

	// 7) Nota sin perfil guardado => autor Anónimo
	{
		st, body := doReq(t, ts.URL, "POST", "/days/"+date+"/notes", deviceB, map[string]any{
			"text": "tomó todo con el desayuno",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 add note, got %d body=%s", st, string(body))
		}
		var n struct {
			Author string `json:"author"`
		}
		_ = json.Unmarshal(body, &n)
		if n.Author != "Anónimo" {
			t.Fatalf("expected Anónimo author, got %q", n.Author)
		}
	}

	// 8) Guardar perfil y verificar que las cargas siguientes lo usan
	{
		st, body := doReq(t, ts.URL, "PUT", "/me/profile", deviceB, map[string]any{
			"display_name": "Beto",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 save profile, got %d body=%s", st, string(body))
		}

		st, body = doReq(t, ts.URL, "GET", "/me/profile", deviceB, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get profile, got %d body=%s", st, string(body))
		}
		var p struct {
			DisplayName string `json:"display_name"`
		}
		_ = json.Unmarshal(body, &p)
		if p.DisplayName != "Beto" {
			t.Fatalf("expected display_name Beto, got %q", p.DisplayName)
		}
	}

	// 9) Toma de presión atribuida al nombre guardado
	{
		st, body := doReq(t, ts.URL, "POST", "/days/"+date+"/blood-pressure", deviceB, map[string]any{
			"systolic":  "130",
			"diastolic": "85",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 add reading, got %d body=%s", st, string(body))
		}
		var rd struct {
			Author string `json:"author"`
		}
		_ = json.Unmarshal(body, &rd)
		if rd.Author != "Beto" {
			t.Fatalf("expected author Beto, got %q", rd.Author)
		}
	}

	// 10) El registro acumuló las tres escrituras, cada campo por su lado
	{
		st, body := doReq(t, ts.URL, "GET", "/days/"+date, deviceA, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get day, got %d body=%s", st, string(body))
		}
		rec := decodeRecord(t, body)
		if !rec.Status["t4"] {
			t.Fatalf("toggle lost, body=%s", string(body))
		}
		if len(rec.Notes) != 1 || rec.Notes[0].Author != "Anónimo" {
			t.Fatalf("expected 1 anonymous note, body=%s", string(body))
		}
		if len(rec.BloodPressure) != 1 || rec.BloodPressure[0].Systolic != "130" {
			t.Fatalf("expected 1 reading, body=%s", string(body))
		}
	}

	// 11) Otro día sigue vacío: la clave es la fecha
	{
		st, body := doReq(t, ts.URL, "GET", "/days/2024-03-06", deviceA, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get other day, got %d body=%s", st, string(body))
		}
		rec := decodeRecord(t, body)
		if len(rec.Status) != 0 || len(rec.Notes) != 0 {
			t.Fatalf("other day should be empty, body=%s", string(body))
		}
	}
}

func TestHTTP_MedicationCRUD(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	device := "device-ana"

	// Crear sin slot => 400
	{
		st, _ := doReq(t, ts.URL, "POST", "/medications", device, map[string]any{
			"name": "Enalapril",
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 create without slot, got %d", st)
		}
	}

	var id string
	{
		st, body := doReq(t, ts.URL, "POST", "/medications", device, map[string]any{
			"name":      "Vitamina D",
			"dosage":    "1 gota",
			"time_slot": "Mañana Post desayuno",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create, got %d body=%s", st, string(body))
		}
		var resp struct {
			ID        string `json:"id"`
			Frequency string `json:"frequency"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.ID == "" {
			t.Fatalf("create: missing id body=%s", string(body))
		}
		if resp.Frequency != "Diario" {
			t.Fatalf("expected default frequency Diario, got %q", resp.Frequency)
		}
		id = resp.ID
	}

	{
		st, body := doReq(t, ts.URL, "PUT", "/medications/"+id, device, map[string]any{
			"name":      "Vitamina D3",
			"dosage":    "2 gotas",
			"time_slot": "Mañana Post desayuno",
			"frequency": "Diario",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 update, got %d body=%s", st, string(body))
		}
	}

	{
		st, _ := doReq(t, ts.URL, "DELETE", "/medications/"+id, device, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 delete, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "DELETE", "/medications/"+id, device, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 on repeated delete, got %d", st)
		}
	}
}

func TestHTTP_ShareLink(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{PublicURL: "https://calendario.example.com"}))
	defer ts.Close()

	// Compartir no exige identidad.
	st, body := doReq(t, ts.URL, "GET", "/share-link", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 share-link, got %d body=%s", st, string(body))
	}

	var resp struct {
		URL string `json:"url"`
	}
	_ = json.Unmarshal(body, &resp)
	if !strings.HasPrefix(resp.URL, "https://wa.me/?text=") {
		t.Fatalf("expected wa.me deep link, got %q", resp.URL)
	}
	if !strings.Contains(resp.URL, "calendario.example.com") {
		t.Fatalf("expected public URL in link, got %q", resp.URL)
	}
}

func TestHTTP_Health(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	st, body := doReq(t, ts.URL, "GET", "/health", "", nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("health: got %d %q", st, string(body))
	}
}

type recordBody struct {
	Date   string          `json:"date"`
	Status map[string]bool `json:"medication_status"`
	Notes  []struct {
		Text   string `json:"text"`
		Author string `json:"author"`
	} `json:"notes"`
	BloodPressure []struct {
		Systolic  string `json:"systolic"`
		Diastolic string `json:"diastolic"`
		Author    string `json:"author"`
	} `json:"blood_pressure"`
}

func decodeRecord(t *testing.T, body []byte) recordBody {
	t.Helper()
	var rec recordBody
	if err := json.Unmarshal(body, &rec); err != nil {
		t.Fatalf("decode record: %v body=%s", err, string(body))
	}
	return rec
}

func doReq(t *testing.T, baseURL, method, path, deviceID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if deviceID != "" {
		req.Header.Set("X-Device-ID", deviceID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
