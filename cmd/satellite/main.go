// The satellite binary hosts a single test's save endpoint on its own port
// and forwards every finished result to the central server. The forward is
// best-effort with a short timeout: the patient-facing response never waits
// on, or fails because of, the central server.
package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/SofiaRebecca/Glaucoma/internal/config"
	"github.com/SofiaRebecca/Glaucoma/internal/ingest"
)

// testDefaults fills payload fields a test page may omit, per test kind.
var testDefaults = map[string]map[string]any{
	"visual_field": {
		"total_points":  54,
		"points_tested": 54,
	},
	"csv1000":        {"language": "English"},
	"pelli_robinson": {"language": "English"},
}

func main() {
	cfg := config.LoadSatellite()
	client := ingest.NewClient(cfg.CentralURL)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/api/save_result", saveResult(cfg.Test, client))

	log.Printf("%s satellite listening on %s (central: %s)", cfg.Test, cfg.Addr, cfg.CentralURL)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Fatal(err)
	}
}

func saveResult(test string, client *ingest.Client) http.HandlerFunc {
	type response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload == nil {
			writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "no data received"})
			return
		}
		for key, def := range testDefaults[test] {
			if _, ok := payload[key]; !ok {
				payload[key] = def
			}
		}
		patientName, _ := payload["patient_name"].(string)
		if patientName == "" {
			patientName = "Unknown"
		}

		if err := client.SubmitResult(r.Context(), test, patientName, payload); err != nil {
			// The local test still finished fine; losing the upload is
			// logged, not surfaced to the patient.
			log.Printf("satellite: could not deliver %s result for %s: %v", test, patientName, err)
		} else {
			log.Printf("satellite: delivered %s result for %s", test, patientName)
		}

		writeJSON(w, http.StatusOK, response{Success: true, Message: "Test completed successfully"})
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
