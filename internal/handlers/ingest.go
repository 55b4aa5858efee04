package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/SofiaRebecca/Glaucoma/internal/services"
	"github.com/SofiaRebecca/Glaucoma/internal/store"
)

// SaveTestResult is the ingest endpoint every test runner reports to,
// whether the local test pages or a remote satellite server.
//
// POST /api/save_test_result
func SaveTestResult(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload == nil {
			writeJSON(w, http.StatusBadRequest, statusResponse{Success: false, Message: "no data received"})
			return
		}

		testName := stringField(payload, "test_name", "unknown")
		patientName := stringField(payload, "patient_name", "Unknown")
		log.Printf("ingest: saving %s result for patient %s", testName, patientName)

		if !s.SubmitRecord(testName, patientName, payload) {
			writeJSON(w, http.StatusInternalServerError, statusResponse{Success: false, Message: "failed to save test result"})
			return
		}

		services.TouchPatient(patientName)
		services.LogResult(testName, patientName,
			store.Accuracy(intField(payload, "total_points"), intField(payload, "correct_points")))

		writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: "Test result saved successfully"})
	}
}

// SaveNotes stores a clinician note for a patient. The note fields may come
// nested under "notes" or flat in the request body.
//
// POST /api/save_notes
func SaveNotes(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload == nil {
			writeJSON(w, http.StatusBadRequest, statusResponse{Success: false, Message: "no data received"})
			return
		}

		patientName := stringField(payload, "patient_name", "Unknown")
		note, _ := payload["notes"].(map[string]any)
		if note == nil {
			note = payload
		}

		if !s.SubmitNote(patientName, note) {
			writeJSON(w, http.StatusInternalServerError, statusResponse{Success: false, Message: "failed to save notes"})
			return
		}

		services.TouchPatient(patientName)
		writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: "Notes saved successfully"})
	}
}
