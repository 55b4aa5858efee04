package handlers

import (
	"net/http"
	"strings"

	"github.com/SofiaRebecca/Glaucoma/internal/services"
	"github.com/SofiaRebecca/Glaucoma/internal/store"
)

type historyResponse struct {
	PatientName string                `json:"patient_name"`
	History     map[string][][]string `json:"history"`
}

// PatientHistory returns every stored test row for one patient, grouped by
// category sheet. Notes are deliberately absent.
//
// GET /api/patient_history?patient_name=X
func PatientHistory(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(r.URL.Query().Get("patient_name"))
		if name == "" {
			writeJSON(w, http.StatusBadRequest, statusResponse{Success: false, Message: "patient_name is required"})
			return
		}
		writeJSON(w, http.StatusOK, historyResponse{
			PatientName: name,
			History:     s.PatientHistory(name),
		})
	}
}

type patientItem struct {
	Name       string `json:"name"`
	LastSeenAt string `json:"last_seen_at"`
}

type resultItem struct {
	Category    string  `json:"category"`
	PatientName string  `json:"patient_name"`
	Accuracy    float64 `json:"accuracy"`
	CreatedAt   string  `json:"created_at"`
}

// Patients lists recently seen patients from the registry for the dashboard.
//
// GET /api/patients
func Patients(w http.ResponseWriter, r *http.Request) {
	items := make([]patientItem, 0)
	for _, p := range services.RecentPatients(50) {
		items = append(items, patientItem{
			Name:       p.Name,
			LastSeenAt: p.LastSeenAt.Format("2006-01-02 15:04:05"),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"patients": items})
}

// RecentResults lists the latest ingested results from the registry audit log.
//
// GET /api/recent_results
func RecentResults(w http.ResponseWriter, r *http.Request) {
	items := make([]resultItem, 0)
	for _, row := range services.RecentResults(20) {
		items = append(items, resultItem{
			Category:    row.Category,
			PatientName: row.PatientName,
			Accuracy:    row.Accuracy,
			CreatedAt:   row.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": items})
}
