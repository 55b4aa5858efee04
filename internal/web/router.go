package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/SofiaRebecca/Glaucoma/internal/handlers"
	"github.com/SofiaRebecca/Glaucoma/internal/relay"
	"github.com/SofiaRebecca/Glaucoma/internal/store"
)

// Router wires the central server surface: the ingest API, the read API for
// the doctor dashboard, QR codes for opening tests, and the relay websocket.
func Router(s *store.Store, hub *relay.Hub) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handlers.Health)

	// Ingest: called by test pages and remote satellite test servers.
	r.Post("/api/save_test_result", handlers.SaveTestResult(s))
	r.Post("/api/save_notes", handlers.SaveNotes(s))

	// Dashboard reads.
	r.Get("/api/patient_history", handlers.PatientHistory(s))
	r.Get("/api/patients", handlers.Patients)
	r.Get("/api/recent_results", handlers.RecentResults)

	// QR image that opens a test page directly.
	r.Get("/qr/{test}.png", handlers.TestQR)

	// Real-time doctor/patient relay.
	r.Get("/ws", hub.ServeWS)

	return r
}
