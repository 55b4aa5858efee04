package main

import (
	"log"
	"net/http"

	"github.com/SofiaRebecca/Glaucoma/internal/config"
	"github.com/SofiaRebecca/Glaucoma/internal/db"
	"github.com/SofiaRebecca/Glaucoma/internal/relay"
	"github.com/SofiaRebecca/Glaucoma/internal/services"
	"github.com/SofiaRebecca/Glaucoma/internal/store"
	"github.com/SofiaRebecca/Glaucoma/internal/web"
)

func main() {
	cfg := config.Load()

	// The registry is optional: without it the dashboard loses the patient
	// list, but the session itself keeps working.
	if err := db.Init(cfg.RegistryPath); err != nil {
		log.Printf("patient registry unavailable: %v (continuing without it)", err)
	}

	st := store.Open(cfg.WorkbookPath)

	hub := relay.NewHub()
	hub.OnPatientIdentified = services.TouchPatient

	r := web.Router(st, hub)

	log.Printf("glaucoma screening server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Fatal(err)
	}
}
