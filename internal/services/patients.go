package services

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/SofiaRebecca/Glaucoma/internal/db"
	"github.com/SofiaRebecca/Glaucoma/internal/models"
)

// TouchPatient records that we just heard from (or about) a patient,
// creating the registry row on first sight. Registry failures are logged and
// swallowed: losing a last-seen bump must never fail a result submission.
func TouchPatient(name string) {
	if db.Conn() == nil || name == "" {
		return
	}
	now := time.Now()
	var p models.Patient
	err := db.Conn().Where("name = ?", name).First(&p).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		p = models.Patient{Name: name, LastSeenAt: now}
		if err := db.Conn().Create(&p).Error; err != nil {
			log.Printf("registry: creating patient %q: %v", name, err)
		}
	case err != nil:
		log.Printf("registry: looking up patient %q: %v", name, err)
	default:
		p.LastSeenAt = now
		if err := db.Conn().Save(&p).Error; err != nil {
			log.Printf("registry: updating patient %q: %v", name, err)
		}
	}
}

// LogResult appends one audit row for an ingested result.
func LogResult(category, patientName string, accuracy float64) {
	if db.Conn() == nil {
		return
	}
	row := models.ResultLog{Category: category, PatientName: patientName, Accuracy: accuracy}
	if err := db.Conn().Create(&row).Error; err != nil {
		log.Printf("registry: logging %s result for %q: %v", category, patientName, err)
	}
}

// RecentPatients lists patients by most recent activity. Returns an empty
// slice when the registry is down.
func RecentPatients(limit int) []models.Patient {
	if db.Conn() == nil {
		return nil
	}
	var out []models.Patient
	if err := db.Conn().Order("last_seen_at DESC").Limit(limit).Find(&out).Error; err != nil {
		log.Printf("registry: listing patients: %v", err)
		return nil
	}
	return out
}

// RecentResults lists the latest ingested results, newest first.
func RecentResults(limit int) []models.ResultLog {
	if db.Conn() == nil {
		return nil
	}
	var out []models.ResultLog
	if err := db.Conn().Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error; err != nil {
		log.Printf("registry: listing results: %v", err)
		return nil
	}
	return out
}
