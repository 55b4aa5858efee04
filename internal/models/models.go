package models

import "time"

// Patient is one person the clinic has seen, keyed by the free-text name the
// tests and the relay report. LastSeenAt bumps whenever the patient
// identifies on the relay or a result arrives for them.
type Patient struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name       string `gorm:"uniqueIndex;not null"` // unique patient identity
	LastSeenAt time.Time
}

// ResultLog is the audit trail of ingested results, one row per submission.
// The authoritative record lives in the workbook; this table powers the
// dashboard's recent-activity view.
type ResultLog struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	Category    string
	PatientName string
	Accuracy    float64
}
