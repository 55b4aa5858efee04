package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/SofiaRebecca/Glaucoma/internal/db"
)

func initRegistry(t *testing.T) {
	t.Helper()
	if err := db.Init(filepath.Join(t.TempDir(), "registry.db")); err != nil {
		t.Fatalf("db init: %v", err)
	}
}

func TestTouchPatientUpsertsSingleRow(t *testing.T) {
	initRegistry(t)

	TouchPatient("Jane Doe")
	first := RecentPatients(10)
	if len(first) != 1 {
		t.Fatalf("expected 1 patient after first touch, got %d", len(first))
	}
	seen := first[0].LastSeenAt

	time.Sleep(10 * time.Millisecond)
	TouchPatient("Jane Doe")

	patients := RecentPatients(10)
	if len(patients) != 1 {
		t.Fatalf("expected touch to upsert, got %d rows", len(patients))
	}
	if !patients[0].LastSeenAt.After(seen) {
		t.Errorf("LastSeenAt not bumped: %v -> %v", seen, patients[0].LastSeenAt)
	}
}

func TestRecentPatientsOrdersByActivity(t *testing.T) {
	initRegistry(t)

	TouchPatient("older")
	time.Sleep(10 * time.Millisecond)
	TouchPatient("newer")

	patients := RecentPatients(10)
	if len(patients) != 2 {
		t.Fatalf("expected 2 patients, got %d", len(patients))
	}
	if patients[0].Name != "newer" {
		t.Errorf("expected most recent patient first, got %q", patients[0].Name)
	}
}

func TestLogResultAndRecentResults(t *testing.T) {
	initRegistry(t)

	LogResult("visual_field", "Jane Doe", 88.89)
	LogResult("sparcs", "Jane Doe", 75)

	results := RecentResults(10)
	if len(results) != 2 {
		t.Fatalf("expected 2 result rows, got %d", len(results))
	}
	if results[0].Category != "sparcs" {
		t.Errorf("expected newest result first, got %q", results[0].Category)
	}
}
