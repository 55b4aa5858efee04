package db

import (
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/SofiaRebecca/Glaucoma/internal/models"
)

var conn *gorm.DB

// Init opens (or creates) the patient registry at path. The registry is an
// optional collaborator: callers log the error and continue without it, and
// everything reading Conn() tolerates nil.
func Init(path string) error {
	var err error
	conn, err = gorm.Open(sqlite.Open(path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"), &gorm.Config{})
	if err != nil {
		return err
	}

	// SQLite works best with a single writer; cap the pool accordingly.
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := conn.AutoMigrate(
		&models.Patient{},
		&models.ResultLog{},
	); err != nil {
		return err
	}

	// Composite index that GORM doesn't auto-create from struct tags.
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_result_log_patient ON result_logs(patient_name, created_at)")

	log.Println("patient registry ready (sqlite)")
	return nil
}

func Conn() *gorm.DB {
	return conn
}
