package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the central server binary needs from the
// environment. Satellite binaries use SatelliteConfig instead.
type Config struct {
	Addr         string // listen address, e.g. ":5000"
	WorkbookPath string // xlsx file for test results
	RegistryPath string // sqlite file for the patient registry
}

// Load reads an optional .env file and then the environment.
// A missing .env is fine; values always fall back to defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: skipping .env: %v", err)
	}
	return Config{
		Addr:         getEnv("ADDR", ":5000"),
		WorkbookPath: getEnv("WORKBOOK_PATH", "glaucoma_test_results.xlsx"),
		RegistryPath: getEnv("REGISTRY_PATH", "glaucoma.db"),
	}
}

// SatelliteConfig configures a single-test satellite server.
type SatelliteConfig struct {
	Addr       string // listen address for the local test UI
	CentralURL string // base URL of the central server
	Test       string // category key this satellite runs, e.g. "visual_field"
}

// LoadSatellite reads satellite settings from the environment.
func LoadSatellite() SatelliteConfig {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: skipping .env: %v", err)
	}
	return SatelliteConfig{
		Addr:       getEnv("ADDR", ":8001"),
		CentralURL: getEnv("CENTRAL_URL", "http://localhost:5000"),
		Test:       getEnv("SATELLITE_TEST", "visual_field"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
