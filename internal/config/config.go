package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config collects everything read from the environment. All variables are
// optional; defaults match the original tool's file layout.
type Config struct {
	Addr string

	// External read-only sources.
	ProcessFile string // .csv or .xlsx
	UserFile    string
	ResumeDir   string

	// Persisted store.
	StoreBackend string // "json" or "sqlite"
	DataFile     string
	SQLitePath   string

	JWTSecret string

	LogFormat string // "text" or "json"
	LogLevel  string
}

// Load reads .env when present (ignored in deployments without one) and
// fills the config from the environment.
func Load() *Config {
	_ = godotenv.Load()
	return &Config{
		Addr:         getEnv("SKILLSURVEY_ADDR", ":8080"),
		ProcessFile:  getEnv("SKILLSURVEY_PROCESS_FILE", "processes.csv"),
		UserFile:     getEnv("SKILLSURVEY_USER_FILE", "users.csv"),
		ResumeDir:    getEnv("SKILLSURVEY_RESUME_DIR", "resumes"),
		StoreBackend: getEnv("SKILLSURVEY_STORE", "json"),
		DataFile:     getEnv("SKILLSURVEY_DATA_FILE", "data.json"),
		SQLitePath:   getEnv("SKILLSURVEY_SQLITE_PATH", "data.db"),
		JWTSecret:    getEnv("SKILLSURVEY_JWT_SECRET", ""),
		LogFormat:    getEnv("SKILLSURVEY_LOG_FORMAT", "text"),
		LogLevel:     getEnv("SKILLSURVEY_LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
