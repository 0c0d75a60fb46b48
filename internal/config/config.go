package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// DataDir is the FileStore root directory.
	DataDir string
	// StoreBackend selects the record store: "file" or "postgres".
	StoreBackend string

	DBHost string
	DBPort string
	DBUser string
	DBName string

	// Bootstrap manager credential. Not stored in the record store.
	ManagerUsername string
	ManagerPassword string
}

// Load reads configuration from the environment, with a best-effort .env
// file. A missing .env is fine.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		DataDir:         getenv("DATA_DIR", "database"),
		StoreBackend:    getenv("STORE_BACKEND", "file"),
		DBHost:          getenv("DB_HOST", "localhost"),
		DBPort:          getenv("DB_PORT", "5432"),
		DBUser:          getenv("DB_USER", "postgres"),
		DBName:          getenv("DB_NAME", "bankaccount"),
		ManagerUsername: getenv("MANAGER_USERNAME", "admin"),
		ManagerPassword: getenv("MANAGER_PASSWORD", "admin"),
	}
}

// DSN assembles the Postgres connection string for the postgres backend.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBName,
	)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
