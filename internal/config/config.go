package config

import (
	"os"
	"strings"

	"family-med-calendar/internal/platform/logger"

	"github.com/joho/godotenv"
)

// Config agrupa todo lo que el servicio lee del entorno.
// Ningún campo es obligatorio: sin store remoto el servicio arranca
// en memoria (modo dev), y sin identity provider acepta X-Device-ID.
type Config struct {
	Port string

	// Backend de documentos: MongoURI > PostgresDSN > memoria.
	MongoURI    string
	MongoDB     string
	PostgresDSN string

	// Identity provider anónimo (opcional; vacío = modo dev).
	IdentityBaseURL string
	IdentityAPIKey  string

	// URL pública del calendario, usada por el share-link.
	PublicURL string
}

func Load(log logger.Logger) Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file, using system env", nil)
	}

	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		MongoURI:        os.Getenv("MONGO_URI"),
		MongoDB:         getEnv("MONGO_DB", "family_med_calendar"),
		PostgresDSN:     os.Getenv("DB_DSN"),
		IdentityBaseURL: os.Getenv("IDENTITY_BASE_URL"),
		IdentityAPIKey:  os.Getenv("IDENTITY_API_KEY"),
		PublicURL:       getEnv("PUBLIC_URL", "http://localhost:8080"),
	}

	switch {
	case cfg.MongoURI != "":
		log.Info("document store backend", map[string]any{"backend": "mongo"})
	case cfg.PostgresDSN != "":
		log.Info("document store backend", map[string]any{"backend": "postgres"})
	default:
		log.Warn("no MONGO_URI ni DB_DSN, usando store en memoria (dev)", nil)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}
