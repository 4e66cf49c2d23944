package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config agrupa la configuración del API, leída de env vars.
type Config struct {
	Environment string
	ServerPort  int

	// Si está vacío, el router usa repos in-memory (modo dev).
	DBDSN string

	// Auth hosted: secret HS256 para verificar access tokens localmente,
	// o base URL + api key para verificar contra el servicio.
	AuthJWTSecret string
	AuthBaseURL   string
	AuthAPIKey    string

	// Serverless functions de billing (checkout / customer portal).
	FunctionsBaseURL string
	FunctionsAPIKey  string

	LogLevel  string
	LogFormat string
}

// Load lee configuración desde env vars, con defaults de dev.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	return &Config{
		Environment:      getEnv("ENVIRONMENT", "development"),
		ServerPort:       port,
		DBDSN:            os.Getenv("DB_DSN"),
		AuthJWTSecret:    os.Getenv("AUTH_JWT_SECRET"),
		AuthBaseURL:      os.Getenv("AUTH_BASE_URL"),
		AuthAPIKey:       os.Getenv("AUTH_API_KEY"),
		FunctionsBaseURL: os.Getenv("FUNCTIONS_BASE_URL"),
		FunctionsAPIKey:  os.Getenv("FUNCTIONS_API_KEY"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
