package env

import (
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
)

const defaultTimezone = "America/Sao_Paulo"

var Env map[string]string

func GetEnv(key, def string) string {
	// First check our loaded Env map
	if val, ok := Env[key]; ok {
		return val
	}
	// Fallback to OS environment variables (for Docker/tests)
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// GetInt reads an integer setting, returning def when unset or malformed.
func GetInt(key string, def int) int {
	raw := GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Warnf("[Env] %s=%q is not an integer, using %d", key, raw, def)
		return def
	}
	return v
}

// GetBool reads a boolean setting ("true", "1", ...), returning def when unset or malformed.
func GetBool(key string, def bool) bool {
	raw := GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func SetupEnvFile() {
	// Look for .env file in project root
	envFiles := []string{
		".env",          // Current directory
		"../../.env",    // From cmd/ventre to project root
		"../../../.env", // Fallback for deeper nesting
	}

	var err error
	for _, envFile := range envFiles {
		Env, err = godotenv.Read(envFile)
		if err == nil {
			return
		}
	}

	// Container deployments inject everything through the OS environment.
	Env = map[string]string{}
	log.Warn("[Env] no .env file found, using OS environment only")
}

func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}

// Location returns the business timezone used for due dates and reminder slots.
func Location() *time.Location {
	name := GetEnv("APP_TIMEZONE", defaultTimezone)
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Errorf("[Env] unknown APP_TIMEZONE %q, falling back to UTC: %v", name, err)
		return time.UTC
	}
	return loc
}
