package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func LoadEnv() error {
	// Try to load .env file if it exists (for local development)
	// On production, environment variables are set directly
	err := godotenv.Load()
	if err != nil {
		// .env file not found is not an error - it might be on production
		// Environment variables are already available in os.Getenv()
		return nil
	}
	return nil
}

// ValidateEnv checks that critical environment variables are set.
// Returns an error if any critical variable is missing.
func ValidateEnv() error {
	var missing []string

	// Critical variables - application cannot function without these
	if os.Getenv("JWT_SECRET") == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if os.Getenv("DATABASE_URL") == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	// Non-critical variables - log warnings but don't fail
	if os.Getenv("FIREBASE_STORAGE_BUCKET") == "" {
		log.Println("WARNING: FIREBASE_STORAGE_BUCKET not set - image uploads will fail")
	}
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		log.Println("WARNING: GOOGLE_APPLICATION_CREDENTIALS not set - Firebase features may not work")
	}
	if os.Getenv("REDIS_URL") == "" {
		log.Println("WARNING: REDIS_URL not set - list caching disabled")
	}
	if os.Getenv("ADMIN_URL") == "" {
		log.Println("WARNING: ADMIN_URL not set - CORS may not work correctly")
	}

	return nil
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// UploadTimeout returns the per-file upload deadline, overridable via
// UPLOAD_TIMEOUT_SECONDS. A single slow file fails on its own without
// holding the rest of a batch hostage.
func UploadTimeout() time.Duration {
	raw := os.Getenv("UPLOAD_TIMEOUT_SECONDS")
	if raw == "" {
		return 60 * time.Second
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		log.Printf("WARNING: invalid UPLOAD_TIMEOUT_SECONDS %q, using default", raw)
		return 60 * time.Second
	}
	return time.Duration(secs) * time.Second
}
