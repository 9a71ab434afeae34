package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the process settings, loaded once at startup.
type Config struct {
	Port          string
	DatabaseDSN   string
	JWTSecret     string
	CloudinaryURL string
}

// Load reads .env (if present) and resolves settings from the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Port:          getEnv("PORT", "5000"),
		DatabaseDSN:   getEnv("DATABASE_DSN", "root:root@tcp(127.0.0.1:3306)/threads?charset=utf8mb4&parseTime=True&loc=Local"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret"),
		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
