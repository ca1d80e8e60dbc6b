package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	PORT        string
	DB_URL      string
	JWT_SECRET  string
	CORS_ORIGIN string
	APP_URL     string

	STRIPE_SECRET_KEY     string
	STRIPE_WEBHOOK_SECRET string

	// Price of one pre-verified tester in major currency units. The
	// entitlement math divides purchase totals by this, so a zero or
	// negative value is a fatal misconfiguration.
	SINGLE_TESTER_PRICE float64

	GOOGLE_CLIENT_ID         string
	GOOGLE_CLIENT_SECRET     string
	GOOGLE_REDIRECT_URL      string
	GOOGLE_FRONTEND_REDIRECT string

	S3_ENDPOINT   string
	S3_ACCESS_KEY string
	S3_SECRET_KEY string
	S3_BUCKET     string
	S3_PUBLIC_URL string
	S3_USE_SSL    bool
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")
	CORS_ORIGIN = getEnv("CORS_ORIGIN", "http://localhost:3000")
	APP_URL = getEnv("APP_URL", "http://localhost:3000")

	STRIPE_SECRET_KEY = mustEnv("STRIPE_SECRET_KEY")
	STRIPE_WEBHOOK_SECRET = mustEnv("STRIPE_WEBHOOK_SECRET")

	SINGLE_TESTER_PRICE = mustFloat("SINGLE_TESTER_PRICE", "0.99")

	GOOGLE_CLIENT_ID = mustEnv("GOOGLE_CLIENT_ID")
	GOOGLE_CLIENT_SECRET = mustEnv("GOOGLE_CLIENT_SECRET")
	GOOGLE_REDIRECT_URL = mustEnv("GOOGLE_REDIRECT_URL")
	GOOGLE_FRONTEND_REDIRECT = getEnv("GOOGLE_FRONTEND_REDIRECT", "")

	S3_ENDPOINT = mustEnv("S3_ENDPOINT")
	S3_ACCESS_KEY = mustEnv("S3_ACCESS_KEY")
	S3_SECRET_KEY = mustEnv("S3_SECRET_KEY")
	S3_BUCKET = getEnv("S3_BUCKET", "app-screenshots")
	S3_PUBLIC_URL = mustEnv("S3_PUBLIC_URL")
	S3_USE_SSL = getEnv("S3_USE_SSL", "true") == "true"
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func mustFloat(key string, fallback string) float64 {
	raw := getEnv(key, fallback)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		log.Fatalf("Invalid value for %s: %q (must be a positive number)", key, raw)
	}
	return v
}
