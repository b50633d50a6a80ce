package env

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv reads a .env file from the working directory when there is one.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Println("No .env file found, assuming environment variables are set directly.")
	}
}

// Get returns the value of key, or def when it is unset or empty.
func Get(key, def string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return def
}

// Int parses key as an integer. Unparseable values are logged and replaced by def.
func Int(key string, def int) int {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Printf("Ignoring %s=%q: %v", key, val, err)
		return def
	}
	return n
}

func Float(key string, def float64) float64 {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return def
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		log.Printf("Ignoring %s=%q: %v", key, val, err)
		return def
	}
	return f
}

func Bool(key string, def bool) bool {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return def
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		log.Printf("Ignoring %s=%q: %v", key, val, err)
		return def
	}
	return b
}

// Duration parses key with time.ParseDuration, e.g. "750ms" or "30s".
func Duration(key string, def time.Duration) time.Duration {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		log.Printf("Ignoring %s=%q: %v", key, val, err)
		return def
	}
	return d
}
