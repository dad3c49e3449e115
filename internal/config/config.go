package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	SweepInterval    time.Duration
	SweepWorkers     int
	FetchTimeout     time.Duration
	FetchRate        float64
	FailureThreshold int
	OplogCapacity    int
	UserAgent        string

	PGHost     string
	PGPort     int
	PGUser     string
	PGPassword string
	PGDatabase string

	ControlAddr string
}

func Load() Config {
	return Config{
		SweepInterval:    parseDurationEnv("FEEDSWEEP_INTERVAL", time.Minute),
		SweepWorkers:     parseIntEnv("FEEDSWEEP_WORKERS", 3),
		FetchTimeout:     parseDurationEnv("FEEDSWEEP_FETCH_TIMEOUT", 30*time.Second),
		FetchRate:        parseFloatEnv("FEEDSWEEP_FETCH_RATE", 2.0),
		FailureThreshold: parseIntEnv("FEEDSWEEP_FAILURE_THRESHOLD", 2),
		OplogCapacity:    parseIntEnv("FEEDSWEEP_OPLOG_CAPACITY", 200),
		UserAgent:        getenv("FEEDSWEEP_USER_AGENT", "feedsweep/1.0 (+https://feedsweep.local)"),
		PGHost:           getenv("POSTGRES_HOST", "localhost"),
		PGPort:           parseIntEnv("POSTGRES_PORT", 5432),
		PGUser:           getenv("POSTGRES_USER", "postgres"),
		PGPassword:       getenv("POSTGRES_PASSWORD", "changeme"),
		PGDatabase:       getenv("POSTGRES_DBNAME", "feedsweep"),
		ControlAddr:      getenv("CONTROL_ADDR", "127.0.0.1:8099"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseIntEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func parseFloatEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
