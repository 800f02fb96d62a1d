package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Config struct {
	Port           int
	DataDir        string
	BaseURL        string
	UserAgent      string
	FetchDelay     time.Duration
	FetchJitter    time.Duration
	FetchTimeout   time.Duration
	BatchSize      int
	WorkerInterval time.Duration
	CacheMaxAge    time.Duration // 0 means cached pages never go stale
}

func Load() (*Config, error) {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	port, err := getEnvInt("PORT", 8460)
	if err != nil {
		return nil, err
	}

	fetchDelay, err := getEnvInt("FETCH_DELAY_SECONDS", 22)
	if err != nil {
		return nil, err
	}

	fetchJitter, err := getEnvInt("FETCH_JITTER_SECONDS", 14)
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := getEnvInt("FETCH_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}

	batchSize, err := getEnvInt("BATCH_SIZE", 4)
	if err != nil {
		return nil, err
	}
	// The worker processes jobs sequentially; the batch is only a claim
	// window, kept small so retries surface promptly.
	if batchSize < 3 {
		batchSize = 3
	}
	if batchSize > 5 {
		batchSize = 5
	}

	workerInterval, err := getEnvInt("WORKER_INTERVAL_SECONDS", 60)
	if err != nil {
		return nil, err
	}

	cacheMaxAgeHours, err := getEnvInt("CACHE_MAX_AGE_HOURS", 0)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:           port,
		DataDir:        getEnv("DATA_DIR", "./data"),
		BaseURL:        getEnv("BASE_URL", "https://www.blu-ray.com"),
		UserAgent:      getEnv("USER_AGENT", defaultUserAgent),
		FetchDelay:     time.Duration(fetchDelay) * time.Second,
		FetchJitter:    time.Duration(fetchJitter) * time.Second,
		FetchTimeout:   time.Duration(fetchTimeout) * time.Second,
		BatchSize:      batchSize,
		WorkerInterval: time.Duration(workerInterval) * time.Second,
		CacheMaxAge:    time.Duration(cacheMaxAgeHours) * time.Hour,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
