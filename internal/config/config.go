package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort          = "3000"
	defaultBaseURL       = "https://api.clover.com"
	defaultSettleMS      = 2500
	defaultGatewayRate   = 8.0
	defaultAllowedOrigin = "*"
)

type Config struct {
	AppPort        string
	AppEnv         string
	MerchantID     string
	AccessToken    string
	BaseURL        string
	SettleInterval time.Duration
	GatewayRate    float64
	ParallelFanOut bool
	AllowedOrigins []string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		AppPort:        getEnv("PORT", defaultPort),
		AppEnv:         os.Getenv("APP_ENV"),
		MerchantID:     os.Getenv("CLOVER_MERCHANT_ID"),
		AccessToken:    os.Getenv("CLOVER_ACCESS_TOKEN"),
		BaseURL:        getEnv("CLOVER_BASE_URL", defaultBaseURL),
		SettleInterval: time.Duration(getInt("PRINT_SETTLE_MS", defaultSettleMS)) * time.Millisecond,
		GatewayRate:    getFloat("CLOVER_RATE_LIMIT", defaultGatewayRate),
		ParallelFanOut: getBool("DIAG_PARALLEL_FANOUT", false),
		AllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{defaultAllowedOrigin}),
	}
}

// HasCloverConfig reports whether both merchant id and access token are set.
func (c *Config) HasCloverConfig() bool {
	return c.MerchantID != "" && c.AccessToken != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func getList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
