package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type Config struct {
	PostgresURI  string
	RedisURI     string
	FrontendURL  string
	SecretKey    string
	CookieName   string
	CurrentEpoch int
	R2           R2
}

// Platform weights used when combining per-platform normalized scores
// into a total PIM. Must sum to 1.0 (checked at startup).
var PlatformWeights = map[string]float64{
	"farcaster": 0.35,
	"twitter":   0.30,
	"reddit":    0.20,
	"tiktok":    0.10,
	"instagram": 0.05,
}

// Engagement weights applied to a snapshot's counters when computing a
// post's raw score. Must sum to 1.0 (checked at startup).
var EngagementWeights = map[string]float64{
	"views":    0.10,
	"likes":    0.30,
	"shares":   0.40,
	"comments": 0.20,
}

// Viral thresholds are absolute cumulative counts evaluated against a
// single engagement snapshot, not rates.
const (
	ViralLikesThreshold  = 100
	ViralSharesThreshold = 50
	ViralViewsThreshold  = 1000
)

func LoadConfig() *Config {
	return &Config{
		PostgresURI:  getEnv("POSTGRES_URI", ""),
		RedisURI:     getEnv("REDIS_URI", ""),
		FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:5173"),
		SecretKey:    getEnv("SECRET_KEY", ""),
		CookieName:   getEnv("COOKIE_NAME", "pimtrack_session"),
		CurrentEpoch: getEnvInt("CURRENT_EPOCH", 1),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
	}
}

// ValidateWeights checks the scoring weight tables at startup so a bad
// edit fails the process instead of skewing every score.
func ValidateWeights() error {
	if err := checkSum("platform", PlatformWeights); err != nil {
		return err
	}
	return checkSum("engagement", EngagementWeights)
}

func checkSum(name string, weights map[string]float64) error {
	var sum float64
	for k, w := range weights {
		if w < 0 {
			return fmt.Errorf("%s weight %q is negative", name, k)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("%s weights sum to %v, want 1.0", name, sum)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
