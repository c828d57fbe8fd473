package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	PostgresHost     string `mapstructure:"POSTGRES_HOST"`
	PostgresPort     string `mapstructure:"POSTGRES_PORT"`
	PostgresUser     string `mapstructure:"POSTGRES_USER"`
	PostgresPassword string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresDB       string `mapstructure:"POSTGRES_DB"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	ClassifyQueue   string `mapstructure:"CLASSIFY_QUEUE"`
	DownstreamQueue string `mapstructure:"DOWNSTREAM_QUEUE"`
	TerminateQueue  string `mapstructure:"TERMINATE_QUEUE"`

	StorageBackend   string `mapstructure:"STORAGE_BACKEND"`
	StorageDir       string `mapstructure:"STORAGE_DIR"`
	StoragePublicURL string `mapstructure:"STORAGE_PUBLIC_URL"`
	ObjectBucket     string `mapstructure:"OBJECT_BUCKET"`
	MobileBucket     string `mapstructure:"MOBILE_BUCKET"`
	AWSRegion        string `mapstructure:"AWS_REGION"`
	AWSAccessKey     string `mapstructure:"AWS_ACCESS_KEY"`
	AWSSecretKey     string `mapstructure:"AWS_SECRET_ACCESS_KEY"`
	S3Endpoint       string `mapstructure:"S3_ENDPOINT"`

	DetectorURL            string  `mapstructure:"DETECTOR_URL"`
	ScoreMin               float64 `mapstructure:"OD_SCORE_MIN"`
	MaxObjects             int     `mapstructure:"OD_MAX_OBJECTS"`
	DetectorTimeoutSeconds int     `mapstructure:"DETECTOR_TIMEOUT_SECONDS"`

	HealthCheckIntervalSeconds int `mapstructure:"HEALTH_CHECK_INTERVAL_SECONDS"`

	ReleaseMode  string `mapstructure:"RELEASE_MODE"`
	PodNamespace string `mapstructure:"POD_NAMESPACE"`
	WorkerID     string `mapstructure:"WORKER_ID"`

	EnableSubImages    bool `mapstructure:"ENABLE_SUB_IMAGES"`
	EnableMobileImages bool `mapstructure:"ENABLE_MOBILE_IMAGES"`

	FetchMode           string `mapstructure:"FETCH_MODE"`
	FetchTimeoutSeconds int    `mapstructure:"FETCH_TIMEOUT_SECONDS"`
	FetchProxies        string `mapstructure:"FETCH_PROXIES"`
}

var defaults = map[string]any{
	"SERVER_PORT":                   "8080",
	"LOG_LEVEL":                     "info",
	"POSTGRES_HOST":                 "localhost",
	"POSTGRES_PORT":                 "5432",
	"POSTGRES_USER":                 "user",
	"POSTGRES_PASSWORD":             "password",
	"POSTGRES_DB":                   "classifier",
	"REDIS_ADDR":                    "localhost:6379",
	"REDIS_PASSWORD":                "",
	"REDIS_DB":                      0,
	"CLASSIFY_QUEUE":                "bl:product:classify:queue",
	"DOWNSTREAM_QUEUE":              "bl:product:image:process:queue",
	"TERMINATE_QUEUE":               "bl:pool:terminate:queue",
	"STORAGE_BACKEND":               "s3",
	"STORAGE_DIR":                   "./data",
	"STORAGE_PUBLIC_URL":            "",
	"OBJECT_BUCKET":                 "bluelens-style-object",
	"MOBILE_BUCKET":                 "bluelens-style-mainimage",
	"AWS_REGION":                    "us-east-1",
	"AWS_ACCESS_KEY":                "",
	"AWS_SECRET_ACCESS_KEY":         "",
	"S3_ENDPOINT":                   "",
	"DETECTOR_URL":                  "http://localhost:5000/detect",
	"OD_SCORE_MIN":                  0.7,
	"OD_MAX_OBJECTS":                3,
	"DETECTOR_TIMEOUT_SECONDS":      0,
	"HEALTH_CHECK_INTERVAL_SECONDS": 300,
	"RELEASE_MODE":                  "dev",
	"POD_NAMESPACE":                 "index",
	"WORKER_ID":                     "",
	"ENABLE_SUB_IMAGES":             false,
	"ENABLE_MOBILE_IMAGES":          true,
	"FETCH_MODE":                    "http",
	"FETCH_TIMEOUT_SECONDS":         30,
	"FETCH_PROXIES":                 "",
}

// Load reads configuration from an optional .env file and the environment.
// Environment variables win over the file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Missing .env is fine; production is configured purely through the environment.
	_ = v.ReadInConfig()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Credentials are sometimes injected with surrounding quotes.
	cfg.AWSAccessKey = strings.Trim(cfg.AWSAccessKey, `"`)
	cfg.AWSSecretKey = strings.Trim(cfg.AWSSecretKey, `"`)

	if cfg.WorkerID == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("resolve worker id: %w", err)
		}
		cfg.WorkerID = hostname
	}

	if cfg.HealthCheckIntervalSeconds <= 0 {
		return nil, fmt.Errorf("HEALTH_CHECK_INTERVAL_SECONDS must be positive, got %d", cfg.HealthCheckIntervalSeconds)
	}

	return &cfg, nil
}

// PostgresURL builds the pgx connection string.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresDB)
}

// HealthCheckInterval is the heartbeat period.
func (c *Config) HealthCheckInterval() time.Duration {
	return time.Duration(c.HealthCheckIntervalSeconds) * time.Second
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// DetectorTimeout is zero by default: a detector call is not bounded and a
// hung detector is reclaimed by the heartbeat instead.
func (c *Config) DetectorTimeout() time.Duration {
	return time.Duration(c.DetectorTimeoutSeconds) * time.Second
}

// Proxies splits FETCH_PROXIES on commas.
func (c *Config) Proxies() []string {
	var out []string
	for _, p := range strings.Split(c.FetchProxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
