package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL connection settings for the job queue.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for uploaded invoice files.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// WorkerConfig tunes the worker process.
type WorkerConfig struct {
	// Concurrency is the number of goroutines pulling jobs in parallel.
	Concurrency int
	// PollInterval is how long a puller sleeps when the queue is empty.
	PollInterval time.Duration
	// ProgressDelay is the pause between simulated progress emissions.
	ProgressDelay time.Duration
	// MaxAttempts bounds redeliveries before a job is dead-lettered.
	MaxAttempts int
	// StaleAfter is the processing-claim age after which a job is assumed
	// abandoned by a crashed worker and returned to pending.
	StaleAfter time.Duration
}

// AppConfig is the centralized configuration for both binaries.
// It is populated from environment variables; a .env file is auto-loaded by
// importing _ "github.com/joho/godotenv/autoload" in main.
type AppConfig struct {
	Port string
	// GatewayURL is where the worker posts processing events.
	GatewayURL string
	// InternalEventsSecret authenticates the internal event ingress.
	InternalEventsSecret string
	// SSEHeartbeat is the keep-alive interval for open event streams.
	SSEHeartbeat time.Duration
	Database     DatabaseConfig
	MinIO        MinIOConfig
	Worker       WorkerConfig
}

// Load reads configuration from environment variables. Real environment
// variables take precedence over any .env file.
func Load() *AppConfig {
	return &AppConfig{
		Port:                 getEnv("PORT", "4000"),
		GatewayURL:           getEnv("GATEWAY_URL", "http://localhost:4000"),
		InternalEventsSecret: getEnv("INTERNAL_EVENTS_SECRET", "dev-internal-secret"),
		SSEHeartbeat:         getEnvDuration("SSE_HEARTBEAT", 30*time.Second),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "invoices"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Worker: WorkerConfig{
			Concurrency:   getEnvInt("WORKER_CONCURRENCY", 2),
			PollInterval:  getEnvDuration("WORKER_POLL_INTERVAL", 2*time.Second),
			ProgressDelay: getEnvDuration("WORKER_PROGRESS_DELAY", 700*time.Millisecond),
			MaxAttempts:   getEnvInt("WORKER_MAX_ATTEMPTS", 3),
			StaleAfter:    getEnvDuration("WORKER_STALE_AFTER", 5*time.Minute),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
