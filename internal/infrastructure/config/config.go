package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	// StatementTimeout caps each SQL statement; zero leaves the server default.
	StatementTimeout time.Duration
}

type KafkaConfig struct {
	Brokers       []string
	Topic         string
	TLS           bool
	SASLEnabled   bool
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	HoldingsTTL time.Duration
}

type JWTConfig struct {
	Secret        string
	PublicKeyFile string
	Issuer        string
}

type TLSConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
	// ClientCAFile turns on mutual TLS for gRPC callers.
	ClientCAFile string
}

// EKYCConfig selects the identity verifier. An empty BaseURL uses the
// in-process simulated verifier.
type EKYCConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	CAFile  string
	// PinnedSPKI holds base64 SHA-256 digests of the provider's leaf key.
	PinnedSPKI []string
	Retries    int
	Backoff    time.Duration
	BreakerOn  bool
}

type TracingConfig struct {
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

type Config struct {
	ServiceName    string
	GRPCPort       int
	GRPCReflection bool
	HTTPPort       int
	LogLevel       string
	LogFormat      string
	StorageDriver  string
	RiskPolicyFile string
	DB             DatabaseConfig
	Kafka          KafkaConfig
	Redis          RedisConfig
	JWT            JWTConfig
	TLS            TLSConfig
	EKYC           EKYCConfig
	Tracing        TracingConfig
}

// Load reads configuration from the environment. A .env file in the working
// directory, or the file named by ENV_FILE, is loaded first if present;
// variables already set in the environment win.
func Load() (Config, error) {
	if err := loadDotEnv(getEnv("ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}

	cfg := Config{
		ServiceName:    getEnv("SERVICE_NAME", "lendingd"),
		GRPCPort:       getEnvInt("GRPC_PORT", 9087),
		GRPCReflection: getEnvBool("GRPC_REFLECTION", false),
		HTTPPort:       getEnvInt("HTTP_PORT", 8087),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		StorageDriver:  getEnv("STORAGE_DRIVER", StoragePostgres),
		RiskPolicyFile: getEnv("RISK_POLICY_FILE", ""),
		DB: DatabaseConfig{
			Host:             getEnv("DB_HOST", "localhost"),
			Port:             getEnvInt("DB_PORT", 5432),
			User:             getEnv("DB_USER", "lending"),
			Password:         getEnv("DB_PASSWORD", ""),
			Name:             getEnv("DB_NAME", "lending"),
			SSLMode:          getEnv("DB_SSLMODE", "require"),
			MaxConns:         getEnvInt("DB_MAX_CONNS", 10),
			StatementTimeout: getEnvDuration("DB_STATEMENT_TIMEOUT", 5*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvList("KAFKA_BROKERS", nil),
			Topic:         getEnv("KAFKA_TOPIC", "lending.events"),
			TLS:           getEnvBool("KAFKA_TLS", false),
			SASLEnabled:   getEnvBool("KAFKA_SASL_ENABLED", false),
			SASLMechanism: getEnv("KAFKA_SASL_MECHANISM", "PLAIN"),
			SASLUsername:  getEnv("KAFKA_SASL_USERNAME", ""),
			SASLPassword:  getEnv("KAFKA_SASL_PASSWORD", ""),
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", ""),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvInt("REDIS_DB", 0),
			HoldingsTTL: getEnvDuration("HOLDINGS_CACHE_TTL", 15*time.Minute),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", ""),
			PublicKeyFile: getEnv("JWT_PUBLIC_KEY_FILE", ""),
			Issuer:        getEnv("JWT_ISSUER", "lending"),
		},
		TLS: TLSConfig{
			Enabled:  getEnvBool("TLS_ENABLED", false),
			CertFile: getEnv("TLS_CERT_FILE", ""),
			KeyFile:  getEnv("TLS_KEY_FILE", ""),

			ClientCAFile: getEnv("TLS_CLIENT_CA_FILE", ""),
		},
		EKYC: EKYCConfig{
			BaseURL:    getEnv("EKYC_BASE_URL", ""),
			APIKey:     getEnv("EKYC_API_KEY", ""),
			Timeout:    getEnvDuration("EKYC_TIMEOUT", 5*time.Second),
			CAFile:     getEnv("EKYC_CA_FILE", ""),
			PinnedSPKI: getEnvList("EKYC_PINNED_SPKI", nil),
			Retries:    getEnvInt("EKYC_RETRIES", 3),
			Backoff:    getEnvDuration("EKYC_BACKOFF", 200*time.Millisecond),
			BreakerOn:  getEnvBool("EKYC_BREAKER_ENABLED", true),
		},
		Tracing: TracingConfig{
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure:    getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			SampleRatio: getEnvFloat("OTEL_TRACES_SAMPLE_RATIO", 1.0),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports missing settings for the selected drivers.
func (c Config) Validate() error {
	var errs []error
	switch c.StorageDriver {
	case StoragePostgres:
		if c.DB.Password == "" {
			errs = append(errs, errors.New("DB_PASSWORD is required for the postgres storage driver"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StoragePostgres, StorageMemory, c.StorageDriver))
	}
	if c.JWT.Secret == "" && c.JWT.PublicKeyFile == "" {
		errs = append(errs, errors.New("JWT_SECRET or JWT_PUBLIC_KEY_FILE is required"))
	}
	if c.TLS.Enabled && (c.TLS.CertFile == "" || c.TLS.KeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE are required when TLS_ENABLED is set"))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, errors.New("OTEL_TRACES_SAMPLE_RATIO must be within [0, 1]"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
