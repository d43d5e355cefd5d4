package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	dErrors "jobboard/pkg/domain-errors"
)

// Server captures process level configuration.
type Server struct {
	Addr       string
	LogLevel   string
	CORSOrigin string

	Auth     AuthConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Kafka    KafkaConfig
	Apply    ApplyConfig
	Flags    FeatureFlags
}

type AuthConfig struct {
	JWTSecret     string
	JWTIssuer     string
	TokenTTL      time.Duration
	BcryptCost    int
	AdminEmail    string
	AdminPassword string
}

type DatabaseConfig struct {
	URL string
}

// RedisConfig is empty-URL when Redis is not configured.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StorageConfig selects S3 when Bucket is set; otherwise CVs stay in memory.
type StorageConfig struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

type ApplyConfig struct {
	MaxCVBytes     int64
	CleanupOrphans bool
}

type FeatureFlags struct {
	JobDetailView bool
	JobApply      bool
}

const (
	defaultAddr       = ":3000"
	defaultMaxCVBytes = 10 << 20
	defaultBcryptCost = 10
)

// FromEnv builds a Server config from environment variables so main stays lean.
// A missing JWT secret is a configuration error: the process must not start.
func FromEnv() (Server, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Server, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	cfg := Server{
		Addr:       get("API_ADDR", defaultAddr),
		LogLevel:   get("LOG_LEVEL", "info"),
		CORSOrigin: get("CORS_ORIGIN", "http://localhost:3000"),
		Auth: AuthConfig{
			JWTSecret:     get("JWT_SECRET", ""),
			JWTIssuer:     get("JWT_ISSUER", "jobboard"),
			AdminEmail:    get("ADMIN_EMAIL", ""),
			AdminPassword: get("ADMIN_PASSWORD", ""),
		},
		Database: DatabaseConfig{URL: get("DATABASE_URL", "")},
		Redis: RedisConfig{
			URL:          get("REDIS_URL", ""),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
		Storage: StorageConfig{
			Region:          get("AWS_REGION", "eu-west-1"),
			Bucket:          get("S3_BUCKET_NAME", ""),
			Endpoint:        get("S3_ENDPOINT", ""),
			AccessKeyID:     get("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: get("AWS_SECRET_ACCESS_KEY", ""),
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(get("KAFKA_BROKERS", "")),
			AuditTopic: get("AUDIT_TOPIC", "jobboard.audit"),
		},
		Apply: ApplyConfig{
			CleanupOrphans: ParseBool(get("CV_ORPHAN_CLEANUP", "")),
		},
		Flags: FeatureFlags{
			JobDetailView: ParseBool(get("FEATURE_FLAG_JOB_DETAIL_VIEW", "")),
			JobApply:      ParseBool(get("FEATURE_FLAG_JOB_APPLY", "")),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		return Server{}, dErrors.New(dErrors.CodeConfiguration, "JWT_SECRET is not configured")
	}

	ttl, err := time.ParseDuration(get("JWT_EXPIRATION", "1h"))
	if err != nil || ttl <= 0 {
		return Server{}, dErrors.Wrap(err, dErrors.CodeConfiguration, "JWT_EXPIRATION must be a positive duration")
	}
	cfg.Auth.TokenTTL = ttl

	cfg.Auth.BcryptCost, err = positiveInt(get("BCRYPT_COST", ""), defaultBcryptCost)
	if err != nil {
		return Server{}, dErrors.Wrap(err, dErrors.CodeConfiguration, "BCRYPT_COST must be a positive integer")
	}

	maxCV, err := positiveInt(get("CV_MAX_BYTES", ""), defaultMaxCVBytes)
	if err != nil {
		return Server{}, dErrors.Wrap(err, dErrors.CodeConfiguration, "CV_MAX_BYTES must be a positive integer")
	}
	cfg.Apply.MaxCVBytes = int64(maxCV)

	if (cfg.Auth.AdminEmail == "") != (cfg.Auth.AdminPassword == "") {
		return Server{}, dErrors.New(dErrors.CodeConfiguration, "ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	return cfg, nil
}

// ParseBool treats "true", "1" and "yes" (any case) as true; everything else,
// including unset, is false.
func ParseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func positiveInt(v string, fallback int) (int, error) {
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("got %d", n)
	}
	return n, nil
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
