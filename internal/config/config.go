package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Local tier selection: memory, file or sqlite
	DataBackend string

	// SQLite local tier
	SQLiteDBPath string

	// File local tier
	DataDir string

	// Remote tier selection: empty (disabled) or s3
	RemoteBackend string

	// S3-compatible remote tier. Endpoint is optional and points the
	// client at R2 or MinIO instead of AWS.
	S3Bucket          string
	S3Key             string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// Sync mode: direct writes the remote tier inline with each
	// mutation, worker hands it to the sync worker over AMQP.
	SyncMode     string
	SyncInterval time.Duration

	// AMQP (worker mode)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Auth
	JWTSecret string
	JWTExpiry time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/thrifty.db"),
		DataDir:      getEnv("DATA_DIR", "./data"),

		RemoteBackend:     getEnv("REMOTE_BACKEND", ""),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Key:             getEnv("S3_KEY", "thrifty/snapshot.json"),
		S3Region:          getEnv("S3_REGION", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),

		SyncMode:     getEnv("SYNC_MODE", "direct"),
		SyncInterval: getEnvDuration("SYNC_INTERVAL", 30*time.Second),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "thrifty"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_snapshots"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTExpiry: getEnvDuration("JWT_EXPIRY", 24*time.Hour),
	}

	return cfg
}

// Validate checks the whole configuration and reports every problem at
// once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"memory", "file", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.DataBackend == "file" && c.DataDir == "" {
		errors = append(errors, "data directory cannot be empty when using file backend")
	}

	switch c.RemoteBackend {
	case "", "s3":
	default:
		errors = append(errors, fmt.Sprintf("invalid remote backend '%s': must be empty or 's3'", c.RemoteBackend))
	}

	if c.RemoteBackend == "s3" {
		if c.S3Bucket == "" {
			errors = append(errors, "S3 bucket is required when remote backend is s3")
		}
		if c.S3Key == "" {
			errors = append(errors, "S3 key is required when remote backend is s3")
		}
		hasAccessKey := c.S3AccessKeyID != ""
		hasSecretKey := c.S3SecretAccessKey != ""
		if hasAccessKey != hasSecretKey {
			errors = append(errors, "S3 access key id and secret access key must be provided together")
		}
	}

	switch c.SyncMode {
	case "direct", "worker":
	default:
		errors = append(errors, fmt.Sprintf("invalid sync mode '%s': must be 'direct' or 'worker'", c.SyncMode))
	}

	if c.SyncMode == "worker" {
		if c.RemoteBackend == "" {
			errors = append(errors, "worker sync mode requires a remote backend")
		}
		if c.AMQPURL == "" {
			errors = append(errors, "AMQP URL is required when sync mode is worker")
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SyncInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	if c.JWTSecret != "" && len(c.JWTSecret) < 16 {
		errors = append(errors, "JWT secret must be at least 16 characters")
	}
	if c.JWTExpiry < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid JWT expiry %v: must be at least 1 minute", c.JWTExpiry))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// AuthEnabled reports whether the account endpoints should be wired.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
