package backend

import (
	"fmt"

	"thrifty/internal/config"
	"thrifty/internal/snapshot/s3"
)

// Config holds everything needed to assemble the persistence stack.
type Config struct {
	Type LocalType

	// SQLite local tier
	SQLiteDBPath string

	// File local tier
	DataDir string

	// Remote tier
	RemoteBackend string
	S3            s3.Config

	// Sync
	SyncMode     string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := LocalType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		SQLiteDBPath: appConfig.SQLiteDBPath,
		DataDir:      appConfig.DataDir,

		RemoteBackend: appConfig.RemoteBackend,
		S3: s3.Config{
			Bucket:          appConfig.S3Bucket,
			Key:             appConfig.S3Key,
			Region:          appConfig.S3Region,
			Endpoint:        appConfig.S3Endpoint,
			AccessKeyID:     appConfig.S3AccessKeyID,
			SecretAccessKey: appConfig.S3SecretAccessKey,
		},

		SyncMode:     appConfig.SyncMode,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}, nil
}

// Validate checks the backend configuration.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case FileBackend:
		if c.DataDir == "" {
			return fmt.Errorf("data directory is required for file backend")
		}
	case MemoryBackend:
	}

	if c.RemoteBackend == "s3" && c.S3.Bucket == "" {
		return fmt.Errorf("S3 bucket is required for s3 remote backend")
	}

	if c.SyncMode == "worker" && c.AMQPURL == "" {
		return fmt.Errorf("AMQP URL is required for worker sync mode")
	}

	return nil
}
