// Package s3 stores the ledger snapshot as a single JSON object in an
// S3-compatible bucket (AWS S3, Cloudflare R2, MinIO). It is the remote
// tier of the persistence setup.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"thrifty/internal/core"
	"thrifty/internal/snapshot"
)

type Config struct {
	Bucket          string
	Key             string
	Region          string
	Endpoint        string // custom endpoint for R2/MinIO; empty for AWS
	AccessKeyID     string
	SecretAccessKey string
}

type Store struct {
	client   *awss3.Client
	uploader *manager.Uploader
	bucket   string
	key      string
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 snapshot store: bucket is required")
	}
	if cfg.Key == "" {
		cfg.Key = "thrifty/snapshot.json"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		key:      cfg.Key,
	}, nil
}

func (s *Store) Load(ctx context.Context) (core.Snapshot, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return core.Snapshot{}, nil
		}
		return core.Snapshot{}, &snapshot.PersistenceError{Backend: "s3", Op: "load", Err: err}
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return core.Snapshot{}, &snapshot.PersistenceError{Backend: "s3", Op: "load", Err: err}
	}
	var snap core.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return core.Snapshot{}, &snapshot.PersistenceError{
			Backend: "s3", Op: "load",
			Err: fmt.Errorf("decode s3://%s/%s: %w", s.bucket, s.key, err),
		}
	}
	return snap, nil
}

func (s *Store) Save(ctx context.Context, snap core.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return &snapshot.PersistenceError{Backend: "s3", Op: "save", Err: err}
	}
	_, err = s.uploader.Upload(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return &snapshot.PersistenceError{Backend: "s3", Op: "save", Err: err}
	}
	return nil
}
