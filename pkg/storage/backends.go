package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/jordanlanch/brainbuddy/pkg/cache"
)

// FileBackend keeps the document in a single JSON file
type FileBackend struct {
	path string
}

// NewFileBackend creates a backend for path
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (b *FileBackend) String() string {
	return "file:" + b.path
}

// Read returns the file contents
func (b *FileBackend) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Write replaces the file atomically: temp file in the same directory,
// fsync, then rename over the old file.
func (b *FileBackend) Write(ctx context.Context, data []byte) error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, b.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace document: %w", err)
	}

	return nil
}

// RedisBackend keeps the document under one Redis key with no expiry
type RedisBackend struct {
	client *cache.Client
	key    string
}

// NewRedisBackend creates a backend for key
func NewRedisBackend(client *cache.Client, key string) *RedisBackend {
	return &RedisBackend{client: client, key: key}
}

func (b *RedisBackend) String() string {
	return "redis:" + b.key
}

// Read returns the stored value
func (b *RedisBackend) Read(ctx context.Context) ([]byte, error) {
	val, err := b.client.Get(ctx, b.key)
	if errors.Is(err, cache.ErrMiss) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(val), nil
}

// Write stores data and waits for the server acknowledgement
func (b *RedisBackend) Write(ctx context.Context, data []byte) error {
	return b.client.Set(ctx, b.key, data, 0)
}

// S3API is the subset of the S3 client used by S3Backend
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Backend keeps the document as a single S3 object
type S3Backend struct {
	client S3API
	bucket string
	key    string
}

// NewS3Backend creates a backend for bucket/key
func NewS3Backend(client S3API, bucket, key string) *S3Backend {
	return &S3Backend{client: client, bucket: bucket, key: key}
}

func (b *S3Backend) String() string {
	return fmt.Sprintf("s3://%s/%s", b.bucket, b.key)
}

// Read downloads the object
func (b *S3Backend) Read(ctx context.Context) ([]byte, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// Write uploads the object
func (b *S3Backend) Write(ctx context.Context, data []byte) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(b.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	return err
}
