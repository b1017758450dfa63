package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jordanlanch/brainbuddy/pkg/cache"
)

// Backend types accepted by Factory
const (
	TypeFile  = "file"
	TypeRedis = "redis"
	TypeS3    = "s3"
)

// Factory builds one Backend per named document on the configured medium
type Factory struct {
	Type string

	// file
	Dir string

	// redis
	Redis     *cache.Client
	KeyPrefix string

	// s3
	S3     S3API
	Bucket string
}

// Backend returns the backend for the document called name
func (f Factory) Backend(name string) (Backend, error) {
	switch f.Type {
	case TypeFile, "":
		return NewFileBackend(filepath.Join(f.Dir, name+".json")), nil
	case TypeRedis:
		if f.Redis == nil {
			return nil, fmt.Errorf("redis storage requires a redis client")
		}
		return NewRedisBackend(f.Redis, f.KeyPrefix+name), nil
	case TypeS3:
		if f.S3 == nil || f.Bucket == "" {
			return nil, fmt.Errorf("s3 storage requires a client and a bucket")
		}
		return NewS3Backend(f.S3, f.Bucket, f.KeyPrefix+name+".json"), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", f.Type)
	}
}

// S3Config holds S3 connection settings
type S3Config struct {
	Region          string
	Endpoint        string // optional, for S3-compatible services
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Client creates an S3 client. Static credentials are used when given,
// otherwise the default AWS credential chain applies.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
