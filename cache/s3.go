package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Backend mirrors build artifacts (object files, archives, shared
// libraries) into an S3-compatible bucket, keyed by the same content
// fingerprint the local incremental cache uses, so CI runners and
// developer machines can share a build-output cache across hosts.
type S3Backend struct {
	client *s3.Client
	bucket string
}

// S3BackendConfig configures NewS3Backend.
type S3BackendConfig struct {
	Bucket       string
	Region       string
	Endpoint     string // non-empty for MinIO or other S3-compatible endpoints
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// NewS3Backend builds a client from cfg, preferring static credentials when
// both AccessKey and SecretKey are set and falling back to the default AWS
// credential chain otherwise.
func NewS3Backend(ctx context.Context, cfg S3BackendConfig) (*S3Backend, error) {
	var awsCfg aws.Config
	var err error
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.Region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		)
	} else {
		awsCfg, err = config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	}
	if err != nil {
		return nil, fmt.Errorf("s3 cache: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.UsePathStyle {
			o.UsePathStyle = true
		}
	})

	return &S3Backend{client: client, bucket: cfg.Bucket}, nil
}

func (b *S3Backend) GetCompDB(ctx context.Context, key string) ([]byte, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String("compdb/" + key),
	})
	if err != nil {
		return nil, ErrNotFound
	}
	defer out.Body.Close()
	data := make([]byte, 0, 4096)
	buf := make([]byte, 4096)
	for {
		n, rerr := out.Body.Read(buf)
		if n > 0 {
			data = append(data, buf[:n]...)
		}
		if rerr != nil {
			break
		}
	}
	return data, nil
}

func (b *S3Backend) PutCompDB(ctx context.Context, key string, data []byte) error {
	return b.put(ctx, "compdb/"+key, data)
}

func (b *S3Backend) GetObject(ctx context.Context, key string, dst string) error {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String("objects/" + key),
	})
	if err != nil {
		return ErrNotFound
	}
	defer out.Body.Close()
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()
	buf := make([]byte, 32*1024)
	for {
		n, rerr := out.Body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if rerr != nil {
			break
		}
	}
	return nil
}

func (b *S3Backend) PutObject(ctx context.Context, key string, src string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return b.put(ctx, "objects/"+key, data)
}

func (b *S3Backend) put(ctx context.Context, key string, data []byte) error {
	sum := sha256.Sum256(data)
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(b.bucket),
		Key:      aws.String(key),
		Body:     bytes.NewReader(data),
		Metadata: map[string]string{"sha256": hex.EncodeToString(sum[:])},
	})
	if err != nil {
		return fmt.Errorf("s3 cache: put %s: %w", key, err)
	}
	return nil
}

func (b *S3Backend) Close() error {
	return nil
}
