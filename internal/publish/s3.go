// Package publish uploads run artifacts to S3-compatible object storage.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"valuationcli/internal/config"
	apperrors "valuationcli/internal/errors"
)

// uploadTimeout bounds each PutObject call
const uploadTimeout = 2 * time.Minute

// ObjectPutter is the subset of the S3 client used for uploads
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads files under <prefix>/<variant>/<file name>
type S3Publisher struct {
	client ObjectPutter
	bucket string
	prefix string
	logger *slog.Logger
}

// NewS3Publisher builds an S3 client from cfg. Static credentials are used
// when both keys are set; otherwise the default AWS credential chain applies.
func NewS3Publisher(ctx context.Context, cfg config.PublishConfig, logger *slog.Logger) (*S3Publisher, error) {
	if cfg.Bucket == "" {
		return nil, apperrors.NewConfigError("publish bucket is not set", nil)
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, apperrors.NewConfigError("load AWS config", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	return NewS3PublisherWithClient(client, cfg.Bucket, cfg.Prefix, logger), nil
}

// NewS3PublisherWithClient wraps an existing client
func NewS3PublisherWithClient(client ObjectPutter, bucket, prefix string, logger *slog.Logger) *S3Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Publisher{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger.With(slog.String("component", "s3_publisher")),
	}
}

// Publish uploads every file in order and returns the object keys. The
// first failure stops the upload.
func (p *S3Publisher) Publish(ctx context.Context, variant string, files ...string) ([]string, error) {
	keys := make([]string, 0, len(files))
	for _, file := range files {
		key := p.ObjectKey(variant, file)
		if err := p.upload(ctx, key, file); err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// ObjectKey is the key a file is stored under
func (p *S3Publisher) ObjectKey(variant, file string) string {
	return path.Join(p.prefix, variant, filepath.Base(file))
}

func (p *S3Publisher) upload(ctx context.Context, key, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return apperrors.NewStorageError("open artifact for upload", err).WithContext("path", file)
	}
	defer f.Close()

	input := &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType(file)),
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	start := time.Now()
	if _, err := p.client.PutObject(ctx, input); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("upload s3://%s/%s", p.bucket, key), err)
	}

	p.logger.InfoContext(ctx, "Published artifact",
		slog.String("bucket", p.bucket),
		slog.String("key", key),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

func contentType(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".csv":
		return "text/csv"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
