// Package s3backup uploads JSON snapshots of the application state to an S3 bucket.
package s3backup

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/mamadbah2/microgreens/internal/config"
	"github.com/mamadbah2/microgreens/internal/domain/models"
	"github.com/mamadbah2/microgreens/internal/service/dataio"
)

// putter is the S3 operation used by Backup.
type putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Backup writes timestamped snapshot objects.
type Backup struct {
	client putter
	bucket string
	prefix string
	now    func() time.Time
	logger *zap.Logger
}

// New builds an S3 client from cfg. Static credentials are used when both keys are set,
// otherwise the default AWS credential chain applies. Endpoint targets S3-compatible stores.
func New(ctx context.Context, cfg config.BackupConfig, logger *zap.Logger) (*Backup, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newBackup(client, cfg.Bucket, cfg.Prefix, logger), nil
}

func newBackup(client putter, bucket, prefix string, logger *zap.Logger) *Backup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backup{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
		logger: logger,
	}
}

// ObjectKey is the key a snapshot taken at t is stored under.
func (b *Backup) ObjectKey(t time.Time) string {
	return path.Join(b.prefix, "snapshot-"+t.UTC().Format("20060102T150405Z")+".json")
}

// Upload stores data as an indented JSON export and returns the object key.
func (b *Backup) Upload(ctx context.Context, data models.AppData) (string, error) {
	var buf bytes.Buffer
	if err := dataio.ExportSnapshot(&buf, data); err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	key := b.ObjectKey(b.now())
	size := buf.Len()
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload snapshot to S3: %w", err)
	}

	b.logger.Info("snapshot backed up", zap.String("bucket", b.bucket), zap.String("key", key), zap.Int("bytes", size))
	return key, nil
}
