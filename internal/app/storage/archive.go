package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"recording-whisper/internal/config"
)

// Archiver uploads a finished transcript to long-term storage. Archiving is
// additive; callers treat failures as warnings, never as run failures.
type Archiver interface {
	ArchiveTranscript(ctx context.Context, localPath, sourceFile string) (string, error)
}

// NoopArchiver is used when no object storage is configured.
type NoopArchiver struct{}

func (NoopArchiver) ArchiveTranscript(context.Context, string, string) (string, error) {
	return "", nil
}

// MinioArchiver stores transcripts in a MinIO (or S3-compatible) bucket.
type MinioArchiver struct {
	client   *minio.Client
	bucket   string
	endpoint string
	useSSL   bool
}

// NewMinioArchiver connects to the configured endpoint and makes sure the
// bucket exists.
func NewMinioArchiver(ctx context.Context, cfg config.ArchiveConfig) (*MinioArchiver, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	bucket := cfg.Bucket
	if bucket == "" {
		bucket = "a2t-transcripts"
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinioArchiver{
		client:   client,
		bucket:   bucket,
		endpoint: cfg.Endpoint,
		useSSL:   cfg.UseSSL,
	}, nil
}

// ArchiveTranscript uploads the transcript file and returns its object URL.
// The key embeds a timestamp and a short random id so uploads never collide.
func (a *MinioArchiver) ArchiveTranscript(ctx context.Context, localPath, sourceFile string) (string, error) {
	key := fmt.Sprintf("transcripts/%d-%s-%s",
		time.Now().Unix(),
		uuid.New().String()[:8],
		filepath.Base(localPath))

	_, err := a.client.FPutObject(ctx, a.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
		UserMetadata: map[string]string{
			"source-file": sourceFile,
			"archived-at": time.Now().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload transcript to MinIO: %w", err)
	}

	return a.objectURL(key), nil
}

func (a *MinioArchiver) objectURL(key string) string {
	protocol := "http"
	if a.useSSL {
		protocol = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", protocol, a.endpoint, a.bucket, key)
}
