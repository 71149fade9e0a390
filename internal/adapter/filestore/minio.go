package filestore

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"bikemarket/internal/domain"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

var _ domain.FileStore = (*Minio)(nil)

// MinioConfig locates the bucket. PublicURL is prepended to object keys to
// form references; when empty the client endpoint and bucket are used.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// Minio stores images as objects under the "listings/" key prefix.
type Minio struct {
	client *minio.Client
	bucket string
	base   string
	log    *zap.Logger
}

// NewMinio connects and ensures the bucket exists.
func NewMinio(ctx context.Context, cfg MinioConfig, log *zap.Logger) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	base := strings.TrimSuffix(cfg.PublicURL, "/")
	if base == "" {
		base = client.EndpointURL().String() + "/" + cfg.Bucket
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Minio{client: client, bucket: cfg.Bucket, base: base, log: log}, nil
}

// Save uploads data and returns its public reference.
func (m *Minio) Save(ctx context.Context, name string, data []byte) (string, error) {
	key := objectKey(name)
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: http.DetectContentType(data),
	})
	if err != nil {
		return "", fmt.Errorf("minio put %s: %w", key, err)
	}
	m.log.Debug("image uploaded", zap.String("bucket", m.bucket), zap.String("key", key), zap.Int("bytes", len(data)))
	return m.base + "/" + key, nil
}

// Remove deletes the object behind ref. References outside this bucket are
// ignored.
func (m *Minio) Remove(ctx context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, m.base+"/")
	if !ok {
		return nil
	}
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("minio remove %s: %w", key, err)
	}
	return nil
}

func objectKey(name string) string {
	return "listings/" + uuid.NewString() + strings.ToLower(filepath.Ext(name))
}
