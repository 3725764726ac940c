package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/AnyUserName/blurtune/internal/apperr"
)

// MinioConfig locates a bucket on an S3-compatible server.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
	Workers   int
}

// Minio is a read-only catalog over the objects of one bucket. Image
// names are object keys with Prefix removed.
type Minio struct {
	client  *minio.Client
	bucket  string
	prefix  string
	workers int
}

// NewMinio connects to the server and checks that the bucket exists.
func NewMinio(ctx context.Context, cfg MinioConfig) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, apperr.New(apperr.IOError, "catalog.minio", fmt.Errorf("initialize minio client: %w", err))
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, apperr.New(apperr.IOError, "catalog.minio", fmt.Errorf("check bucket %s: %w", cfg.Bucket, err))
	}
	if !exists {
		return nil, apperr.Errorf(apperr.IOError, "catalog.minio", "bucket %s does not exist", cfg.Bucket)
	}

	return &Minio{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix,
		workers: cfg.Workers,
	}, nil
}

// List enumerates image objects under the prefix and reads their dimensions.
func (m *Minio) List(ctx context.Context) ([]ImageInfo, error) {
	var names []string
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    m.prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, apperr.New(apperr.IOError, "catalog.list", obj.Err)
		}
		name := strings.TrimPrefix(obj.Key, m.prefix)
		if IsImage(name) {
			names = append(names, name)
		}
	}
	return describeAll(ctx, names, m.workers, m.open)
}

// Read downloads the named object.
func (m *Minio) Read(ctx context.Context, name string) ([]byte, error) {
	rc, err := m.open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, classify("catalog.read "+name, err)
	}
	return data, nil
}

func (m *Minio) open(ctx context.Context, name string) (io.ReadCloser, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	obj, err := m.client.GetObject(ctx, m.bucket, m.prefix+clean, minio.GetObjectOptions{})
	if err != nil {
		return nil, classify("catalog.read "+name, err)
	}
	// GetObject is lazy; Stat surfaces a missing key.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, classify("catalog.read "+name, err)
	}
	return obj, nil
}

func classify(op string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return apperr.New(apperr.NotFound, op, err)
	}
	return apperr.New(apperr.IOError, op, err)
}
