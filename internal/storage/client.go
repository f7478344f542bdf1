package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Client is the subset of the MinIO API the object store needs.
type Client interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
}

// NewClient creates a MinIO client. Endpoint may carry a scheme; https
// turns TLS on regardless of UseSSL. The client connects lazily, so
// reachability is first checked by ObjectStore.EnsureBucket.
func NewClient(cfg Config) (Client, error) {
	host, secure, err := parseEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	transport, err := minio.DefaultTransport(secure)
	if err != nil {
		return nil, fmt.Errorf("failed to build minio transport: %w", err)
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport.TLSHandshakeTimeout = timeout
	transport.ResponseHeaderTimeout = timeout

	mc, err := minio.New(host, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    secure,
		Region:    cfg.Region,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for %s: %w", host, err)
	}
	return &minioClient{mc: mc}, nil
}

func parseEndpoint(endpoint string, useSSL bool) (string, bool, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", false, fmt.Errorf("artifact endpoint is empty")
	}
	if !strings.Contains(endpoint, "://") {
		return strings.TrimSuffix(endpoint, "/"), useSSL, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("invalid artifact endpoint %q: %w", endpoint, err)
	}
	switch u.Scheme {
	case "http":
		return u.Host, useSSL, nil
	case "https":
		return u.Host, true, nil
	default:
		return "", false, fmt.Errorf("unsupported artifact endpoint scheme %q", u.Scheme)
	}
}

// minioClient narrows *minio.Client to Client; GetObject returns the lazy
// *minio.Object as an io.ReadCloser.
type minioClient struct {
	mc *minio.Client
}

func (c *minioClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return c.mc.BucketExists(ctx, bucket)
}

func (c *minioClient) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	return c.mc.MakeBucket(ctx, bucket, opts)
}

func (c *minioClient) PutObject(ctx context.Context, bucket, name string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return c.mc.PutObject(ctx, bucket, name, r, size, opts)
}

func (c *minioClient) GetObject(ctx context.Context, bucket, name string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	obj, err := c.mc.GetObject(ctx, bucket, name, opts)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// ObjectStore keeps artifacts in a bucket.
type ObjectStore struct {
	client Client
	bucket string
}

func NewObjectStore(client Client, bucket string) *ObjectStore {
	return &ObjectStore{client: client, bucket: bucket}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *ObjectStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *ObjectStore) Put(ctx context.Context, name string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	return nil
}

func (s *ObjectStore) Get(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.translate(name, err)
	}
	defer obj.Close()

	// GetObject is lazy; a missing key surfaces on the first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.translate(name, err)
	}
	return data, nil
}

func (s *ObjectStore) translate(name string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrNotFound
	}
	return fmt.Errorf("failed to download %s: %w", name, err)
}
