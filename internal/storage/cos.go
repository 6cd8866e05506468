package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/tencentyun/cos-go-sdk-v5"

	apperrors "github.com/ctree-analysis/pkg/errors"
)

// COSConfig holds COS-specific configuration.
type COSConfig struct {
	Bucket    string
	Region    string
	SecretID  string
	SecretKey string
	Domain    string // e.g., "myqcloud.com"
	Scheme    string // e.g., "https" or "http"
	// Prefix namespaces every object key inside the bucket, so several
	// deployments can share one bucket without colliding.
	Prefix string
}

// COSStorage implements Storage for Tencent Cloud COS. Keys are sanitized
// with the same contract as the local backend and land under the configured
// prefix.
type COSStorage struct {
	client  *cos.Client
	baseURL string
	prefix  string
}

// NewCOSStorage creates a COSStorage instance.
func NewCOSStorage(cfg *COSConfig) (*COSStorage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, fmt.Errorf("bucket and region are required for COS storage")
	}
	if cfg.SecretID == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("credentials are required for COS storage")
	}

	domain := cfg.Domain
	if domain == "" {
		domain = "myqcloud.com"
	}
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = "https"
	}

	base := fmt.Sprintf("%s://%s.cos.%s.%s", scheme, cfg.Bucket, cfg.Region, domain)
	bucketURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bucket URL: %w", err)
	}

	client := cos.NewClient(&cos.BaseURL{BucketURL: bucketURL}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
		},
	})

	return &COSStorage{
		client:  client,
		baseURL: base,
		prefix:  strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// Upload uploads data from reader to the specified key. The object content
// type is derived from the key so PGM and JSON artifacts come back with
// usable headers.
func (s *COSStorage) Upload(ctx context.Context, key string, reader io.Reader) error {
	objKey, err := s.objectKey(key)
	if err != nil {
		return err
	}
	opts := &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{
			ContentType: contentTypeFor(objKey),
		},
	}
	if _, err := s.client.Object.Put(ctx, objKey, reader, opts); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageError,
			fmt.Sprintf("failed to upload %q to COS", objKey), err)
	}
	return nil
}

// UploadFile uploads a local file to the specified key.
func (s *COSStorage) UploadFile(ctx context.Context, key string, localPath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorageError, "failed to open source file", err)
	}
	defer file.Close()

	return s.Upload(ctx, key, file)
}

// Download downloads data from the specified key.
func (s *COSStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	objKey, err := s.objectKey(key)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Object.Get(ctx, objKey, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageError,
			fmt.Sprintf("failed to download %q from COS", objKey), err)
	}
	return resp.Body, nil
}

// Delete deletes the object at the specified key.
func (s *COSStorage) Delete(ctx context.Context, key string) error {
	objKey, err := s.objectKey(key)
	if err != nil {
		return err
	}
	if _, err := s.client.Object.Delete(ctx, objKey, nil); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageError,
			fmt.Sprintf("failed to delete %q from COS", objKey), err)
	}
	return nil
}

// Exists checks if an object exists at the specified key.
func (s *COSStorage) Exists(ctx context.Context, key string) (bool, error) {
	objKey, err := s.objectKey(key)
	if err != nil {
		return false, err
	}
	ok, err := s.client.Object.IsExist(ctx, objKey)
	if err != nil {
		return false, apperrors.Wrap(apperrors.CodeStorageError,
			fmt.Sprintf("failed to check existence of %q in COS", objKey), err)
	}
	return ok, nil
}

// GetURL returns the public URL for the specified key, or the empty string
// for an invalid key.
func (s *COSStorage) GetURL(key string) string {
	objKey, err := s.objectKey(key)
	if err != nil {
		return ""
	}
	return s.baseURL + "/" + objKey
}

// objectKey resolves a caller key under the prefix, rejecting traversal.
// Same contract as the local backend's path resolution.
func (s *COSStorage) objectKey(key string) (string, error) {
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", fmt.Errorf("invalid key %q", key)
		}
	}
	clean := strings.TrimPrefix(path.Clean("/"+key), "/")
	if clean == "" || clean == "." {
		return "", fmt.Errorf("invalid key %q", key)
	}
	if s.prefix == "" {
		return clean, nil
	}
	return s.prefix + "/" + clean, nil
}

// contentTypeFor maps artifact extensions to content types.
func contentTypeFor(key string) string {
	switch path.Ext(key) {
	case ".pgm":
		return "image/x-portable-graymap"
	case ".ppm":
		return "image/x-portable-pixmap"
	case ".json":
		return "application/json"
	case ".gz":
		return "application/gzip"
	default:
		return "application/octet-stream"
	}
}
