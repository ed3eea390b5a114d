package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/server/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type minioAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// MinioBucket stores media through minio-go.
type MinioBucket struct {
	client minioAPI
	bucket string
}

// NewMinioBucket connects to cfg.MinioEndpoint with the root credentials.
func NewMinioBucket(cfg *config.Config) (*MinioBucket, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3RootUser, cfg.S3RootPassword, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}
	return &MinioBucket{client: client, bucket: cfg.S3Bucket}, nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

func isMinioMissingOrDenied(err error) bool {
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey", resp.Code == "AccessDenied":
		return true
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusForbidden:
		return true
	}
	return false
}

// Upload writes data at path. Without overwrite an existing object is
// detected with a stat first; the check and the write are not atomic.
func (b *MinioBucket) Upload(ctx context.Context, path string, data []byte, contentType string, overwrite bool) error {
	if !overwrite {
		_, err := b.client.StatObject(ctx, b.bucket, path, minio.StatObjectOptions{})
		switch {
		case err == nil:
			return fmt.Errorf("%w: %s", common.ErrConflict, path)
		case !isNoSuchKey(err):
			return fmt.Errorf("stat %s: %w", path, err)
		}
	}

	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := b.client.PutObject(ctx, b.bucket, path, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}
	return nil
}

// SignURL presigns a GET for an existing object. Only a missing or
// forbidden object is reported as common.ErrSigningFailed.
func (b *MinioBucket) SignURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if _, err := b.client.StatObject(ctx, b.bucket, path, minio.StatObjectOptions{}); err != nil {
		if isMinioMissingOrDenied(err) {
			return "", fmt.Errorf("%w: %w", common.ErrSigningFailed, err)
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	u, err := b.client.PresignedGetObject(ctx, b.bucket, path, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrSigningFailed, err)
	}
	return u.String(), nil
}

// List returns every object under prefix.
func (b *MinioBucket) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var result []ObjectInfo
	for object := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		result = append(result, ObjectInfo{Key: object.Key, LastModified: object.LastModified, Size: object.Size})
	}
	return result, nil
}

// Remove deletes paths one by one. Missing keys are not an error.
func (b *MinioBucket) Remove(ctx context.Context, paths ...string) error {
	for _, p := range paths {
		if err := b.client.RemoveObject(ctx, b.bucket, p, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to remove object %s: %w", p, err)
		}
	}
	return nil
}
