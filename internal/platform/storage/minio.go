// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioOptions configures [NewMinioStore].
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool

	// PublicURL is the externally reachable base for objects (CDN or bucket
	// website). When empty, URLs are built from the endpoint in path style.
	PublicURL string
}

// MinioStore implements [ObjectStore] for S3 compatible storage.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioStore connects to the endpoint and ensures the bucket exists.
func NewMinioStore(context context.Context, options MinioOptions) (*MinioStore, error) {
	client, err := minio.New(options.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(options.AccessKey, options.SecretKey, ""),
		Secure: options.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: init minio client: %w", err)
	}

	checkCtx, cancel := contextWithTimeout(context, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(checkCtx, options.Bucket)
	if err != nil {
		return nil, fmt.Errorf("storage: check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(checkCtx, options.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("storage: create bucket: %w", err)
		}
	}

	return &MinioStore{
		client:    client,
		bucket:    options.Bucket,
		publicURL: publicBase(options),
	}, nil
}

// Upload implements [ObjectStore].
func (store *MinioStore) Upload(context context.Context, objectPath string, body io.Reader, size int64, contentType string) (string, error) {
	_, err := store.client.PutObject(context, store.bucket, objectPath, body, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("storage: put object %s: %w", objectPath, err)
	}
	return store.publicURL + "/" + strings.TrimLeft(objectPath, "/"), nil
}

// Delete implements [ObjectStore].
func (store *MinioStore) Delete(context context.Context, objectPath string) error {
	if err := store.client.RemoveObject(context, store.bucket, objectPath, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("storage: delete object %s: %w", objectPath, err)
	}
	return nil
}

// PresignGet returns a time-limited download URL for private deployments.
func (store *MinioStore) PresignGet(context context.Context, objectPath string, expiry time.Duration) (string, error) {
	signed, err := store.client.PresignedGetObject(context, store.bucket, objectPath, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("storage: presign %s: %w", objectPath, err)
	}
	return signed.String(), nil
}

func publicBase(options MinioOptions) string {
	if options.PublicURL != "" {
		return strings.TrimRight(options.PublicURL, "/")
	}
	scheme := "http"
	if options.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, strings.TrimRight(options.Endpoint, "/"), options.Bucket)
}
