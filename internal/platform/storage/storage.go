// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package storage uploads binary assets (book covers, avatars, narration audio)
to object storage and returns their public URL.

Drivers:

  - supabase: Supabase Storage through storage-go (the default deployment).
  - s3: any S3 compatible endpoint through minio-go (self-hosted MinIO, R2, AWS).

Callers depend on [ObjectStore] only; the driver is selected once at startup
by [New] from configuration.
*/
package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/taibuivan/briefly/internal/platform/config"
	"github.com/taibuivan/briefly/pkg/uuid"
)

// ObjectStore is the object storage contract used by the domain services.
type ObjectStore interface {

	/*
		Upload stores body under objectPath, overwriting any existing object.

		Parameters:
		  - context: context.Context
		  - objectPath: string (Bucket-relative key, e.g. "covers/<id>.jpg")
		  - body: io.Reader
		  - size: int64 (Exact byte length)
		  - contentType: string

		Returns:
		  - string: Publicly reachable URL of the object
		  - error: Any provider failure
	*/
	Upload(context context.Context, objectPath string, body io.Reader, size int64, contentType string) (string, error)

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(context context.Context, objectPath string) error
}

// New builds the driver selected by cfg.StorageDriver.
func New(context context.Context, cfg *config.Config) (ObjectStore, error) {
	switch cfg.StorageDriver {
	case config.StorageSupabase:
		return NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.StorageBucket), nil
	case config.StorageS3:
		return NewMinioStore(context, MinioOptions{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.StorageBucket,
			UseSSL:    cfg.S3UseSSL,
			PublicURL: cfg.S3PublicURL,
		})
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.StorageDriver)
	}
}

// # Object Keys

// ObjectKey builds a collision-free key "<folder>/<uuidv7><ext>" where the
// extension is derived from the content type (falling back to the file name).
func ObjectKey(folder, filename, contentType string) string {
	return path.Join(folder, uuid.New()+Extension(filename, contentType))
}

// Extension picks a file extension for an upload.
func Extension(filename, contentType string) string {
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "audio/mpeg":
		return ".mp3"
	}

	if ext := strings.ToLower(path.Ext(filename)); ext != "" {
		return ext
	}
	if extensions, err := mime.ExtensionsByType(contentType); err == nil && len(extensions) > 0 {
		return extensions[0]
	}
	return ""
}

// IsImage reports whether contentType names an image media type.
func IsImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "image/")
}
