// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseStore implements [ObjectStore] on a public Supabase Storage bucket.
type SupabaseStore struct {
	client  *storage_go.Client
	baseURL string
	bucket  string
}

// NewSupabaseStore creates a store authenticated with the project's service key.
func NewSupabaseStore(projectURL, serviceKey, bucket string) *SupabaseStore {
	baseURL := strings.TrimRight(projectURL, "/")
	return &SupabaseStore{
		client:  storage_go.NewClient(baseURL+"/storage/v1", serviceKey, nil),
		baseURL: baseURL,
		bucket:  bucket,
	}
}

// Upload implements [ObjectStore]. The storage-go client has no context
// support, so cancellation is only honoured before the call starts.
func (store *SupabaseStore) Upload(context context.Context, objectPath string, body io.Reader, _ int64, contentType string) (string, error) {
	if err := context.Err(); err != nil {
		return "", err
	}

	upsert := true
	_, err := store.client.UploadFile(store.bucket, objectPath, body, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("storage: supabase upload %s: %w", objectPath, err)
	}

	return store.PublicURL(objectPath), nil
}

// Delete implements [ObjectStore].
func (store *SupabaseStore) Delete(context context.Context, objectPath string) error {
	if err := context.Err(); err != nil {
		return err
	}
	if _, err := store.client.RemoveFile(store.bucket, []string{objectPath}); err != nil {
		return fmt.Errorf("storage: supabase delete %s: %w", objectPath, err)
	}
	return nil
}

// PublicURL returns the public object URL for a key in the bucket.
func (store *SupabaseStore) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", store.baseURL, store.bucket, strings.TrimLeft(objectPath, "/"))
}
