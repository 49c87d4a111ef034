// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestExtension prefers the declared content type over the client file name.
*/
func TestExtension(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		want        string
	}{
		{"jpeg", "cover.jpeg", "image/jpeg", ".jpg"},
		{"png_with_params", "x", "image/png; charset=binary", ".png"},
		{"mp3", "", "audio/mpeg", ".mp3"},
		{"fallback_to_name", "Cover.WEBP", "application/octet-stream", ".webp"},
		{"unknown", "", "application/x-nothing", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extension(tt.filename, tt.contentType))
		})
	}
}

/*
TestObjectKey checks folder placement and uniqueness.
*/
func TestObjectKey(t *testing.T) {
	first := ObjectKey("covers", "a.jpg", "image/jpeg")
	second := ObjectKey("covers", "a.jpg", "image/jpeg")

	assert.True(t, strings.HasPrefix(first, "covers/"))
	assert.True(t, strings.HasSuffix(first, ".jpg"))
	assert.NotEqual(t, first, second)
}

/*
TestPublicURLs covers both drivers' URL construction.
*/
func TestPublicURLs(t *testing.T) {
	supabase := NewSupabaseStore("https://proj.supabase.co/", "service-key", "media")
	assert.Equal(t, "https://proj.supabase.co/storage/v1/object/public/media/covers/x.jpg", supabase.PublicURL("/covers/x.jpg"))

	assert.Equal(t, "https://cdn.briefly.app", publicBase(MinioOptions{PublicURL: "https://cdn.briefly.app/"}))
	assert.Equal(t, "http://minio:9000/media", publicBase(MinioOptions{Endpoint: "minio:9000", Bucket: "media"}))
	assert.Equal(t, "https://s3.example.com/media", publicBase(MinioOptions{Endpoint: "s3.example.com", Bucket: "media", UseSSL: true}))
}

/*
TestIsImage accepts any image media type.
*/
func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("image/png"))
	assert.True(t, IsImage("IMAGE/JPEG"))
	assert.False(t, IsImage("application/pdf"))
}
