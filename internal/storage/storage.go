// Package storage holds the blob store clients evidence is fetched from.
package storage

import (
	"context"
	"io"
)

// Uploader is implemented by every backend so the CLI can push a local file
// before ingesting it.
type Uploader interface {
	UploadFile(ctx context.Context, path string, file io.Reader, contentType string) (string, error)
}

// Backend is a blob store that can both serve and accept objects.
type Backend interface {
	Uploader
	Download(ctx context.Context, path string) ([]byte, error)
}

var (
	_ Backend = (*SupabaseStorage)(nil)
	_ Backend = (*S3Storage)(nil)
)
