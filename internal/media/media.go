// Package media abstracts the remote image hosting provider. Handlers
// and services depend on the Service interface; the Cloudinary
// implementation lives in cloudinary.go and a test fake in testutil.
package media

import (
	"context"
	"errors"
	"mime/multipart"
)

const (
	// MaxFileSize is the upload size ceiling (5 MB).
	MaxFileSize = 5 * 1024 * 1024
)

var (
	ErrFileTooLarge    = errors.New("file exceeds the maximum size of 5MB")
	ErrUnsupportedType = errors.New("file type not allowed")
	ErrEmptyPublicID   = errors.New("public id must not be empty")
)

// UploadResult is what the provider hands back for a stored asset.
// PublicID is the provider's handle, used later to delete the asset;
// it is never exposed to API clients.
type UploadResult struct {
	URL      string
	PublicID string
}

// Service is the remote media provider contract.
type Service interface {
	Upload(ctx context.Context, file *multipart.FileHeader, folder string) (*UploadResult, error)
	Delete(ctx context.Context, publicID string) error
}
