package testutil

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"

	"tienda/internal/media"
)

// FakeMediaService is an in-memory stand-in for the media provider.
// Set UploadErr or DeleteErr to simulate provider failures.
type FakeMediaService struct {
	UploadErr error
	DeleteErr error

	Uploaded []string // filenames handed to Upload
	Deleted  []string // public ids handed to Delete
}

func (f *FakeMediaService) Upload(_ context.Context, file *multipart.FileHeader, folder string) (*media.UploadResult, error) {
	if f.UploadErr != nil {
		return nil, f.UploadErr
	}

	publicID := fmt.Sprintf("%s/%s", folder, uuid.NewString())
	f.Uploaded = append(f.Uploaded, file.Filename)

	return &media.UploadResult{
		URL:      fmt.Sprintf("https://media.test/%s.png", publicID),
		PublicID: publicID,
	}, nil
}

func (f *FakeMediaService) Delete(_ context.Context, publicID string) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.Deleted = append(f.Deleted, publicID)
	return nil
}
