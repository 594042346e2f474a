package media

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"

	"tienda/pkg/logger"
)

var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// CloudinaryService implements Service against the Cloudinary upload API.
type CloudinaryService struct {
	client *cloudinary.Cloudinary
}

// NewCloudinaryService initializes the Cloudinary client. All three
// credentials are required; a deployment without them must fail here,
// before any upload is attempted.
func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("cloudinary credentials are not configured")
	}

	client, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		logger.Log.Error("Failed to initialize Cloudinary client",
			zap.Error(err),
		)
		return nil, err
	}

	return &CloudinaryService{client: client}, nil
}

// Upload validates the file (size and sniffed MIME type) and stores it
// under the given folder.
func (s *CloudinaryService) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (*UploadResult, error) {
	if err := ValidateImage(file); err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	resp, err := s.client.Upload.Upload(ctx, src, uploader.UploadParams{
		Folder:       folder,
		ResourceType: "image",
	})
	if err != nil {
		logger.Log.Error("Failed to upload image",
			zap.String("folder", folder),
			zap.String("filename", file.Filename),
			zap.Error(err),
		)
		return nil, err
	}

	return &UploadResult{
		URL:      resp.SecureURL,
		PublicID: resp.PublicID,
	}, nil
}

// Delete removes an asset by its public id.
func (s *CloudinaryService) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return ErrEmptyPublicID
	}

	resp, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return err
	}
	if resp.Result != "ok" {
		return errors.New("could not delete image: " + resp.Result)
	}

	return nil
}

// ValidateImage enforces the upload constraints: size ceiling and the
// allowed image formats, detected from the file content rather than
// the client-supplied header.
func ValidateImage(file *multipart.FileHeader) error {
	if file.Size > MaxFileSize {
		return ErrFileTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	buf := make([]byte, 512)
	n, err := src.Read(buf)
	if err != nil && n == 0 {
		return err
	}

	contentType := http.DetectContentType(buf[:n])
	if !allowedMimeTypes[contentType] {
		return ErrUnsupportedType
	}

	return nil
}
