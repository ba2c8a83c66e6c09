package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// UploadService stores check-in photos on Cloudinary.
type UploadService struct {
	cld *cloudinary.Cloudinary
}

func NewUploadService(cloudName, apiKey, apiSecret string) (*UploadService, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary configuration is missing")
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &UploadService{cld: cld}, nil
}

// UploadCheckInPhoto uploads a daily progress photo and returns its secure
// URL. Photos are keyed per user and timestamped so retakes do not clobber
// earlier days.
func (s *UploadService) UploadCheckInPhoto(ctx context.Context, file multipart.File, clerkID string) (string, error) {
	publicID := fmt.Sprintf("checkins/%s/%d", clerkID, time.Now().UnixMilli())
	overwrite := false

	uploadResult, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         "seventyfive",
		Overwrite:      &overwrite,
		ResourceType:   "image",
		Transformation: "c_limit,h_1600,w_1600,q_auto",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}

	return uploadResult.SecureURL, nil
}

// DeletePhoto removes a previously uploaded photo by its public ID.
func (s *UploadService) DeletePhoto(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
