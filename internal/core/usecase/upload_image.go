package usecase

import (
	"context"
	"fmt"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"path"

	"github.com/google/uuid"
)

type UploadImageUseCase struct {
	processor port.ImageProcessorPort
	storage   port.ImageStoragePort
	events    port.ListingEventsPort
	newID     func() uuid.UUID
}

func NewUploadImageUseCase(processor port.ImageProcessorPort, storage port.ImageStoragePort, events port.ListingEventsPort) *UploadImageUseCase {
	return &UploadImageUseCase{processor: processor, storage: storage, events: events, newID: uuid.New}
}

// Execute ужимает изображение и кладет его в <folder>/<uuid>.jpg.
func (uc *UploadImageUseCase) Execute(ctx context.Context, upload domain.ImageUpload) (string, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "UploadImage",
		"folder":   upload.Folder,
		"size":     len(upload.Data),
	})
	ucLogger.Info("Use case started", nil)

	if upload.Folder != domain.ImageFolderApartments && upload.Folder != domain.ImageFolderRooms {
		return "", fmt.Errorf("%w: unknown image folder %q", domain.ErrValidation, upload.Folder)
	}
	if len(upload.Data) == 0 {
		return "", fmt.Errorf("%w: image is empty", domain.ErrValidation)
	}

	processed, err := uc.processor.Process(ctx, upload)
	if err != nil {
		ucLogger.Warn("Failed to process image", port.Fields{"error": err.Error()})
		return "", err
	}

	id := uc.newID()
	objectPath := path.Join(upload.Folder, id.String()+".jpg")
	publicURL, err := uc.storage.Upload(ctx, objectPath, processed.ContentType, processed.Data)
	if err != nil {
		ucLogger.Error("Failed to upload image", err, port.Fields{"object_path": objectPath})
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	publishChange(ctx, uc.events, ucLogger, domain.EntityImage, domain.ActionCreated, id)
	ucLogger.Info("Use case finished successfully", port.Fields{"object_path": objectPath, "processed_size": len(processed.Data)})
	return publicURL, nil
}
