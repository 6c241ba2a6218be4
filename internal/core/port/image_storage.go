package port

import (
	"context"
	"listing-service/internal/core/domain"
)

// ImageStoragePort - объектное хранилище для фотографий.
type ImageStoragePort interface {
	// Upload сохраняет объект по пути и возвращает его публичный URL.
	Upload(ctx context.Context, objectPath string, contentType string, data []byte) (string, error)
}

// ImageProcessorPort подготавливает изображение перед загрузкой.
type ImageProcessorPort interface {
	Process(ctx context.Context, upload domain.ImageUpload) (*domain.ImageUpload, error)
}
