package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"listing-service/internal/core/domain"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxWidth    = 800
	DefaultJPEGQuality = 95
	// MaxUploadBytes ограничивает исходный файл
	MaxUploadBytes = 15 << 20
)

var supportedTypes = []string{"image/jpeg", "image/png", "image/webp"}

// Resizer уменьшает изображение до MaxWidth по ширине с сохранением пропорций
// и перекодирует его в JPEG. Меньшие изображения не увеличиваются.
type Resizer struct {
	MaxWidth int
	Quality  int
}

func NewResizer(maxWidth, quality int) *Resizer {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &Resizer{MaxWidth: maxWidth, Quality: quality}
}

// Process реализует ImageProcessorPort
func (r *Resizer) Process(ctx context.Context, upload domain.ImageUpload) (*domain.ImageUpload, error) {
	if len(upload.Data) > MaxUploadBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrValidation, MaxUploadBytes)
	}
	if mt := mimetype.Detect(upload.Data); !mimetype.EqualsAny(mt.String(), supportedTypes...) {
		return nil, fmt.Errorf("%w: unsupported image type %s", domain.ErrValidation, mt.String())
	}

	src, _, err := image.Decode(bytes.NewReader(upload.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image: %v", domain.ErrValidation, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dst := r.resize(src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: r.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}

	return &domain.ImageUpload{
		Folder:      upload.Folder,
		FileName:    upload.FileName,
		ContentType: "image/jpeg",
		Data:        buf.Bytes(),
	}, nil
}

func (r *Resizer) resize(src image.Image) image.Image {
	b := src.Bounds()
	width, height := b.Dx(), b.Dy()
	if width > r.MaxWidth {
		height = height * r.MaxWidth / width
		if height < 1 {
			height = 1
		}
		width = r.MaxWidth
	}

	// JPEG без альфа-канала: прозрачные области заливаем белым
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
