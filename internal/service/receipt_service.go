package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"path"
	"path/filepath"
	"strings"

	"github.com/achacynthia/expensetrack-backend/internal/domain"
	"github.com/achacynthia/expensetrack-backend/internal/repository/storage"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	// Registers the webp decoder for image.Decode.
	_ "golang.org/x/image/webp"
)

const (
	MaxReceiptSize   = 5 * 1024 * 1024 // 5MB
	MinReceiptWidth  = 50
	MinReceiptHeight = 50
	ThumbnailWidth   = 200
	DisplayWidth     = 800
	JPEGQuality      = 85
)

var (
	ErrReceiptTooLarge           = errors.New("file too large. Maximum size is 5MB")
	ErrReceiptInvalidFormat      = errors.New("invalid format. Supported: JPEG, PNG, WebP")
	ErrReceiptTooSmall           = errors.New("image too small. Minimum 50x50 pixels")
	ErrReceiptInvalidData        = errors.New("invalid image data")
	ErrReceiptStorageUnavailable = errors.New("receipt storage not configured")
)

// allowedReceiptExtensions maps extensions to content types
var allowedReceiptExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ReceiptService handles receipt image processing and storage
type ReceiptService struct {
	store storage.ReceiptStore
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(store storage.ReceiptStore) *ReceiptService {
	return &ReceiptService{store: store}
}

// IsEnabled indicates whether uploads/deletes are supported (storage configured)
func (s *ReceiptService) IsEnabled() bool {
	return s != nil && s.store != nil
}

// validateAndDecode validates the receipt image and returns the decoded image
func (s *ReceiptService) validateAndDecode(data []byte, filename string) (image.Image, string, error) {
	if len(data) > MaxReceiptSize {
		return nil, "", ErrReceiptTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedReceiptExtensions[ext]; !ok {
		return nil, "", ErrReceiptInvalidFormat
	}

	// Decode to verify it's a real image and check dimensions
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", ErrReceiptInvalidData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinReceiptWidth || bounds.Dy() < MinReceiptHeight {
		return nil, "", ErrReceiptTooSmall
	}

	return img, ext, nil
}

// ProcessAndUpload resizes a receipt image and uploads all variants
func (s *ReceiptService) ProcessAndUpload(ctx context.Context, userID uuid.UUID, transactionID int32, data []byte, filename string) (*domain.ReceiptImage, error) {
	if !s.IsEnabled() {
		return nil, ErrReceiptStorageUnavailable
	}

	img, ext, err := s.validateAndDecode(data, filename)
	if err != nil {
		return nil, err
	}

	receiptID := uuid.New().String()

	thumbnailURL, err := s.uploadVariant(ctx, userID, transactionID, receiptID, "thumb", img, ThumbnailWidth)
	if err != nil {
		return nil, err
	}

	displayURL, err := s.uploadVariant(ctx, userID, transactionID, receiptID, "display", img, DisplayWidth)
	if err != nil {
		return nil, err
	}

	// The original keeps its format
	originalPath := storage.ReceiptObjectPath(userID, transactionID, receiptID, "original", ext)
	originalURL, err := s.store.Upload(ctx, originalPath, bytes.NewReader(data), allowedReceiptExtensions[ext], int64(len(data)))
	if err != nil {
		return nil, err
	}

	return &domain.ReceiptImage{
		ID:           receiptID,
		ThumbnailURL: thumbnailURL,
		DisplayURL:   displayURL,
		OriginalURL:  originalURL,
	}, nil
}

// uploadVariant resizes to the target width and uploads a JPEG variant
func (s *ReceiptService) uploadVariant(ctx context.Context, userID uuid.UUID, transactionID int32, receiptID, variant string, img image.Image, width int) (string, error) {
	resized := img
	if img.Bounds().Dx() > width {
		resized = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return "", err
	}

	objectPath := storage.ReceiptObjectPath(userID, transactionID, receiptID, variant, ".jpg")
	return s.store.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len()))
}

// Delete removes all stored variants of a receipt. Failures are logged
// and swallowed so a missing object never blocks detaching the receipt.
func (s *ReceiptService) Delete(ctx context.Context, userID uuid.UUID, transactionID int32, receipt *domain.ReceiptImage) error {
	if !s.IsEnabled() {
		return ErrReceiptStorageUnavailable
	}
	if receipt == nil {
		return nil
	}

	originalExt := path.Ext(receipt.OriginalURL)
	if originalExt == "" {
		originalExt = ".jpg"
	}

	paths := []string{
		storage.ReceiptObjectPath(userID, transactionID, receipt.ID, "thumb", ".jpg"),
		storage.ReceiptObjectPath(userID, transactionID, receipt.ID, "display", ".jpg"),
		storage.ReceiptObjectPath(userID, transactionID, receipt.ID, "original", originalExt),
	}
	for _, p := range paths {
		if err := s.store.Delete(ctx, p); err != nil {
			log.Warn().Err(err).Str("object_path", p).Msg("Failed to delete receipt object")
		}
	}
	return nil
}
