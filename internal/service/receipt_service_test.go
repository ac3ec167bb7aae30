package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// recordingStore is an in-memory ReceiptStore that records object paths.
type recordingStore struct {
	uploads []string
	deletes []string
}

func (s *recordingStore) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	s.uploads = append(s.uploads, objectPath)
	return "https://cdn.example.com/" + objectPath, nil
}

func (s *recordingStore) Delete(ctx context.Context, objectPath string) error {
	s.deletes = append(s.deletes, objectPath)
	return nil
}

func (s *recordingStore) GenerateURL(objectPath string) string {
	return "https://cdn.example.com/" + objectPath
}

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// A 1x1 lossless webp image.
var tinyWebP = []byte{
	0x52, 0x49, 0x46, 0x46, 0x1A, 0x00, 0x00, 0x00, 0x57, 0x45, 0x42, 0x50,
	0x56, 0x50, 0x38, 0x4C, 0x0D, 0x00, 0x00, 0x00, 0x2F, 0x00, 0x00, 0x00,
	0x10, 0x07, 0x10, 0x11, 0x11, 0x88, 0x88, 0xFE, 0x07, 0x00,
}

func TestValidateAndDecode(t *testing.T) {
	s := NewReceiptService(&recordingStore{})

	t.Run("accepts a valid png", func(t *testing.T) {
		img, ext, err := s.validateAndDecode(encodePNG(t, 60, 60), "receipt.png")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if ext != ".png" {
			t.Errorf("expected extension '.png', got '%s'", ext)
		}
		if img.Bounds().Dx() != 60 {
			t.Errorf("expected width 60, got %d", img.Bounds().Dx())
		}
	})

	t.Run("rejects oversized files", func(t *testing.T) {
		_, _, err := s.validateAndDecode(make([]byte, MaxReceiptSize+1), "receipt.jpg")
		if !errors.Is(err, ErrReceiptTooLarge) {
			t.Errorf("expected ErrReceiptTooLarge, got: %v", err)
		}
	})

	t.Run("rejects unsupported extensions", func(t *testing.T) {
		_, _, err := s.validateAndDecode(encodePNG(t, 60, 60), "receipt.gif")
		if !errors.Is(err, ErrReceiptInvalidFormat) {
			t.Errorf("expected ErrReceiptInvalidFormat, got: %v", err)
		}
	})

	t.Run("rejects bytes that are not an image", func(t *testing.T) {
		_, _, err := s.validateAndDecode([]byte("not an image"), "receipt.png")
		if !errors.Is(err, ErrReceiptInvalidData) {
			t.Errorf("expected ErrReceiptInvalidData, got: %v", err)
		}
	})

	t.Run("rejects images below the minimum dimensions", func(t *testing.T) {
		_, _, err := s.validateAndDecode(encodePNG(t, 10, 10), "receipt.png")
		if !errors.Is(err, ErrReceiptTooSmall) {
			t.Errorf("expected ErrReceiptTooSmall, got: %v", err)
		}
	})

	t.Run("decodes webp", func(t *testing.T) {
		// A 1x1 image fails the dimension check, not the decode. If the
		// webp decoder were not registered this would surface as
		// ErrReceiptInvalidData instead.
		_, _, err := s.validateAndDecode(tinyWebP, "receipt.webp")
		if !errors.Is(err, ErrReceiptTooSmall) {
			t.Errorf("expected ErrReceiptTooSmall, got: %v", err)
		}
	})
}

func TestProcessAndUpload(t *testing.T) {
	store := &recordingStore{}
	s := NewReceiptService(store)
	userID := uuid.New()

	receipt, err := s.ProcessAndUpload(context.Background(), userID, 7, encodePNG(t, 120, 90), "receipt.png")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if receipt.ID == "" {
		t.Errorf("expected a receipt id")
	}
	if len(store.uploads) != 3 {
		t.Fatalf("expected 3 uploaded objects, got %d: %v", len(store.uploads), store.uploads)
	}
	for _, variant := range []string{"thumb", "display", "original"} {
		found := false
		for _, p := range store.uploads {
			if strings.Contains(p, variant) {
				found = true
			}
		}
		if !found {
			t.Errorf("expected an uploaded %s variant, got %v", variant, store.uploads)
		}
	}
	if !strings.Contains(receipt.OriginalURL, ".png") {
		t.Errorf("expected original to keep the png extension, got '%s'", receipt.OriginalURL)
	}
	if !strings.Contains(receipt.ThumbnailURL, ".jpg") {
		t.Errorf("expected a jpeg thumbnail, got '%s'", receipt.ThumbnailURL)
	}
}

func TestProcessAndUpload_StorageNotConfigured(t *testing.T) {
	s := NewReceiptService(nil)

	_, err := s.ProcessAndUpload(context.Background(), uuid.New(), 1, encodePNG(t, 60, 60), "receipt.png")
	if !errors.Is(err, ErrReceiptStorageUnavailable) {
		t.Errorf("expected ErrReceiptStorageUnavailable, got: %v", err)
	}
}
