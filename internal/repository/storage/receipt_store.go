package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
)

// ReceiptStore defines the interface for receipt image storage operations
type ReceiptStore interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, objectPath string) error
	GenerateURL(objectPath string) string
}

// ReceiptObjectPath builds the storage key for a receipt image variant.
// Keys are user-scoped so a bucket listing never mixes users.
func ReceiptObjectPath(userID uuid.UUID, transactionID int32, receiptID, variant, ext string) string {
	filename := fmt.Sprintf("%s_%s%s", receiptID, variant, ext)
	return path.Join("receipts", userID.String(), fmt.Sprintf("%d", transactionID), filename)
}
