package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

// ReceiptRepository defines the interface for receipt image storage
type ReceiptRepository interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, objectPath string) error
	GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}

// ReceiptObjectPath builds the object path for one variant of a receipt
// image. All variants of an upload share the same image ID.
// Layout: <bookID>/transactions/<transactionID>/<imageID>_<variant>.jpg
func ReceiptObjectPath(bookID int32, transactionID int32, imageID, variant string) string {
	return fmt.Sprintf("%d/transactions/%d/%s_%s.jpg", bookID, transactionID, imageID, variant)
}
