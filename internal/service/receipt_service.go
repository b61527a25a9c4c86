package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/moneybook/moneybook-backend/internal/repository/storage"
	"github.com/rs/zerolog/log"
)

const (
	MaxReceiptSize   = 5 * 1024 * 1024 // 5MB
	MinReceiptWidth  = 50
	MinReceiptHeight = 50
	ThumbnailWidth   = 200
	DisplayWidth     = 800
	JPEGQuality      = 85

	// presignExpiry bounds how long a generated receipt URL stays valid
	presignExpiry = 15 * time.Minute
)

// ErrReceiptStorageNotConfigured is returned when no object storage is wired
var ErrReceiptStorageNotConfigured = errors.New("receipt storage not configured")

// AllowedExtensions maps accepted upload extensions to content types
var AllowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// receiptVariants are the stored renditions of an upload. Width 0 keeps the
// original dimensions.
var receiptVariants = []struct {
	name     string
	maxWidth int
}{
	{"thumb", ThumbnailWidth},
	{"display", DisplayWidth},
	{"original", 0},
}

// ReceiptMetadata contains presigned URLs for each stored variant
type ReceiptMetadata struct {
	ThumbnailURL string `json:"thumbnailUrl"`
	DisplayURL   string `json:"displayUrl"`
	OriginalURL  string `json:"originalUrl"`
}

// ReceiptService attaches receipt images to transactions. Variants live in
// object storage; the transaction row only carries the original's key.
type ReceiptService struct {
	storage storage.ReceiptRepository
	txRepo  domain.TransactionRepository
	guard   guard
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(storage storage.ReceiptRepository, txRepo domain.TransactionRepository, memberRepo domain.MemberRepository) *ReceiptService {
	return &ReceiptService{
		storage: storage,
		txRepo:  txRepo,
		guard:   guard{memberRepo: memberRepo},
	}
}

// IsEnabled indicates whether uploads/deletes are supported (storage configured)
func (s *ReceiptService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// AttachReceipt validates, resizes, and stores a receipt image for a
// transaction, replacing any previous receipt.
func (s *ReceiptService) AttachReceipt(ctx context.Context, actorID uuid.UUID, bookID int32, transactionID int32, data []byte, filename string) (*ReceiptMetadata, error) {
	if !s.IsEnabled() {
		return nil, ErrReceiptStorageNotConfigured
	}
	if err := s.guard.requireTransact(bookID, actorID); err != nil {
		return nil, err
	}

	tx, err := s.txRepo.GetByID(bookID, transactionID)
	if err != nil {
		return nil, err
	}

	img, err := validateAndDecode(data, filename)
	if err != nil {
		return nil, err
	}

	imageID := uuid.New().String()
	var uploaded []string

	for _, variant := range receiptVariants {
		var processed image.Image
		if variant.maxWidth > 0 && img.Bounds().Dx() > variant.maxWidth {
			// Resize maintaining aspect ratio
			processed = imaging.Resize(img, variant.maxWidth, 0, imaging.Lanczos)
		} else {
			processed = img
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			s.cleanupObjects(ctx, uploaded)
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}

		objectPath := storage.ReceiptObjectPath(bookID, transactionID, imageID, variant.name)
		if _, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len())); err != nil {
			s.cleanupObjects(ctx, uploaded)
			return nil, fmt.Errorf("failed to upload %s variant: %w", variant.name, err)
		}
		uploaded = append(uploaded, objectPath)
	}

	originalKey := storage.ReceiptObjectPath(bookID, transactionID, imageID, "original")
	if err := s.txRepo.SetReceiptKey(bookID, transactionID, &originalKey); err != nil {
		s.cleanupObjects(ctx, uploaded)
		return nil, err
	}

	// The old receipt's objects are orphaned once the key moves; best effort
	if tx.ReceiptKey != nil {
		s.deleteVariants(ctx, *tx.ReceiptKey)
	}

	return s.presignVariants(ctx, originalKey)
}

// GetReceiptURLs returns short-lived presigned URLs for a transaction's receipt
func (s *ReceiptService) GetReceiptURLs(ctx context.Context, actorID uuid.UUID, bookID int32, transactionID int32) (*ReceiptMetadata, error) {
	if !s.IsEnabled() {
		return nil, ErrReceiptStorageNotConfigured
	}
	if err := s.guard.requireView(bookID, actorID); err != nil {
		return nil, err
	}

	tx, err := s.txRepo.GetByID(bookID, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.ReceiptKey == nil {
		return nil, domain.ErrReceiptNotFound
	}

	return s.presignVariants(ctx, *tx.ReceiptKey)
}

// DeleteReceipt removes a transaction's receipt image and clears its key
func (s *ReceiptService) DeleteReceipt(ctx context.Context, actorID uuid.UUID, bookID int32, transactionID int32) error {
	if !s.IsEnabled() {
		return ErrReceiptStorageNotConfigured
	}
	if err := s.guard.requireTransact(bookID, actorID); err != nil {
		return err
	}

	tx, err := s.txRepo.GetByID(bookID, transactionID)
	if err != nil {
		return err
	}
	if tx.ReceiptKey == nil {
		return domain.ErrReceiptNotFound
	}

	if err := s.txRepo.SetReceiptKey(bookID, transactionID, nil); err != nil {
		return err
	}

	s.deleteVariants(ctx, *tx.ReceiptKey)
	return nil
}

func (s *ReceiptService) presignVariants(ctx context.Context, originalKey string) (*ReceiptMetadata, error) {
	thumbURL, err := s.storage.GeneratePresignedURL(ctx, variantKey(originalKey, "thumb"), presignExpiry)
	if err != nil {
		return nil, err
	}
	displayURL, err := s.storage.GeneratePresignedURL(ctx, variantKey(originalKey, "display"), presignExpiry)
	if err != nil {
		return nil, err
	}
	originalURL, err := s.storage.GeneratePresignedURL(ctx, originalKey, presignExpiry)
	if err != nil {
		return nil, err
	}

	return &ReceiptMetadata{
		ThumbnailURL: thumbURL,
		DisplayURL:   displayURL,
		OriginalURL:  originalURL,
	}, nil
}

func (s *ReceiptService) deleteVariants(ctx context.Context, originalKey string) {
	for _, variant := range receiptVariants {
		key := variantKey(originalKey, variant.name)
		if err := s.storage.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("object_path", key).Msg("Failed to delete receipt object")
		}
	}
}

func (s *ReceiptService) cleanupObjects(ctx context.Context, objectPaths []string) {
	for _, objectPath := range objectPaths {
		_ = s.storage.Delete(ctx, objectPath)
	}
}

// variantKey rewrites an original object key to another variant's key
func variantKey(originalKey, variant string) string {
	return strings.Replace(originalKey, "_original.jpg", "_"+variant+".jpg", 1)
}

// validateAndDecode checks size, extension, and dimensions, and returns the
// decoded image
func validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxReceiptSize {
		return nil, domain.ErrImageTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedExtensions[ext]; !ok {
		return nil, domain.ErrInvalidImage
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.ErrInvalidImage
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinReceiptWidth || bounds.Dy() < MinReceiptHeight {
		return nil, domain.ErrImageTooSmall
	}

	return img, nil
}
