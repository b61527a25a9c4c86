package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"

	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/moneybook/moneybook-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func receiptFixture(t *testing.T) (*fixture, *testutil.MockReceiptStorage, *ReceiptService, *domain.Transaction) {
	t.Helper()
	f := newFixture(t)
	account := f.addAccount(t, "Wallet", "CNY", decimal.Zero)
	category := f.addCategory(t, "Food", domain.TransactionTypeExpense)

	tx, err := f.txns.Create(&domain.Transaction{
		BookID:     f.book.ID,
		AccountID:  account.ID,
		CategoryID: category.ID,
		Type:       domain.TransactionTypeExpense,
		Amount:     decimal.RequireFromString("42.00"),
	})
	if err != nil {
		t.Fatalf("creating transaction: %v", err)
	}

	store := testutil.NewMockReceiptStorage()
	svc := NewReceiptService(store, f.txns, f.members)
	return f, store, svc, tx
}

// testJPEG renders a width x height image and encodes it as JPEG
func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func TestAttachReceipt_StoresThreeVariants(t *testing.T) {
	f, store, svc, tx := receiptFixture(t)

	meta, err := svc.AttachReceipt(context.Background(), f.owner, f.book.ID, tx.ID, testJPEG(t, 1200, 900), "receipt.jpg")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(store.Objects) != 3 {
		t.Fatalf("Expected 3 stored variants, got %d", len(store.Objects))
	}
	for _, url := range []string{meta.ThumbnailURL, meta.DisplayURL, meta.OriginalURL} {
		if !strings.HasPrefix(url, "https://storage.test/") {
			t.Errorf("Expected presigned URL, got %s", url)
		}
	}

	updated, err := f.txns.GetByID(f.book.ID, tx.ID)
	if err != nil {
		t.Fatalf("fetching transaction: %v", err)
	}
	if updated.ReceiptKey == nil {
		t.Fatal("Expected receipt key recorded on the transaction")
	}
	if !strings.HasSuffix(*updated.ReceiptKey, "_original.jpg") {
		t.Errorf("Expected the original variant's key, got %s", *updated.ReceiptKey)
	}
	if _, ok := store.Objects[*updated.ReceiptKey]; !ok {
		t.Error("Expected the recorded key to resolve to a stored object")
	}
}

func TestAttachReceipt_ReplacesPreviousReceipt(t *testing.T) {
	f, store, svc, tx := receiptFixture(t)

	if _, err := svc.AttachReceipt(context.Background(), f.owner, f.book.ID, tx.ID, testJPEG(t, 400, 300), "first.jpg"); err != nil {
		t.Fatalf("first attach: %v", err)
	}
	first, _ := f.txns.GetByID(f.book.ID, tx.ID)
	firstKey := *first.ReceiptKey

	if _, err := svc.AttachReceipt(context.Background(), f.owner, f.book.ID, tx.ID, testJPEG(t, 400, 300), "second.jpg"); err != nil {
		t.Fatalf("second attach: %v", err)
	}

	// The replacement's variants are the only objects left
	if len(store.Objects) != 3 {
		t.Fatalf("Expected 3 objects after replacement, got %d", len(store.Objects))
	}
	if _, ok := store.Objects[firstKey]; ok {
		t.Error("Expected the first receipt's objects removed")
	}
}

func TestAttachReceipt_Validation(t *testing.T) {
	f, _, svc, tx := receiptFixture(t)
	ctx := context.Background()

	if _, err := svc.AttachReceipt(ctx, f.owner, f.book.ID, tx.ID, testJPEG(t, 200, 200), "receipt.gif"); !errors.Is(err, domain.ErrInvalidImage) {
		t.Errorf("Expected ErrInvalidImage for disallowed extension, got %v", err)
	}
	if _, err := svc.AttachReceipt(ctx, f.owner, f.book.ID, tx.ID, []byte("not an image"), "receipt.jpg"); !errors.Is(err, domain.ErrInvalidImage) {
		t.Errorf("Expected ErrInvalidImage for undecodable data, got %v", err)
	}
	if _, err := svc.AttachReceipt(ctx, f.owner, f.book.ID, tx.ID, testJPEG(t, 30, 30), "receipt.jpg"); !errors.Is(err, domain.ErrImageTooSmall) {
		t.Errorf("Expected ErrImageTooSmall, got %v", err)
	}
	if _, err := svc.AttachReceipt(ctx, f.owner, f.book.ID, tx.ID, make([]byte, MaxReceiptSize+1), "receipt.jpg"); !errors.Is(err, domain.ErrImageTooLarge) {
		t.Errorf("Expected ErrImageTooLarge, got %v", err)
	}

	viewer := f.addMember(domain.PermissionViewer)
	if _, err := svc.AttachReceipt(ctx, viewer, f.book.ID, tx.ID, testJPEG(t, 200, 200), "receipt.jpg"); !errors.Is(err, domain.ErrInsufficientRole) {
		t.Errorf("Expected ErrInsufficientRole for viewer, got %v", err)
	}
}

func TestGetReceiptURLs(t *testing.T) {
	f, _, svc, tx := receiptFixture(t)
	ctx := context.Background()

	if _, err := svc.GetReceiptURLs(ctx, f.owner, f.book.ID, tx.ID); !errors.Is(err, domain.ErrReceiptNotFound) {
		t.Fatalf("Expected ErrReceiptNotFound before attach, got %v", err)
	}

	if _, err := svc.AttachReceipt(ctx, f.owner, f.book.ID, tx.ID, testJPEG(t, 400, 300), "receipt.jpg"); err != nil {
		t.Fatalf("attaching: %v", err)
	}

	// Viewers can read receipts
	viewer := f.addMember(domain.PermissionViewer)
	meta, err := svc.GetReceiptURLs(ctx, viewer, f.book.ID, tx.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(meta.ThumbnailURL, "_thumb.jpg") || !strings.Contains(meta.DisplayURL, "_display.jpg") || !strings.Contains(meta.OriginalURL, "_original.jpg") {
		t.Errorf("Expected variant-specific URLs, got %+v", meta)
	}
}

func TestDeleteReceipt_ClearsKeyAndObjects(t *testing.T) {
	f, store, svc, tx := receiptFixture(t)
	ctx := context.Background()

	if _, err := svc.AttachReceipt(ctx, f.owner, f.book.ID, tx.ID, testJPEG(t, 400, 300), "receipt.jpg"); err != nil {
		t.Fatalf("attaching: %v", err)
	}
	if err := svc.DeleteReceipt(ctx, f.owner, f.book.ID, tx.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	updated, _ := f.txns.GetByID(f.book.ID, tx.ID)
	if updated.ReceiptKey != nil {
		t.Error("Expected receipt key cleared")
	}
	if len(store.Objects) != 0 {
		t.Errorf("Expected all objects removed, got %d", len(store.Objects))
	}

	if err := svc.DeleteReceipt(ctx, f.owner, f.book.ID, tx.ID); !errors.Is(err, domain.ErrReceiptNotFound) {
		t.Fatalf("Expected ErrReceiptNotFound on second delete, got %v", err)
	}
}

func TestReceiptService_DisabledWithoutStorage(t *testing.T) {
	f := newFixture(t)
	svc := NewReceiptService(nil, f.txns, f.members)

	if svc.IsEnabled() {
		t.Error("Expected service disabled without storage")
	}
	if _, err := svc.AttachReceipt(context.Background(), f.owner, f.book.ID, 1, nil, "r.jpg"); !errors.Is(err, ErrReceiptStorageNotConfigured) {
		t.Fatalf("Expected ErrReceiptStorageNotConfigured, got %v", err)
	}
}
