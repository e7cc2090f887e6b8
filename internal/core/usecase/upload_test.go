package usecase

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/mkravets/denial-appeals/internal/core/domain"
	"github.com/mkravets/denial-appeals/internal/core/ports"
)

func TestUploadWithLetterText(t *testing.T) {
	repo := &letterRepoFake{}
	storage := &storageFake{}
	uc := NewUploadLetterUseCase(repo, storage)

	letter, err := uc.Upload(context.Background(), ports.UploadRequest{
		UserEmail:  "user@example.com",
		PriceID:    "price_basic",
		LetterText: "Claim #123 denied for late filing",
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if letter.ID == "" {
		t.Fatalf("expected generated id")
	}
	if letter.Status != domain.StatusUploaded {
		t.Fatalf("expected status uploaded, got %s", letter.Status)
	}
	if letter.PaymentStatus != domain.PaymentUnpaid {
		t.Fatalf("expected payment status unpaid, got %s", letter.PaymentStatus)
	}
	if len(storage.savedKeys) != 0 {
		t.Fatalf("text upload must not hit object storage, got %v", storage.savedKeys)
	}
}

func TestUploadWithPDFStoresFile(t *testing.T) {
	repo := &letterRepoFake{}
	storage := &storageFake{}
	uc := NewUploadLetterUseCase(repo, storage)

	letter, err := uc.Upload(context.Background(), ports.UploadRequest{
		UserEmail: "user@example.com",
		Filename:  "denial letter (final).pdf",
		File:      bytes.NewBufferString("%PDF-1.4 payload"),
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if letter.StorageKey == "" {
		t.Fatalf("expected storage key for pdf upload")
	}
	if len(storage.savedKeys) != 1 {
		t.Fatalf("expected one stored object, got %v", storage.savedKeys)
	}
	if strings.ContainsAny(storage.savedKeys[0], " ()") {
		t.Fatalf("expected sanitized key, got %q", storage.savedKeys[0])
	}
}

func TestUploadRejectsEmptySubmission(t *testing.T) {
	uc := NewUploadLetterUseCase(&letterRepoFake{}, &storageFake{})
	_, err := uc.Upload(context.Background(), ports.UploadRequest{UserEmail: "user@example.com"})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUploadRejectsInvalidEmail(t *testing.T) {
	uc := NewUploadLetterUseCase(&letterRepoFake{}, &storageFake{})
	_, err := uc.Upload(context.Background(), ports.UploadRequest{UserEmail: "nope", LetterText: "text"})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
