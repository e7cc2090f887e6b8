package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/denial-appeals/internal/core/domain"
	"github.com/mkravets/denial-appeals/internal/core/ports"
)

// UploadLetterUseCase creates the letter record. A PDF upload is stored in
// object storage and extracted later during analysis; plain text is persisted
// directly.
type UploadLetterUseCase struct {
	repo    ports.LetterRepository
	storage ports.ObjectStorage
}

func NewUploadLetterUseCase(repo ports.LetterRepository, storage ports.ObjectStorage) *UploadLetterUseCase {
	return &UploadLetterUseCase{repo: repo, storage: storage}
}

func (uc *UploadLetterUseCase) Upload(ctx context.Context, req ports.UploadRequest) (*domain.LetterRecord, error) {
	userEmail := strings.TrimSpace(req.UserEmail)
	if userEmail == "" || !strings.Contains(userEmail, "@") {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload letter", fmt.Errorf("invalid user email %q", req.UserEmail))
	}
	if strings.TrimSpace(req.LetterText) == "" && req.File == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload letter", errors.New("either letter text or a letter file is required"))
	}

	id := uuid.NewString()
	now := time.Now().UTC()

	letter := &domain.LetterRecord{
		ID:            id,
		UserEmail:     userEmail,
		PaymentStatus: domain.PaymentUnpaid,
		PriceID:       req.PriceID,
		LetterText:    strings.TrimSpace(req.LetterText),
		Status:        domain.StatusUploaded,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if req.File != nil {
		key := fmt.Sprintf("letters/%s_%s", id, sanitizeFilename(req.Filename))
		if err := uc.storage.Save(ctx, key, req.File); err != nil {
			return nil, fmt.Errorf("save letter upload: %w", err)
		}
		letter.StorageKey = key
	}

	if err := uc.repo.Create(ctx, letter); err != nil {
		return nil, fmt.Errorf("create letter record: %w", err)
	}
	return letter, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "letter.pdf"
	}
	return base
}
