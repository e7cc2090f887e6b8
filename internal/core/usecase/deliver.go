package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mkravets/denial-appeals/internal/core/domain"
	"github.com/mkravets/denial-appeals/internal/core/ports"
)

// DeliverAppealUseCase renders the finished appeal to a PDF and submits it to
// the email adapter. Delivery never mutates lifecycle status; resending is
// expected and safe.
type DeliverAppealUseCase struct {
	repo     ports.LetterRepository
	renderer ports.DocumentRenderer
	email    ports.EmailSender
	archive  ports.ObjectStorage
}

func NewDeliverAppealUseCase(
	repo ports.LetterRepository,
	renderer ports.DocumentRenderer,
	email ports.EmailSender,
	archive ports.ObjectStorage,
) *DeliverAppealUseCase {
	return &DeliverAppealUseCase{
		repo:     repo,
		renderer: renderer,
		email:    email,
		archive:  archive,
	}
}

func (uc *DeliverAppealUseCase) Deliver(ctx context.Context, letterID, destination string) error {
	destination = strings.TrimSpace(destination)
	if destination == "" || !strings.Contains(destination, "@") {
		return domain.WrapError(domain.ErrInvalidInput, "deliver appeal", fmt.Errorf("invalid destination address %q", destination))
	}

	letter, err := uc.repo.GetByID(ctx, letterID)
	if err != nil {
		return fmt.Errorf("fetch letter by id: %w", err)
	}
	if strings.TrimSpace(letter.AIResponse) == "" {
		return domain.WrapError(domain.ErrInvalidTransition, "deliver appeal", errors.New("letter has no generated appeal"))
	}

	document, err := uc.renderer.Render(ctx, letter)
	if err != nil {
		return domain.WrapError(domain.ErrAdapterFailure, "render appeal document", err)
	}

	filename := fmt.Sprintf("appeal_%s.pdf", letter.ID)
	msg := ports.OutboundEmail{
		To:      destination,
		Subject: "Your insurance appeal letter",
		Body:    "Attached is the appeal letter generated for your denied claim.",
		Attachment: &ports.EmailAttachment{
			Filename: filename,
			Content:  document,
		},
	}
	if err := uc.email.Send(ctx, msg); err != nil {
		return domain.WrapError(domain.ErrAdapterFailure, "send appeal email", err)
	}

	// Archive copy is best-effort; delivery already happened.
	archiveKey := fmt.Sprintf("appeals/%s.pdf", letter.ID)
	if err := uc.archive.Save(ctx, archiveKey, bytes.NewReader(document)); err != nil {
		slog.Warn("appeal_archive_failed", "letter_id", letter.ID, "key", archiveKey, "error", err)
	}

	return nil
}
