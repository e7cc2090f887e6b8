package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkravets/denial-appeals/internal/core/domain"
	"github.com/mkravets/denial-appeals/internal/core/ports"
)

// ConfirmPaymentUseCase applies a verified payment event. Payment linkage is
// independent of lifecycle status; the only coupling is the analysis event
// published once a letter is paid.
type ConfirmPaymentUseCase struct {
	repo  ports.LetterRepository
	queue ports.MessageQueue
}

func NewConfirmPaymentUseCase(repo ports.LetterRepository, queue ports.MessageQueue) *ConfirmPaymentUseCase {
	return &ConfirmPaymentUseCase{repo: repo, queue: queue}
}

func (uc *ConfirmPaymentUseCase) Confirm(ctx context.Context, event domain.PaymentEvent) error {
	// Unpaid and foreign processor events are acknowledged without effect.
	if !event.Paid {
		return nil
	}
	if event.LetterID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "confirm payment", errors.New("payment event carries no letter id"))
	}

	if err := uc.repo.UpdatePayment(ctx, event.LetterID, event.SessionID, domain.PaymentPaid); err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}

	if err := uc.queue.PublishLetterPaid(ctx, event.LetterID); err != nil {
		return fmt.Errorf("publish letter-paid event: %w", err)
	}
	return nil
}
